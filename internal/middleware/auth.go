// Package middleware provides HTTP middleware components for the application.
// It includes authentication and authorization middleware for fiber.
package middleware

import (
	"context"
	"strings"

	"tcw1/internal/logger"
	"tcw1/internal/models"
	"tcw1/internal/utils"
	"tcw1/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// TokenParser validates access tokens. utils.TokenManager satisfies it.
type TokenParser interface {
	ParseAccessToken(token string) (*models.UserClaims, error)
}

// UserLookup is the part of the auth service the middleware depends on.
type UserLookup interface {
	GetUserByID(ctx context.Context, userID uint) (*models.User, error)
}

// AuthMiddleware handles JWT token validation and user authentication.
// It extracts the bearer token, validates it and stores the claims in the
// request context.
type AuthMiddleware struct {
	tokens TokenParser
	users  UserLookup
}

func NewAuthMiddleware(tokens TokenParser, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		users:  users,
	}
}

// Handler checks for:
// - Presence of Authorization header with Bearer token
// - Valid JWT signature and expiry
// - Token version matches the current user version
// - User still active
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return response.Unauthorized(c, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return response.Unauthorized(c, "invalid authorization format")
	}

	claims, err := m.tokens.ParseAccessToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		logger.Log.Debugw("token validation failed", "error", err)
		return response.Unauthorized(c, "invalid token")
	}

	user, err := m.users.GetUserByID(c.UserContext(), claims.UserID)
	if err != nil {
		logger.Log.Infow("user from token not found", "user_id", claims.UserID)
		return response.Unauthorized(c, "invalid token")
	}

	if claims.TokenVersion != user.TokenVersion {
		logger.Log.Infow("token version mismatch",
			"user_id", claims.UserID, "token", claims.TokenVersion, "current", user.TokenVersion)
		return response.Unauthorized(c, "session expired")
	}

	if user.Status == models.UserStatusSuspended {
		return response.Forbidden(c, "account suspended")
	}

	utils.SetUserClaims(c, claims)
	return c.Next()
}

// AdminAuthMiddleware verifies that the request has valid admin claims.
func AdminAuthMiddleware(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "Invalid claims")
	}

	if !claims.IsAdmin() {
		logger.Log.Infow("admin access denied", "user_id", claims.UserID, "role", claims.Role)
		return response.Forbidden(c, "Admin access required")
	}

	return c.Next()
}

// HasPermission returns a middleware that checks for a specific permission.
func HasPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := utils.GetUserClaims(c)
		if err != nil {
			return response.Unauthorized(c, "")
		}

		// If user is admin, allow all permissions
		if claims.IsAdmin() || claims.HasPermission(permission) {
			return c.Next()
		}

		return response.Forbidden(c, "Insufficient permissions")
	}
}
