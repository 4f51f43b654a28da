package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"tcw1/internal/models"
	"tcw1/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers map[uint]*models.User

func (s stubUsers) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

func setup(t *testing.T, users stubUsers) (*fiber.App, *utils.TokenManager) {
	t.Helper()
	tokens, err := utils.NewTokenManager("access", "refresh", time.Minute, time.Hour)
	require.NoError(t, err)

	auth := NewAuthMiddleware(tokens, users)
	app := fiber.New()
	app.Get("/me", auth.Handler, func(c *fiber.Ctx) error {
		claims, err := utils.GetUserClaims(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": claims.UserID})
	})
	app.Get("/admin", auth.Handler, AdminAuthMiddleware, func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/trade", auth.Handler, HasPermission(models.PermissionTradeWrite), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app, tokens
}

func get(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthMiddleware(t *testing.T) {
	user := &models.User{Role: models.RoleUser, TokenVersion: 2}
	user.ID = 1
	app, tokens := setup(t, stubUsers{1: user})

	access, _, err := tokens.GenerateTokens(&models.UserClaims{UserID: 1, Role: models.RoleUser, TokenVersion: 2, Permissions: models.GetDefaultPermissions(models.RoleUser)})
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", ""))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", "garbage"))
	assert.Equal(t, fiber.StatusOK, get(t, app, "/me", access))
	assert.Equal(t, fiber.StatusOK, get(t, app, "/trade", access))
	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/admin", access))

	user.TokenVersion = 3
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", access))

	user.TokenVersion = 2
	user.Status = models.UserStatusSuspended
	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/me", access))
}

func TestAuthMiddleware_UnknownUser(t *testing.T) {
	app, tokens := setup(t, stubUsers{})
	access, _, err := tokens.GenerateTokens(&models.UserClaims{UserID: 42, TokenVersion: 1})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", access))
}

func TestAdminAuthMiddleware(t *testing.T) {
	admin := &models.User{Role: models.RoleAdmin, TokenVersion: 1}
	app, tokens := setup(t, stubUsers{7: admin})
	access, _, err := tokens.GenerateTokens(&models.UserClaims{UserID: 7, Role: models.RoleAdmin, TokenVersion: 1})
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, get(t, app, "/admin", access))
	// admins pass permission checks without explicit grants
	assert.Equal(t, fiber.StatusOK, get(t, app, "/trade", access))
}

func TestIPRateLimit(t *testing.T) {
	app := fiber.New()
	app.Get("/login", IPRateLimit(2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	assert.Equal(t, fiber.StatusOK, get(t, app, "/login", ""))
	assert.Equal(t, fiber.StatusOK, get(t, app, "/login", ""))
	assert.Equal(t, fiber.StatusTooManyRequests, get(t, app, "/login", ""))
}
