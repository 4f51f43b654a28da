package utils

import (
	"errors"

	"tcw1/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Fiber locals set by the auth middleware.
const (
	claimsLocal = "claims"
	userIDLocal = "userID"
)

var ErrNoClaims = errors.New("no user claims on request")

// SetUserClaims attaches verified claims to the request.
func SetUserClaims(c *fiber.Ctx, claims *models.UserClaims) {
	c.Locals(claimsLocal, claims)
	c.Locals(userIDLocal, claims.UserID)
}

func GetUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals(claimsLocal).(*models.UserClaims)
	if !ok || claims == nil {
		return nil, ErrNoClaims
	}
	return claims, nil
}

// CurrentUserID is zero and false on anonymous requests.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(userIDLocal).(uint)
	return id, ok && id != 0
}
