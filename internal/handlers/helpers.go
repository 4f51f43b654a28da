package handlers

import (
	"strconv"

	"tcw1/internal/models"
	"tcw1/internal/utils"
	"tcw1/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// userClaims returns the claims stored by the auth middleware.
func userClaims(c *fiber.Ctx) (*models.UserClaims, bool) {
	claims, err := utils.GetUserClaims(c)
	return claims, err == nil
}

func invalidClaims(c *fiber.Ctx) error {
	return response.Unauthorized(c, "Invalid claims")
}

// paramID parses a positive numeric route parameter.
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func invalidID(c *fiber.Ctx, name string) error {
	return response.BadRequest(c, "Invalid "+name)
}

func invalidBody(c *fiber.Ctx) error {
	return response.BadRequest(c, "Invalid request body")
}
