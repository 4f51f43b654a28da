package handlers

import (
	"tcw1/internal/services/user"
	"tcw1/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService user.Service
}

func NewUserHandler(userService user.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	profile, err := h.userService.GetProfile(c.UserContext(), claims.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", profile)
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	var update user.ProfileUpdate
	if err := c.BodyParser(&update); err != nil {
		return invalidBody(c)
	}

	profile, err := h.userService.UpdateProfile(c.UserContext(), claims.UserID, update)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Profile updated", profile)
}

func (h *UserHandler) GetPrivacy(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	privacy, err := h.userService.GetPrivacy(c.UserContext(), claims.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", privacy)
}

func (h *UserHandler) UpdatePrivacy(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	var update user.PrivacyUpdate
	if err := c.BodyParser(&update); err != nil {
		return invalidBody(c)
	}

	privacy, err := h.userService.UpdatePrivacy(c.UserContext(), claims.UserID, update)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Privacy settings updated", privacy)
}

// Friends

func (h *UserHandler) SendFriendRequest(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	var input struct {
		UserID uint `json:"userId"`
	}
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}
	if input.UserID == 0 {
		return invalidID(c, "user ID")
	}

	req, err := h.userService.SendFriendRequest(c.UserContext(), claims.UserID, input.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return response.Created(c, "Friend request sent", req)
}

func (h *UserHandler) GetFriendRequests(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	requests, err := h.userService.GetFriendRequests(c.UserContext(), claims.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", requests)
}

func (h *UserHandler) AcceptFriendRequest(c *fiber.Ctx) error {
	return h.respondFriendRequest(c, true)
}

func (h *UserHandler) RejectFriendRequest(c *fiber.Ctx) error {
	return h.respondFriendRequest(c, false)
}

func (h *UserHandler) respondFriendRequest(c *fiber.Ctx, accept bool) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "request ID")
	}

	req, err := h.userService.RespondFriendRequest(c.UserContext(), id, claims.UserID, accept)
	if err != nil {
		return handleError(c, err)
	}
	msg := "Friend request rejected"
	if accept {
		msg = "Friend request accepted"
	}
	return response.Success(c, msg, req)
}

func (h *UserHandler) ListFriends(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	friends, err := h.userService.ListFriends(c.UserContext(), claims.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", friends)
}
