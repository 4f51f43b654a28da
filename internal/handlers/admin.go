package handlers

import (
	"tcw1/internal/logger"
	"tcw1/internal/services/admin"
	"tcw1/internal/utils/pagination"
	"tcw1/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	adminService admin.Service
}

func NewAdminHandler(adminService admin.Service) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.adminService.GetStats(c.UserContext())
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", stats)
}

func (h *AdminHandler) GetUsers(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c, admin.DefaultLimit)
	users, err := h.adminService.GetAllUsers(c.UserContext(), p.Skip, p.Limit)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", users)
}

func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "user ID")
	}

	user, err := h.adminService.GetUser(c.UserContext(), id)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", user.Profile())
}

func (h *AdminHandler) MakeAdmin(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "user ID")
	}

	user, err := h.adminService.MakeUserAdmin(c.UserContext(), id)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "User promoted to admin", user.Profile())
}

// UpdateUser changes firstName, lastName and phone only.
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "user ID")
	}

	var update admin.UserUpdate
	if err := c.BodyParser(&update); err != nil {
		return invalidBody(c)
	}

	user, err := h.adminService.UpdateUserDetails(c.UserContext(), id, update)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "User updated", user.Profile())
}

func (h *AdminHandler) SetUserStatus(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "user ID")
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	user, err := h.adminService.SetUserStatus(c.UserContext(), id, input.Status)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "User status updated", user.Profile())
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "user ID")
	}

	logger.Log.Infow("Admin deleting user", "admin_id", claims.UserID, "user_id", id)
	if err := h.adminService.DeleteUser(c.UserContext(), claims.UserID, id); err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "User deleted successfully", nil)
}

func (h *AdminHandler) GetTransactions(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c, admin.DefaultLimit)
	txs, err := h.adminService.GetAllTransactions(c.UserContext(), p.Skip, p.Limit)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", txs)
}
