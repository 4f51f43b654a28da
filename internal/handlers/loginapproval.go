package handlers

import (
	"tcw1/internal/services/loginapproval"
	"tcw1/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type LoginApprovalHandler struct {
	approvals loginapproval.Service
}

func NewLoginApprovalHandler(approvals loginapproval.Service) *LoginApprovalHandler {
	return &LoginApprovalHandler{approvals: approvals}
}

// Request emails an approval link to the account owner. The response is the
// same whether or not the email belongs to an account.
func (h *LoginApprovalHandler) Request(c *fiber.Ctx) error {
	var input struct {
		Email      string `json:"email"`
		DeviceName string `json:"deviceName"`
	}
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	err := h.approvals.RequestApproval(c.UserContext(), input.Email, c.IP(), c.Get(fiber.HeaderUserAgent), input.DeviceName)
	if err != nil {
		return handleError(c, err)
	}
	return response.Status(c, fiber.StatusAccepted, "If the account exists, an approval email has been sent", nil)
}

func (h *LoginApprovalHandler) Approve(c *fiber.Ctx) error {
	approval, err := h.approvals.ApproveLogin(c.UserContext(), c.Params("token"))
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Login approved", fiber.Map{
		"status":     approval.Status,
		"approvedAt": approval.ApprovedAt,
	})
}

func (h *LoginApprovalHandler) Reject(c *fiber.Ctx) error {
	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	approval, err := h.approvals.RejectLogin(c.UserContext(), c.Params("token"), input.Reason)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Login rejected", fiber.Map{
		"status":     approval.Status,
		"rejectedAt": approval.RejectedAt,
	})
}

func (h *LoginApprovalHandler) Status(c *fiber.Ctx) error {
	status, err := h.approvals.GetStatus(c.UserContext(), c.Params("token"))
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", status)
}

func (h *LoginApprovalHandler) Pending(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	approvals, err := h.approvals.GetPendingApprovals(c.UserContext(), claims.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", approvals)
}
