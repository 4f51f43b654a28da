package handlers

import (
	"tcw1/internal/services/deposit"
	"tcw1/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type DepositHandler struct {
	deposits deposit.Service
}

func NewDepositHandler(deposits deposit.Service) *DepositHandler {
	return &DepositHandler{deposits: deposits}
}

func (h *DepositHandler) Create(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	var input deposit.CreateInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}
	input.UserID = claims.UserID

	d, err := h.deposits.CreateDeposit(c.UserContext(), input)
	if err != nil {
		return handleError(c, err)
	}
	return response.Created(c, "Deposit recorded", d)
}

// GetMine lists the caller's deposits, optionally filtered by ?status=.
func (h *DepositHandler) GetMine(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	deposits, err := h.deposits.GetUserDeposits(c.UserContext(), claims.UserID, c.Query("status"))
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", deposits)
}

func (h *DepositHandler) Cancel(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "deposit ID")
	}

	d, err := h.deposits.CancelDeposit(c.UserContext(), id, claims.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Deposit cancelled", d)
}

func (h *DepositHandler) GetPending(c *fiber.Ctx) error {
	deposits, err := h.deposits.GetPendingDeposits(c.UserContext())
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", deposits)
}

// UpdateConfirmations sets the observed confirmation count.
func (h *DepositHandler) UpdateConfirmations(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "deposit ID")
	}

	var input struct {
		Confirmations int `json:"confirmations"`
	}
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	d, err := h.deposits.UpdateConfirmationCount(c.UserContext(), id, input.Confirmations)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Confirmations updated", d)
}

func (h *DepositHandler) MarkFailed(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "deposit ID")
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	d, err := h.deposits.MarkDepositFailed(c.UserContext(), id, input.Reason)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Deposit marked as failed", d)
}
