package handlers

import (
	"tcw1/internal/services/walletrequest"
	"tcw1/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type WalletRequestHandler struct {
	requests walletrequest.Service
}

func NewWalletRequestHandler(requests walletrequest.Service) *WalletRequestHandler {
	return &WalletRequestHandler{requests: requests}
}

func (h *WalletRequestHandler) Create(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	var input walletrequest.CreateInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}
	input.UserID = claims.UserID

	req, err := h.requests.CreateRequest(c.UserContext(), input)
	if err != nil {
		return handleError(c, err)
	}
	return response.Created(c, "Request submitted", req)
}

func (h *WalletRequestHandler) GetMine(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	reqs, err := h.requests.GetUserRequests(c.UserContext(), claims.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", reqs)
}

func (h *WalletRequestHandler) GetPending(c *fiber.Ctx) error {
	reqs, err := h.requests.GetPendingRequests(c.UserContext())
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", reqs)
}

// Approve accepts an optional walletAddress; crypto addresses are generated when omitted.
func (h *WalletRequestHandler) Approve(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "request ID")
	}

	var input struct {
		WalletAddress string `json:"walletAddress"`
		Notes         string `json:"notes"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return invalidBody(c)
		}
	}

	req, err := h.requests.ApproveRequest(c.UserContext(), id, input.WalletAddress, input.Notes)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Request approved", req)
}

func (h *WalletRequestHandler) Reject(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "request ID")
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	req, err := h.requests.RejectRequest(c.UserContext(), id, input.Reason)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Request rejected", req)
}
