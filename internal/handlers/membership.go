package handlers

import (
	"tcw1/internal/services/membership"
	"tcw1/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type MembershipHandler struct {
	memberships membership.Service
}

func NewMembershipHandler(memberships membership.Service) *MembershipHandler {
	return &MembershipHandler{memberships: memberships}
}

func (h *MembershipHandler) Create(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	var input membership.CreateInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}
	input.UserID = claims.UserID

	m, err := h.memberships.CreateMembership(c.UserContext(), input)
	if err != nil {
		return handleError(c, err)
	}
	return response.Created(c, "Membership created", m)
}

func (h *MembershipHandler) GetMine(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	m, err := h.memberships.GetUserMembership(c.UserContext(), claims.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", m)
}

func (h *MembershipHandler) Upgrade(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	var input struct {
		Tier string `json:"tier"`
	}
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	m, err := h.memberships.UpgradeMembership(c.UserContext(), claims.UserID, input.Tier)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Membership updated", m)
}

func (h *MembershipHandler) Cancel(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	m, err := h.memberships.CancelMembership(c.UserContext(), claims.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Membership cancelled", m)
}

// ProcessRenewals runs the renewal pass immediately instead of waiting for cron.
func (h *MembershipHandler) ProcessRenewals(c *fiber.Ctx) error {
	summary, err := h.memberships.ProcessAutoRenewal(c.UserContext())
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Renewals processed", summary)
}
