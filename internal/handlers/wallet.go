package handlers

import (
	"strings"

	"tcw1/internal/services/wallet"
	"tcw1/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	walletService wallet.Service
}

func NewWalletHandler(walletService wallet.Service) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

// GetMyWallets lists the caller's active wallets.
func (h *WalletHandler) GetMyWallets(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	wallets, err := h.walletService.GetUserWallets(c.UserContext(), claims.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", wallets)
}

func (h *WalletHandler) GetMyWallet(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	w, err := h.walletService.GetWallet(c.UserContext(), claims.UserID, walletTypeParam(c))
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", w)
}

// Admin endpoints

func (h *WalletHandler) GetUserWallets(c *fiber.Ctx) error {
	userID, ok := paramID(c, "userId")
	if !ok {
		return invalidID(c, "user ID")
	}

	wallets, err := h.walletService.GetUserWallets(c.UserContext(), userID)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", wallets)
}

func (h *WalletHandler) AssignWallet(c *fiber.Ctx) error {
	var input wallet.AssignInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}
	if input.UserID == 0 {
		return invalidID(c, "user ID")
	}

	w, err := h.walletService.AssignWallet(c.UserContext(), input)
	if err != nil {
		return handleError(c, err)
	}
	return response.Created(c, "Wallet assigned", w)
}

func (h *WalletHandler) UpdateBalance(c *fiber.Ctx) error {
	userID, ok := paramID(c, "userId")
	if !ok {
		return invalidID(c, "user ID")
	}

	var input struct {
		Balance *float64 `json:"balance"`
	}
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}
	if input.Balance == nil {
		return response.ValidationError(c, map[string]string{"balance": "is required"})
	}

	w, err := h.walletService.UpdateBalance(c.UserContext(), userID, walletTypeParam(c), *input.Balance)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Balance updated", w)
}

func (h *WalletHandler) DeactivateWallet(c *fiber.Ctx) error {
	userID, ok := paramID(c, "userId")
	if !ok {
		return invalidID(c, "user ID")
	}

	if err := h.walletService.DeactivateWallet(c.UserContext(), userID, walletTypeParam(c)); err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Wallet deactivated", nil)
}

func walletTypeParam(c *fiber.Ctx) string {
	return strings.ToUpper(c.Params("type"))
}
