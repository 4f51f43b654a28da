package handlers

import (
	"errors"

	"tcw1/internal/logger"
	"tcw1/internal/services/admin"
	"tcw1/internal/services/auth"
	"tcw1/internal/services/blockchain"
	"tcw1/internal/services/catalog"
	"tcw1/internal/services/chain"
	"tcw1/internal/services/deposit"
	"tcw1/internal/services/loginapproval"
	"tcw1/internal/services/marketplace"
	"tcw1/internal/services/membership"
	"tcw1/internal/services/order"
	"tcw1/internal/services/pricefeed"
	"tcw1/internal/services/user"
	"tcw1/internal/services/wallet"
	"tcw1/internal/services/walletrequest"
	"tcw1/internal/utils/response"
	"tcw1/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type errorMapping struct {
	err    error
	status int
}

// errorStatuses maps service sentinels to HTTP statuses. Unlisted errors are 500s.
var errorStatuses = []errorMapping{
	// 400
	{auth.ErrInvalidTwoFactorCode, fiber.StatusBadRequest},
	{auth.ErrTwoFactorAlreadyActive, fiber.StatusBadRequest},
	{auth.ErrTwoFactorNotSetUp, fiber.StatusBadRequest},
	{auth.ErrTwoFactorNotEnabled, fiber.StatusBadRequest},
	{auth.ErrInvalidOldPassword, fiber.StatusBadRequest},
	{blockchain.ErrInvalidAddress, fiber.StatusBadRequest},
	{chain.ErrUnsupportedWalletType, fiber.StatusBadRequest},
	{pricefeed.ErrUnsupportedCurrency, fiber.StatusBadRequest},
	{pricefeed.ErrInvalidAmount, fiber.StatusBadRequest},
	{wallet.ErrInvalidAddress, fiber.StatusBadRequest},
	{wallet.ErrInvalidWalletType, fiber.StatusBadRequest},
	{wallet.ErrNegativeBalance, fiber.StatusBadRequest},
	{wallet.ErrInvalidAmount, fiber.StatusBadRequest},
	{walletrequest.ErrNotPending, fiber.StatusBadRequest},
	{walletrequest.ErrReasonRequired, fiber.StatusBadRequest},
	{walletrequest.ErrInvalidWalletType, fiber.StatusBadRequest},
	{walletrequest.ErrAddressRequired, fiber.StatusBadRequest},
	{deposit.ErrInvalidAmount, fiber.StatusBadRequest},
	{deposit.ErrUnsupportedCurrency, fiber.StatusBadRequest},
	{deposit.ErrInvalidConfirmations, fiber.StatusBadRequest},
	{deposit.ErrNotPending, fiber.StatusBadRequest},
	{loginapproval.ErrNotPending, fiber.StatusBadRequest},
	{loginapproval.ErrReasonRequired, fiber.StatusBadRequest},
	{catalog.ErrInvalidStock, fiber.StatusBadRequest},
	{order.ErrTotalMismatch, fiber.StatusBadRequest},
	{order.ErrCannotCancel, fiber.StatusBadRequest},
	{order.ErrOrderCancelled, fiber.StatusBadRequest},
	{membership.ErrMembershipCancelled, fiber.StatusBadRequest},
	{admin.ErrCannotDeleteSelf, fiber.StatusBadRequest},
	{admin.ErrInvalidStatus, fiber.StatusBadRequest},
	{user.ErrSelfRequest, fiber.StatusBadRequest},
	{user.ErrAlreadyResponded, fiber.StatusBadRequest},

	// 401
	{auth.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{auth.ErrInvalidPassword, fiber.StatusUnauthorized},
	{auth.ErrInvalidRefreshToken, fiber.StatusUnauthorized},
	{auth.ErrTokenVersionMismatch, fiber.StatusUnauthorized},

	// 403
	{auth.ErrAccountSuspended, fiber.StatusForbidden},
	{deposit.ErrNotOwner, fiber.StatusForbidden},
	{marketplace.ErrNotOwner, fiber.StatusForbidden},
	{order.ErrNotOwner, fiber.StatusForbidden},
	{user.ErrNotRecipient, fiber.StatusForbidden},

	// 404
	{auth.ErrUserNotFound, fiber.StatusNotFound},
	{admin.ErrUserNotFound, fiber.StatusNotFound},
	{user.ErrUserNotFound, fiber.StatusNotFound},
	{user.ErrRequestNotFound, fiber.StatusNotFound},
	{blockchain.ErrTransactionNotFound, fiber.StatusNotFound},
	{chain.ErrTransactionNotOnChain, fiber.StatusNotFound},
	{wallet.ErrWalletNotFound, fiber.StatusNotFound},
	{walletrequest.ErrRequestNotFound, fiber.StatusNotFound},
	{deposit.ErrDepositNotFound, fiber.StatusNotFound},
	{loginapproval.ErrInvalidToken, fiber.StatusNotFound},
	{catalog.ErrProductNotFound, fiber.StatusNotFound},
	{marketplace.ErrListingNotFound, fiber.StatusNotFound},
	{order.ErrOrderNotFound, fiber.StatusNotFound},
	{membership.ErrMembershipNotFound, fiber.StatusNotFound},

	// 409
	{auth.ErrEmailTaken, fiber.StatusConflict},
	{wallet.ErrWalletExists, fiber.StatusConflict},
	{walletrequest.ErrDuplicatePending, fiber.StatusConflict},
	{membership.ErrMembershipExists, fiber.StatusConflict},
	{admin.ErrAlreadyAdmin, fiber.StatusConflict},
	{user.ErrRequestExists, fiber.StatusConflict},
	{user.ErrAlreadyFriends, fiber.StatusConflict},

	// 410
	{loginapproval.ErrExpired, fiber.StatusGone},

	// 503
	{pricefeed.ErrPriceUnavailable, fiber.StatusServiceUnavailable},
	{blockchain.ErrServiceStopped, fiber.StatusServiceUnavailable},
}

// statusFor returns the HTTP status for a service error.
func statusFor(err error) int {
	for _, m := range errorStatuses {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return fiber.StatusInternalServerError
}

// handleError writes err as an error envelope. Unexpected errors are logged
// and reported with a generic message.
func handleError(c *fiber.Ctx, err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return response.ValidationError(c, verr.Fields)
	}

	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		logger.Log.Errorw("Request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return response.ServerError(c, "internal server error")
	}
	return response.Error(c, status, err.Error())
}
