package walletrequest

import "errors"

var (
	ErrRequestNotFound   = errors.New("wallet request not found")
	ErrDuplicatePending  = errors.New("pending wallet request already exists")
	ErrNotPending        = errors.New("wallet request is not pending")
	ErrReasonRequired    = errors.New("rejection reason is required")
	ErrInvalidWalletType = errors.New("invalid wallet request type")
	ErrAddressRequired   = errors.New("wallet address is required")
)
