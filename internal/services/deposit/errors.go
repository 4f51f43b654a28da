package deposit

import "errors"

var (
	ErrDepositNotFound      = errors.New("deposit not found")
	ErrInvalidAmount        = errors.New("deposit amount must be positive")
	ErrUnsupportedCurrency  = errors.New("unsupported deposit currency")
	ErrInvalidConfirmations = errors.New("confirmations must not be negative")
	ErrNotPending           = errors.New("deposit is not pending")
	ErrNotOwner             = errors.New("deposit belongs to another user")
)
