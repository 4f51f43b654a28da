package wallet

import "errors"

// Service errors
var (
	ErrWalletExists      = errors.New("user already has an active wallet of this type")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrInvalidAddress    = errors.New("invalid wallet address")
	ErrInvalidWalletType = errors.New("invalid wallet type")
	ErrNegativeBalance   = errors.New("balance must not be negative")
	ErrInvalidAmount     = errors.New("amount must be positive")
)
