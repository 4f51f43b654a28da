package blockchain

import "errors"

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidAddress      = errors.New("invalid address for currency")
	ErrServiceStopped      = errors.New("blockchain service is shutting down")
)
