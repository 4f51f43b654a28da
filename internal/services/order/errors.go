package order

import "errors"

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrTotalMismatch  = errors.New("total amount does not match the order items")
	ErrCannotCancel   = errors.New("order can no longer be cancelled")
	ErrNotOwner       = errors.New("order belongs to another user")
	ErrOrderCancelled = errors.New("order is cancelled")
)
