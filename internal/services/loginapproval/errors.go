package loginapproval

import "errors"

var (
	ErrInvalidToken   = errors.New("invalid approval token")
	ErrNotPending     = errors.New("approval request is no longer pending")
	ErrExpired        = errors.New("approval token has expired")
	ErrReasonRequired = errors.New("rejection reason is required")
)
