package membership

import "errors"

var (
	ErrMembershipNotFound  = errors.New("membership not found")
	ErrMembershipExists    = errors.New("user already has an active membership")
	ErrMembershipCancelled = errors.New("membership is cancelled")
)
