package auth

import "errors"

var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrEmailTaken             = errors.New("email already registered")
	ErrAccountSuspended       = errors.New("account suspended")
	ErrTwoFactorRequired      = errors.New("two-factor code required")
	ErrInvalidTwoFactorCode   = errors.New("invalid two-factor code")
	ErrTwoFactorAlreadyActive = errors.New("two-factor authentication already enabled")
	ErrTwoFactorNotSetUp      = errors.New("two-factor authentication not set up")
	ErrTwoFactorNotEnabled    = errors.New("two-factor authentication not enabled")
	ErrInvalidRefreshToken    = errors.New("invalid refresh token")
	ErrTokenVersionMismatch   = errors.New("token version mismatch")
	ErrInvalidOldPassword     = errors.New("invalid old password")
	ErrInvalidPassword        = errors.New("invalid password")
	ErrUserNotFound           = errors.New("user not found")
)
