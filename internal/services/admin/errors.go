package admin

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCannotDeleteSelf = errors.New("admins cannot delete their own account")
	ErrAlreadyAdmin     = errors.New("user is already an admin")
	ErrInvalidStatus    = errors.New("invalid user status")
)
