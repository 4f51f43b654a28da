package user

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrSelfRequest      = errors.New("cannot send a friend request to yourself")
	ErrRequestExists    = errors.New("friend request already sent")
	ErrAlreadyFriends   = errors.New("already friends")
	ErrRequestNotFound  = errors.New("friend request not found")
	ErrNotRecipient     = errors.New("only the recipient can respond to this request")
	ErrAlreadyResponded = errors.New("friend request was already answered")
)
