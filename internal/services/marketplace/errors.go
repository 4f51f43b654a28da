package marketplace

import "errors"

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrNotOwner        = errors.New("only the seller or an admin can change this listing")
	ErrInvalidStatus   = errors.New("invalid listing status")
)
