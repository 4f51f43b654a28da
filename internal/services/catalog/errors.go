package catalog

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidStock    = errors.New("stock must not be negative")
)
