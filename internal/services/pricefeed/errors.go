package pricefeed

import "errors"

var (
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrPriceUnavailable    = errors.New("price unavailable")
	ErrInvalidAmount       = errors.New("amount must be positive")
)
