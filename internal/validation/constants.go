package validation

import "regexp"

const (
	// Password requirements
	MinPasswordLength = 8
	MaxPasswordLength = 72

	// String lengths
	MaxNameLength        = 100
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxReasonLength      = 500

	// Amount limits
	MaxTradeAmount = 1_000_000_000
	MaxPrice       = 10_000_000
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
