package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrOutOfRange      = errors.New("out_of_range")
	ErrUnknownLocale   = errors.New("unknown_locale")
	ErrUnknownCurrency = errors.New("unknown_currency")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
