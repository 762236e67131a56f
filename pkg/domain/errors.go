package domain

import (
	"errors"
	"fmt"
)

// Common domain errors. Each maps to exactly one HTTP status; the mapping
// lives with the handlers so the sentinels stay transport-agnostic.
var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrMethodNotAllowed     = errors.New("method not allowed")
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrMalformedJSON        = errors.New("malformed JSON body")
	ErrValidationFailed     = errors.New("validation failed")
	ErrUpstreamTimeout      = errors.New("upstream request timed out")
	ErrConfigInvalid        = errors.New("invalid configuration")
)

// ValidationError carries a client-facing message describing what was wrong
// with the input. It unwraps to ErrValidationFailed so callers can map it to
// a status code without inspecting the text.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrorResponse is the JSON error body returned to clients. Detail is only
// populated for client-input failures and bounded upstream diagnostics;
// security-sensitive failures (auth, configuration) stay generic.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
