package errs

import (
	"strings"
)

// HTTPError is the custom error type for API responses.
//
// Code and Status drive logging and the response status line; only Message
// and Detail are serialized.
type HTTPError struct {
	Code    string `json:"-"`
	Status  int    `json:"-"`
	Message string `json:"message"`

	// Detail carries the raw store error string for 5xx responses.
	Detail string `json:"error,omitempty"`

	// cause is the original error, kept for logs and errors.Unwrap.
	cause error
}

// Error returns the client message, with the detail when present.
func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

// Unwrap exposes the original error to errors.Is/As.
func (e *HTTPError) Unwrap() error {
	return e.cause
}

// Is matches any *HTTPError regardless of its fields.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of e with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:    e.Code,
		Status:  e.Status,
		Message: message,
		Detail:  e.Detail,
		cause:   e.cause,
	}
}

// MakeUpperCaseWithUnderscores converts "Not Found" into "NOT_FOUND".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
