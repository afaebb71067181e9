package errs

import (
	"net/http"

	"github.com/pkg/errors"
)

func newHTTPError(status int, message string) *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(status)),
		Status:  status,
		Message: message,
	}
}

// NewNotFoundError creates a 404 carrying only a fixed message.
func NewNotFoundError(message string) *HTTPError {
	return newHTTPError(http.StatusNotFound, message)
}

// NewBadRequestError creates a 400. err, when non-nil, is reported as the
// detail.
func NewBadRequestError(message string, err error) *HTTPError {
	e := newHTTPError(http.StatusBadRequest, message)
	if err != nil {
		e.Detail = err.Error()
		e.cause = err
	}
	return e
}

// NewStoreError creates a 500 for a failure surfaced by the document store.
//
// The detail is the root cause's message, unwrapped from any stack or
// context wrappers, so clients see the driver's own text.
func NewStoreError(message string, err error) *HTTPError {
	e := newHTTPError(http.StatusInternalServerError, message)
	e.Code = "STORE_FAILURE"
	if err != nil {
		e.Detail = errors.Cause(err).Error()
		e.cause = err
	}
	return e
}

// NewTooManyRequestsError creates a 429.
func NewTooManyRequestsError(message string) *HTTPError {
	return newHTTPError(http.StatusTooManyRequests, message)
}

// NewInternalServerError creates a generic 500 that leaks nothing.
func NewInternalServerError() *HTTPError {
	return newHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// ValidationError converts a validation failure into a 400.
func ValidationError(err error) *HTTPError {
	return NewBadRequestError("Validation failed", err)
}
