// Package httperr defines the error taxonomy returned to API callers.
// Every failure carries a stable kind plus a human-readable message;
// handlers map store sentinel errors into this taxonomy at the edge.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of API error kinds.
type Kind string

const (
	KindUnauthenticated   Kind = "unauthenticated"
	KindInvalidCredential Kind = "invalid_credential"
	KindForbidden         Kind = "forbidden"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindInvalidState      Kind = "invalid_state"
	KindValidation        Kind = "validation_error"
	KindInternal          Kind = "internal"
)

// Error is an API error with a taxonomy kind. It wraps the underlying cause
// for logging; only Kind and Message are serialized to the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that records the underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Internal wraps an unexpected failure. The caller sees a generic message;
// the cause stays in the logs.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// From extracts an *Error from err, wrapping unknown errors as internal.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(err)
}

// Status maps an error kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case KindUnauthenticated, KindInvalidCredential:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalidState:
		return http.StatusUnprocessableEntity
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
