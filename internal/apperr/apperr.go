// Package apperr defines the API error taxonomy. Every failure that reaches a
// client is one of these; anything else is wrapped as an internal error with a
// generic message so upstream detail never leaks into responses.
package apperr

import (
	"errors"
	"fmt"
)

// Error is a client-visible API error. The JSON shape is the wire contract:
// {"message": "..."}. Detail carries server-side context for logs and is
// never serialized.
type Error struct {
	Code    Code   `json:"-"`
	Message string `json:"message"`
	Detail  string `json:"-"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code Code, message string) *Error {
	return &Error{Code: code, Message: message, Status: code.StatusCode()}
}

// Validation creates a VALIDATION_ERROR rejected before any mutation.
func Validation(message string) *Error {
	return newError(CodeValidation, message)
}

// NotFound creates a NOT_FOUND error for the named resource.
func NotFound(resource string) *Error {
	return newError(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// Forbidden creates a FORBIDDEN error; the entity is left untouched.
func Forbidden(message string) *Error {
	return newError(CodeForbidden, message)
}

// Conflict creates a CONFLICT error for the named resource.
func Conflict(resource string) *Error {
	return newError(CodeConflict, fmt.Sprintf("%s already exists", resource))
}

// Upstream creates an UPSTREAM_UNAVAILABLE error for a third-party provider.
// The provider's own error text stays out of the message: it is logged
// server-side, not returned.
func Upstream(service string) *Error {
	return newError(CodeUpstream, fmt.Sprintf("%s is temporarily unavailable", service))
}

// Internal creates an INTERNAL_ERROR with a generic message.
func Internal(message string) *Error {
	return newError(CodeInternal, message)
}

// WithDetail attaches server-side detail. It surfaces through Error() into
// logs and stays out of the response body.
func (e *Error) WithDetail(detail string) *Error {
	e.Detail = detail
	return e
}

// From normalizes any error into an *Error. Known API errors pass through;
// everything else becomes a generic internal error.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal("unexpected server error")
}
