package interview

import (
	"errors"
	"fmt"
)

// ErrorCode classifies service failures for the transport layer.
type ErrorCode string

const (
	ErrorNotFound          ErrorCode = "SESSION_NOT_FOUND"
	ErrorInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrorInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrorUpstream          ErrorCode = "UPSTREAM_ERROR"
	ErrorInternal          ErrorCode = "INTERNAL_ERROR"
)

// Error is a typed service error carrying a machine-readable code.
type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("interview: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("interview: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// CodeOf extracts the ErrorCode from a service error, defaulting to
// ErrorInternal for untyped errors.
func CodeOf(err error) ErrorCode {
	var serviceErr *Error
	if errors.As(err, &serviceErr) {
		return serviceErr.Code
	}
	return ErrorInternal
}
