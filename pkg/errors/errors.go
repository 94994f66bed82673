package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by services, repositories and the HTTP envelope.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeConfiguration   = "CONFIGURATION_ERROR"
	CodePersistence     = "PERSISTENCE_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeForbidden       = "FORBIDDEN"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeInternal        = "INTERNAL_ERROR"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Status  int      `json:"status"`
	Fields  []string `json:"fields,omitempty"`
	Err     error    `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches two errors by code so clones and wraps of a predefined error
// still satisfy errors.Is against it.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrValidation      = New(CodeValidation, http.StatusBadRequest, "validation failed")
	ErrConfiguration   = New(CodeConfiguration, http.StatusInternalServerError, "service misconfigured")
	ErrPersistence     = New(CodePersistence, http.StatusInternalServerError, "document store operation failed")
	ErrNotFound        = New(CodeNotFound, http.StatusNotFound, "resource not found")
	ErrForbidden       = New(CodeForbidden, http.StatusForbidden, "forbidden")
	ErrTooManyRequests = New(CodeTooManyRequests, http.StatusTooManyRequests, "too many requests")
	ErrInternal        = New(CodeInternal, http.StatusInternalServerError, "internal server error")
	ErrCacheMiss       = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Validation builds a validation error listing the offending fields.
func Validation(message string, fields ...string) *Error {
	e := Clone(ErrValidation, message)
	if len(fields) > 0 {
		e.Fields = append([]string(nil), fields...)
	}
	return e
}

// Persistence wraps a store failure, keeping the cause for logs.
func Persistence(err error, message string) *Error {
	return Wrap(err, ErrPersistence.Code, ErrPersistence.Status, message)
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
