package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the typed error carried across service and handler layers.
// Code is a stable machine-readable identifier, Status the HTTP status
// the handler should render.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code, message string, status int) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

// Wrap builds a typed error around an underlying cause.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Message: message, Status: status, Err: err}
}

// Clone returns a copy of the typed error with a different message.
func Clone(base *Error, message string) *Error {
	clone := *base
	clone.Message = message
	return &clone
}

// FromError normalizes any error into a typed one. Unknown errors become
// ErrInternal with the cause preserved.
func FromError(err error) *Error {
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

var (
	ErrValidation         = New("VALIDATION_ERROR", "invalid request payload", http.StatusBadRequest)
	ErrUnauthorized       = New("UNAUTHORIZED", "authentication required", http.StatusUnauthorized)
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", "invalid email or password", http.StatusUnauthorized)
	ErrAccountUnconfirmed = New("ACCOUNT_UNCONFIRMED", "email address not confirmed", http.StatusForbidden)
	ErrForbidden          = New("FORBIDDEN", "insufficient permissions", http.StatusForbidden)
	ErrNotFound           = New("NOT_FOUND", "resource not found", http.StatusNotFound)
	ErrConflict           = New("CONFLICT", "resource already exists", http.StatusConflict)
	ErrPreconditionFailed = New("PRECONDITION_FAILED", "precondition failed", http.StatusPreconditionFailed)
	ErrInternal           = New("INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)

	// ErrCacheMiss is internal to the cache layer and never rendered.
	ErrCacheMiss = New("CACHE_MISS", "cache key not found", http.StatusInternalServerError)
)
