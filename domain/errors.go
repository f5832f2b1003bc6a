package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across layers.
type ErrorCode string

const (
	ErrCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrCodeInvalid        ErrorCode = "INVALID"
	ErrCodeStorage        ErrorCode = "STORAGE"
	ErrCodeGatewayConfig  ErrorCode = "GATEWAY_CONFIG"
	ErrCodeGatewayRequest ErrorCode = "GATEWAY_REQUEST"
	ErrCodeInternal       ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrTaskNotFound        = NewError(ErrCodeNotFound, "task not found")
	ErrEmptyTitle          = NewError(ErrCodeInvalid, "task title cannot be empty")
	ErrEmptySubtask        = NewError(ErrCodeInvalid, "subtask text cannot be empty")
	ErrSubtaskOutOfRange   = NewError(ErrCodeInvalid, "subtask index out of range")
	ErrInvalidColumn       = NewError(ErrCodeInvalid, "unknown board column")
	ErrInvalidPriority     = NewError(ErrCodeInvalid, "unknown priority")
	ErrInvalidCategory     = NewError(ErrCodeInvalid, "unknown category")
	ErrUndoExpired         = NewError(ErrCodeInvalid, "undo window has expired")
	ErrGatewayUnconfigured = NewError(ErrCodeGatewayConfig, "AI backend endpoint is not configured")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
