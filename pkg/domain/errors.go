package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an application error so transports can map it to a status.
type ErrorCode string

const (
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeConflict     ErrorCode = "CONFLICT"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeInvalidState ErrorCode = "INVALID_STATE"

	// Booking engine codes.
	CodeInvalidRange  ErrorCode = "INVALID_RANGE"
	CodePastDate      ErrorCode = "PAST_DATE"
	CodeDateConflict  ErrorCode = "DATE_CONFLICT"
	CodeInvalidStatus ErrorCode = "INVALID_STATUS"
	CodeInvalidPeriod ErrorCode = "INVALID_PERIOD"
)

// AppError is the error type returned by domain and application code.
type AppError struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is an *AppError with the same code.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// New creates an AppError with an arbitrary code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NewValidationError creates a VALIDATION_ERROR.
func NewValidationError(message string) *AppError {
	return New(CodeValidation, message)
}

// NewNotFoundError creates a NOT_FOUND error for the given entity and identifier.
func NewNotFoundError(entity, id string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s with id %s not found", entity, id))
}

// NewConflictError creates a CONFLICT error.
func NewConflictError(message string) *AppError {
	return New(CodeConflict, message)
}

// NewForbiddenError creates a FORBIDDEN error.
func NewForbiddenError(message string) *AppError {
	return New(CodeForbidden, message)
}

// NewInvalidStateError creates an INVALID_STATE error for a rejected transition.
func NewInvalidStateError(from, to string) *AppError {
	return New(CodeInvalidState, fmt.Sprintf("cannot transition from %s to %s", from, to))
}

// CodeOf extracts the code of an AppError anywhere in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
