package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a burner error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"  // 404
	ErrCancelled      ErrorCode = "CANCELLED"       // 499
	ErrStore          ErrorCode = "STORE_ERROR"     // 500
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// BurnerError represents a structured error with code, status, and details.
type BurnerError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	// Err is the underlying cause, if any. It is never shown to clients.
	Err error
}

// Error implements the error interface.
func (e *BurnerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *BurnerError) Unwrap() error {
	return e.Err
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *BurnerError {
	return &BurnerError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when no record exists for a day.
func NewNotFound(day string) *BurnerError {
	return &BurnerError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("no entry for %s", day),
		Details: map[string]any{"date": day},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *BurnerError {
	return &BurnerError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewCancelled creates a 499 error when an operation is interrupted by its context.
func NewCancelled(op string) *BurnerError {
	return &BurnerError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
		Details: map[string]any{"operation": op},
	}
}

// NewStore wraps a persistence failure from the database engine.
// op names the store operation that failed (e.g. "update_or_create").
func NewStore(op string, err error) *BurnerError {
	msg := op + " failed"
	if err != nil {
		msg = fmt.Sprintf("%s failed: %v", op, err)
	}
	return &BurnerError{
		Code:    ErrStore,
		Status:  500,
		Message: msg,
		Details: map[string]any{"operation": op},
		Err:     err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *BurnerError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &BurnerError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Err:     err,
	}
}

// Is checks if an error is (or wraps) a BurnerError with the given code.
func Is(err error, code ErrorCode) bool {
	var bErr *BurnerError
	if stderrors.As(err, &bErr) {
		return bErr.Code == code
	}
	return false
}

// As extracts a BurnerError from err, converting any other error to INTERNAL.
func As(err error) *BurnerError {
	var bErr *BurnerError
	if stderrors.As(err, &bErr) {
		return bErr
	}
	return NewInternal(err)
}
