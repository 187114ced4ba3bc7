// Package errors provides structured error types for the cancerflow application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the dashboard server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_* / INSUFFICIENT_* / UNKNOWN_* / DUPLICATE_*: request validation failures
//   - *_NOT_FOUND: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// Validation errors are scoped to a single diagram request. The dashboard
// reports them to the user and keeps the previously rendered diagram.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownColumn, "unknown column: %s", name)
//	if errors.Is(err, errors.ErrCodeUnknownColumn) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeFileNotFound, origErr, "open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Request validation errors
	ErrCodeInsufficientLayers Code = "INSUFFICIENT_LAYERS"
	ErrCodeUnknownColumn      Code = "UNKNOWN_COLUMN"
	ErrCodeDuplicateLayer     Code = "DUPLICATE_LAYER"
	ErrCodeInvalidThreshold   Code = "INVALID_THRESHOLD"
	ErrCodeInvalidDimension   Code = "INVALID_DIMENSION"
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeInvalidPath        Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// validationCodes are the codes that describe a bad request rather than a
// failure of the system itself.
var validationCodes = map[Code]bool{
	ErrCodeInsufficientLayers: true,
	ErrCodeUnknownColumn:      true,
	ErrCodeDuplicateLayer:     true,
	ErrCodeInvalidThreshold:   true,
	ErrCodeInvalidDimension:   true,
	ErrCodeInvalidInput:       true,
	ErrCodeInvalidFormat:      true,
	ErrCodeInvalidPath:        true,
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsValidation reports whether err carries one of the request validation codes.
func IsValidation(err error) bool {
	return validationCodes[GetCode(err)]
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
