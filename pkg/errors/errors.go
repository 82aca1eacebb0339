// Package errors provides structured error types for edgepersist.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the library packages
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The codes split into two groups. Fatal codes abort a run:
//   - CATALOG_ERROR: the snapshot listing could not be read
//   - INDEX_BUILD_ERROR: the reference edges are malformed
//   - LOAD_ERROR (reference snapshot only)
//   - NAME_BACKEND_ERROR: the name store itself failed
//
// Recoverable codes are reported and skipped:
//   - LOAD_ERROR (comparison snapshots)
//   - NAME_RESOLUTION_MISS: a vertex id has no external name
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "buckets must be positive, got %d", b)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeLoad, origErr, "load snapshot %s", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Snapshot processing errors
	ErrCodeCatalog        Code = "CATALOG_ERROR"
	ErrCodeLoad           Code = "LOAD_ERROR"
	ErrCodeIndexBuild     Code = "INDEX_BUILD_ERROR"
	ErrCodeNameResolution Code = "NAME_RESOLUTION_MISS"
	ErrCodeNameBackend    Code = "NAME_BACKEND_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

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

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message and its causes without code prefixes.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + UserMessage(e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// Fatal reports whether err must abort a run rather than skip a single snapshot.
// A LOAD_ERROR is only fatal when the caller says it concerns the reference snapshot.
func Fatal(err error, reference bool) bool {
	switch GetCode(err) {
	case ErrCodeCatalog, ErrCodeIndexBuild, ErrCodeNameBackend:
		return true
	case ErrCodeLoad:
		return reference
	case ErrCodeNameResolution:
		return false
	}
	return err != nil
}
