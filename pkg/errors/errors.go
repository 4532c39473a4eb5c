// Package errors provides structured error types for mysterygraph.
//
// Codes are shared by the CLI and the HTTP API so that a failure reads the
// same in a terminal and in a JSON response.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *NOT_FOUND: Resource not found
//   - NETWORK_*: Network-related errors
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidFormat) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStorage, origErr, "save %s", id)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidEngine   Code = "INVALID_ENGINE"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeInvalidName     Code = "INVALID_NAME"
	ErrCodeInvalidDocument Code = "INVALID_DOCUMENT"
	ErrCodeSchemaViolation Code = "SCHEMA_VIOLATION"

	// Document semantics
	ErrCodeFindings     Code = "SEMANTIC_FINDINGS"
	ErrCodeInconsistent Code = "INCONSISTENT_GRAPH"

	// Resource not found errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeDocumentNotFound Code = "DOCUMENT_NOT_FOUND"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Backend errors
	ErrCodeStorage Code = "STORAGE_ERROR"
	ErrCodeNotify  Code = "NOTIFY_ERROR"

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
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error code to the status the API answers with.
// Unknown codes and plain errors map to 500.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidEngine,
		ErrCodeInvalidPath, ErrCodeInvalidName:
		return http.StatusBadRequest
	case ErrCodeInvalidDocument, ErrCodeSchemaViolation, ErrCodeFindings:
		return http.StatusUnprocessableEntity
	case ErrCodeNotFound, ErrCodeDocumentNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeNetwork, ErrCodeNotify:
		return http.StatusBadGateway
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
