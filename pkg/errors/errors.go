// Package errors provides structured error types for simplecmr.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and proxy server
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes fall into a few categories:
//   - Validation (OUT_OF_RANGE, INVALID_*): raised while building a query,
//     always before any network call
//   - HTTP_REQUEST: a search request failed or returned a non-200 status
//   - EMPTY_RESULT: a tabular view was requested over zero items
//   - MISSING_URL: a granule has no direct data-access link
//
// # Usage
//
//	err := errors.New(errors.ErrCodeOutOfRange, "max results %d not in [1, 2000]", n)
//	if errors.Is(err, errors.ErrCodeOutOfRange) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidSpatialExtent, cause, "bad coordinate %q", s)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Validation errors
	ErrCodeInvalidInput           Code = "INVALID_INPUT"
	ErrCodeOutOfRange             Code = "OUT_OF_RANGE"
	ErrCodeInvalidProcessingLevel Code = "INVALID_PROCESSING_LEVEL"
	ErrCodeInvalidSpatialExtent   Code = "INVALID_SPATIAL_EXTENT"
	ErrCodeInvalidDateFormat      Code = "INVALID_DATE_FORMAT"
	ErrCodeInvalidPath            Code = "INVALID_PATH"

	// Request errors
	ErrCodeHTTPRequest Code = "HTTP_REQUEST"

	// Result errors
	ErrCodeEmptyResult Code = "EMPTY_RESULT"
	ErrCodeMissingURL  Code = "MISSING_URL"
	ErrCodeInvalidURL  Code = "INVALID_URL"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

var validationCodes = map[Code]bool{
	ErrCodeInvalidInput:           true,
	ErrCodeOutOfRange:             true,
	ErrCodeInvalidProcessingLevel: true,
	ErrCodeInvalidSpatialExtent:   true,
	ErrCodeInvalidDateFormat:      true,
	ErrCodeInvalidPath:            true,
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
// It unwraps the error chain looking for an *Error or *RequestError with a
// matching code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error carries no code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var re *RequestError
	if errors.As(err, &re) {
		return re.Code()
	}
	return ""
}

// IsValidation reports whether err is one of the query validation errors.
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

// RequestError reports a failed search request: either a transport failure
// (StatusCode is 0 and Cause is set) or a non-200 response.
type RequestError struct {
	URL        string // Full request URL including the query string
	StatusCode int    // HTTP status, 0 for transport failures
	Cause      error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("request %q failed: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("request %q returned status %d", e.URL, e.StatusCode)
}

// Unwrap returns the underlying cause.
func (e *RequestError) Unwrap() error { return e.Cause }

// Code returns the error code for this error type.
func (e *RequestError) Code() Code {
	return ErrCodeHTTPRequest
}
