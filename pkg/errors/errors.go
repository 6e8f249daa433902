// Package errors provides structured error types for nestlayout.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP server
//   - Machine-readable error codes for programmatic handling
//   - Diagnostic context (the offending JSON fragment) for malformed input
//
// # Error Codes
//
// Codes fall into three groups:
//   - Input errors: USAGE, INVALID_INPUT, MISSING_ID, UNKNOWN_PORT, INVALID_CONFIG
//   - Invariant violations: LAYOUT_MISMATCH
//   - Collaborator failures: ENGINE, INTERNAL_ERROR
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMissingID, "missing node ID").WithFragment(node)
//	if errors.Is(err, errors.ErrCodeMissingID) {
//	    // Handle malformed input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeEngine, origErr, "layout %s", id)
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeUsage         Code = "USAGE"
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeMissingID     Code = "MISSING_ID"
	ErrCodeUnknownPort   Code = "UNKNOWN_PORT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Invariant violations
	ErrCodeLayoutMismatch Code = "LAYOUT_MISMATCH"

	// Collaborator and internal errors
	ErrCodeEngine   Code = "ENGINE"
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code     Code   // Machine-readable error code
	Message  string // Human-readable message
	Cause    error  // Underlying error (optional)
	Fragment string // Offending JSON fragment (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Fragment != "" {
		msg += "\n" + e.Fragment
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithFragment attaches the pretty-printed JSON encoding of v.
// Values that cannot be encoded are formatted with %v.
func (e *Error) WithFragment(v any) *Error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		e.Fragment = fmt.Sprintf("%v", v)
		return e
	}
	e.Fragment = string(data)
	return e
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

// GetFragment returns the JSON fragment attached to the first *Error in the chain.
func GetFragment(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fragment
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

// IsClientError reports whether err was caused by the caller's input
// rather than by the engine or an internal inconsistency.
func IsClientError(err error) bool {
	switch GetCode(err) {
	case ErrCodeUsage, ErrCodeInvalidInput, ErrCodeMissingID, ErrCodeUnknownPort, ErrCodeInvalidConfig:
		return true
	}
	return false
}
