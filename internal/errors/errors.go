// Package errors defines stable error codes for all reqmap failure modes.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// AnchorNotFound indicates a Replace/InsertAfter/InsertBefore target could not be located
	AnchorNotFound ErrorCode = "ANCHOR_NOT_FOUND"
	// ValidationConflict indicates mutually exclusive operations requested for one file
	ValidationConflict ErrorCode = "VALIDATION_CONFLICT"
	// ProposalNotConfirmed indicates the applier was invoked on an unconfirmed proposal
	ProposalNotConfirmed ErrorCode = "PROPOSAL_NOT_CONFIRMED"
	// IOFailure indicates a filesystem write/create/delete failed
	IOFailure ErrorCode = "IO_FAILURE"
	// IndexMissing indicates the code index could not be found or loaded
	IndexMissing ErrorCode = "INDEX_MISSING"
	// RequirementInvalid indicates the requirement document could not be parsed
	RequirementInvalid ErrorCode = "REQUIREMENT_INVALID"
	// ProposalInvalid indicates a malformed change proposal document
	ProposalInvalid ErrorCode = "PROPOSAL_INVALID"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// MapError represents a reqmap error with a stable code and optional cause
type MapError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new MapError
func New(code ErrorCode, message string) *MapError {
	return &MapError{Code: code, Message: message}
}

// Wrap creates a new MapError wrapping an underlying cause
func Wrap(code ErrorCode, message string, cause error) *MapError {
	return &MapError{Code: code, Message: message, cause: cause}
}

// Newf creates a new MapError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *MapError {
	return &MapError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface
func (e *MapError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *MapError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *MapError) WithDetails(details interface{}) *MapError {
	e.Details = details
	return e
}

// CodeOf returns the ErrorCode carried by err, or InternalError for
// errors that did not originate in this package.
func CodeOf(err error) ErrorCode {
	var me *MapError
	if errors.As(err, &me) {
		return me.Code
	}
	return InternalError
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	var me *MapError
	if errors.As(err, &me) {
		return me.Code == code
	}
	return false
}
