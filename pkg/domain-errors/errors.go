// Package dErrors defines coded domain errors shared by services and transports.
//
// Services return these so handlers can translate them into HTTP statuses
// without string matching. Stores return sentinel errors (pkg/platform/sentinel)
// instead; the service layer owns the translation.
package dErrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping and retry decisions.
type Code string

const (
	// CodeValidation marks malformed domain input (non-positive quantity,
	// mismatched split quantities, empty event id, ...).
	CodeValidation Code = "validation"
	// CodeInvalidInput marks malformed raw input at a trust boundary (bad UUID).
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest marks an unparseable or structurally wrong request.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound marks a missing referenced entity.
	CodeNotFound Code = "not_found"
	// CodeUnauthorized marks a missing or invalid identity.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks an identity that lacks ownership or a required role.
	CodeForbidden Code = "forbidden"
	// CodeConflict marks a state precondition failure (lot not available,
	// payment not settled, duplicate active taxation).
	CodeConflict Code = "conflict"
	// CodeInvariantViolation marks a broken model invariant; surfaces as an
	// internal error unless a service downgrades it deliberately.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeTimeout marks a cancelled or deadline-exceeded operation.
	CodeTimeout Code = "timeout"
	// CodeInternal marks everything the caller cannot act on.
	CodeInternal Code = "internal"
)

// Error is a coded domain error, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a coded error with no cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. A nil cause yields nil.
func Wrap(cause error, code Code, message string) error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: cause}
}

// CodeOf extracts the code from err, walking the wrap chain.
// Uncoded errors report CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Has is an alias for Is kept for call-site readability.
func Has(err error, code Code) bool { return Is(err, code) }

// HasCode is an alias for Is kept for call-site readability.
func HasCode(err error, code Code) bool { return Is(err, code) }
