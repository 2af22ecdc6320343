// Package dErrors provides code-carrying domain errors.
//
// Services build errors with New/Wrap and a Code; the HTTP layer maps codes
// to status lines with ToHTTPStatus. Callers branch on codes with HasCode
// rather than string matching.
package dErrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	// CodePermissionDenied: actor has the wrong role or does not own the
	// resource it is trying to mutate.
	CodePermissionDenied Code = "permission_denied"
	// CodeNotEligible: actor has the right role but is gated out by vetting.
	CodeNotEligible Code = "not_eligible"
	// CodeInvalidTransition: lifecycle guard failed, the request is not in
	// the status the command expects.
	CodeInvalidTransition Code = "invalid_transition"
	// CodeConflict: lost a concurrent race (or uniqueness violation).
	CodeConflict Code = "conflict"
	// CodeNotFound: entity does not exist.
	CodeNotFound Code = "not_found"
	// CodeValidation: malformed or out-of-range input.
	CodeValidation Code = "validation"

	CodeUnauthorized Code = "unauthorized"
	CodeBadRequest   Code = "bad_request"
	CodeTimeout      Code = "timeout"
	CodeInternal     Code = "internal"
)

// Error is a domain error with a classification code and a user-safe message.
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

// New creates a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap annotates an underlying error with a domain code. The cause stays
// reachable through errors.Unwrap for logging; only Message is user-visible.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the user-safe message from err. Unknown errors get a
// generic message so internals never leak to clients.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a domain code to an HTTP status code.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodePermissionDenied, CodeNotEligible:
		return http.StatusForbidden
	case CodeInvalidTransition, CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
