package domain

import (
	"errors"
	"fmt"
)

// Application error codes.
// These map to HTTP status codes and determine user-facing messages.
const (
	ECONFLICT     = "conflict"         // 409 - Resource conflict
	EINTERNAL     = "internal"         // 500 - Internal server error (hide details)
	EINVALID      = "invalid"          // 400 - Validation error (bad input)
	ENOTFOUND     = "not_found"        // 404 - Resource not found
	EUNAUTHORIZED = "unauthorized"     // 401 - Authentication required
	EPAYMENT      = "payment_required" // 402 - Payment failed or required
	ERATELIMIT    = "rate_limit"       // 429 - Too many requests
)

// Error represents an application error with a code and message.
// It implements the error interface and supports error wrapping.
type Error struct {
	// Code is a machine-readable error code (e.g., EINVALID, ENOTFOUND).
	Code string

	// Message is a human-readable error message safe to show to users.
	Message string

	// Op is the operation where the error occurred (e.g., "order.validate").
	// Used for debugging and logging, not shown to users.
	Op string

	// Err is the underlying error, if any. Used for error wrapping.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		if e.Op != "" {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap implements error unwrapping for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode extracts the error code from an error.
// Returns EINTERNAL for nil or non-domain errors.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	var re *RejectionError
	if errors.As(err, &re) {
		return EINVALID
	}

	return EINTERNAL
}

// ErrorMessage extracts a user-facing message from an error.
// For internal errors, returns a generic message to avoid leaking details.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		if e.Code == EINTERNAL {
			return "An internal error occurred. Please try again later."
		}
		return e.Message
	}

	var re *RejectionError
	if errors.As(err, &re) {
		return re.Error()
	}

	return "An internal error occurred. Please try again later."
}

// Errorf creates a new domain error with formatted message.
// Example: domain.Errorf(domain.EINVALID, "order.validate", "unknown product: %s", id)
func Errorf(code, op, format string, args ...interface{}) error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError wraps an existing error with a domain error code and operation.
// Preserves the underlying error for logging while providing structure.
// Returns nil if err is nil.
func WrapError(err error, code, op, message string) error {
	if err == nil {
		return nil
	}

	return &Error{
		Code:    code,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// IsCode returns true if err has the given error code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// =============================================================================
// Order rejections (multi-basis validation failures)
// =============================================================================

// Rejection is a single validation failure, attached to the field or
// cart item it concerns.
type Rejection struct {
	// Field names the offending input, e.g. "cartItems[2].unitPrice"
	// or "shippingMethodId".
	Field string `json:"field"`

	// Reason is a human-readable description of the mismatch.
	Reason string `json:"reason"`
}

// RejectionError carries every validation failure found in an order
// request. Validation never stops at the first problem; callers are
// expected to surface the complete list at once.
type RejectionError struct {
	// Op is the operation where validation failed.
	Op string

	// Rejections lists every offending field or item, in input order.
	Rejections []Rejection
}

// Error implements the error interface.
func (e *RejectionError) Error() string {
	if len(e.Rejections) == 1 {
		r := e.Rejections[0]
		if e.Op != "" {
			return fmt.Sprintf("%s: %s: %s", e.Op, r.Field, r.Reason)
		}
		return fmt.Sprintf("%s: %s", r.Field, r.Reason)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: order rejected on %d grounds", e.Op, len(e.Rejections))
	}
	return fmt.Sprintf("order rejected on %d grounds", len(e.Rejections))
}

// Add appends a rejection for a field.
func (e *RejectionError) Add(field, format string, args ...interface{}) {
	e.Rejections = append(e.Rejections, Rejection{
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	})
}

// Any reports whether at least one rejection was recorded.
func (e *RejectionError) Any() bool {
	return len(e.Rejections) > 0
}

// IsRejection returns true if err is a RejectionError.
func IsRejection(err error) bool {
	var re *RejectionError
	return errors.As(err, &re)
}

// RejectionsFrom extracts the rejection list from an error.
// Returns nil if err is not a RejectionError.
func RejectionsFrom(err error) []Rejection {
	var re *RejectionError
	if errors.As(err, &re) {
		return re.Rejections
	}
	return nil
}

// =============================================================================
// Common errors (convenience)
// =============================================================================

// NotFound creates a not found error for a resource.
// Example: domain.NotFound("catalog.lookup", "product", productID)
func NotFound(op, resource, identifier string) error {
	return &Error{
		Code:    ENOTFOUND,
		Op:      op,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
	}
}

// Unauthorized creates an unauthorized error.
// Example: domain.Unauthorized("webhook.verify", "invalid signature")
func Unauthorized(op, message string) error {
	return &Error{
		Code:    EUNAUTHORIZED,
		Op:      op,
		Message: message,
	}
}

// Invalid creates a validation error for a single issue.
func Invalid(op, message string) error {
	return &Error{
		Code:    EINVALID,
		Op:      op,
		Message: message,
	}
}

// Internal creates an internal error (wraps underlying error).
// The message shown to users will be generic; the underlying error is for logging.
func Internal(err error, op, message string) error {
	return &Error{
		Code:    EINTERNAL,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
