// internal/pkg/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport-level mapping.
type Kind int

const (
	// KindValidation covers malformed input: missing cart items,
	// non-positive totals, malformed codes.
	KindValidation Kind = iota + 1

	// KindNotFound covers unknown product/category/discount/coupon IDs.
	KindNotFound

	// KindDataIntegrity covers corrupted records: cyclic category parent
	// chains, rules missing required fields for their kind.
	KindDataIntegrity

	// KindDependency covers failures of the backing stores.
	KindDependency

	// KindLimitExceeded covers exhausted usage limits and closed
	// redemption windows.
	KindLimitExceeded
)

// Error is the taxonomy error carried across domain boundaries.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a validation error.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// DataIntegrity creates a data-integrity error.
func DataIntegrity(format string, args ...interface{}) *Error {
	return &Error{Kind: KindDataIntegrity, Message: fmt.Sprintf(format, args...)}
}

// Dependency wraps a store failure.
func Dependency(message string, err error) *Error {
	return &Error{Kind: KindDependency, Message: message, Err: err}
}

// LimitExceeded creates a limit-exceeded error.
func LimitExceeded(format string, args ...interface{}) *Error {
	return &Error{Kind: KindLimitExceeded, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the taxonomy kind of err, or 0 when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsDataIntegrity reports whether err is a data-integrity error.
func IsDataIntegrity(err error) bool { return KindOf(err) == KindDataIntegrity }

// IsDependency reports whether err is a dependency error.
func IsDependency(err error) bool { return KindOf(err) == KindDependency }

// IsLimitExceeded reports whether err is a limit-exceeded error.
func IsLimitExceeded(err error) bool { return KindOf(err) == KindLimitExceeded }
