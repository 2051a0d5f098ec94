// Package errors provides error handling utilities.
package errors

import (
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeInput indicates an input validation error
	TypeInput Type = "INPUT_ERROR"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeAuthorization indicates the credential lacks a required role.
	// Fatal for the whole invocation: it will recur for every rule.
	TypeAuthorization Type = "AUTHORIZATION_ERROR"

	// TypeUnknownItem indicates an item identifier the storefront does not
	// know. Fatal for the owning rule only.
	TypeUnknownItem Type = "UNKNOWN_ITEM"

	// TypeTierLookup indicates a territory's tier ladder could not be
	// fetched. The territory is skipped; the rule continues.
	TypeTierLookup Type = "TIER_LOOKUP_UNAVAILABLE"

	// TypeTransient indicates a network or rate-limit failure that may
	// succeed on retry.
	TypeTransient Type = "TRANSIENT_TRANSPORT_ERROR"

	// TypeBatchWrite indicates the final batch price update was rejected.
	// The rule is marked failed; no partial application is assumed.
	TypeBatchWrite Type = "BATCH_WRITE_REJECTED"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *Error) Is(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType checks if an error is of a specific type, unwrapping as needed
func IsType(err error, t Type) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Type == t {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Input creates an input error
func Input(message string) *Error {
	return New(TypeInput, message)
}

// Authorization creates an authorization error
func Authorization(message string, cause error) *Error {
	return Wrap(TypeAuthorization, message, cause)
}

// UnknownItem creates an unknown item error
func UnknownItem(itemID string) *Error {
	return Newf(TypeUnknownItem, "item not found: %s", itemID).
		WithContext("item_id", itemID)
}

// TierLookup creates a tier lookup error for a territory
func TierLookup(territory string, cause error) *Error {
	return Wrapf(TypeTierLookup, cause, "tier ladder unavailable for territory %s", territory).
		WithContext("territory", territory)
}

// Transient creates a transient transport error
func Transient(message string, cause error) *Error {
	return Wrap(TypeTransient, message, cause)
}

// BatchWrite creates a batch write rejection error
func BatchWrite(itemID string, cause error) *Error {
	return Wrapf(TypeBatchWrite, cause, "batch price update rejected for item %s", itemID).
		WithContext("item_id", itemID)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
