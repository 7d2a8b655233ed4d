// Package persistence provides standardized error types for storage
// operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrDealNotFound indicates a deal was not found by the given identifier.
	ErrDealNotFound = errors.New("deal not found")

	// ErrDealAlreadyExists indicates a deal with the same identifier already exists.
	ErrDealAlreadyExists = errors.New("deal already exists")

	// ErrConcurrentModification indicates the deal was modified since it was
	// loaded; the caller must reload and retry.
	ErrConcurrentModification = errors.New("deal modified concurrently")

	// ErrInvalidDealStatus indicates an invalid deal status was provided.
	ErrInvalidDealStatus = errors.New("invalid deal status")

	// ErrInvalidSortField indicates an unsupported sort field was requested.
	ErrInvalidSortField = errors.New("invalid sort field")
)

// DealError wraps deal storage errors with additional context.
type DealError struct {
	Op      string // Operation being performed (e.g., "GetByID", "Save", "Delete")
	DealID  string // Deal ID if applicable
	Err     error  // Underlying error
	Message string // Additional context message
}

func (e *DealError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s operation failed for deal %s: %s (%v)", e.Op, e.DealID, e.Message, e.Err)
	}

	return fmt.Sprintf("%s operation failed for deal %s: %v", e.Op, e.DealID, e.Err)
}

func (e *DealError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for deal errors.
func (e *DealError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewDealError creates a new deal error with context.
func NewDealError(op, dealID string, err error) *DealError {
	return &DealError{
		Op:     op,
		DealID: dealID,
		Err:    err,
	}
}

// IsDealNotFound checks if an error indicates a deal was not found.
func IsDealNotFound(err error) bool {
	return errors.Is(err, ErrDealNotFound)
}

// IsDealAlreadyExists checks if an error indicates a duplicate deal id.
func IsDealAlreadyExists(err error) bool {
	return errors.Is(err, ErrDealAlreadyExists)
}

// IsConcurrentModification checks if an error indicates an optimistic
// concurrency conflict.
func IsConcurrentModification(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// IsInvalidSortField checks if an error indicates a bad sort field.
func IsInvalidSortField(err error) bool {
	return errors.Is(err, ErrInvalidSortField)
}
