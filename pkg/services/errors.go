// Package services provides the deal CRUD service and its error
// taxonomy. Stage and status transitions are not here: those belong to
// the workflow engine.
package services

import (
	"errors"
	"fmt"
)

// Business logic errors indicating client mistakes (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest        = errors.New("invalid request")
	ErrInvalidSortField      = errors.New("invalid sort field")
	ErrInvalidSortOrder      = errors.New("invalid sort order")
	ErrInvalidDealType       = errors.New("invalid deal type")
	ErrInvalidStatus         = errors.New("invalid deal status")
	ErrInvalidRole           = errors.New("invalid participant role")
	ErrInvalidDocumentStatus = errors.New("invalid document status")
	ErrInvalidTerms          = errors.New("terms do not satisfy the deal type schema")
	ErrEmptyOwnerID          = errors.New("owner ID cannot be empty")
	ErrCommentRequired       = errors.New("comment text is required")

	// Not-found errors (404).
	ErrDocumentNotFound = errors.New("document not found")

	// Business logic conflicts (409 Conflict).
	ErrDealTerminal         = errors.New("cannot modify a deal in a terminal state")
	ErrDuplicateParticipant = errors.New("participant already holds this role")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidSortField) ||
		errors.Is(err, ErrInvalidSortOrder) ||
		errors.Is(err, ErrInvalidDealType) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidRole) ||
		errors.Is(err, ErrInvalidDocumentStatus) ||
		errors.Is(err, ErrInvalidTerms) ||
		errors.Is(err, ErrEmptyOwnerID) ||
		errors.Is(err, ErrCommentRequired)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrDealTerminal) ||
		errors.Is(err, ErrDuplicateParticipant)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
