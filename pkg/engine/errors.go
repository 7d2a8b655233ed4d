package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Standard engine error kinds. Storage and concurrency failures are not
// redefined here: persistence errors propagate unchanged so the caller
// can distinguish "transition rejected" from "transition not applied".
var (
	// ErrInvalidTransition indicates the target stage is not reachable
	// from the current stage (adjacency violated, stage outside the
	// type's workflow, or a rollback to a non-preceding stage).
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrTerminalState indicates a mutation was attempted on a completed
	// or cancelled deal. There is no reactivation operation.
	ErrTerminalState = errors.New("deal is in a terminal state")

	// ErrDealNotActive indicates a stage transition or rollback was
	// attempted while the deal is pending or on hold.
	ErrDealNotActive = errors.New("deal is not active")

	// ErrNoPreviousStage indicates a rollback was attempted from the
	// first stage of the workflow.
	ErrNoPreviousStage = errors.New("no stage precedes the current stage")

	// ErrInvalidStatusChange indicates a status transition that is not
	// permitted, such as setting Completed directly.
	ErrInvalidStatusChange = errors.New("invalid status change")
)

// ValidationFailedError reports hard validation failures for a
// transition, carrying the full list of blocking errors together with
// the non-blocking warnings so callers can render both.
type ValidationFailedError struct {
	DealID           string
	ValidationErrors []string
	Warnings         []string
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("validation failed for deal %s: %s", e.DealID, strings.Join(e.ValidationErrors, "; "))
}

// TransitionError wraps engine errors with the operation and deal
// involved.
type TransitionError struct {
	Op      string // Operation being performed (e.g., "ApplyStage", "Rollback")
	DealID  string // Deal ID
	Err     error  // Underlying error kind
	Message string // Additional context message
}

func (e *TransitionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s failed for deal %s: %s (%v)", e.Op, e.DealID, e.Message, e.Err)
	}

	return fmt.Sprintf("%s failed for deal %s: %v", e.Op, e.DealID, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for transition errors.
func (e *TransitionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewTransitionError creates a new transition error with context.
func NewTransitionError(op, dealID string, err error) *TransitionError {
	return &TransitionError{
		Op:     op,
		DealID: dealID,
		Err:    err,
	}
}

// IsInvalidTransition checks if an error indicates an unreachable
// target stage.
func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

// IsValidationFailed checks if an error carries hard validation
// failures.
func IsValidationFailed(err error) bool {
	var validationErr *ValidationFailedError

	return errors.As(err, &validationErr)
}

// IsTerminalState checks if an error indicates a mutation on a
// completed or cancelled deal.
func IsTerminalState(err error) bool {
	return errors.Is(err, ErrTerminalState)
}

// IsDealNotActive checks if an error indicates the deal is paused.
func IsDealNotActive(err error) bool {
	return errors.Is(err, ErrDealNotActive)
}

// IsNoPreviousStage checks if an error indicates a rollback from the
// first stage.
func IsNoPreviousStage(err error) bool {
	return errors.Is(err, ErrNoPreviousStage)
}

// IsInvalidStatusChange checks if an error indicates a disallowed
// status transition.
func IsInvalidStatusChange(err error) bool {
	return errors.Is(err, ErrInvalidStatusChange)
}
