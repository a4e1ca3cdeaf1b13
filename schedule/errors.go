/*
errors.go - Centralized error taxonomy for the scheduling engine

PURPOSE:
  All recoverable error types in one place. Every error here is returned to
  the caller as a typed result; none crash the process. Bulk operations
  (recurrence expansion, auto-assign) never fail on a per-date conflict:
  they aggregate conflicts into the response instead.

ERROR CATEGORIES:
  1. Ledger errors    - duplicate booking, unknown assignment
  2. Validation errors - malformed ranges, malformed recurrence specs
  3. Workflow errors  - illegal state transitions, failed replacement swaps

USAGE:
  Callers classify with errors.Is / the helpers at the bottom:

    if schedule.IsConflict(err) {
        // 409
    }

SEE ALSO:
  - ledger.go:    Raises conflict/not-found
  - recurrence.go: Raises invalid range/spec, aggregates conflicts
  - workflow.go:  Raises invalid transition, replacement conflict
*/
package schedule

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrConflict is returned when an assignment already exists for the same
	// (employee, guard type, date) triple. Idempotent rejection, not overwrite.
	ErrConflict = errors.New("assignment already exists")

	// ErrOverlap is returned when overlap rejection is enabled and the
	// employee already holds a time-overlapping guard type on that date.
	ErrOverlap = errors.New("overlapping assignment on same date")

	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRange is returned for malformed date ranges (end before start).
	ErrInvalidRange = errors.New("invalid range: end before start")

	// ErrInvalidSpec is returned for malformed recurrence specs
	// (unknown kind, weekly without weekdays, once spanning multiple days).
	ErrInvalidSpec = errors.New("invalid recurrence spec")

	// ErrNotApplicable is returned when coverage is queried for a weekday the
	// guard type does not run on. Caller error, not a coverage state.
	ErrNotApplicable = errors.New("guard type not scheduled on this weekday")

	// ErrInvalidTransition is returned when deciding a request that is not in
	// a non-terminal state. Retrying a decision fails cleanly here.
	ErrInvalidTransition = errors.New("invalid workflow transition")

	// ErrReplacementConflict is returned when the create half of an approved
	// replacement swap conflicts; the delete half is rolled back.
	ErrReplacementConflict = errors.New("replacement swap conflict")

	// ErrValidation is returned for malformed submissions
	// (empty reason, unknown priority, missing references).
	ErrValidation = errors.New("validation failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry enough detail for an actionable UI message
// =============================================================================

// ConflictError identifies the exact triple that was double-booked.
type ConflictError struct {
	EmployeeID  EmployeeID
	GuardTypeID GuardTypeID
	Date        Day
	ExistingID  AssignmentID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("assignment already exists: employee %s on %s for %s (existing: %s)",
		e.EmployeeID, e.GuardTypeID, e.Date, e.ExistingID)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// OverlapError identifies the time-overlapping assignment that blocked a create.
type OverlapError struct {
	EmployeeID  EmployeeID
	Date        Day
	GuardTypeID GuardTypeID
	OverlapsID  GuardTypeID
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("employee %s on %s: %s overlaps existing assignment to %s",
		e.EmployeeID, e.Date, e.GuardTypeID, e.OverlapsID)
}

func (e *OverlapError) Unwrap() error { return ErrOverlap }

// NotFoundError identifies what kind of record was missing.
type NotFoundError struct {
	Kind string // "assignment", "guard type", "request", "notification", ...
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Kind, e.ID) }
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvalidRangeError reports a malformed date range.
type InvalidRangeError struct {
	Start Day
	End   Day
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: end %s before start %s", e.End, e.Start)
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

// NotApplicableError reports a coverage query for an inapplicable weekday.
type NotApplicableError struct {
	GuardTypeID GuardTypeID
	Date        Day
	Weekday     time.Weekday
}

func (e *NotApplicableError) Error() string {
	return fmt.Sprintf("guard type %s is not scheduled on %s (%s)",
		e.GuardTypeID, e.Date, e.Weekday)
}

func (e *NotApplicableError) Unwrap() error { return ErrNotApplicable }

// InvalidTransitionError reports an illegal workflow transition.
type InvalidTransitionError struct {
	RequestID RequestID
	Status    string
	Action    string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("request %s: cannot %s in state %q", e.RequestID, e.Action, e.Status)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// ReplacementConflictError reports a rolled-back replacement swap. The
// original assignment is guaranteed to still exist.
type ReplacementConflictError struct {
	RequestID   RequestID
	SuccessorID EmployeeID
	GuardTypeID GuardTypeID
	Date        Day
}

func (e *ReplacementConflictError) Error() string {
	return fmt.Sprintf("replacement for request %s failed: %s already booked on %s for %s; original assignment kept",
		e.RequestID, e.SuccessorID, e.Date, e.GuardTypeID)
}

func (e *ReplacementConflictError) Unwrap() error { return ErrReplacementConflict }

// ValidationError reports a malformed submission field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Message) }
func (e *ValidationError) Unwrap() error { return ErrValidation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

func IsConflict(err error) bool          { return errors.Is(err, ErrConflict) }
func IsNotFound(err error) bool          { return errors.Is(err, ErrNotFound) }
func IsInvalidTransition(err error) bool { return errors.Is(err, ErrInvalidTransition) }

// IsClientError returns true if the error is due to invalid client input
// rather than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrOverlap) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidSpec) ||
		errors.Is(err, ErrNotApplicable) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrReplacementConflict) ||
		errors.Is(err, ErrValidation)
}
