/*
store.go - Persistence interfaces for the scheduling engine

PURPOSE:
  Defines the boundary between domain logic and the database. One small
  interface per concern; implementations may back several interfaces with a
  single struct (the SQLite store does).

UNIQUENESS CONTRACT:
  AssignmentStore.Insert must perform the (employee, guard type, date)
  uniqueness check and the insert as one atomic unit, returning
  *ConflictError on a duplicate. Two concurrent inserts of the same triple
  must resolve to exactly one success. The SQLite implementation leans on a
  UNIQUE index; the in-memory implementation holds its write lock across
  check-and-insert.

TRANSACTIONS:
  TxAssignmentStore.WithTx wraps multi-step mutations (the replacement
  delete+create swap) so a failure in the second step rolls back the first.

IMPLEMENTATIONS:
  - store/sqlite:         production store
  - schedule/store:       in-memory store for tests and dev mode

SEE ALSO:
  - ledger.go:   Event-publishing wrapper over AssignmentStore
  - workflow.go: Uses WithTx for the replacement swap
*/
package schedule

import "context"

// =============================================================================
// ASSIGNMENT STORE - The occupancy ledger
// =============================================================================

type AssignmentStore interface {
	// Insert persists an assignment. Returns *ConflictError if one already
	// exists for the same (employee, guard type, date) triple.
	Insert(ctx context.Context, a Assignment) error

	// GetByID returns the assignment or *NotFoundError.
	GetByID(ctx context.Context, id AssignmentID) (Assignment, error)

	// Find returns the assignment for an exact triple, or *NotFoundError.
	Find(ctx context.Context, employee EmployeeID, guardType GuardTypeID, date Day) (Assignment, error)

	// DeleteByID removes one assignment. Returns *NotFoundError if absent.
	DeleteByID(ctx context.Context, id AssignmentID) error

	// DeleteAll clears every assignment for a (guard type, date) pair and
	// returns how many were removed.
	DeleteAll(ctx context.Context, guardType GuardTypeID, date Day) (int, error)

	// ListByDateRange returns assignments with date in [from, to],
	// ordered by date then guard type.
	ListByDateRange(ctx context.Context, from, to Day) ([]Assignment, error)

	// ListByEmployee returns all assignments for an employee, ordered by date.
	ListByEmployee(ctx context.Context, employee EmployeeID) ([]Assignment, error)
}

// TxAssignmentStore adds transactional execution. If fn returns an error the
// transaction is rolled back, otherwise committed.
type TxAssignmentStore interface {
	AssignmentStore
	WithTx(ctx context.Context, fn func(AssignmentStore) error) error
}

// =============================================================================
// GUARD TYPE CATALOG
// =============================================================================

type GuardTypeStore interface {
	// Save inserts or updates a guard type.
	Save(ctx context.Context, g GuardType) error

	// Get returns the guard type or *NotFoundError.
	Get(ctx context.Context, id GuardTypeID) (GuardType, error)

	// List returns guard types ordered by name. Inactive types are included
	// only when includeInactive is set.
	List(ctx context.Context, includeInactive bool) ([]GuardType, error)
}

// =============================================================================
// EMPLOYEE DIRECTORY - Minimal personnel lookup
// =============================================================================

type EmployeeDirectory interface {
	Save(ctx context.Context, e Employee) error
	Get(ctx context.Context, id EmployeeID) (Employee, error)
	List(ctx context.Context, activeOnly bool) ([]Employee, error)
}

// =============================================================================
// REQUEST STORE - Leave and replacement requests
// =============================================================================

type RequestStore interface {
	SaveLeave(ctx context.Context, r LeaveRequest) error
	GetLeave(ctx context.Context, id RequestID) (LeaveRequest, error)
	ListLeave(ctx context.Context) ([]LeaveRequest, error)

	SaveReplacement(ctx context.Context, r ReplacementRequest) error
	GetReplacement(ctx context.Context, id RequestID) (ReplacementRequest, error)
	ListReplacement(ctx context.Context) ([]ReplacementRequest, error)
}

// =============================================================================
// NOTIFICATION STORE - Append + read-state flips only, never deleted
// =============================================================================

type NotificationStore interface {
	Insert(ctx context.Context, n Notification) error
	ListByRecipient(ctx context.Context, recipient EmployeeID) ([]Notification, error)
	MarkRead(ctx context.Context, id NotificationID) error
	MarkAllRead(ctx context.Context, recipient EmployeeID) (int, error)
	UnreadCount(ctx context.Context, recipient EmployeeID) (int, error)
}

// =============================================================================
// AVAILABILITY STORE - Advisory slots
// =============================================================================

type AvailabilityStore interface {
	Save(ctx context.Context, s AvailabilitySlot) error
	DeleteByID(ctx context.Context, id SlotID) error
	ListByEmployee(ctx context.Context, employee EmployeeID, from, to Day) ([]AvailabilitySlot, error)
	ListByDate(ctx context.Context, date Day) ([]AvailabilitySlot, error)
}
