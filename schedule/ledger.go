/*
ledger.go - The occupancy ledger service

PURPOSE:
  Ledger is the single write path for assignments. It wraps the raw
  AssignmentStore with:
  - guard type existence checks
  - the optional same-date time-overlap policy
  - domain event publication on every successful create/delete

OVERLAP POLICY:
  The uniqueness invariant (one assignment per exact triple) is always
  enforced by the store. Whether one person may hold two TIME-OVERLAPPING
  guard types on the same date is configurable: the source system allowed it
  (an on-call shift stacking with an operational shift), so the default is
  permissive. Enable RejectOverlapping to refuse those creates with
  *OverlapError. The overlap check is advisory-layer logic and is not part
  of the store's atomic uniqueness guarantee.

SEE ALSO:
  - store.go:    AssignmentStore contract
  - workflow.go: Uses Replace for the approved-replacement swap
*/
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LedgerConfig carries the explicit overlap policy decision.
type LedgerConfig struct {
	RejectOverlapping bool
}

// Ledger is the source of truth for "who is on duty when".
type Ledger struct {
	Assignments TxAssignmentStore
	GuardTypes  GuardTypeStore
	Bus         *Bus
	Config      LedgerConfig
}

func NewLedger(assignments TxAssignmentStore, guardTypes GuardTypeStore, bus *Bus, cfg LedgerConfig) *Ledger {
	return &Ledger{Assignments: assignments, GuardTypes: guardTypes, Bus: bus, Config: cfg}
}

// Create books an employee onto a guard type for a date. Returns
// *ConflictError if the exact triple already exists and *OverlapError if
// overlap rejection is enabled and the windows collide.
func (l *Ledger) Create(ctx context.Context, employee EmployeeID, guardType GuardTypeID, date Day, origin Origin) (Assignment, error) {
	gt, err := l.GuardTypes.Get(ctx, guardType)
	if err != nil {
		return Assignment{}, err
	}

	if l.Config.RejectOverlapping {
		if err := l.checkOverlap(ctx, employee, gt, date); err != nil {
			return Assignment{}, err
		}
	}

	a := Assignment{
		ID:          AssignmentID(uuid.NewString()),
		EmployeeID:  employee,
		GuardTypeID: guardType,
		Date:        date,
		Origin:      origin,
		CreatedAt:   time.Now().UTC(),
	}
	if err := l.Assignments.Insert(ctx, a); err != nil {
		return Assignment{}, err
	}

	l.Bus.Publish(Event{
		Kind:        EventAssignmentCreated,
		EmployeeID:  employee,
		GuardTypeID: guardType,
		Date:        date,
		Origin:      origin,
	})
	return a, nil
}

// DeleteByID removes one assignment and publishes the deletion event.
func (l *Ledger) DeleteByID(ctx context.Context, id AssignmentID) error {
	a, err := l.Assignments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := l.Assignments.DeleteByID(ctx, id); err != nil {
		return err
	}
	l.Bus.Publish(Event{
		Kind:        EventAssignmentDeleted,
		EmployeeID:  a.EmployeeID,
		GuardTypeID: a.GuardTypeID,
		Date:        a.Date,
		Origin:      a.Origin,
	})
	return nil
}

// Clear removes every assignment for a (guard type, date) pair, e.g.
// "clear all personnel from this shift". Returns the removed count.
func (l *Ledger) Clear(ctx context.Context, guardType GuardTypeID, date Day) (int, error) {
	n, err := l.Assignments.DeleteAll(ctx, guardType, date)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		l.Bus.Publish(Event{
			Kind:        EventAssignmentDeleted,
			GuardTypeID: guardType,
			Date:        date,
		})
	}
	return n, nil
}

// Replace atomically swaps the original assignment for one booking the
// successor onto the same guard type and date. If the create half conflicts,
// the delete is rolled back and the original assignment survives. The
// returned error is the raw store error; the workflow layer maps it onto
// *ReplacementConflictError with request context.
func (l *Ledger) Replace(ctx context.Context, originalID AssignmentID, successor EmployeeID) (Assignment, error) {
	original, err := l.Assignments.GetByID(ctx, originalID)
	if err != nil {
		return Assignment{}, err
	}

	replacement := Assignment{
		ID:          AssignmentID(uuid.NewString()),
		EmployeeID:  successor,
		GuardTypeID: original.GuardTypeID,
		Date:        original.Date,
		Origin:      OriginManual,
		CreatedAt:   time.Now().UTC(),
	}

	err = l.Assignments.WithTx(ctx, func(s AssignmentStore) error {
		if err := s.DeleteByID(ctx, originalID); err != nil {
			return err
		}
		if err := s.Insert(ctx, replacement); err != nil {
			return fmt.Errorf("replacement create failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return Assignment{}, err
	}

	l.Bus.Publish(Event{
		Kind:        EventAssignmentDeleted,
		EmployeeID:  original.EmployeeID,
		GuardTypeID: original.GuardTypeID,
		Date:        original.Date,
		Origin:      original.Origin,
	})
	l.Bus.Publish(Event{
		Kind:        EventAssignmentCreated,
		EmployeeID:  successor,
		GuardTypeID: replacement.GuardTypeID,
		Date:        replacement.Date,
		Origin:      replacement.Origin,
	})
	return replacement, nil
}

func (l *Ledger) checkOverlap(ctx context.Context, employee EmployeeID, gt GuardType, date Day) error {
	existing, err := l.Assignments.ListByDateRange(ctx, date, date)
	if err != nil {
		return err
	}
	for _, a := range existing {
		if a.EmployeeID != employee || a.GuardTypeID == gt.ID {
			continue
		}
		other, err := l.GuardTypes.Get(ctx, a.GuardTypeID)
		if err != nil {
			return err
		}
		if gt.OverlapsWindow(other) {
			return &OverlapError{
				EmployeeID:  employee,
				Date:        date,
				GuardTypeID: gt.ID,
				OverlapsID:  other.ID,
			}
		}
	}
	return nil
}
