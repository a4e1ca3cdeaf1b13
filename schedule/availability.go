/*
availability.go - Declared availability windows

PURPOSE:
  Employees declare when they are available, preferred, or unavailable.
  Slots are advisory input to assignment decisions (the planner and the
  replacement search read them); the ledger never enforces them as a hard
  constraint.

SCOPE:
  A slot either targets one specific guard type or any guard type that day.
  The scope is an explicit sum type (Specific | AnyType), not a nullable
  field compared loosely.
*/
package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// GUARD SCOPE - Specific(guardType) | AnyType
// =============================================================================

// GuardScope says which guard types a slot applies to. The zero value is
// AnyType.
type GuardScope struct {
	guardType GuardTypeID
}

func AnyGuardType() GuardScope                    { return GuardScope{} }
func SpecificGuardType(id GuardTypeID) GuardScope { return GuardScope{guardType: id} }

func (s GuardScope) IsAny() bool { return s.guardType == "" }

// GuardType returns the specific target and whether one is set.
func (s GuardScope) GuardType() (GuardTypeID, bool) {
	return s.guardType, s.guardType != ""
}

// Covers reports whether the scope admits the given guard type.
func (s GuardScope) Covers(id GuardTypeID) bool {
	return s.IsAny() || s.guardType == id
}

// =============================================================================
// AVAILABILITY SLOT
// =============================================================================

type AvailabilityStatus string

const (
	StatusAvailable   AvailabilityStatus = "available"
	StatusPreferred   AvailabilityStatus = "preferred"
	StatusUnavailable AvailabilityStatus = "unavailable"
)

func (s AvailabilityStatus) valid() bool {
	switch s {
	case StatusAvailable, StatusPreferred, StatusUnavailable:
		return true
	}
	return false
}

// AvailabilitySlot is one declared window. Multiple slots may coexist for
// the same date (different guard types). Owned by the employee it belongs
// to; ownership is enforced by the caller, not the core.
type AvailabilitySlot struct {
	ID         SlotID
	EmployeeID EmployeeID
	Date       Day
	Scope      GuardScope
	Start      ClockTime
	End        ClockTime
	Status     AvailabilityStatus
	CreatedAt  time.Time
}

// =============================================================================
// REGISTRY
// =============================================================================

type Registry struct {
	Store AvailabilityStore
}

func NewRegistry(store AvailabilityStore) *Registry {
	return &Registry{Store: store}
}

// Declare validates and persists a slot, generating its ID.
func (r *Registry) Declare(ctx context.Context, slot AvailabilitySlot) (AvailabilitySlot, error) {
	if slot.EmployeeID == "" {
		return AvailabilitySlot{}, &ValidationError{Field: "employee_id", Message: "must not be empty"}
	}
	if slot.Date.IsZero() {
		return AvailabilitySlot{}, &ValidationError{Field: "date", Message: "must be set"}
	}
	if !slot.Status.valid() {
		return AvailabilitySlot{}, &ValidationError{Field: "status", Message: "unknown status " + string(slot.Status)}
	}
	slot.ID = SlotID(uuid.NewString())
	slot.CreatedAt = time.Now().UTC()
	if err := r.Store.Save(ctx, slot); err != nil {
		return AvailabilitySlot{}, err
	}
	return slot, nil
}

func (r *Registry) Remove(ctx context.Context, id SlotID) error {
	return r.Store.DeleteByID(ctx, id)
}

func (r *Registry) ListFor(ctx context.Context, employee EmployeeID, from, to Day) ([]AvailabilitySlot, error) {
	if to.Before(from) {
		return nil, &InvalidRangeError{Start: from, End: to}
	}
	return r.Store.ListByEmployee(ctx, employee, from, to)
}

// CanWork reports how the slots speak to booking the guard type that day:
// willing is true when a non-unavailable slot covers it, preferred when a
// preferred slot does. An unavailable slot covering the guard type vetoes
// any available one: declared unavailability wins.
func CanWork(slots []AvailabilitySlot, guardType GuardTypeID) (willing, preferred bool) {
	for _, s := range slots {
		if !s.Scope.Covers(guardType) {
			continue
		}
		switch s.Status {
		case StatusUnavailable:
			return false, false
		case StatusPreferred:
			willing, preferred = true, true
		case StatusAvailable:
			willing = true
		}
	}
	return willing, preferred
}
