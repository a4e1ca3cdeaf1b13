/*
workload.go - Per-employee duty-hour accounting

PURPOSE:
  Sums assigned shift hours per employee over a date range. The planner and
  the replacement search use these totals for rotation equity (fewest hours
  first); the API exposes them as workload statistics.

PRECISION:
  Durations are decimal hours so uneven windows (09:30 starts, wrap-past-
  midnight night shifts) sum exactly.
*/
package schedule

import (
	"context"

	"github.com/shopspring/decimal"
)

type WorkloadCalculator struct {
	Assignments AssignmentStore
	GuardTypes  GuardTypeStore
}

func NewWorkloadCalculator(assignments AssignmentStore, guardTypes GuardTypeStore) *WorkloadCalculator {
	return &WorkloadCalculator{Assignments: assignments, GuardTypes: guardTypes}
}

// Hours returns total assigned hours per employee for dates in [from, to].
func (wc *WorkloadCalculator) Hours(ctx context.Context, from, to Day) (map[EmployeeID]decimal.Decimal, error) {
	if to.Before(from) {
		return nil, &InvalidRangeError{Start: from, End: to}
	}

	assignments, err := wc.Assignments.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	durations := make(map[GuardTypeID]decimal.Decimal)
	totals := make(map[EmployeeID]decimal.Decimal)
	for _, a := range assignments {
		d, ok := durations[a.GuardTypeID]
		if !ok {
			gt, err := wc.GuardTypes.Get(ctx, a.GuardTypeID)
			if err != nil {
				return nil, err
			}
			d = gt.Duration()
			durations[a.GuardTypeID] = d
		}
		totals[a.EmployeeID] = totals[a.EmployeeID].Add(d)
	}
	return totals, nil
}

// HoursFor returns one employee's total for the range.
func (wc *WorkloadCalculator) HoursFor(ctx context.Context, employee EmployeeID, from, to Day) (decimal.Decimal, error) {
	totals, err := wc.Hours(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return totals[employee], nil
}
