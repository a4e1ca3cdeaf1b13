/*
recurrence.go - Expansion of recurrence specs into concrete assignment dates

PURPOSE:
  A RecurrenceSpec is a rule (once / weekly / monthly) consumed exactly once:
  Expand turns it into the concrete date list, Materialize books each date
  through the ledger. Specs are never persisted.

EXPANSION RULES:
  once:    exactly {start}; end must be absent or equal to start
  weekly:  every date in [start, end] whose weekday is in the set; an empty
           result is valid (narrow range + sparse weekday set), not an error
  monthly: the start's day-of-month in each month of [start, end]; a
           day-of-month past a short month is clamped to its last day
           (Jan 31 -> Feb 28)

PARTIAL FAILURE:
  Materialize is best effort: every date is attempted independently,
  successes are kept, conflicts are collected into the report. Never
  all-or-nothing.

SEE ALSO:
  - ledger.go:     Per-date atomic creates
  - autoassign.go: Applies optimizer output with the same best-effort policy
*/
package schedule

import (
	"context"
	"time"
)

// =============================================================================
// RECURRENCE SPEC
// =============================================================================

type RecurrenceKind string

const (
	RecurrenceOnce    RecurrenceKind = "once"
	RecurrenceWeekly  RecurrenceKind = "weekly"
	RecurrenceMonthly RecurrenceKind = "monthly"
)

// RecurrenceSpec describes a bulk assignment rule. End may be the zero Day,
// which defaults it to Start.
type RecurrenceSpec struct {
	EmployeeID  EmployeeID
	GuardTypeID GuardTypeID
	Kind        RecurrenceKind
	Start       Day
	End         Day
	Weekdays    WeekdaySet // required for weekly, ignored otherwise
}

func (s RecurrenceSpec) end() Day {
	if s.End.IsZero() {
		return s.Start
	}
	return s.End
}

// Expand produces the concrete date list. Validation errors (end before
// start, weekly without weekdays, once spanning days) are returned before
// any expansion; an empty list is a legitimate result.
func (s RecurrenceSpec) Expand() ([]Day, error) {
	end := s.end()
	if end.Before(s.Start) {
		return nil, &InvalidRangeError{Start: s.Start, End: end}
	}

	switch s.Kind {
	case RecurrenceOnce:
		if !end.Equal(s.Start) {
			return nil, &ValidationError{Field: "end", Message: "once recurrence cannot span multiple days"}
		}
		return []Day{s.Start}, nil

	case RecurrenceWeekly:
		if s.Weekdays.IsEmpty() {
			return nil, &ValidationError{Field: "weekdays", Message: "weekly recurrence requires at least one weekday"}
		}
		return s.expandWeekly(end), nil

	case RecurrenceMonthly:
		return s.expandMonthly(end), nil

	default:
		return nil, &ValidationError{Field: "kind", Message: "unknown recurrence kind " + string(s.Kind)}
	}
}

func (s RecurrenceSpec) expandWeekly(end Day) []Day {
	var dates []Day
	for d := s.Start; d.BeforeOrEqual(end); d = d.AddDays(1) {
		if s.Weekdays.Has(d.Weekday()) {
			dates = append(dates, d)
		}
	}
	return dates
}

func (s RecurrenceSpec) expandMonthly(end Day) []Day {
	target := s.Start.DayOfMonth()
	var dates []Day

	year, month := s.Start.Year(), s.Start.Month()
	for {
		first := NewDay(year, month, 1)
		if first.After(end) {
			break
		}
		day := target
		if last := LastDayOfMonth(year, month); day > last {
			day = last
		}
		d := NewDay(year, month, day)
		if d.AfterOrEqual(s.Start) && d.BeforeOrEqual(end) {
			dates = append(dates, d)
		}
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	return dates
}

// =============================================================================
// EXPANDER - Best-effort materialization through the ledger
// =============================================================================

// SkippedDate records why one date of a bulk operation was not created.
type SkippedDate struct {
	Date   Day
	Reason string
}

// ExpansionReport is the partial-success summary of a bulk assignment.
type ExpansionReport struct {
	Created []Assignment
	Skipped []SkippedDate
}

// Expander materializes recurrence specs into the assignment ledger.
type Expander struct {
	Ledger *Ledger
}

// Materialize expands the spec and attempts a create for every date
// independently. Conflicts and overlaps are collected as skipped dates;
// any other store failure aborts and is returned.
func (e *Expander) Materialize(ctx context.Context, spec RecurrenceSpec) (*ExpansionReport, error) {
	dates, err := spec.Expand()
	if err != nil {
		return nil, err
	}

	origin := OriginManual
	if spec.Kind != RecurrenceOnce {
		origin = OriginManualRecurring
	}

	report := &ExpansionReport{}
	for _, date := range dates {
		a, err := e.Ledger.Create(ctx, spec.EmployeeID, spec.GuardTypeID, date, origin)
		switch {
		case err == nil:
			report.Created = append(report.Created, a)
		case IsClientError(err):
			report.Skipped = append(report.Skipped, SkippedDate{Date: date, Reason: err.Error()})
		default:
			return nil, err
		}
	}
	return report, nil
}
