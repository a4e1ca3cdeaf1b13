/*
Package schedule provides the core shift scheduling and coverage engine.

PURPOSE:
  This package contains the domain types and services that turn a catalog of
  recurring shift templates ("guard types") and concrete personnel bookings
  ("assignments") into a per-day, per-shift occupancy record, classify each
  shift's coverage level, and drive the leave/replacement approval workflow
  that perturbs that occupancy over time.

KEY CONCEPTS IN THIS FILE (types.go):
  - GuardType:  A named shift template (time window, staffing requirement,
                applicable weekdays, officer requirement)
  - Assignment: One person booked on one guard type on one date
  - Day:        A calendar date (the ledger key; no clock component)
  - ClockTime:  An HH:MM wall-clock time; shift windows may wrap midnight
  - WeekdaySet: The weekdays a guard type applies to (empty = every day)
  - CoverageState: vacant / partial / complete staffing classification

DESIGN PRINCIPLES:
  1. Assignments are immutable: edits are delete-then-create, never in place
  2. Type safety: distinct ID types prevent mixing employees and guard types
  3. Coverage is derived, never stored; it is recomputed (or cached) on read
  4. Durations use decimal.Decimal so a 9h30 night shift sums exactly

SEE ALSO:
  - errors.go:     Error taxonomy (conflict, not-found, invalid range, ...)
  - store.go:      Persistence interfaces
  - recurrence.go: Expansion of recurrence specs into assignment dates
  - coverage.go:   Coverage classification and caching
*/
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type GuardTypeID string
type AssignmentID string
type RequestID string
type NotificationID string
type SlotID string

// =============================================================================
// DAY - Calendar date, the unit the ledger is keyed on
// =============================================================================

// Day is a calendar date with no clock component, normalized to UTC midnight.
type Day struct {
	Time time.Time
}

const dayLayout = "2006-01-02"

func NewDay(year int, month time.Month, day int) Day {
	return Day{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses a YYYY-MM-DD date string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Day{Time: t}, nil
}

func Today() Day {
	now := time.Now().UTC()
	return NewDay(now.Year(), now.Month(), now.Day())
}

func (d Day) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Comparison
func (d Day) Before(other Day) bool        { return d.normalize().Before(other.normalize()) }
func (d Day) After(other Day) bool         { return d.normalize().After(other.normalize()) }
func (d Day) Equal(other Day) bool         { return d.normalize().Equal(other.normalize()) }
func (d Day) BeforeOrEqual(other Day) bool { return d.Before(other) || d.Equal(other) }
func (d Day) AfterOrEqual(other Day) bool  { return d.After(other) || d.Equal(other) }

// Arithmetic
func (d Day) AddDays(n int) Day { return Day{Time: d.normalize().AddDate(0, 0, n)} }

// Properties
func (d Day) Year() int             { return d.Time.Year() }
func (d Day) Month() time.Month     { return d.Time.Month() }
func (d Day) DayOfMonth() int       { return d.Time.Day() }
func (d Day) Weekday() time.Weekday { return d.normalize().Weekday() }
func (d Day) IsZero() bool          { return d.Time.IsZero() }
func (d Day) String() string        { return d.normalize().Format(dayLayout) }

// DaysInclusive returns the inclusive day count between from and to.
// Used for leave request duration (March 10 to March 12 = 3 days).
func DaysInclusive(from, to Day) int {
	return int(to.normalize().Sub(from.normalize()).Hours()/24) + 1
}

// LastDayOfMonth returns the number of days in the given month.
func LastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// =============================================================================
// CLOCK TIME - HH:MM wall-clock time for shift windows
// =============================================================================

// ClockTime is a wall-clock time of day. Shift windows are a pair of
// ClockTimes; an end at or before the start means the window wraps midnight.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses an "HH:MM" string.
func ParseClockTime(s string) (ClockTime, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return ClockTime{}, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return ClockTime{}, fmt.Errorf("invalid clock time %q: out of range", s)
	}
	return ClockTime{Hour: h, Minute: m}, nil
}

func (c ClockTime) Minutes() int   { return c.Hour*60 + c.Minute }
func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// =============================================================================
// WEEKDAY SET
// =============================================================================

// WeekdaySet is a bitmask of weekdays. The zero value is the empty set,
// which for guard types means "applies every day".
type WeekdaySet uint8

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.Add(d)
	}
	return s
}

func (s WeekdaySet) Add(d time.Weekday) WeekdaySet { return s | 1<<uint(d) }
func (s WeekdaySet) Has(d time.Weekday) bool       { return s&(1<<uint(d)) != 0 }
func (s WeekdaySet) IsEmpty() bool                 { return s == 0 }

// Weekdays returns the members in Sunday-first order.
func (s WeekdaySet) Weekdays() []time.Weekday {
	var out []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

// ParseWeekdaySet builds a set from lowercase English day names
// ("monday", "tuesday", ...), the wire format of the applicable-days field.
func ParseWeekdaySet(names []string) (WeekdaySet, error) {
	var s WeekdaySet
	for _, n := range names {
		d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return 0, fmt.Errorf("unknown weekday %q", n)
		}
		s = s.Add(d)
	}
	return s, nil
}

func (s WeekdaySet) Names() []string {
	var out []string
	for _, d := range s.Weekdays() {
		out = append(out, strings.ToLower(d.String()))
	}
	return out
}

// =============================================================================
// GUARD TYPE - Shift template
// =============================================================================

// GuardType is a shift template. It is never deleted while assignments
// reference it; retiring a guard type clears the Active flag instead.
type GuardType struct {
	ID    GuardTypeID
	Name  string
	Start ClockTime
	End   ClockTime

	// RequiredPersonnel is the staffing level for a complete shift (>= 1).
	RequiredPersonnel int

	// OfficerRequired means at least one assignee should hold officer rank.
	// Advisory to the planner; the ledger does not enforce it.
	OfficerRequired bool

	// ApplicableWeekdays restricts which days the shift runs.
	// Empty set = runs every day.
	ApplicableWeekdays WeekdaySet

	Color  string
	Active bool
}

// AppliesOn reports whether the shift runs on the given date.
func (g GuardType) AppliesOn(d Day) bool {
	return g.ApplicableWeekdays.IsEmpty() || g.ApplicableWeekdays.Has(d.Weekday())
}

// Duration returns the shift length in hours. An end time at or before the
// start time means the shift wraps past midnight (18:00-06:00 = 12h).
func (g GuardType) Duration() decimal.Decimal {
	minutes := g.End.Minutes() - g.Start.Minutes()
	if minutes <= 0 {
		minutes += 24 * 60
	}
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60))
}

// OverlapsWindow reports whether two guard types' time windows overlap on the
// same date. Both windows are unrolled onto a shared timeline so wrapping
// windows compare correctly.
func (g GuardType) OverlapsWindow(other GuardType) bool {
	aStart, aEnd := unroll(g)
	bStart, bEnd := unroll(other)
	const day = 24 * 60
	for _, shift := range []int{-day, 0, day} {
		if aStart < bEnd+shift && bStart+shift < aEnd {
			return true
		}
	}
	return false
}

func unroll(g GuardType) (start, end int) {
	start = g.Start.Minutes()
	end = g.End.Minutes()
	if end <= start {
		end += 24 * 60
	}
	return start, end
}

// =============================================================================
// ASSIGNMENT - One person on one shift on one date
// =============================================================================

// Origin tags how an assignment came to exist.
type Origin string

const (
	OriginManual          Origin = "manual"
	OriginManualRecurring Origin = "manual-recurring"
	OriginAuto            Origin = "auto"
)

// Assignment is a concrete occupancy record. At most one assignment exists
// per (employee, guard type, date) triple; the stores enforce this.
// Assignments are never mutated: editing is delete-then-create.
type Assignment struct {
	ID          AssignmentID
	EmployeeID  EmployeeID
	GuardTypeID GuardTypeID
	Date        Day
	Origin      Origin
	CreatedAt   time.Time
}

// =============================================================================
// EMPLOYEE - Minimal directory record
// =============================================================================

// Employee is the slice of the personnel record the engine needs: identity,
// officer rank (for officer-required shifts) and active status. Full
// personnel CRUD lives outside the core.
type Employee struct {
	ID      EmployeeID
	Name    string
	Rank    string
	Officer bool
	Active  bool
}

// =============================================================================
// COVERAGE STATE - Derived staffing classification
// =============================================================================

// CoverageState orders vacant < partial < complete so monotonicity
// properties can be checked with plain comparison.
type CoverageState int

const (
	CoverageVacant CoverageState = iota
	CoveragePartial
	CoverageComplete
)

func (s CoverageState) String() string {
	switch s {
	case CoverageVacant:
		return "vacant"
	case CoveragePartial:
		return "partial"
	case CoverageComplete:
		return "complete"
	default:
		return fmt.Sprintf("CoverageState(%d)", int(s))
	}
}
