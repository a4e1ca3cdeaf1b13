package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firehall/shift-engine/schedule"
)

func expand(t *testing.T, spec schedule.RecurrenceSpec) []string {
	t.Helper()
	dates, err := spec.Expand()
	require.NoError(t, err)
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.String())
	}
	return out
}

// =============================================================================
// EXPANSION TESTS
// =============================================================================

func TestExpand_Once_SingleDate(t *testing.T) {
	spec := schedule.RecurrenceSpec{Kind: schedule.RecurrenceOnce, Start: day(t, "2025-03-10")}
	assert.Equal(t, []string{"2025-03-10"}, expand(t, spec))
}

func TestExpand_Once_SpanningDays_Rejected(t *testing.T) {
	spec := schedule.RecurrenceSpec{
		Kind:  schedule.RecurrenceOnce,
		Start: day(t, "2025-03-10"),
		End:   day(t, "2025-03-11"),
	}
	_, err := spec.Expand()
	var verr *schedule.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestExpand_Weekly_FiltersWeekdays(t *testing.T) {
	// GIVEN: Mondays and Thursdays over two weeks starting Monday March 10
	spec := schedule.RecurrenceSpec{
		Kind:     schedule.RecurrenceWeekly,
		Start:    day(t, "2025-03-10"),
		End:      day(t, "2025-03-23"),
		Weekdays: schedule.NewWeekdaySet(time.Monday, time.Thursday),
	}
	assert.Equal(t,
		[]string{"2025-03-10", "2025-03-13", "2025-03-17", "2025-03-20"},
		expand(t, spec))
}

func TestExpand_Weekly_EmptyResultIsValid(t *testing.T) {
	// A narrow range with a sparse weekday set legitimately yields nothing.
	spec := schedule.RecurrenceSpec{
		Kind:     schedule.RecurrenceWeekly,
		Start:    day(t, "2025-03-10"), // Monday
		End:      day(t, "2025-03-12"), // Wednesday
		Weekdays: schedule.NewWeekdaySet(time.Saturday),
	}
	dates, err := spec.Expand()
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestExpand_Weekly_NoWeekdays_Rejected(t *testing.T) {
	spec := schedule.RecurrenceSpec{
		Kind:  schedule.RecurrenceWeekly,
		Start: day(t, "2025-03-10"),
		End:   day(t, "2025-03-23"),
	}
	_, err := spec.Expand()
	var verr *schedule.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestExpand_Monthly_ClampsShortMonths(t *testing.T) {
	// GIVEN: monthly from January 31 through April
	// THEN: February yields the 28th (clamped), not nothing
	spec := schedule.RecurrenceSpec{
		Kind:  schedule.RecurrenceMonthly,
		Start: day(t, "2025-01-31"),
		End:   day(t, "2025-04-30"),
	}
	assert.Equal(t,
		[]string{"2025-01-31", "2025-02-28", "2025-03-31", "2025-04-30"},
		expand(t, spec))
}

func TestExpand_Monthly_LeapYearFebruary(t *testing.T) {
	spec := schedule.RecurrenceSpec{
		Kind:  schedule.RecurrenceMonthly,
		Start: day(t, "2024-01-30"),
		End:   day(t, "2024-03-30"),
	}
	assert.Equal(t,
		[]string{"2024-01-30", "2024-02-29", "2024-03-30"},
		expand(t, spec))
}

func TestExpand_Monthly_CrossesYearBoundary(t *testing.T) {
	spec := schedule.RecurrenceSpec{
		Kind:  schedule.RecurrenceMonthly,
		Start: day(t, "2024-11-15"),
		End:   day(t, "2025-01-15"),
	}
	assert.Equal(t,
		[]string{"2024-11-15", "2024-12-15", "2025-01-15"},
		expand(t, spec))
}

func TestExpand_EndBeforeStart_Rejected(t *testing.T) {
	spec := schedule.RecurrenceSpec{
		Kind:  schedule.RecurrenceMonthly,
		Start: day(t, "2025-03-10"),
		End:   day(t, "2025-03-01"),
	}
	_, err := spec.Expand()
	var rerr *schedule.InvalidRangeError
	assert.ErrorAs(t, err, &rerr)
}

func TestExpand_UnknownKind_Rejected(t *testing.T) {
	spec := schedule.RecurrenceSpec{Kind: "fortnightly", Start: day(t, "2025-03-10")}
	_, err := spec.Expand()
	var verr *schedule.ValidationError
	assert.ErrorAs(t, err, &verr)
}

// =============================================================================
// MATERIALIZATION TESTS
// =============================================================================

func TestMaterialize_BestEffort_SkipsConflictsKeepsRest(t *testing.T) {
	// GIVEN: alice already booked on one of the four Mondays
	// WHEN: materializing a weekly spec over the range
	// THEN: three created, one skipped with a conflict reason

	ctx := context.Background()
	f := newFixture(t, schedule.LedgerConfig{})
	f.saveGuardType(t, dayGuard(t))

	_, err := f.ledger.Create(ctx, "alice", "guard-day", day(t, "2025-03-17"), schedule.OriginManual)
	require.NoError(t, err)

	expander := &schedule.Expander{Ledger: f.ledger}
	report, err := expander.Materialize(ctx, schedule.RecurrenceSpec{
		EmployeeID:  "alice",
		GuardTypeID: "guard-day",
		Kind:        schedule.RecurrenceWeekly,
		Start:       day(t, "2025-03-10"),
		End:         day(t, "2025-03-31"),
		Weekdays:    schedule.NewWeekdaySet(time.Monday),
	})
	require.NoError(t, err)

	assert.Len(t, report.Created, 3)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "2025-03-17", report.Skipped[0].Date.String())
	assert.Contains(t, report.Skipped[0].Reason, "already exists")

	for _, a := range report.Created {
		assert.Equal(t, schedule.OriginManualRecurring, a.Origin)
	}
}

func TestMaterialize_Once_OriginManual(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, schedule.LedgerConfig{})
	f.saveGuardType(t, dayGuard(t))

	expander := &schedule.Expander{Ledger: f.ledger}
	report, err := expander.Materialize(ctx, schedule.RecurrenceSpec{
		EmployeeID:  "alice",
		GuardTypeID: "guard-day",
		Kind:        schedule.RecurrenceOnce,
		Start:       day(t, "2025-03-10"),
	})
	require.NoError(t, err)
	require.Len(t, report.Created, 1)
	assert.Equal(t, schedule.OriginManual, report.Created[0].Origin)
}

func TestMaterialize_UnknownGuardType_Aborts(t *testing.T) {
	// A missing guard type is not a per-date conflict; the whole bulk fails.
	ctx := context.Background()
	f := newFixture(t, schedule.LedgerConfig{})

	expander := &schedule.Expander{Ledger: f.ledger}
	_, err := expander.Materialize(ctx, schedule.RecurrenceSpec{
		EmployeeID:  "alice",
		GuardTypeID: "no-such-guard",
		Kind:        schedule.RecurrenceOnce,
		Start:       day(t, "2025-03-10"),
	})
	assert.True(t, schedule.IsNotFound(err))
}
