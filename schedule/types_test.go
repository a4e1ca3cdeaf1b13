package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firehall/shift-engine/schedule"
)

// =============================================================================
// DAY TESTS
// =============================================================================

func TestParseDay_ValidAndInvalid(t *testing.T) {
	d, err := schedule.ParseDay("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", d.String())
	assert.Equal(t, time.Monday, d.Weekday())

	_, err = schedule.ParseDay("10/03/2025")
	assert.Error(t, err, "non-ISO format should be rejected")
}

func TestDaysInclusive_CountsBothEnds(t *testing.T) {
	// GIVEN: March 10 to March 12
	// THEN: 3 days, both ends counted
	from, _ := schedule.ParseDay("2025-03-10")
	to, _ := schedule.ParseDay("2025-03-12")
	assert.Equal(t, 3, schedule.DaysInclusive(from, to))
	assert.Equal(t, 1, schedule.DaysInclusive(from, from))
}

func TestLastDayOfMonth(t *testing.T) {
	assert.Equal(t, 28, schedule.LastDayOfMonth(2025, time.February))
	assert.Equal(t, 29, schedule.LastDayOfMonth(2024, time.February))
	assert.Equal(t, 31, schedule.LastDayOfMonth(2025, time.January))
	assert.Equal(t, 30, schedule.LastDayOfMonth(2025, time.April))
}

// =============================================================================
// CLOCK TIME AND WEEKDAY SET TESTS
// =============================================================================

func TestParseClockTime_Range(t *testing.T) {
	c, err := schedule.ParseClockTime("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9*60+30, c.Minutes())

	_, err = schedule.ParseClockTime("24:00")
	assert.Error(t, err)
	_, err = schedule.ParseClockTime("12:60")
	assert.Error(t, err)
}

func TestParseWeekdaySet_Names(t *testing.T) {
	s, err := schedule.ParseWeekdaySet([]string{"monday", "Friday"})
	require.NoError(t, err)
	assert.True(t, s.Has(time.Monday))
	assert.True(t, s.Has(time.Friday))
	assert.False(t, s.Has(time.Sunday))
	assert.Equal(t, []string{"monday", "friday"}, s.Names())

	_, err = schedule.ParseWeekdaySet([]string{"someday"})
	assert.Error(t, err)
}

// =============================================================================
// GUARD TYPE TESTS
// =============================================================================

func TestGuardType_AppliesOn_EmptySetMeansEveryDay(t *testing.T) {
	g := dayGuard(t)
	assert.True(t, g.AppliesOn(day(t, "2025-03-10"))) // Monday
	assert.True(t, g.AppliesOn(day(t, "2025-03-15"))) // Saturday

	weekend := weekendGuard(t)
	assert.True(t, weekend.AppliesOn(day(t, "2025-03-15")))
	assert.False(t, weekend.AppliesOn(day(t, "2025-03-10")))
}

func TestGuardType_Duration_WrapsMidnight(t *testing.T) {
	// GIVEN: a 18:00-06:00 night shift
	// THEN: duration is 12 hours, not -12
	night := nightGuard(t)
	assert.Equal(t, "12", night.Duration().String())

	dayShift := dayGuard(t)
	assert.Equal(t, "12", dayShift.Duration().String())

	uneven := schedule.GuardType{Start: clock(t, "09:30"), End: clock(t, "19:00")}
	assert.Equal(t, "9.5", uneven.Duration().String())
}

func TestGuardType_OverlapsWindow(t *testing.T) {
	dayShift := dayGuard(t)     // 06:00-18:00
	night := nightGuard(t)      // 18:00-06:00
	morning := schedule.GuardType{ID: "m", Start: clock(t, "05:00"), End: clock(t, "09:00")}

	assert.True(t, dayShift.OverlapsWindow(morning), "06-18 overlaps 05-09")
	assert.True(t, night.OverlapsWindow(morning), "wrap 18-06 overlaps 05-09")
	assert.False(t, dayShift.OverlapsWindow(night), "06-18 and 18-06 only touch")
}

func TestCoverageState_Ordering(t *testing.T) {
	assert.True(t, schedule.CoverageVacant < schedule.CoveragePartial)
	assert.True(t, schedule.CoveragePartial < schedule.CoverageComplete)
	assert.Equal(t, "vacant", schedule.CoverageVacant.String())
	assert.Equal(t, "partial", schedule.CoveragePartial.String())
	assert.Equal(t, "complete", schedule.CoverageComplete.String())
}
