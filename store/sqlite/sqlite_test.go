package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firehall/shift-engine/schedule"
	"github.com/firehall/shift-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func day(t *testing.T, s string) schedule.Day {
	t.Helper()
	d, err := schedule.ParseDay(s)
	require.NoError(t, err)
	return d
}

func clock(t *testing.T, s string) schedule.ClockTime {
	t.Helper()
	c, err := schedule.ParseClockTime(s)
	require.NoError(t, err)
	return c
}

func booking(id schedule.AssignmentID, employee schedule.EmployeeID, guardType schedule.GuardTypeID, d schedule.Day) schedule.Assignment {
	return schedule.Assignment{
		ID:          id,
		EmployeeID:  employee,
		GuardTypeID: guardType,
		Date:        d,
		Origin:      schedule.OriginManual,
		CreatedAt:   time.Now().UTC(),
	}
}

// =============================================================================
// ASSIGNMENT TESTS
// =============================================================================

func TestAssignments_RoundTrip(t *testing.T) {
	ctx := context.Background()
	assignments := newStore(t).Assignments()
	d := day(t, "2025-03-10")

	require.NoError(t, assignments.Insert(ctx, booking("a1", "alice", "guard-day", d)))

	got, err := assignments.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, schedule.EmployeeID("alice"), got.EmployeeID)
	assert.True(t, got.Date.Equal(d))
	assert.Equal(t, schedule.OriginManual, got.Origin)

	got, err = assignments.Find(ctx, "alice", "guard-day", d)
	require.NoError(t, err)
	assert.Equal(t, schedule.AssignmentID("a1"), got.ID)

	_, err = assignments.GetByID(ctx, "missing")
	assert.True(t, schedule.IsNotFound(err))
}

func TestAssignments_UniqueIndexMapsToConflict(t *testing.T) {
	// GIVEN: a booked triple
	// WHEN: inserting the same triple under a new ID
	// THEN: the database unique index surfaces as *schedule.ConflictError

	ctx := context.Background()
	assignments := newStore(t).Assignments()
	d := day(t, "2025-03-10")

	require.NoError(t, assignments.Insert(ctx, booking("a1", "alice", "guard-day", d)))

	err := assignments.Insert(ctx, booking("a2", "alice", "guard-day", d))
	var conflict *schedule.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, schedule.AssignmentID("a1"), conflict.ExistingID)

	// Different date, different guard type: both fine.
	require.NoError(t, assignments.Insert(ctx, booking("a3", "alice", "guard-day", day(t, "2025-03-11"))))
	require.NoError(t, assignments.Insert(ctx, booking("a4", "alice", "guard-night", d)))
}

func TestAssignments_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	assignments := newStore(t).Assignments()
	d := day(t, "2025-03-10")

	require.NoError(t, assignments.Insert(ctx, booking("a1", "alice", "guard-day", d)))
	require.NoError(t, assignments.Insert(ctx, booking("a2", "bob", "guard-day", d)))
	require.NoError(t, assignments.Insert(ctx, booking("a3", "carol", "guard-night", d)))

	require.NoError(t, assignments.DeleteByID(ctx, "a1"))
	assert.True(t, schedule.IsNotFound(assignments.DeleteByID(ctx, "a1")))

	n, err := assignments.DeleteAll(ctx, "guard-day", d)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the remaining day booking")

	out, err := assignments.ListByDateRange(ctx, d, d)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, schedule.AssignmentID("a3"), out[0].ID)
}

func TestAssignments_ListByDateRange_Ordered(t *testing.T) {
	ctx := context.Background()
	assignments := newStore(t).Assignments()

	require.NoError(t, assignments.Insert(ctx, booking("a3", "carol", "guard-day", day(t, "2025-03-12"))))
	require.NoError(t, assignments.Insert(ctx, booking("a2", "bob", "guard-night", day(t, "2025-03-10"))))
	require.NoError(t, assignments.Insert(ctx, booking("a1", "alice", "guard-day", day(t, "2025-03-10"))))
	require.NoError(t, assignments.Insert(ctx, booking("a4", "dave", "guard-day", day(t, "2025-04-01"))))

	out, err := assignments.ListByDateRange(ctx, day(t, "2025-03-01"), day(t, "2025-03-31"))
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, schedule.AssignmentID("a1"), out[0].ID, "date, then guard type")
	assert.Equal(t, schedule.AssignmentID("a2"), out[1].ID)
	assert.Equal(t, schedule.AssignmentID("a3"), out[2].ID)
}

func TestAssignments_WithTx_RollbackOnConflict(t *testing.T) {
	// The replacement swap shape: delete the holder, insert the successor.
	// When the insert conflicts the delete must roll back.

	ctx := context.Background()
	assignments := newStore(t).Assignments()
	d := day(t, "2025-03-10")

	require.NoError(t, assignments.Insert(ctx, booking("a1", "alice", "guard-day", d)))
	require.NoError(t, assignments.Insert(ctx, booking("a2", "bob", "guard-day", d)))

	err := assignments.WithTx(ctx, func(tx schedule.AssignmentStore) error {
		if err := tx.DeleteByID(ctx, "a1"); err != nil {
			return err
		}
		return tx.Insert(ctx, booking("a9", "bob", "guard-day", d))
	})
	var conflict *schedule.ConflictError
	require.ErrorAs(t, err, &conflict)

	_, err = assignments.GetByID(ctx, "a1")
	assert.NoError(t, err, "rolled-back delete must leave the original in place")
	_, err = assignments.GetByID(ctx, "a9")
	assert.True(t, schedule.IsNotFound(err))
}

func TestAssignments_WithTx_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	assignments := newStore(t).Assignments()
	d := day(t, "2025-03-10")

	require.NoError(t, assignments.Insert(ctx, booking("a1", "alice", "guard-day", d)))

	err := assignments.WithTx(ctx, func(tx schedule.AssignmentStore) error {
		if err := tx.DeleteByID(ctx, "a1"); err != nil {
			return err
		}
		return tx.Insert(ctx, booking("a2", "bob", "guard-day", d))
	})
	require.NoError(t, err)

	_, err = assignments.Find(ctx, "bob", "guard-day", d)
	assert.NoError(t, err)
	_, err = assignments.Find(ctx, "alice", "guard-day", d)
	assert.True(t, schedule.IsNotFound(err))
}

// =============================================================================
// GUARD TYPE TESTS
// =============================================================================

func TestGuardTypes_RoundTripWithWeekdays(t *testing.T) {
	ctx := context.Background()
	guardTypes := newStore(t).GuardTypes()

	in := schedule.GuardType{
		ID:                 "guard-weekend",
		Name:               "Weekend Guard",
		Start:              clock(t, "08:00"),
		End:                clock(t, "20:00"),
		RequiredPersonnel:  2,
		OfficerRequired:    true,
		ApplicableWeekdays: schedule.NewWeekdaySet(time.Saturday, time.Sunday),
		Color:              "#cc0000",
		Active:             true,
	}
	require.NoError(t, guardTypes.Save(ctx, in))

	got, err := guardTypes.Get(ctx, "guard-weekend")
	require.NoError(t, err)
	assert.Equal(t, in.Name, got.Name)
	assert.Equal(t, "08:00", got.Start.String())
	assert.Equal(t, "20:00", got.End.String())
	assert.Equal(t, 2, got.RequiredPersonnel)
	assert.True(t, got.OfficerRequired)
	assert.Equal(t, in.ApplicableWeekdays, got.ApplicableWeekdays)
	assert.Equal(t, "#cc0000", got.Color)

	_, err = guardTypes.Get(ctx, "missing")
	assert.True(t, schedule.IsNotFound(err))
}

func TestGuardTypes_EmptyWeekdaySetMeansEveryDay(t *testing.T) {
	ctx := context.Background()
	guardTypes := newStore(t).GuardTypes()

	require.NoError(t, guardTypes.Save(ctx, schedule.GuardType{
		ID: "guard-day", Name: "Day Guard",
		Start: clock(t, "06:00"), End: clock(t, "18:00"),
		RequiredPersonnel: 1, Active: true,
	}))

	got, err := guardTypes.Get(ctx, "guard-day")
	require.NoError(t, err)
	assert.True(t, got.AppliesOn(day(t, "2025-03-10")))
	assert.True(t, got.AppliesOn(day(t, "2025-03-15")))
}

func TestGuardTypes_SaveIsUpsert_ListFiltersInactive(t *testing.T) {
	ctx := context.Background()
	guardTypes := newStore(t).GuardTypes()

	gt := schedule.GuardType{
		ID: "guard-day", Name: "Day Guard",
		Start: clock(t, "06:00"), End: clock(t, "18:00"),
		RequiredPersonnel: 1, Active: true,
	}
	require.NoError(t, guardTypes.Save(ctx, gt))

	gt.Active = false
	gt.RequiredPersonnel = 3
	require.NoError(t, guardTypes.Save(ctx, gt))

	active, err := guardTypes.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := guardTypes.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 3, all[0].RequiredPersonnel)
}

// =============================================================================
// EMPLOYEE TESTS
// =============================================================================

func TestEmployees_RoundTripAndActiveFilter(t *testing.T) {
	ctx := context.Background()
	employees := newStore(t).Employees()

	require.NoError(t, employees.Save(ctx, schedule.Employee{
		ID: "alice", Name: "Alice", Rank: "lieutenant", Officer: true, Active: true,
	}))
	require.NoError(t, employees.Save(ctx, schedule.Employee{
		ID: "bob", Name: "Bob", Active: false,
	}))

	got, err := employees.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, got.Officer)
	assert.Equal(t, "lieutenant", got.Rank)

	active, err := employees.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, schedule.EmployeeID("alice"), active[0].ID)

	all, err := employees.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// =============================================================================
// REQUEST TESTS
// =============================================================================

func TestRequests_LeaveRoundTripAndDecisionUpdate(t *testing.T) {
	ctx := context.Background()
	requests := newStore(t).Requests()

	in := schedule.LeaveRequest{
		ID:           "lr-1",
		RequesterID:  "alice",
		Kind:         "vacation",
		Start:        day(t, "2025-03-10"),
		End:          day(t, "2025-03-12"),
		NumberOfDays: 3,
		Reason:       "family trip",
		Priority:     schedule.PriorityNormal,
		Status:       schedule.LeavePending,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, requests.SaveLeave(ctx, in))

	got, err := requests.GetLeave(ctx, "lr-1")
	require.NoError(t, err)
	assert.Equal(t, schedule.LeavePending, got.Status)
	assert.Nil(t, got.DecidedAt, "undecided requests round-trip a NULL decided_at")
	assert.Equal(t, 3, got.NumberOfDays)

	now := time.Now().UTC().Truncate(time.Second)
	got.Status = schedule.LeaveApproved
	got.DecidedBy = "chief"
	got.DecisionComment = "enjoy"
	got.DecidedAt = &now
	require.NoError(t, requests.SaveLeave(ctx, got))

	got, err = requests.GetLeave(ctx, "lr-1")
	require.NoError(t, err)
	assert.Equal(t, schedule.LeaveApproved, got.Status)
	assert.Equal(t, schedule.EmployeeID("chief"), got.DecidedBy)
	require.NotNil(t, got.DecidedAt)
	assert.True(t, got.DecidedAt.Equal(now))
}

func TestRequests_ReplacementRoundTrip(t *testing.T) {
	ctx := context.Background()
	requests := newStore(t).Requests()

	in := schedule.ReplacementRequest{
		ID:          "rr-1",
		RequesterID: "alice",
		GuardTypeID: "guard-day",
		Date:        day(t, "2025-03-10"),
		Reason:      "conflict",
		Priority:    schedule.PriorityHigh,
		Status:      schedule.ReplacementOpen,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, requests.SaveReplacement(ctx, in))

	got, err := requests.GetReplacement(ctx, "rr-1")
	require.NoError(t, err)
	assert.Equal(t, schedule.ReplacementOpen, got.Status)
	assert.Empty(t, got.ReplacementID)

	got.ReplacementID = "bob"
	got.Status = schedule.ReplacementApproved
	require.NoError(t, requests.SaveReplacement(ctx, got))

	got, err = requests.GetReplacement(ctx, "rr-1")
	require.NoError(t, err)
	assert.Equal(t, schedule.EmployeeID("bob"), got.ReplacementID)

	_, err = requests.GetReplacement(ctx, "missing")
	assert.True(t, schedule.IsNotFound(err))
}

// =============================================================================
// NOTIFICATION TESTS
// =============================================================================

func TestNotifications_UnreadAccounting(t *testing.T) {
	ctx := context.Background()
	notices := newStore(t).Notifications()

	base := time.Now().UTC()
	for i, id := range []schedule.NotificationID{"n1", "n2", "n3"} {
		require.NoError(t, notices.Insert(ctx, schedule.Notification{
			ID:          id,
			RecipientID: "alice",
			Kind:        schedule.NotifyLeaveSubmitted,
			Title:       "pending request",
			Body:        "a leave request awaits review",
			CreatedAt:   base.Add(time.Duration(i) * time.Millisecond),
		}))
	}

	out, err := notices.ListByRecipient(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, schedule.NotificationID("n3"), out[0].ID, "newest first")

	require.NoError(t, notices.MarkRead(ctx, "n1"))
	assert.True(t, schedule.IsNotFound(notices.MarkRead(ctx, "missing")))

	unread, err := notices.UnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	n, err := notices.MarkAllRead(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	unread, err = notices.UnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, unread)
}

// =============================================================================
// AVAILABILITY TESTS
// =============================================================================

func TestAvailability_ScopeRoundTrip(t *testing.T) {
	// An any-scope slot persists as NULL and comes back as AnyType.
	ctx := context.Background()
	availability := newStore(t).Availability()
	d := day(t, "2025-03-10")

	require.NoError(t, availability.Save(ctx, schedule.AvailabilitySlot{
		ID: "s1", EmployeeID: "alice", Date: d,
		Scope: schedule.AnyGuardType(), Status: schedule.StatusAvailable,
		CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, availability.Save(ctx, schedule.AvailabilitySlot{
		ID: "s2", EmployeeID: "alice", Date: d,
		Scope: schedule.SpecificGuardType("guard-night"), Status: schedule.StatusPreferred,
		CreatedAt: time.Now().UTC(),
	}))

	out, err := availability.ListByEmployee(ctx, "alice", d, d)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[0].Scope.IsAny())
	target, ok := out[1].Scope.GuardType()
	require.True(t, ok)
	assert.Equal(t, schedule.GuardTypeID("guard-night"), target)
}

func TestAvailability_ListByDateAndDelete(t *testing.T) {
	ctx := context.Background()
	availability := newStore(t).Availability()
	d := day(t, "2025-03-10")

	require.NoError(t, availability.Save(ctx, schedule.AvailabilitySlot{
		ID: "s1", EmployeeID: "alice", Date: d,
		Scope: schedule.AnyGuardType(), Status: schedule.StatusAvailable,
		CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, availability.Save(ctx, schedule.AvailabilitySlot{
		ID: "s2", EmployeeID: "bob", Date: day(t, "2025-03-11"),
		Scope: schedule.AnyGuardType(), Status: schedule.StatusUnavailable,
		CreatedAt: time.Now().UTC(),
	}))

	out, err := availability.ListByDate(ctx, d)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, schedule.SlotID("s1"), out[0].ID)

	require.NoError(t, availability.DeleteByID(ctx, "s1"))
	assert.True(t, schedule.IsNotFound(availability.DeleteByID(ctx, "s1")))
}
