package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firehall/shift-engine/schedule"
	"github.com/firehall/shift-engine/schedule/store"
)

func day(t *testing.T, s string) schedule.Day {
	t.Helper()
	d, err := schedule.ParseDay(s)
	require.NoError(t, err)
	return d
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
// ASSIGNMENT STORE TESTS
// =============================================================================

func TestMemoryInsert_DuplicateTriple_Conflict(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	d := day(t, "2025-03-10")

	require.NoError(t, m.Insert(ctx, booking("a1", "alice", "guard-day", d)))

	err := m.Insert(ctx, booking("a2", "alice", "guard-day", d))
	var conflict *schedule.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, schedule.AssignmentID("a1"), conflict.ExistingID)

	_, err = m.GetByID(ctx, "a2")
	assert.True(t, schedule.IsNotFound(err), "losing insert must leave no trace")
}

func TestMemoryFind_And_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	_, err := m.GetByID(ctx, "missing")
	assert.True(t, schedule.IsNotFound(err))

	_, err = m.Find(ctx, "alice", "guard-day", day(t, "2025-03-10"))
	assert.True(t, schedule.IsNotFound(err))
}

func TestMemoryDeleteAll_CountsOnlyMatchingPair(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	d := day(t, "2025-03-10")

	require.NoError(t, m.Insert(ctx, booking("a1", "alice", "guard-day", d)))
	require.NoError(t, m.Insert(ctx, booking("a2", "bob", "guard-day", d)))
	require.NoError(t, m.Insert(ctx, booking("a3", "carol", "guard-night", d)))
	require.NoError(t, m.Insert(ctx, booking("a4", "alice", "guard-day", day(t, "2025-03-11"))))

	n, err := m.DeleteAll(ctx, "guard-day", d)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = m.GetByID(ctx, "a3")
	assert.NoError(t, err)
	_, err = m.GetByID(ctx, "a4")
	assert.NoError(t, err)
}

func TestMemoryListByDateRange_SortedAndBounded(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	require.NoError(t, m.Insert(ctx, booking("a3", "carol", "guard-day", day(t, "2025-03-12"))))
	require.NoError(t, m.Insert(ctx, booking("a1", "alice", "guard-day", day(t, "2025-03-10"))))
	require.NoError(t, m.Insert(ctx, booking("a2", "bob", "guard-night", day(t, "2025-03-10"))))
	require.NoError(t, m.Insert(ctx, booking("a4", "dave", "guard-day", day(t, "2025-04-01"))))

	out, err := m.ListByDateRange(ctx, day(t, "2025-03-01"), day(t, "2025-03-31"))
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, schedule.AssignmentID("a1"), out[0].ID, "date then guard type then ID")
	assert.Equal(t, schedule.AssignmentID("a2"), out[1].ID)
	assert.Equal(t, schedule.AssignmentID("a3"), out[2].ID)
}

func TestMemoryWithTx_ErrorRestoresState(t *testing.T) {
	// GIVEN: a committed booking
	// WHEN: a transaction deletes it, inserts another, then fails
	// THEN: the original booking and its triple index are back

	ctx := context.Background()
	m := store.NewMemory()
	d := day(t, "2025-03-10")
	require.NoError(t, m.Insert(ctx, booking("a1", "alice", "guard-day", d)))

	boom := assert.AnError
	err := m.WithTx(ctx, func(tx schedule.AssignmentStore) error {
		if err := tx.DeleteByID(ctx, "a1"); err != nil {
			return err
		}
		if err := tx.Insert(ctx, booking("a2", "bob", "guard-day", d)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = m.GetByID(ctx, "a1")
	assert.NoError(t, err, "rollback must restore the deleted booking")
	_, err = m.GetByID(ctx, "a2")
	assert.True(t, schedule.IsNotFound(err))

	// The triple index must be restored too: rebooking alice conflicts again.
	err = m.Insert(ctx, booking("a5", "alice", "guard-day", d))
	var conflict *schedule.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestMemoryWithTx_CommitKeepsChanges(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	d := day(t, "2025-03-10")
	require.NoError(t, m.Insert(ctx, booking("a1", "alice", "guard-day", d)))

	err := m.WithTx(ctx, func(tx schedule.AssignmentStore) error {
		if err := tx.DeleteByID(ctx, "a1"); err != nil {
			return err
		}
		return tx.Insert(ctx, booking("a2", "bob", "guard-day", d))
	})
	require.NoError(t, err)

	_, err = m.GetByID(ctx, "a1")
	assert.True(t, schedule.IsNotFound(err))
	_, err = m.Find(ctx, "bob", "guard-day", d)
	assert.NoError(t, err)
}

// =============================================================================
// NOTIFICATION STORE TESTS
// =============================================================================

func TestNotices_NewestFirstAndUnreadAccounting(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	notices := &store.Notices{M: m}

	base := time.Now().UTC()
	for i, id := range []schedule.NotificationID{"n1", "n2", "n3"} {
		require.NoError(t, notices.Insert(ctx, schedule.Notification{
			ID:          id,
			RecipientID: "alice",
			Kind:        schedule.NotifyLeaveSubmitted,
			Title:       "pending request",
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, notices.Insert(ctx, schedule.Notification{
		ID: "other", RecipientID: "bob", Kind: schedule.NotifyLeaveSubmitted, CreatedAt: base,
	}))

	out, err := notices.ListByRecipient(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, schedule.NotificationID("n3"), out[0].ID, "newest first")

	require.NoError(t, notices.MarkRead(ctx, "n2"))
	unread, err := notices.UnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	n, err := notices.MarkAllRead(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "already-read notices are not recounted")

	unread, err = notices.UnreadCount(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, unread, "other recipients untouched")
}

func TestNotices_MarkRead_Unknown_NotFound(t *testing.T) {
	notices := &store.Notices{M: store.NewMemory()}
	err := notices.MarkRead(context.Background(), "missing")
	assert.True(t, schedule.IsNotFound(err))
}

// =============================================================================
// AVAILABILITY STORE TESTS
// =============================================================================

func TestSlots_RangeAndDateFiltering(t *testing.T) {
	ctx := context.Background()
	slots := &store.Slots{M: store.NewMemory()}

	save := func(id schedule.SlotID, employee schedule.EmployeeID, d schedule.Day) {
		require.NoError(t, slots.Save(ctx, schedule.AvailabilitySlot{
			ID: id, EmployeeID: employee, Date: d,
			Scope: schedule.AnyGuardType(), Status: schedule.StatusAvailable,
		}))
	}
	save("s1", "alice", day(t, "2025-03-10"))
	save("s2", "alice", day(t, "2025-03-20"))
	save("s3", "alice", day(t, "2025-04-01"))
	save("s4", "bob", day(t, "2025-03-10"))

	out, err := slots.ListByEmployee(ctx, "alice", day(t, "2025-03-01"), day(t, "2025-03-31"))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, schedule.SlotID("s1"), out[0].ID, "sorted by date")

	byDate, err := slots.ListByDate(ctx, day(t, "2025-03-10"))
	require.NoError(t, err)
	assert.Len(t, byDate, 2, "both employees on that date")

	require.NoError(t, slots.DeleteByID(ctx, "s1"))
	assert.True(t, schedule.IsNotFound(slots.DeleteByID(ctx, "s1")))
}
