package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/firehall/shift-engine/schedule"
	"github.com/firehall/shift-engine/schedule/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// fixture wires a full engine over one in-memory store.
type fixture struct {
	store    *store.Memory
	bus      *schedule.Bus
	ledger   *schedule.Ledger
	notifier *schedule.Dispatcher
	workflow *schedule.Workflow
}

func newFixture(t *testing.T, cfg schedule.LedgerConfig) *fixture {
	t.Helper()
	m := store.NewMemory()
	bus := schedule.NewBus()
	ledger := schedule.NewLedger(m, m, bus, cfg)
	notifier := schedule.NewDispatcher(&store.Notices{M: m})
	return &fixture{
		store:    m,
		bus:      bus,
		ledger:   ledger,
		notifier: notifier,
		workflow: schedule.NewWorkflow(ledger, m, notifier, bus),
	}
}

func (f *fixture) saveGuardType(t *testing.T, g schedule.GuardType) {
	t.Helper()
	require.NoError(t, f.store.Save(context.Background(), g))
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

// dayGuard is a 06:00-18:00 shift needing two people, every day.
func dayGuard(t *testing.T) schedule.GuardType {
	return schedule.GuardType{
		ID:                "guard-day",
		Name:              "Day Guard",
		Start:             clock(t, "06:00"),
		End:               clock(t, "18:00"),
		RequiredPersonnel: 2,
		Active:            true,
	}
}

// nightGuard wraps midnight, needs one person, every day.
func nightGuard(t *testing.T) schedule.GuardType {
	return schedule.GuardType{
		ID:                "guard-night",
		Name:              "Night Guard",
		Start:             clock(t, "18:00"),
		End:               clock(t, "06:00"),
		RequiredPersonnel: 1,
		Active:            true,
	}
}

// weekendGuard runs Saturday and Sunday only.
func weekendGuard(t *testing.T) schedule.GuardType {
	return schedule.GuardType{
		ID:                 "guard-weekend",
		Name:               "Weekend Guard",
		Start:              clock(t, "08:00"),
		End:                clock(t, "20:00"),
		RequiredPersonnel:  1,
		ApplicableWeekdays: schedule.NewWeekdaySet(time.Saturday, time.Sunday),
		Active:             true,
	}
}
