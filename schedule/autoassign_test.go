package schedule_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firehall/shift-engine/schedule"
	"github.com/firehall/shift-engine/schedule/store"
)

// plannerFixture adds the directory, availability and planner wiring the
// optimizer needs on top of the engine fixture.
type plannerFixture struct {
	*fixture
	dir     *store.Directory
	slots   *store.Slots
	planner *schedule.GreedyPlanner
}

func newPlanner(t *testing.T) *plannerFixture {
	t.Helper()
	f := newFixture(t, schedule.LedgerConfig{})
	dir := &store.Directory{M: f.store}
	slots := &store.Slots{M: f.store}
	return &plannerFixture{
		fixture: f,
		dir:     dir,
		slots:   slots,
		planner: &schedule.GreedyPlanner{
			Assignments:  f.store,
			GuardTypes:   f.store,
			Employees:    dir,
			Availability: slots,
			Workload:     schedule.NewWorkloadCalculator(f.store, f.store),
		},
	}
}

func (pf *plannerFixture) addEmployee(t *testing.T, id schedule.EmployeeID, officer bool) {
	t.Helper()
	require.NoError(t, pf.dir.Save(context.Background(), schedule.Employee{
		ID: id, Name: string(id), Officer: officer, Active: true,
	}))
}

func (pf *plannerFixture) declare(t *testing.T, id schedule.EmployeeID, d schedule.Day, scope schedule.GuardScope, status schedule.AvailabilityStatus) {
	t.Helper()
	require.NoError(t, pf.slots.Save(context.Background(), schedule.AvailabilitySlot{
		ID:         schedule.SlotID("slot-" + string(id) + "-" + d.String() + "-" + string(status)),
		EmployeeID: id,
		Date:       d,
		Scope:      scope,
		Status:     status,
	}))
}

// =============================================================================
// GREEDY PLANNER TESTS
// =============================================================================

func TestPropose_FillsOnlyUnderstaffedApplicableShifts(t *testing.T) {
	// GIVEN: the day guard needs two, the night guard is already staffed,
	//        and a weekend guard does not run on Monday
	// THEN: proposals fill the day guard and nothing else

	ctx := context.Background()
	pf := newPlanner(t)
	pf.saveGuardType(t, dayGuard(t))
	pf.saveGuardType(t, nightGuard(t))
	pf.saveGuardType(t, weekendGuard(t))
	d := day(t, "2025-03-10") // Monday

	for _, id := range []schedule.EmployeeID{"alice", "bob", "carol"} {
		pf.addEmployee(t, id, false)
		pf.declare(t, id, d, schedule.AnyGuardType(), schedule.StatusAvailable)
	}
	_, err := pf.ledger.Create(ctx, "carol", "guard-night", d, schedule.OriginManual)
	require.NoError(t, err)

	proposals, err := pf.planner.Propose(ctx, d, d)
	require.NoError(t, err)

	require.Len(t, proposals, 2)
	for _, p := range proposals {
		assert.Equal(t, schedule.GuardTypeID("guard-day"), p.GuardTypeID)
		assert.True(t, p.Date.Equal(d))
	}
	// carol carries 12h from the night shift; alice and bob go first.
	assert.Equal(t, schedule.EmployeeID("alice"), proposals[0].EmployeeID)
	assert.Equal(t, schedule.EmployeeID("bob"), proposals[1].EmployeeID)
}

func TestPropose_OnlyWillingEmployeesConsidered(t *testing.T) {
	// No declared availability means not willing; an unavailable slot vetoes.
	ctx := context.Background()
	pf := newPlanner(t)
	pf.saveGuardType(t, dayGuard(t))
	d := day(t, "2025-03-10")

	pf.addEmployee(t, "alice", false)
	pf.addEmployee(t, "bob", false)
	pf.addEmployee(t, "carol", false)
	pf.declare(t, "alice", d, schedule.AnyGuardType(), schedule.StatusAvailable)
	pf.declare(t, "bob", d, schedule.AnyGuardType(), schedule.StatusAvailable)
	pf.declare(t, "bob", d, schedule.SpecificGuardType("guard-day"), schedule.StatusUnavailable)
	// carol declared nothing

	proposals, err := pf.planner.Propose(ctx, d, d)
	require.NoError(t, err)

	require.Len(t, proposals, 1, "two required but only one willing")
	assert.Equal(t, schedule.EmployeeID("alice"), proposals[0].EmployeeID)
}

func TestPropose_PreferredBeatsLowerID(t *testing.T) {
	ctx := context.Background()
	pf := newPlanner(t)
	pf.saveGuardType(t, nightGuard(t)) // requires 1
	d := day(t, "2025-03-10")

	pf.addEmployee(t, "alice", false)
	pf.addEmployee(t, "zoe", false)
	pf.declare(t, "alice", d, schedule.AnyGuardType(), schedule.StatusAvailable)
	pf.declare(t, "zoe", d, schedule.SpecificGuardType("guard-night"), schedule.StatusPreferred)

	proposals, err := pf.planner.Propose(ctx, d, d)
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.Equal(t, schedule.EmployeeID("zoe"), proposals[0].EmployeeID)
}

func TestPropose_OfficerRequirementStaffedFirst(t *testing.T) {
	// GIVEN: an officer-required shift and a non-officer ranked ahead by ID
	// THEN: the officer is picked first so the requirement is covered

	ctx := context.Background()
	pf := newPlanner(t)
	pf.saveGuardType(t, schedule.GuardType{
		ID: "guard-command", Name: "Command Guard",
		Start: clock(t, "06:00"), End: clock(t, "18:00"),
		RequiredPersonnel: 2, OfficerRequired: true, Active: true,
	})
	d := day(t, "2025-03-10")

	pf.addEmployee(t, "alice", false)
	pf.addEmployee(t, "oscar", true)
	pf.declare(t, "alice", d, schedule.AnyGuardType(), schedule.StatusAvailable)
	pf.declare(t, "oscar", d, schedule.AnyGuardType(), schedule.StatusAvailable)

	proposals, err := pf.planner.Propose(ctx, d, d)
	require.NoError(t, err)
	require.Len(t, proposals, 2)
	assert.Equal(t, schedule.EmployeeID("oscar"), proposals[0].EmployeeID)
	assert.Equal(t, schedule.EmployeeID("alice"), proposals[1].EmployeeID)
}

func TestPropose_NoOfficerAvailable_StaffsAnyway(t *testing.T) {
	ctx := context.Background()
	pf := newPlanner(t)
	pf.saveGuardType(t, schedule.GuardType{
		ID: "guard-command", Name: "Command Guard",
		Start: clock(t, "06:00"), End: clock(t, "18:00"),
		RequiredPersonnel: 1, OfficerRequired: true, Active: true,
	})
	d := day(t, "2025-03-10")

	pf.addEmployee(t, "alice", false)
	pf.declare(t, "alice", d, schedule.AnyGuardType(), schedule.StatusAvailable)

	proposals, err := pf.planner.Propose(ctx, d, d)
	require.NoError(t, err)
	require.Len(t, proposals, 1, "the officer requirement is advisory")
	assert.Equal(t, schedule.EmployeeID("alice"), proposals[0].EmployeeID)
}

func TestPropose_InvertedRange_Rejected(t *testing.T) {
	pf := newPlanner(t)
	_, err := pf.planner.Propose(context.Background(), day(t, "2025-03-12"), day(t, "2025-03-10"))
	var rerr *schedule.InvalidRangeError
	assert.ErrorAs(t, err, &rerr)
}

// =============================================================================
// APPLY PROPOSALS TESTS
// =============================================================================

func TestApplyProposals_BestEffortWithAutoOrigin(t *testing.T) {
	// GIVEN: two proposals, one colliding with an existing booking
	// THEN: one created with the auto origin, one skipped, no error

	ctx := context.Background()
	pf := newPlanner(t)
	pf.saveGuardType(t, dayGuard(t))
	d := day(t, "2025-03-10")

	_, err := pf.ledger.Create(ctx, "alice", "guard-day", d, schedule.OriginManual)
	require.NoError(t, err)

	report, err := schedule.ApplyProposals(ctx, pf.ledger, []schedule.Proposal{
		{EmployeeID: "alice", GuardTypeID: "guard-day", Date: d},
		{EmployeeID: "bob", GuardTypeID: "guard-day", Date: d},
	})
	require.NoError(t, err)

	require.Len(t, report.Created, 1)
	assert.Equal(t, schedule.EmployeeID("bob"), report.Created[0].EmployeeID)
	assert.Equal(t, schedule.OriginAuto, report.Created[0].Origin)
	require.Len(t, report.Skipped, 1)
	assert.True(t, report.Skipped[0].Date.Equal(d))
}

// =============================================================================
// REPLACEMENT SEARCH TESTS
// =============================================================================

func TestReplacementSearch_RanksAndNotifiesCandidates(t *testing.T) {
	// GIVEN: alice asks off her day shift; bob is willing, carol is willing
	//        but already booked on the same shift
	// THEN: only bob is a candidate and only bob is notified

	ctx := context.Background()
	pf := newPlanner(t)
	pf.saveGuardType(t, dayGuard(t))
	d := day(t, "2025-03-10")

	for _, id := range []schedule.EmployeeID{"alice", "bob", "carol"} {
		pf.addEmployee(t, id, false)
		pf.declare(t, id, d, schedule.AnyGuardType(), schedule.StatusAvailable)
	}
	_, err := pf.ledger.Create(ctx, "alice", "guard-day", d, schedule.OriginManual)
	require.NoError(t, err)
	_, err = pf.ledger.Create(ctx, "carol", "guard-day", d, schedule.OriginManual)
	require.NoError(t, err)
	r := submitReplacement(t, pf.fixture, "alice", d)

	search := &schedule.ReplacementSearch{
		Planner:  pf.planner,
		Requests: pf.store,
		Notifier: pf.notifier,
	}
	candidates, err := search.Run(ctx, r.ID)
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, schedule.EmployeeID("bob"), candidates[0].ID)

	bobNotes := notificationsFor(t, pf.fixture, "bob")
	require.Len(t, bobNotes, 1)
	assert.Equal(t, schedule.NotifyReplacementCandidate, bobNotes[0].Kind)
	assert.Empty(t, notificationsFor(t, pf.fixture, "carol"))
}

func TestReplacementSearch_OnlyOpenRequests(t *testing.T) {
	ctx := context.Background()
	pf := newPlanner(t)
	pf.saveGuardType(t, dayGuard(t))
	d := day(t, "2025-03-10")

	_, err := pf.ledger.Create(ctx, "alice", "guard-day", d, schedule.OriginManual)
	require.NoError(t, err)
	r := submitReplacement(t, pf.fixture, "alice", d)
	_, err = pf.workflow.DecideReplacement(ctx, r.ID, schedule.ActionRefuse, "chief", "", "")
	require.NoError(t, err)

	search := &schedule.ReplacementSearch{
		Planner:  pf.planner,
		Requests: pf.store,
		Notifier: pf.notifier,
	}
	_, err = search.Run(ctx, r.ID)
	assert.True(t, schedule.IsInvalidTransition(err))
}
