/*
autoassign.go - Auto-assign contract and the reference greedy planner

PURPOSE:
  The core does not define an optimal assignment solver. It defines the
  contract an optimizer must satisfy - propose (employee, guard type, date)
  tuples for a range - and applies proposals exactly like manual recurring
  expansion: best effort, per-date atomic creates, conflicts reported back.

  GreedyPlanner is a reference implementation of that contract, following
  the source system's heuristic: respect declared availability (advisory),
  satisfy officer requirements first, and balance workload by assigning the
  fewest-hours employee first. Any external optimizer can replace it.

SEE ALSO:
  - recurrence.go:   The shared best-effort materialization policy
  - availability.go: CanWork advisory check
  - workload.go:     Rotation equity input
*/
package schedule

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// OPTIMIZER CONTRACT
// =============================================================================

// Proposal is one suggested booking.
type Proposal struct {
	EmployeeID  EmployeeID
	GuardTypeID GuardTypeID
	Date        Day
}

// Optimizer proposes bookings for a date range. Implementations must not
// write to the ledger; proposals go through ApplyProposals.
type Optimizer interface {
	Propose(ctx context.Context, from, to Day) ([]Proposal, error)
}

// ApplyProposals books each proposal independently through the ledger.
// Conflicts are collected as skipped dates, mirroring recurrence expansion.
func ApplyProposals(ctx context.Context, ledger *Ledger, proposals []Proposal) (*ExpansionReport, error) {
	report := &ExpansionReport{}
	for _, p := range proposals {
		a, err := ledger.Create(ctx, p.EmployeeID, p.GuardTypeID, p.Date, OriginAuto)
		switch {
		case err == nil:
			report.Created = append(report.Created, a)
		case IsClientError(err):
			report.Skipped = append(report.Skipped, SkippedDate{Date: p.Date, Reason: err.Error()})
		default:
			return nil, err
		}
	}
	return report, nil
}

// =============================================================================
// GREEDY PLANNER - Reference optimizer
// =============================================================================

type GreedyPlanner struct {
	Assignments  AssignmentStore
	GuardTypes   GuardTypeStore
	Employees    EmployeeDirectory
	Availability AvailabilityStore
	Workload     *WorkloadCalculator
}

type candidate struct {
	employee  Employee
	preferred bool
	hours     decimal.Decimal
}

// Propose fills understaffed applicable shifts in [from, to].
func (p *GreedyPlanner) Propose(ctx context.Context, from, to Day) ([]Proposal, error) {
	if to.Before(from) {
		return nil, &InvalidRangeError{Start: from, End: to}
	}

	guardTypes, err := p.GuardTypes.List(ctx, false)
	if err != nil {
		return nil, err
	}
	employees, err := p.Employees.List(ctx, true)
	if err != nil {
		return nil, err
	}
	hours, err := p.Workload.Hours(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var proposals []Proposal
	for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
		dayAssignments, err := p.Assignments.ListByDateRange(ctx, d, d)
		if err != nil {
			return nil, err
		}
		slots, err := p.Availability.ListByDate(ctx, d)
		if err != nil {
			return nil, err
		}
		slotsByEmployee := make(map[EmployeeID][]AvailabilitySlot)
		for _, s := range slots {
			slotsByEmployee[s.EmployeeID] = append(slotsByEmployee[s.EmployeeID], s)
		}

		for _, gt := range guardTypes {
			if !gt.AppliesOn(d) {
				continue
			}
			assigned := make(map[EmployeeID]bool)
			officerCovered := false
			for _, a := range dayAssignments {
				if a.GuardTypeID != gt.ID {
					continue
				}
				assigned[a.EmployeeID] = true
				if e, err := p.Employees.Get(ctx, a.EmployeeID); err == nil && e.Officer {
					officerCovered = true
				}
			}

			need := gt.RequiredPersonnel - len(assigned)
			for need > 0 {
				pool := p.rank(employees, gt.ID, assigned, slotsByEmployee, hours)
				if len(pool) == 0 {
					break
				}
				pick := pool[0]
				if gt.OfficerRequired && !officerCovered {
					if officer, ok := firstOfficer(pool); ok {
						pick = officer
					}
					// No officer available: staff the slot anyway, the
					// requirement is advisory.
				}

				proposals = append(proposals, Proposal{
					EmployeeID:  pick.employee.ID,
					GuardTypeID: gt.ID,
					Date:        d,
				})
				assigned[pick.employee.ID] = true
				if pick.employee.Officer {
					officerCovered = true
				}
				hours[pick.employee.ID] = hours[pick.employee.ID].Add(gt.Duration())
				need--
			}
		}
	}
	return proposals, nil
}

// rank returns willing candidates ordered preferred-first, then fewest
// hours, then ID for determinism.
func (p *GreedyPlanner) rank(
	employees []Employee,
	guardType GuardTypeID,
	assigned map[EmployeeID]bool,
	slotsByEmployee map[EmployeeID][]AvailabilitySlot,
	hours map[EmployeeID]decimal.Decimal,
) []candidate {
	var pool []candidate
	for _, e := range employees {
		if assigned[e.ID] {
			continue
		}
		willing, preferred := CanWork(slotsByEmployee[e.ID], guardType)
		if !willing {
			continue
		}
		pool = append(pool, candidate{employee: e, preferred: preferred, hours: hours[e.ID]})
	}
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].preferred != pool[j].preferred {
			return pool[i].preferred
		}
		if !pool[i].hours.Equal(pool[j].hours) {
			return pool[i].hours.LessThan(pool[j].hours)
		}
		return pool[i].employee.ID < pool[j].employee.ID
	})
	return pool
}

func firstOfficer(pool []candidate) (candidate, bool) {
	for _, c := range pool {
		if c.employee.Officer {
			return c, true
		}
	}
	return candidate{}, false
}

// =============================================================================
// REPLACEMENT SEARCH - Candidates for an open replacement request
// =============================================================================

// ReplacementSearch scans availability for substitutes and notifies them.
type ReplacementSearch struct {
	Planner  *GreedyPlanner
	Requests RequestStore
	Notifier *Dispatcher
}

// Run finds willing candidates for the request's (date, guard type), ranked
// by rotation equity over the request's month, and emits one candidate
// notification each. Returns the ranked candidates.
func (rs *ReplacementSearch) Run(ctx context.Context, id RequestID) ([]Employee, error) {
	req, err := rs.Requests.GetReplacement(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != ReplacementOpen {
		return nil, &InvalidTransitionError{RequestID: id, Status: string(req.Status), Action: "search"}
	}

	employees, err := rs.Planner.Employees.List(ctx, true)
	if err != nil {
		return nil, err
	}
	slots, err := rs.Planner.Availability.ListByDate(ctx, req.Date)
	if err != nil {
		return nil, err
	}
	slotsByEmployee := make(map[EmployeeID][]AvailabilitySlot)
	for _, s := range slots {
		slotsByEmployee[s.EmployeeID] = append(slotsByEmployee[s.EmployeeID], s)
	}

	monthStart := NewDay(req.Date.Year(), req.Date.Month(), 1)
	monthEnd := NewDay(req.Date.Year(), req.Date.Month(), LastDayOfMonth(req.Date.Year(), req.Date.Month()))
	hours, err := rs.Planner.Workload.Hours(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	exclude := map[EmployeeID]bool{req.RequesterID: true}
	dayAssignments, err := rs.Planner.Assignments.ListByDateRange(ctx, req.Date, req.Date)
	if err != nil {
		return nil, err
	}
	for _, a := range dayAssignments {
		if a.GuardTypeID == req.GuardTypeID {
			exclude[a.EmployeeID] = true
		}
	}

	pool := rs.Planner.rank(employees, req.GuardTypeID, exclude, slotsByEmployee, hours)

	var candidates []Employee
	for _, c := range pool {
		candidates = append(candidates, c.employee)
		rs.Notifier.Emit(ctx, c.employee.ID, NotifyReplacementCandidate,
			"Replacement opportunity",
			"A shift on "+req.Date.String()+" needs covering",
			"/replacement-requests/"+string(req.ID))
	}
	return candidates, nil
}
