/*
coverage.go - Coverage classification for (date, guard type) pairs

PURPOSE:
  Classify answers "is this shift staffed?" as a pure function of the
  assignment ledger and the guard type catalog:

    vacant    assigned == 0
    partial   0 < assigned < required
    complete  assigned >= required

  Querying a weekday the guard type does not run on is a caller error and
  returns *NotApplicableError, not a coverage state.

CACHING:
  Results are held in a go-cache store keyed by (date, guard type) with a
  short TTL, and invalidated eagerly by assignment events. The cache is an
  optimization only; classification stays correct with the cache disabled.

SEE ALSO:
  - events.go: Invalidation feed
  - ledger.go: The mutations that publish those events
*/
package schedule

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Classifier computes coverage states, with an optional invalidated-on-write
// cache.
type Classifier struct {
	Assignments AssignmentStore
	GuardTypes  GuardTypeStore
	cache       *gocache.Cache
}

// NewClassifier creates a classifier. When bus is non-nil the classifier
// subscribes for invalidation; cacheTTL bounds staleness for any write path
// that bypasses the bus.
func NewClassifier(assignments AssignmentStore, guardTypes GuardTypeStore, bus *Bus, cacheTTL time.Duration) *Classifier {
	c := &Classifier{
		Assignments: assignments,
		GuardTypes:  guardTypes,
		cache:       gocache.New(cacheTTL, 2*cacheTTL),
	}
	if bus != nil {
		bus.Subscribe(c.onEvent)
	}
	return c
}

func coverageKey(date Day, guardType GuardTypeID) string {
	return date.String() + "|" + string(guardType)
}

func (c *Classifier) onEvent(e Event) {
	if e.Kind != EventAssignmentCreated && e.Kind != EventAssignmentDeleted {
		return
	}
	c.cache.Delete(coverageKey(e.Date, e.GuardTypeID))
}

// Classify returns the coverage state for a (date, guard type) pair.
func (c *Classifier) Classify(ctx context.Context, date Day, guardType GuardTypeID) (CoverageState, error) {
	gt, err := c.GuardTypes.Get(ctx, guardType)
	if err != nil {
		return CoverageVacant, err
	}
	if !gt.AppliesOn(date) {
		return CoverageVacant, &NotApplicableError{
			GuardTypeID: guardType,
			Date:        date,
			Weekday:     date.Weekday(),
		}
	}

	key := coverageKey(date, guardType)
	if v, found := c.cache.Get(key); found {
		return v.(CoverageState), nil
	}

	count, err := c.AssignedCount(ctx, date, guardType)
	if err != nil {
		return CoverageVacant, err
	}

	state := classify(count, gt.RequiredPersonnel)
	c.cache.SetDefault(key, state)
	return state, nil
}

// AssignedCount returns how many people are booked on the pair. Uncached.
func (c *Classifier) AssignedCount(ctx context.Context, date Day, guardType GuardTypeID) (int, error) {
	assignments, err := c.Assignments.ListByDateRange(ctx, date, date)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, a := range assignments {
		if a.GuardTypeID == guardType {
			count++
		}
	}
	return count, nil
}

func classify(assigned, required int) CoverageState {
	switch {
	case assigned == 0:
		return CoverageVacant
	case assigned >= required:
		return CoverageComplete
	default:
		return CoveragePartial
	}
}
