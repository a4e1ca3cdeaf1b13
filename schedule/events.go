/*
events.go - Domain events for assignment and workflow mutations

PURPOSE:
  Every successful assignment create/delete and workflow transition publishes
  an event on an in-process bus. Downstream caches (coverage classifier) and
  the notification dispatcher subscribe instead of re-reading full
  collections after every mutation.

DELIVERY:
  Synchronous fan-out under a read lock. Handlers must be fast and must not
  call back into the ledger; they get a value copy of the event.
*/
package schedule

import (
	"sync"
	"time"
)

type EventKind string

const (
	EventAssignmentCreated EventKind = "assignment_created"
	EventAssignmentDeleted EventKind = "assignment_deleted"
	EventRequestSubmitted  EventKind = "request_submitted"
	EventRequestDecided    EventKind = "request_decided"
)

// Event describes one mutation. Assignment events carry the full triple so
// subscribers can invalidate exactly the (date, guard type) pair touched.
type Event struct {
	Kind        EventKind
	EmployeeID  EmployeeID
	GuardTypeID GuardTypeID
	Date        Day
	Origin      Origin
	RequestID   RequestID
	At          time.Time
}

// Bus is a minimal in-process publish/subscribe fan-out.
type Bus struct {
	mu   sync.RWMutex
	subs []func(Event)
}

func NewBus() *Bus { return &Bus{} }

// Subscribe registers a handler for all events. Handlers are invoked
// synchronously in registration order.
func (b *Bus) Subscribe(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

// Publish delivers the event to every subscriber.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(e)
	}
}
