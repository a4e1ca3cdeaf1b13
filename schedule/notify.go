/*
notify.go - Pull-based notification dispatcher

PURPOSE:
  Emits and tracks read/unread notices raised by workflow transitions and
  assignment mutations. Delivery is pull-based: clients poll List and
  UnreadCount on an interval. The dispatcher holds no connections and keeps
  no process-wide mutable state beyond the backing store; bounded delivery
  latency (the polling interval) is the accepted tradeoff.

HISTORY:
  Notifications are never deleted. The only mutation is flipping the read
  flag.

SEE ALSO:
  - workflow.go: Raises exactly one notification per transition
  - events.go:   Auto-origin assignment events also notify the assignee
*/
package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// NOTIFICATION
// =============================================================================

type NotificationKind string

const (
	NotifyLeaveSubmitted        NotificationKind = "leave_submitted"
	NotifyLeaveDecided          NotificationKind = "leave_decided"
	NotifyReplacementSubmitted  NotificationKind = "replacement_submitted"
	NotifyReplacementDecided    NotificationKind = "replacement_decided"
	NotifyReplacementCandidate  NotificationKind = "replacement_candidate"
	NotifyAssignmentCreated     NotificationKind = "assignment_created"
	NotifyCoverageReminder      NotificationKind = "coverage_reminder"
)

type Notification struct {
	ID          NotificationID
	RecipientID EmployeeID
	Kind        NotificationKind
	Title       string
	Body        string
	Link        string
	Read        bool
	CreatedAt   time.Time
}

// =============================================================================
// DISPATCHER
// =============================================================================

type Dispatcher struct {
	Store NotificationStore
}

func NewDispatcher(store NotificationStore) *Dispatcher {
	return &Dispatcher{Store: store}
}

// Emit creates and persists one notification.
func (d *Dispatcher) Emit(ctx context.Context, recipient EmployeeID, kind NotificationKind, title, body, link string) (Notification, error) {
	n := Notification{
		ID:          NotificationID(uuid.NewString()),
		RecipientID: recipient,
		Kind:        kind,
		Title:       title,
		Body:        body,
		Link:        link,
		CreatedAt:   time.Now().UTC(),
	}
	if err := d.Store.Insert(ctx, n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// List returns the recipient's notifications, newest first.
func (d *Dispatcher) List(ctx context.Context, recipient EmployeeID) ([]Notification, error) {
	return d.Store.ListByRecipient(ctx, recipient)
}

func (d *Dispatcher) MarkRead(ctx context.Context, id NotificationID) error {
	return d.Store.MarkRead(ctx, id)
}

func (d *Dispatcher) MarkAllRead(ctx context.Context, recipient EmployeeID) (int, error) {
	return d.Store.MarkAllRead(ctx, recipient)
}

func (d *Dispatcher) UnreadCount(ctx context.Context, recipient EmployeeID) (int, error) {
	return d.Store.UnreadCount(ctx, recipient)
}

// SubscribeAssignments notifies assignees when the optimizer books them.
// Manual creates stay silent: the person doing the booking is looking at the
// planning board already, while auto-assign happens behind their back.
func (d *Dispatcher) SubscribeAssignments(bus *Bus, guardTypes GuardTypeStore) {
	bus.Subscribe(func(e Event) {
		if e.Kind != EventAssignmentCreated || e.Origin != OriginAuto {
			return
		}
		ctx := context.Background()
		name := string(e.GuardTypeID)
		if gt, err := guardTypes.Get(ctx, e.GuardTypeID); err == nil {
			name = gt.Name
		}
		// Best effort: a lost notice must not fail the assignment.
		d.Emit(ctx, e.EmployeeID, NotifyAssignmentCreated,
			"New shift assignment",
			"You have been assigned to "+name+" on "+e.Date.String(),
			"/planning?date="+e.Date.String())
	})
}
