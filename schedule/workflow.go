/*
workflow.go - Leave and replacement request state machines

PURPOSE:
  Governs the approval workflow that perturbs the occupancy ledger:

    LeaveRequest:        pending -> {approved, refused}   (terminal)
    ReplacementRequest:  open    -> {approved, refused}   (terminal)

  Approving a leave request mutates nothing in the ledger; it is advisory
  input for later manual or automatic replacement. Approving a replacement
  request with a resolved successor performs the delete+create swap as one
  logical operation: if the create half conflicts the delete is rolled back
  and the decision fails with *ReplacementConflictError, so an approved
  replacement can never leave a previously covered shift empty.

NOTIFICATIONS:
  submit -> one notification per eligible approver (the caller supplies the
  approver set; who is eligible is decided by the identity provider outside
  the core). decide -> exactly one notification to the requester, plus one
  to the successor when a swap happened. Retrying decide on a terminal
  request fails with *InvalidTransitionError and notifies nobody.

SEE ALSO:
  - ledger.go:     Replace (the atomic swap)
  - autoassign.go: Candidate search for open replacement requests
*/
package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

func (p Priority) valid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRefused  LeaveStatus = "refused"
)

type ReplacementStatus string

const (
	ReplacementOpen     ReplacementStatus = "open"
	ReplacementApproved ReplacementStatus = "approved"
	ReplacementRefused  ReplacementStatus = "refused"
)

type DecisionAction string

const (
	ActionApprove DecisionAction = "approve"
	ActionRefuse  DecisionAction = "refuse"
)

// LeaveRequest is a request for time off, independent of any specific shift.
type LeaveRequest struct {
	ID           RequestID
	RequesterID  EmployeeID
	Kind         string // vacation, sick, personal, ...
	Start        Day
	End          Day
	NumberOfDays int // inclusive day count, computed at submission
	Reason       string
	Priority     Priority
	Status       LeaveStatus

	DecidedBy       EmployeeID
	DecisionComment string
	DecidedAt       *time.Time

	CreatedAt time.Time
}

// ReplacementRequest asks for a substitute on an already-assigned shift.
type ReplacementRequest struct {
	ID          RequestID
	RequesterID EmployeeID
	GuardTypeID GuardTypeID
	Date        Day
	Reason      string
	Priority    Priority
	Status      ReplacementStatus

	// ReplacementID is empty until a successor is found, either by the
	// automatic search or by the approver naming one at decision time.
	ReplacementID EmployeeID

	DecidedBy       EmployeeID
	DecisionComment string
	DecidedAt       *time.Time

	CreatedAt time.Time
}

// =============================================================================
// SUBMISSIONS
// =============================================================================

type LeaveSubmission struct {
	RequesterID EmployeeID
	Kind        string
	Start       Day
	End         Day
	Reason      string
	Priority    Priority
}

type ReplacementSubmission struct {
	RequesterID EmployeeID
	GuardTypeID GuardTypeID
	Date        Day
	Reason      string
	Priority    Priority
}

// =============================================================================
// WORKFLOW SERVICE
// =============================================================================

type Workflow struct {
	Ledger   *Ledger
	Requests RequestStore
	Notifier *Dispatcher
	Bus      *Bus
}

func NewWorkflow(ledger *Ledger, requests RequestStore, notifier *Dispatcher, bus *Bus) *Workflow {
	return &Workflow{Ledger: ledger, Requests: requests, Notifier: notifier, Bus: bus}
}

// SubmitLeave validates and persists a leave request in state pending.
// Validation failures never partially commit. The approver set comes from
// the caller (supervisors for employee requests, administrators for
// supervisor requests).
func (w *Workflow) SubmitLeave(ctx context.Context, sub LeaveSubmission, approvers []EmployeeID) (LeaveRequest, error) {
	if strings.TrimSpace(sub.Reason) == "" {
		return LeaveRequest{}, &ValidationError{Field: "reason", Message: "must not be empty"}
	}
	if sub.End.Before(sub.Start) {
		return LeaveRequest{}, &InvalidRangeError{Start: sub.Start, End: sub.End}
	}
	priority, err := normalizePriority(sub.Priority)
	if err != nil {
		return LeaveRequest{}, err
	}

	r := LeaveRequest{
		ID:           RequestID(uuid.NewString()),
		RequesterID:  sub.RequesterID,
		Kind:         sub.Kind,
		Start:        sub.Start,
		End:          sub.End,
		NumberOfDays: DaysInclusive(sub.Start, sub.End),
		Reason:       sub.Reason,
		Priority:     priority,
		Status:       LeavePending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := w.Requests.SaveLeave(ctx, r); err != nil {
		return LeaveRequest{}, err
	}

	body := fmt.Sprintf("Leave request from %s: %s to %s (%d days)",
		r.RequesterID, r.Start, r.End, r.NumberOfDays)
	for _, approver := range approvers {
		w.Notifier.Emit(ctx, approver, NotifyLeaveSubmitted,
			"Leave request awaiting decision", body, "/leave-requests/"+string(r.ID))
	}

	w.Bus.Publish(Event{Kind: EventRequestSubmitted, EmployeeID: r.RequesterID, RequestID: r.ID})
	return r, nil
}

// DecideLeave transitions a pending leave request to its terminal state.
// No ledger mutation happens here: an approved leave is advisory input for
// later replacement planning.
func (w *Workflow) DecideLeave(ctx context.Context, id RequestID, action DecisionAction, approver EmployeeID, comment string) (LeaveRequest, error) {
	r, err := w.Requests.GetLeave(ctx, id)
	if err != nil {
		return LeaveRequest{}, err
	}
	if r.Status != LeavePending {
		return LeaveRequest{}, &InvalidTransitionError{RequestID: id, Status: string(r.Status), Action: string(action)}
	}

	switch action {
	case ActionApprove:
		r.Status = LeaveApproved
	case ActionRefuse:
		r.Status = LeaveRefused
	default:
		return LeaveRequest{}, &ValidationError{Field: "action", Message: "must be approve or refuse"}
	}

	now := time.Now().UTC()
	r.DecidedBy = approver
	r.DecisionComment = comment
	r.DecidedAt = &now
	if err := w.Requests.SaveLeave(ctx, r); err != nil {
		return LeaveRequest{}, err
	}

	w.Notifier.Emit(ctx, r.RequesterID, NotifyLeaveDecided,
		fmt.Sprintf("Leave request %s", r.Status),
		fmt.Sprintf("Your leave request from %s to %s was %s", r.Start, r.End, r.Status),
		"/leave-requests/"+string(r.ID))

	w.Bus.Publish(Event{Kind: EventRequestDecided, EmployeeID: r.RequesterID, RequestID: r.ID})
	return r, nil
}

// SubmitReplacement validates and persists a replacement request in state
// open. The requester must actually hold an assignment for the triple.
func (w *Workflow) SubmitReplacement(ctx context.Context, sub ReplacementSubmission, approvers []EmployeeID) (ReplacementRequest, error) {
	if strings.TrimSpace(sub.Reason) == "" {
		return ReplacementRequest{}, &ValidationError{Field: "reason", Message: "must not be empty"}
	}
	priority, err := normalizePriority(sub.Priority)
	if err != nil {
		return ReplacementRequest{}, err
	}
	if _, err := w.Ledger.Assignments.Find(ctx, sub.RequesterID, sub.GuardTypeID, sub.Date); err != nil {
		return ReplacementRequest{}, err
	}

	r := ReplacementRequest{
		ID:          RequestID(uuid.NewString()),
		RequesterID: sub.RequesterID,
		GuardTypeID: sub.GuardTypeID,
		Date:        sub.Date,
		Reason:      sub.Reason,
		Priority:    priority,
		Status:      ReplacementOpen,
		CreatedAt:   time.Now().UTC(),
	}
	if err := w.Requests.SaveReplacement(ctx, r); err != nil {
		return ReplacementRequest{}, err
	}

	body := fmt.Sprintf("Replacement needed for %s on %s", r.GuardTypeID, r.Date)
	for _, approver := range approvers {
		w.Notifier.Emit(ctx, approver, NotifyReplacementSubmitted,
			"Replacement request awaiting decision", body, "/replacement-requests/"+string(r.ID))
	}

	w.Bus.Publish(Event{Kind: EventRequestSubmitted, EmployeeID: r.RequesterID, RequestID: r.ID})
	return r, nil
}

// Resolve records a successor on a still-open replacement request, e.g.
// when a notified candidate volunteers. Not a state transition.
func (w *Workflow) Resolve(ctx context.Context, id RequestID, successor EmployeeID) (ReplacementRequest, error) {
	r, err := w.Requests.GetReplacement(ctx, id)
	if err != nil {
		return ReplacementRequest{}, err
	}
	if r.Status != ReplacementOpen {
		return ReplacementRequest{}, &InvalidTransitionError{RequestID: id, Status: string(r.Status), Action: "resolve"}
	}
	r.ReplacementID = successor
	if err := w.Requests.SaveReplacement(ctx, r); err != nil {
		return ReplacementRequest{}, err
	}
	w.Notifier.Emit(ctx, r.RequesterID, NotifyReplacementCandidate,
		"Replacement volunteer found",
		fmt.Sprintf("%s volunteered to cover your shift on %s", successor, r.Date),
		"/replacement-requests/"+string(r.ID))
	return r, nil
}

// DecideReplacement transitions an open replacement request to its terminal
// state. Approval requires a resolved successor (on the request, or named
// here) and performs the atomic swap through the ledger.
func (w *Workflow) DecideReplacement(ctx context.Context, id RequestID, action DecisionAction, approver EmployeeID, comment string, successor EmployeeID) (ReplacementRequest, error) {
	r, err := w.Requests.GetReplacement(ctx, id)
	if err != nil {
		return ReplacementRequest{}, err
	}
	if r.Status != ReplacementOpen {
		return ReplacementRequest{}, &InvalidTransitionError{RequestID: id, Status: string(r.Status), Action: string(action)}
	}

	now := time.Now().UTC()

	switch action {
	case ActionRefuse:
		r.Status = ReplacementRefused

	case ActionApprove:
		if successor == "" {
			successor = r.ReplacementID
		}
		if successor == "" {
			return ReplacementRequest{}, &ValidationError{Field: "replacement_employee", Message: "approval requires a resolved successor"}
		}

		original, err := w.Ledger.Assignments.Find(ctx, r.RequesterID, r.GuardTypeID, r.Date)
		if err != nil {
			return ReplacementRequest{}, err
		}
		if _, err := w.Ledger.Replace(ctx, original.ID, successor); err != nil {
			if IsConflict(err) {
				return ReplacementRequest{}, &ReplacementConflictError{
					RequestID:   id,
					SuccessorID: successor,
					GuardTypeID: r.GuardTypeID,
					Date:        r.Date,
				}
			}
			return ReplacementRequest{}, err
		}
		r.ReplacementID = successor
		r.Status = ReplacementApproved

	default:
		return ReplacementRequest{}, &ValidationError{Field: "action", Message: "must be approve or refuse"}
	}

	r.DecidedBy = approver
	r.DecisionComment = comment
	r.DecidedAt = &now
	if err := w.Requests.SaveReplacement(ctx, r); err != nil {
		return ReplacementRequest{}, err
	}

	w.Notifier.Emit(ctx, r.RequesterID, NotifyReplacementDecided,
		fmt.Sprintf("Replacement request %s", r.Status),
		fmt.Sprintf("Your replacement request for %s was %s", r.Date, r.Status),
		"/replacement-requests/"+string(r.ID))
	if r.Status == ReplacementApproved {
		w.Notifier.Emit(ctx, r.ReplacementID, NotifyAssignmentCreated,
			"Shift assigned to you",
			fmt.Sprintf("You are covering %s on %s", r.GuardTypeID, r.Date),
			"/planning?date="+r.Date.String())
	}

	w.Bus.Publish(Event{Kind: EventRequestDecided, EmployeeID: r.RequesterID, RequestID: r.ID})
	return r, nil
}

func normalizePriority(p Priority) (Priority, error) {
	if p == "" {
		return PriorityNormal, nil
	}
	if !p.valid() {
		return "", &ValidationError{Field: "priority", Message: "unknown priority " + string(p)}
	}
	return p, nil
}
