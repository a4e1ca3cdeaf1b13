/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and the domain layer, not in DTOs. DTOs
  are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - schedule/types.go: The domain model these mirror
*/
package api

import (
	"time"

	"github.com/firehall/shift-engine/schedule"
)

// =============================================================================
// GUARD TYPES
// =============================================================================

// GuardTypeDTO represents a guard type in API responses.
type GuardTypeDTO struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	StartTime          string   `json:"start_time"`
	EndTime            string   `json:"end_time"`
	RequiredPersonnel  int      `json:"required_personnel"`
	OfficerRequired    bool     `json:"officer_required"`
	ApplicableWeekdays []string `json:"applicable_weekdays,omitempty"`
	Color              string   `json:"color,omitempty"`
	Active             bool     `json:"active"`
}

// SaveGuardTypeRequest creates or updates a guard type.
type SaveGuardTypeRequest struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	StartTime          string   `json:"start_time"`
	EndTime            string   `json:"end_time"`
	RequiredPersonnel  int      `json:"required_personnel"`
	OfficerRequired    bool     `json:"officer_required"`
	ApplicableWeekdays []string `json:"applicable_weekdays"`
	Color              string   `json:"color"`
}

func toGuardTypeDTO(g schedule.GuardType) GuardTypeDTO {
	return GuardTypeDTO{
		ID:                 string(g.ID),
		Name:               g.Name,
		StartTime:          g.Start.String(),
		EndTime:            g.End.String(),
		RequiredPersonnel:  g.RequiredPersonnel,
		OfficerRequired:    g.OfficerRequired,
		ApplicableWeekdays: g.ApplicableWeekdays.Names(),
		Color:              g.Color,
		Active:             g.Active,
	}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Rank    string `json:"rank,omitempty"`
	Officer bool   `json:"officer"`
	Active  bool   `json:"active"`
}

type SaveEmployeeRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Rank    string `json:"rank"`
	Officer bool   `json:"officer"`
	Active  *bool  `json:"active,omitempty"`
}

func toEmployeeDTO(e schedule.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:      string(e.ID),
		Name:    e.Name,
		Rank:    e.Rank,
		Officer: e.Officer,
		Active:  e.Active,
	}
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

type AssignmentDTO struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employee_id"`
	GuardTypeID string `json:"guard_type_id"`
	Date        string `json:"date"`
	Origin      string `json:"origin"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// CreateAssignmentRequest books one employee. When recurrence is "weekly" or
// "monthly" the end_date and (for weekly) weekdays fields drive expansion.
type CreateAssignmentRequest struct {
	EmployeeID  string   `json:"employee_id"`
	GuardTypeID string   `json:"guard_type_id"`
	Date        string   `json:"date"`
	Recurrence  string   `json:"recurrence,omitempty"` // once (default), weekly, monthly
	EndDate     string   `json:"end_date,omitempty"`
	Weekdays    []string `json:"weekdays,omitempty"`
}

// ExpansionReportDTO reports a best-effort bulk creation.
type ExpansionReportDTO struct {
	Created []AssignmentDTO  `json:"created"`
	Skipped []SkippedDateDTO `json:"skipped"`
}

type SkippedDateDTO struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

func toAssignmentDTO(a schedule.Assignment) AssignmentDTO {
	return AssignmentDTO{
		ID:          string(a.ID),
		EmployeeID:  string(a.EmployeeID),
		GuardTypeID: string(a.GuardTypeID),
		Date:        a.Date.String(),
		Origin:      string(a.Origin),
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
}

func toExpansionReportDTO(r *schedule.ExpansionReport) ExpansionReportDTO {
	out := ExpansionReportDTO{
		Created: make([]AssignmentDTO, 0, len(r.Created)),
		Skipped: make([]SkippedDateDTO, 0, len(r.Skipped)),
	}
	for _, a := range r.Created {
		out.Created = append(out.Created, toAssignmentDTO(a))
	}
	for _, s := range r.Skipped {
		out.Skipped = append(out.Skipped, SkippedDateDTO{Date: s.Date.String(), Reason: s.Reason})
	}
	return out
}

// =============================================================================
// COVERAGE AND PLANNING
// =============================================================================

// CoverageDTO classifies one (date, guard type) pair.
type CoverageDTO struct {
	Date        string `json:"date"`
	GuardTypeID string `json:"guard_type_id"`
	State       string `json:"state"`
	Assigned    int    `json:"assigned"`
	Required    int    `json:"required"`
}

// PlanningDayDTO is one day of the planning board: every applicable guard
// type with its assignees and coverage state.
type PlanningDayDTO struct {
	Date   string            `json:"date"`
	Shifts []PlanningShiftDTO `json:"shifts"`
}

type PlanningShiftDTO struct {
	GuardType GuardTypeDTO    `json:"guard_type"`
	State     string          `json:"state"`
	Assignees []AssignmentDTO `json:"assignees"`
}

// WorkloadDTO is one employee's duty-hour total for a range.
type WorkloadDTO struct {
	EmployeeID string `json:"employee_id"`
	Hours      string `json:"hours"`
}

// =============================================================================
// REQUESTS
// =============================================================================

type LeaveRequestDTO struct {
	ID              string `json:"id"`
	RequesterID     string `json:"requester_id"`
	Kind            string `json:"kind,omitempty"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	NumberOfDays    int    `json:"number_of_days"`
	Reason          string `json:"reason"`
	Priority        string `json:"priority"`
	Status          string `json:"status"`
	DecidedBy       string `json:"decided_by,omitempty"`
	DecisionComment string `json:"decision_comment,omitempty"`
	DecidedAt       string `json:"decided_at,omitempty"`
	CreatedAt       string `json:"created_at"`
}

type SubmitLeaveRequest struct {
	RequesterID string   `json:"requester_id"`
	Kind        string   `json:"kind"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Reason      string   `json:"reason"`
	Priority    string   `json:"priority"`
	Approvers   []string `json:"approvers"`
}

type ReplacementRequestDTO struct {
	ID              string `json:"id"`
	RequesterID     string `json:"requester_id"`
	GuardTypeID     string `json:"guard_type_id"`
	Date            string `json:"date"`
	Reason          string `json:"reason"`
	Priority        string `json:"priority"`
	Status          string `json:"status"`
	ReplacementID   string `json:"replacement_id,omitempty"`
	DecidedBy       string `json:"decided_by,omitempty"`
	DecisionComment string `json:"decision_comment,omitempty"`
	DecidedAt       string `json:"decided_at,omitempty"`
	CreatedAt       string `json:"created_at"`
}

type SubmitReplacementRequest struct {
	RequesterID string   `json:"requester_id"`
	GuardTypeID string   `json:"guard_type_id"`
	Date        string   `json:"date"`
	Reason      string   `json:"reason"`
	Priority    string   `json:"priority"`
	Approvers   []string `json:"approvers"`
}

// DecideRequest decides a pending/open request.
type DecideRequest struct {
	Action  string `json:"action"` // approve | refuse
	Decider string `json:"decider"`
	Comment string `json:"comment"`

	// ReplacementEmployeeID names the successor when approving a replacement
	// request that has not been resolved by a volunteer.
	ReplacementEmployeeID string `json:"replacement_employee_id,omitempty"`
}

// ResolveRequest records a volunteer successor on an open replacement request.
type ResolveRequest struct {
	EmployeeID string `json:"employee_id"`
}

func toLeaveDTO(r schedule.LeaveRequest) LeaveRequestDTO {
	dto := LeaveRequestDTO{
		ID:              string(r.ID),
		RequesterID:     string(r.RequesterID),
		Kind:            r.Kind,
		StartDate:       r.Start.String(),
		EndDate:         r.End.String(),
		NumberOfDays:    r.NumberOfDays,
		Reason:          r.Reason,
		Priority:        string(r.Priority),
		Status:          string(r.Status),
		DecidedBy:       string(r.DecidedBy),
		DecisionComment: r.DecisionComment,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
	if r.DecidedAt != nil {
		dto.DecidedAt = r.DecidedAt.Format(time.RFC3339)
	}
	return dto
}

func toReplacementDTO(r schedule.ReplacementRequest) ReplacementRequestDTO {
	dto := ReplacementRequestDTO{
		ID:              string(r.ID),
		RequesterID:     string(r.RequesterID),
		GuardTypeID:     string(r.GuardTypeID),
		Date:            r.Date.String(),
		Reason:          r.Reason,
		Priority:        string(r.Priority),
		Status:          string(r.Status),
		ReplacementID:   string(r.ReplacementID),
		DecidedBy:       string(r.DecidedBy),
		DecisionComment: r.DecisionComment,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
	if r.DecidedAt != nil {
		dto.DecidedAt = r.DecidedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// AVAILABILITY
// =============================================================================

type AvailabilitySlotDTO struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employee_id"`
	Date        string `json:"date"`
	GuardTypeID string `json:"guard_type_id,omitempty"` // empty = any
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Status      string `json:"status"`
}

type DeclareAvailabilityRequest struct {
	EmployeeID  string `json:"employee_id"`
	Date        string `json:"date"`
	GuardTypeID string `json:"guard_type_id"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Status      string `json:"status"`
}

func toSlotDTO(s schedule.AvailabilitySlot) AvailabilitySlotDTO {
	dto := AvailabilitySlotDTO{
		ID:         string(s.ID),
		EmployeeID: string(s.EmployeeID),
		Date:       s.Date.String(),
		StartTime:  s.Start.String(),
		EndTime:    s.End.String(),
		Status:     string(s.Status),
	}
	if id, ok := s.Scope.GuardType(); ok {
		dto.GuardTypeID = string(id)
	}
	return dto
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

type NotificationDTO struct {
	ID          string `json:"id"`
	RecipientID string `json:"recipient_id"`
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Link        string `json:"link,omitempty"`
	Read        bool   `json:"read"`
	CreatedAt   string `json:"created_at"`
}

func toNotificationDTO(n schedule.Notification) NotificationDTO {
	return NotificationDTO{
		ID:          string(n.ID),
		RecipientID: string(n.RecipientID),
		Kind:        string(n.Kind),
		Title:       n.Title,
		Body:        n.Body,
		Link:        n.Link,
		Read:        n.Read,
		CreatedAt:   n.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
