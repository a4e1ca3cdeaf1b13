/*
handlers.go - HTTP API handlers for the shift scheduling engine

PURPOSE:
  Exposes the scheduling engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Guard types:
    GET    /api/guard-types                 List guard types (?include_inactive=true)
    POST   /api/guard-types                 Create or update a guard type
    GET    /api/guard-types/{id}            Get one guard type
    POST   /api/guard-types/{id}/deactivate Retire a guard type

  Employees:
    GET    /api/employees                   List employees (?active_only=true)
    POST   /api/employees                   Create or update an employee
    GET    /api/employees/{id}              Get one employee
    GET    /api/employees/{id}/assignments  All assignments for an employee

  Assignments:
    POST   /api/assignments                 Book (once / weekly / monthly)
    DELETE /api/assignments/{id}            Unbook one assignment
    POST   /api/assignments/clear           Clear a (guard type, date) pair
    POST   /api/assignments/auto            Run the planner over a range

  Coverage and planning:
    GET    /api/coverage                    Classify one (date, guard type)
    GET    /api/planning                    Planning board for a date range
    GET    /api/stats/workload              Duty hours per employee

  Availability:
    GET    /api/availability                List slots for an employee/range
    POST   /api/availability                Declare a slot
    DELETE /api/availability/{id}           Remove a slot

  Requests:
    GET    /api/leave-requests              List leave requests
    POST   /api/leave-requests              Submit a leave request
    POST   /api/leave-requests/{id}/decide  Approve or refuse
    GET    /api/replacement-requests        List replacement requests
    POST   /api/replacement-requests        Submit a replacement request
    POST   /api/replacement-requests/{id}/resolve  Record a volunteer
    POST   /api/replacement-requests/{id}/decide   Approve (swap) or refuse
    POST   /api/replacement-requests/{id}/search   Notify ranked candidates

  Notifications:
    GET    /api/notifications               List for a recipient (?recipient=)
    GET    /api/notifications/unread-count  Unread count for a recipient
    POST   /api/notifications/{id}/read     Mark one read
    POST   /api/notifications/read-all      Mark all read for a recipient

ERROR HANDLING:
  Domain errors map onto HTTP status by taxonomy:
  - 400: validation, invalid range, invalid spec, not-applicable
  - 404: not found
  - 409: conflict, overlap, replacement conflict, invalid transition
  - 500: everything else

SECURITY NOTE:
  No authentication middleware. The engine trusts the caller-supplied
  requester/approver identities; identity lives in the reverse proxy in
  front of this service.

SEE ALSO:
  - dto.go:    Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/firehall/shift-engine/schedule"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	GuardTypes schedule.GuardTypeStore
	Employees  schedule.EmployeeDirectory
	Ledger     *schedule.Ledger
	Expander   *schedule.Expander
	Classifier *schedule.Classifier
	Workflow   *schedule.Workflow
	Registry   *schedule.Registry
	Workload   *schedule.WorkloadCalculator
	Notifier   *schedule.Dispatcher
	Planner    schedule.Optimizer
	Search     *schedule.ReplacementSearch
}

// =============================================================================
// GUARD TYPE HANDLERS
// =============================================================================

// ListGuardTypes returns the catalog.
// GET /api/guard-types?include_inactive=true
func (h *Handler) ListGuardTypes(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	guardTypes, err := h.GuardTypes.List(r.Context(), includeInactive)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list guard types", err)
		return
	}
	dtos := make([]GuardTypeDTO, 0, len(guardTypes))
	for _, g := range guardTypes {
		dtos = append(dtos, toGuardTypeDTO(g))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveGuardType creates or updates a guard type.
// POST /api/guard-types
func (h *Handler) SaveGuardType(w http.ResponseWriter, r *http.Request) {
	var req SaveGuardTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}
	if req.RequiredPersonnel < 1 {
		writeError(w, http.StatusBadRequest, "required_personnel must be at least 1", nil)
		return
	}

	start, err := schedule.ParseClockTime(req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_time", err)
		return
	}
	end, err := schedule.ParseClockTime(req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_time", err)
		return
	}
	weekdays, err := schedule.ParseWeekdaySet(req.ApplicableWeekdays)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid applicable_weekdays", err)
		return
	}

	g := schedule.GuardType{
		ID:                 schedule.GuardTypeID(req.ID),
		Name:               req.Name,
		Start:              start,
		End:                end,
		RequiredPersonnel:  req.RequiredPersonnel,
		OfficerRequired:    req.OfficerRequired,
		ApplicableWeekdays: weekdays,
		Color:              req.Color,
		Active:             true,
	}
	if err := h.GuardTypes.Save(r.Context(), g); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save guard type", err)
		return
	}
	writeJSON(w, http.StatusCreated, toGuardTypeDTO(g))
}

// GetGuardType returns one guard type.
// GET /api/guard-types/{id}
func (h *Handler) GetGuardType(w http.ResponseWriter, r *http.Request) {
	id := schedule.GuardTypeID(chi.URLParam(r, "id"))
	g, err := h.GuardTypes.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGuardTypeDTO(g))
}

// DeactivateGuardType retires a guard type. Existing assignments keep
// referencing it; it stops appearing in active listings and planning.
// POST /api/guard-types/{id}/deactivate
func (h *Handler) DeactivateGuardType(w http.ResponseWriter, r *http.Request) {
	id := schedule.GuardTypeID(chi.URLParam(r, "id"))
	g, err := h.GuardTypes.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	g.Active = false
	if err := h.GuardTypes.Save(r.Context(), g); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to deactivate guard type", err)
		return
	}
	writeJSON(w, http.StatusOK, toGuardTypeDTO(g))
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns the directory.
// GET /api/employees?active_only=true
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") == "true"
	employees, err := h.Employees.List(r.Context(), activeOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		dtos = append(dtos, toEmployeeDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveEmployee creates or updates an employee record.
// POST /api/employees
func (h *Handler) SaveEmployee(w http.ResponseWriter, r *http.Request) {
	var req SaveEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	e := schedule.Employee{
		ID:      schedule.EmployeeID(req.ID),
		Name:    req.Name,
		Rank:    req.Rank,
		Officer: req.Officer,
		Active:  active,
	}
	if err := h.Employees.Save(r.Context(), e); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(e))
}

// GetEmployee returns one employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := schedule.EmployeeID(chi.URLParam(r, "id"))
	e, err := h.Employees.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(e))
}

// GetEmployeeAssignments returns every assignment for an employee.
// GET /api/employees/{id}/assignments
func (h *Handler) GetEmployeeAssignments(w http.ResponseWriter, r *http.Request) {
	id := schedule.EmployeeID(chi.URLParam(r, "id"))
	assignments, err := h.Ledger.Assignments.ListByEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list assignments", err)
		return
	}
	dtos := make([]AssignmentDTO, 0, len(assignments))
	for _, a := range assignments {
		dtos = append(dtos, toAssignmentDTO(a))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ASSIGNMENT HANDLERS
// =============================================================================

// CreateAssignment books once or expands a recurrence, best effort.
// POST /api/assignments
func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := schedule.ParseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	spec := schedule.RecurrenceSpec{
		EmployeeID:  schedule.EmployeeID(req.EmployeeID),
		GuardTypeID: schedule.GuardTypeID(req.GuardTypeID),
		Kind:        schedule.RecurrenceOnce,
		Start:       start,
	}
	if req.Recurrence != "" {
		spec.Kind = schedule.RecurrenceKind(req.Recurrence)
	}
	if req.EndDate != "" {
		end, err := schedule.ParseDay(req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_date", err)
			return
		}
		spec.End = end
	}
	if len(req.Weekdays) > 0 {
		weekdays, err := schedule.ParseWeekdaySet(req.Weekdays)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid weekdays", err)
			return
		}
		spec.Weekdays = weekdays
	}

	// A single booking surfaces its conflict as a status code; bulk
	// expansion reports conflicts inside a 200 body instead.
	if spec.Kind == schedule.RecurrenceOnce {
		a, err := h.Ledger.Create(r.Context(), spec.EmployeeID, spec.GuardTypeID, spec.Start, schedule.OriginManual)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAssignmentDTO(a))
		return
	}

	report, err := h.Expander.Materialize(r.Context(), spec)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpansionReportDTO(report))
}

// DeleteAssignment unbooks one assignment.
// DELETE /api/assignments/{id}
func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	id := schedule.AssignmentID(chi.URLParam(r, "id"))
	if err := h.Ledger.DeleteByID(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearAssignments removes everyone from a (guard type, date) pair.
// POST /api/assignments/clear?guard_type=...&date=...
func (h *Handler) ClearAssignments(w http.ResponseWriter, r *http.Request) {
	guardType := schedule.GuardTypeID(r.URL.Query().Get("guard_type"))
	date, err := schedule.ParseDay(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	n, err := h.Ledger.Clear(r.Context(), guardType, date)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

// AutoAssign runs the planner over a range and books its proposals.
// POST /api/assignments/auto?from=...&to=...
func (h *Handler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}
	proposals, err := h.Planner.Propose(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	report, err := schedule.ApplyProposals(r.Context(), h.Ledger, proposals)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpansionReportDTO(report))
}

// =============================================================================
// COVERAGE AND PLANNING HANDLERS
// =============================================================================

// GetCoverage classifies one (date, guard type) pair.
// GET /api/coverage?guard_type=...&date=...
func (h *Handler) GetCoverage(w http.ResponseWriter, r *http.Request) {
	guardType := schedule.GuardTypeID(r.URL.Query().Get("guard_type"))
	date, err := schedule.ParseDay(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	state, err := h.Classifier.Classify(r.Context(), date, guardType)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	gt, err := h.GuardTypes.Get(r.Context(), guardType)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	assigned, err := h.Classifier.AssignedCount(r.Context(), date, guardType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count assignments", err)
		return
	}

	writeJSON(w, http.StatusOK, CoverageDTO{
		Date:        date.String(),
		GuardTypeID: string(guardType),
		State:       state.String(),
		Assigned:    assigned,
		Required:    gt.RequiredPersonnel,
	})
}

// GetPlanning returns the planning board: each day in the range with every
// applicable guard type, its assignees and its coverage state.
// GET /api/planning?from=...&to=...
func (h *Handler) GetPlanning(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}

	guardTypes, err := h.GuardTypes.List(r.Context(), false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list guard types", err)
		return
	}
	assignments, err := h.Ledger.Assignments.ListByDateRange(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list assignments", err)
		return
	}

	byDayAndType := make(map[string][]schedule.Assignment)
	for _, a := range assignments {
		key := a.Date.String() + "|" + string(a.GuardTypeID)
		byDayAndType[key] = append(byDayAndType[key], a)
	}

	var days []PlanningDayDTO
	for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
		day := PlanningDayDTO{Date: d.String(), Shifts: []PlanningShiftDTO{}}
		for _, gt := range guardTypes {
			if !gt.AppliesOn(d) {
				continue
			}
			assignees := byDayAndType[d.String()+"|"+string(gt.ID)]
			shift := PlanningShiftDTO{
				GuardType: toGuardTypeDTO(gt),
				State:     classifyCount(len(assignees), gt.RequiredPersonnel),
				Assignees: make([]AssignmentDTO, 0, len(assignees)),
			}
			for _, a := range assignees {
				shift.Assignees = append(shift.Assignees, toAssignmentDTO(a))
			}
			day.Shifts = append(day.Shifts, shift)
		}
		days = append(days, day)
	}
	writeJSON(w, http.StatusOK, days)
}

func classifyCount(assigned, required int) string {
	switch {
	case assigned == 0:
		return schedule.CoverageVacant.String()
	case assigned >= required:
		return schedule.CoverageComplete.String()
	default:
		return schedule.CoveragePartial.String()
	}
}

// GetWorkload returns duty-hour totals per employee for a range.
// GET /api/stats/workload?from=...&to=...
func (h *Handler) GetWorkload(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}
	totals, err := h.Workload.Hours(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]WorkloadDTO, 0, len(totals))
	for id, hours := range totals {
		dtos = append(dtos, WorkloadDTO{EmployeeID: string(id), Hours: hours.String()})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// AVAILABILITY HANDLERS
// =============================================================================

// ListAvailability returns an employee's slots for a range.
// GET /api/availability?employee=...&from=...&to=...
func (h *Handler) ListAvailability(w http.ResponseWriter, r *http.Request) {
	employee := schedule.EmployeeID(r.URL.Query().Get("employee"))
	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}
	slots, err := h.Registry.ListFor(r.Context(), employee, from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]AvailabilitySlotDTO, 0, len(slots))
	for _, s := range slots {
		dtos = append(dtos, toSlotDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DeclareAvailability creates a slot.
// POST /api/availability
func (h *Handler) DeclareAvailability(w http.ResponseWriter, r *http.Request) {
	var req DeclareAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := schedule.ParseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	slot := schedule.AvailabilitySlot{
		EmployeeID: schedule.EmployeeID(req.EmployeeID),
		Date:       date,
		Status:     schedule.AvailabilityStatus(req.Status),
		Scope:      schedule.AnyGuardType(),
	}
	if req.GuardTypeID != "" {
		slot.Scope = schedule.SpecificGuardType(schedule.GuardTypeID(req.GuardTypeID))
	}
	if req.StartTime != "" {
		if slot.Start, err = schedule.ParseClockTime(req.StartTime); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_time", err)
			return
		}
	}
	if req.EndTime != "" {
		if slot.End, err = schedule.ParseClockTime(req.EndTime); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_time", err)
			return
		}
	}

	created, err := h.Registry.Declare(r.Context(), slot)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSlotDTO(created))
}

// RemoveAvailability deletes a slot.
// DELETE /api/availability/{id}
func (h *Handler) RemoveAvailability(w http.ResponseWriter, r *http.Request) {
	id := schedule.SlotID(chi.URLParam(r, "id"))
	if err := h.Registry.Remove(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// LEAVE REQUEST HANDLERS
// =============================================================================

// ListLeaveRequests returns all leave requests, newest first.
// GET /api/leave-requests
func (h *Handler) ListLeaveRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Workflow.Requests.ListLeave(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave requests", err)
		return
	}
	dtos := make([]LeaveRequestDTO, 0, len(requests))
	for _, req := range requests {
		dtos = append(dtos, toLeaveDTO(req))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SubmitLeaveRequest submits a leave request.
// POST /api/leave-requests
func (h *Handler) SubmitLeaveRequest(w http.ResponseWriter, r *http.Request) {
	var req SubmitLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, err := schedule.ParseDay(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return
	}
	end, err := schedule.ParseDay(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date", err)
		return
	}

	sub := schedule.LeaveSubmission{
		RequesterID: schedule.EmployeeID(req.RequesterID),
		Kind:        req.Kind,
		Start:       start,
		End:         end,
		Reason:      req.Reason,
		Priority:    schedule.Priority(req.Priority),
	}
	created, err := h.Workflow.SubmitLeave(r.Context(), sub, toEmployeeIDs(req.Approvers))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveDTO(created))
}

// DecideLeaveRequest approves or refuses a pending leave request.
// POST /api/leave-requests/{id}/decide
func (h *Handler) DecideLeaveRequest(w http.ResponseWriter, r *http.Request) {
	id := schedule.RequestID(chi.URLParam(r, "id"))
	var req DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	decided, err := h.Workflow.DecideLeave(r.Context(), id,
		schedule.DecisionAction(req.Action), schedule.EmployeeID(req.Decider), req.Comment)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(decided))
}

// =============================================================================
// REPLACEMENT REQUEST HANDLERS
// =============================================================================

// ListReplacementRequests returns all replacement requests, newest first.
// GET /api/replacement-requests
func (h *Handler) ListReplacementRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Workflow.Requests.ListReplacement(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list replacement requests", err)
		return
	}
	dtos := make([]ReplacementRequestDTO, 0, len(requests))
	for _, req := range requests {
		dtos = append(dtos, toReplacementDTO(req))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SubmitReplacementRequest submits a replacement request for a held shift.
// POST /api/replacement-requests
func (h *Handler) SubmitReplacementRequest(w http.ResponseWriter, r *http.Request) {
	var req SubmitReplacementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := schedule.ParseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	sub := schedule.ReplacementSubmission{
		RequesterID: schedule.EmployeeID(req.RequesterID),
		GuardTypeID: schedule.GuardTypeID(req.GuardTypeID),
		Date:        date,
		Reason:      req.Reason,
		Priority:    schedule.Priority(req.Priority),
	}
	created, err := h.Workflow.SubmitReplacement(r.Context(), sub, toEmployeeIDs(req.Approvers))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReplacementDTO(created))
}

// ResolveReplacementRequest records a volunteer successor.
// POST /api/replacement-requests/{id}/resolve
func (h *Handler) ResolveReplacementRequest(w http.ResponseWriter, r *http.Request) {
	id := schedule.RequestID(chi.URLParam(r, "id"))
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	resolved, err := h.Workflow.Resolve(r.Context(), id, schedule.EmployeeID(req.EmployeeID))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReplacementDTO(resolved))
}

// DecideReplacementRequest approves (performing the swap) or refuses.
// POST /api/replacement-requests/{id}/decide
func (h *Handler) DecideReplacementRequest(w http.ResponseWriter, r *http.Request) {
	id := schedule.RequestID(chi.URLParam(r, "id"))
	var req DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	decided, err := h.Workflow.DecideReplacement(r.Context(), id,
		schedule.DecisionAction(req.Action), schedule.EmployeeID(req.Decider),
		req.Comment, schedule.EmployeeID(req.ReplacementEmployeeID))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReplacementDTO(decided))
}

// SearchReplacementCandidates notifies ranked candidates for an open request.
// POST /api/replacement-requests/{id}/search
func (h *Handler) SearchReplacementCandidates(w http.ResponseWriter, r *http.Request) {
	id := schedule.RequestID(chi.URLParam(r, "id"))
	candidates, err := h.Search.Run(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]EmployeeDTO, 0, len(candidates))
	for _, c := range candidates {
		dtos = append(dtos, toEmployeeDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// NOTIFICATION HANDLERS
// =============================================================================

// ListNotifications returns a recipient's notifications, newest first.
// GET /api/notifications?recipient=...
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	recipient := schedule.EmployeeID(r.URL.Query().Get("recipient"))
	notifications, err := h.Notifier.List(r.Context(), recipient)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list notifications", err)
		return
	}
	dtos := make([]NotificationDTO, 0, len(notifications))
	for _, n := range notifications {
		dtos = append(dtos, toNotificationDTO(n))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetUnreadCount returns the recipient's unread notification count.
// GET /api/notifications/unread-count?recipient=...
func (h *Handler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	recipient := schedule.EmployeeID(r.URL.Query().Get("recipient"))
	count, err := h.Notifier.UnreadCount(r.Context(), recipient)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count notifications", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

// MarkNotificationRead flips one read flag.
// POST /api/notifications/{id}/read
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := schedule.NotificationID(chi.URLParam(r, "id"))
	if err := h.Notifier.MarkRead(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllNotificationsRead flips every unread flag for a recipient.
// POST /api/notifications/read-all?recipient=...
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	recipient := schedule.EmployeeID(r.URL.Query().Get("recipient"))
	n, err := h.Notifier.MarkAllRead(r.Context(), recipient)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to mark notifications read", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"marked": n})
}

// =============================================================================
// HELPERS
// =============================================================================

func parseRange(w http.ResponseWriter, r *http.Request) (schedule.Day, schedule.Day, bool) {
	from, err := schedule.ParseDay(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date", err)
		return schedule.Day{}, schedule.Day{}, false
	}
	to, err := schedule.ParseDay(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date", err)
		return schedule.Day{}, schedule.Day{}, false
	}
	return from, to, true
}

func toEmployeeIDs(ids []string) []schedule.EmployeeID {
	out := make([]schedule.EmployeeID, 0, len(ids))
	for _, id := range ids {
		out = append(out, schedule.EmployeeID(id))
	}
	return out
}

// writeDomainError maps the domain error taxonomy onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case schedule.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, schedule.ErrConflict),
		errors.Is(err, schedule.ErrOverlap),
		errors.Is(err, schedule.ErrReplacementConflict),
		errors.Is(err, schedule.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "Conflict", err)
	case schedule.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
