// Package store provides in-memory implementations of the schedule
// persistence interfaces, used by tests and dev mode.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/firehall/shift-engine/schedule"
)

// =============================================================================
// MEMORY STORE - Implements every schedule store interface
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	assignments map[schedule.AssignmentID]schedule.Assignment
	byTriple    map[tripleKey]schedule.AssignmentID

	guardTypes map[schedule.GuardTypeID]schedule.GuardType
	employees  map[schedule.EmployeeID]schedule.Employee

	leave       map[schedule.RequestID]schedule.LeaveRequest
	replacement map[schedule.RequestID]schedule.ReplacementRequest

	notifications []schedule.Notification

	slots map[schedule.SlotID]schedule.AvailabilitySlot
}

type tripleKey struct {
	Employee  schedule.EmployeeID
	GuardType schedule.GuardTypeID
	Date      string
}

func tripleOf(a schedule.Assignment) tripleKey {
	return tripleKey{Employee: a.EmployeeID, GuardType: a.GuardTypeID, Date: a.Date.String()}
}

// Compile-time interface checks
var (
	_ schedule.TxAssignmentStore = (*Memory)(nil)
	_ schedule.GuardTypeStore    = (*Memory)(nil)
	_ schedule.RequestStore      = (*Memory)(nil)
	_ schedule.EmployeeDirectory = (*Directory)(nil)
	_ schedule.NotificationStore = (*Notices)(nil)
	_ schedule.AvailabilityStore = (*Slots)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		assignments: make(map[schedule.AssignmentID]schedule.Assignment),
		byTriple:    make(map[tripleKey]schedule.AssignmentID),
		guardTypes:  make(map[schedule.GuardTypeID]schedule.GuardType),
		employees:   make(map[schedule.EmployeeID]schedule.Employee),
		leave:       make(map[schedule.RequestID]schedule.LeaveRequest),
		replacement: make(map[schedule.RequestID]schedule.ReplacementRequest),
		slots:       make(map[schedule.SlotID]schedule.AvailabilitySlot),
	}
}

// =============================================================================
// ASSIGNMENT STORE
// =============================================================================

// Insert holds the write lock across check-and-insert so two concurrent
// creates of the same triple resolve to exactly one success.
func (m *Memory) Insert(_ context.Context, a schedule.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(a)
}

func (m *Memory) insertLocked(a schedule.Assignment) error {
	key := tripleOf(a)
	if existing, ok := m.byTriple[key]; ok {
		return &schedule.ConflictError{
			EmployeeID:  a.EmployeeID,
			GuardTypeID: a.GuardTypeID,
			Date:        a.Date,
			ExistingID:  existing,
		}
	}
	m.assignments[a.ID] = a
	m.byTriple[key] = a.ID
	return nil
}

func (m *Memory) GetByID(_ context.Context, id schedule.AssignmentID) (schedule.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assignments[id]
	if !ok {
		return schedule.Assignment{}, &schedule.NotFoundError{Kind: "assignment", ID: string(id)}
	}
	return a, nil
}

func (m *Memory) Find(_ context.Context, employee schedule.EmployeeID, guardType schedule.GuardTypeID, date schedule.Day) (schedule.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key := tripleKey{Employee: employee, GuardType: guardType, Date: date.String()}
	id, ok := m.byTriple[key]
	if !ok {
		return schedule.Assignment{}, &schedule.NotFoundError{Kind: "assignment", ID: string(employee) + "/" + string(guardType) + "/" + date.String()}
	}
	return m.assignments[id], nil
}

func (m *Memory) DeleteByID(_ context.Context, id schedule.AssignmentID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteLocked(id)
}

func (m *Memory) deleteLocked(id schedule.AssignmentID) error {
	a, ok := m.assignments[id]
	if !ok {
		return &schedule.NotFoundError{Kind: "assignment", ID: string(id)}
	}
	delete(m.assignments, id)
	delete(m.byTriple, tripleOf(a))
	return nil
}

func (m *Memory) DeleteAll(_ context.Context, guardType schedule.GuardTypeID, date schedule.Day) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for id, a := range m.assignments {
		if a.GuardTypeID == guardType && a.Date.Equal(date) {
			delete(m.assignments, id)
			delete(m.byTriple, tripleOf(a))
			count++
		}
	}
	return count, nil
}

func (m *Memory) ListByDateRange(_ context.Context, from, to schedule.Day) ([]schedule.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []schedule.Assignment
	for _, a := range m.assignments {
		if a.Date.AfterOrEqual(from) && a.Date.BeforeOrEqual(to) {
			out = append(out, a)
		}
	}
	sortAssignments(out)
	return out, nil
}

func (m *Memory) ListByEmployee(_ context.Context, employee schedule.EmployeeID) ([]schedule.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []schedule.Assignment
	for _, a := range m.assignments {
		if a.EmployeeID == employee {
			out = append(out, a)
		}
	}
	sortAssignments(out)
	return out, nil
}

func sortAssignments(as []schedule.Assignment) {
	sort.Slice(as, func(i, j int) bool {
		if !as[i].Date.Equal(as[j].Date) {
			return as[i].Date.Before(as[j].Date)
		}
		if as[i].GuardTypeID != as[j].GuardTypeID {
			return as[i].GuardTypeID < as[j].GuardTypeID
		}
		return as[i].ID < as[j].ID
	})
}

// WithTx runs fn under the write lock against an unlocked view; on error the
// assignment maps are restored, giving rollback semantics.
func (m *Memory) WithTx(_ context.Context, fn func(schedule.AssignmentStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	backup := make(map[schedule.AssignmentID]schedule.Assignment, len(m.assignments))
	for k, v := range m.assignments {
		backup[k] = v
	}
	backupTriples := make(map[tripleKey]schedule.AssignmentID, len(m.byTriple))
	for k, v := range m.byTriple {
		backupTriples[k] = v
	}

	if err := fn(&txView{m: m}); err != nil {
		m.assignments = backup
		m.byTriple = backupTriples
		return err
	}
	return nil
}

// txView exposes AssignmentStore over an already-locked Memory.
type txView struct {
	m *Memory
}

func (v *txView) Insert(_ context.Context, a schedule.Assignment) error {
	return v.m.insertLocked(a)
}

func (v *txView) GetByID(_ context.Context, id schedule.AssignmentID) (schedule.Assignment, error) {
	a, ok := v.m.assignments[id]
	if !ok {
		return schedule.Assignment{}, &schedule.NotFoundError{Kind: "assignment", ID: string(id)}
	}
	return a, nil
}

func (v *txView) Find(_ context.Context, employee schedule.EmployeeID, guardType schedule.GuardTypeID, date schedule.Day) (schedule.Assignment, error) {
	key := tripleKey{Employee: employee, GuardType: guardType, Date: date.String()}
	id, ok := v.m.byTriple[key]
	if !ok {
		return schedule.Assignment{}, &schedule.NotFoundError{Kind: "assignment", ID: string(employee) + "/" + string(guardType) + "/" + date.String()}
	}
	return v.m.assignments[id], nil
}

func (v *txView) DeleteByID(_ context.Context, id schedule.AssignmentID) error {
	return v.m.deleteLocked(id)
}

func (v *txView) DeleteAll(_ context.Context, guardType schedule.GuardTypeID, date schedule.Day) (int, error) {
	count := 0
	for id, a := range v.m.assignments {
		if a.GuardTypeID == guardType && a.Date.Equal(date) {
			delete(v.m.assignments, id)
			delete(v.m.byTriple, tripleOf(a))
			count++
		}
	}
	return count, nil
}

func (v *txView) ListByDateRange(_ context.Context, from, to schedule.Day) ([]schedule.Assignment, error) {
	var out []schedule.Assignment
	for _, a := range v.m.assignments {
		if a.Date.AfterOrEqual(from) && a.Date.BeforeOrEqual(to) {
			out = append(out, a)
		}
	}
	sortAssignments(out)
	return out, nil
}

func (v *txView) ListByEmployee(_ context.Context, employee schedule.EmployeeID) ([]schedule.Assignment, error) {
	var out []schedule.Assignment
	for _, a := range v.m.assignments {
		if a.EmployeeID == employee {
			out = append(out, a)
		}
	}
	sortAssignments(out)
	return out, nil
}

// =============================================================================
// GUARD TYPE STORE
// =============================================================================

func (m *Memory) Save(ctx context.Context, g schedule.GuardType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guardTypes[g.ID] = g
	return nil
}

func (m *Memory) Get(_ context.Context, id schedule.GuardTypeID) (schedule.GuardType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.guardTypes[id]
	if !ok {
		return schedule.GuardType{}, &schedule.NotFoundError{Kind: "guard type", ID: string(id)}
	}
	return g, nil
}

func (m *Memory) List(_ context.Context, includeInactive bool) ([]schedule.GuardType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []schedule.GuardType
	for _, g := range m.guardTypes {
		if g.Active || includeInactive {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

// Directory wraps the same Memory store behind the EmployeeDirectory
// interface so a single fixture backs every concern in tests.
type Directory struct {
	M *Memory
}

func (d *Directory) Save(_ context.Context, e schedule.Employee) error {
	d.M.mu.Lock()
	defer d.M.mu.Unlock()
	d.M.employees[e.ID] = e
	return nil
}

func (d *Directory) Get(_ context.Context, id schedule.EmployeeID) (schedule.Employee, error) {
	d.M.mu.RLock()
	defer d.M.mu.RUnlock()
	e, ok := d.M.employees[id]
	if !ok {
		return schedule.Employee{}, &schedule.NotFoundError{Kind: "employee", ID: string(id)}
	}
	return e, nil
}

func (d *Directory) List(_ context.Context, activeOnly bool) ([]schedule.Employee, error) {
	d.M.mu.RLock()
	defer d.M.mu.RUnlock()
	var out []schedule.Employee
	for _, e := range d.M.employees {
		if e.Active || !activeOnly {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// REQUEST STORE
// =============================================================================

func (m *Memory) SaveLeave(_ context.Context, r schedule.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leave[r.ID] = r
	return nil
}

func (m *Memory) GetLeave(_ context.Context, id schedule.RequestID) (schedule.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.leave[id]
	if !ok {
		return schedule.LeaveRequest{}, &schedule.NotFoundError{Kind: "leave request", ID: string(id)}
	}
	return r, nil
}

func (m *Memory) ListLeave(_ context.Context) ([]schedule.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []schedule.LeaveRequest
	for _, r := range m.leave {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) SaveReplacement(_ context.Context, r schedule.ReplacementRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replacement[r.ID] = r
	return nil
}

func (m *Memory) GetReplacement(_ context.Context, id schedule.RequestID) (schedule.ReplacementRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.replacement[id]
	if !ok {
		return schedule.ReplacementRequest{}, &schedule.NotFoundError{Kind: "replacement request", ID: string(id)}
	}
	return r, nil
}

func (m *Memory) ListReplacement(_ context.Context) ([]schedule.ReplacementRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []schedule.ReplacementRequest
	for _, r := range m.replacement {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// =============================================================================
// NOTIFICATION STORE
// =============================================================================

// Notices wraps Memory behind the NotificationStore interface (Insert would
// otherwise collide with the assignment store's method set).
type Notices struct {
	M *Memory
}

func (s *Notices) Insert(_ context.Context, n schedule.Notification) error {
	s.M.mu.Lock()
	defer s.M.mu.Unlock()
	s.M.notifications = append(s.M.notifications, n)
	return nil
}

func (s *Notices) ListByRecipient(_ context.Context, recipient schedule.EmployeeID) ([]schedule.Notification, error) {
	s.M.mu.RLock()
	defer s.M.mu.RUnlock()
	var out []schedule.Notification
	for _, n := range s.M.notifications {
		if n.RecipientID == recipient {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Notices) MarkRead(_ context.Context, id schedule.NotificationID) error {
	s.M.mu.Lock()
	defer s.M.mu.Unlock()
	for i := range s.M.notifications {
		if s.M.notifications[i].ID == id {
			s.M.notifications[i].Read = true
			return nil
		}
	}
	return &schedule.NotFoundError{Kind: "notification", ID: string(id)}
}

func (s *Notices) MarkAllRead(_ context.Context, recipient schedule.EmployeeID) (int, error) {
	s.M.mu.Lock()
	defer s.M.mu.Unlock()
	count := 0
	for i := range s.M.notifications {
		if s.M.notifications[i].RecipientID == recipient && !s.M.notifications[i].Read {
			s.M.notifications[i].Read = true
			count++
		}
	}
	return count, nil
}

func (s *Notices) UnreadCount(_ context.Context, recipient schedule.EmployeeID) (int, error) {
	s.M.mu.RLock()
	defer s.M.mu.RUnlock()
	count := 0
	for _, n := range s.M.notifications {
		if n.RecipientID == recipient && !n.Read {
			count++
		}
	}
	return count, nil
}

// =============================================================================
// AVAILABILITY STORE
// =============================================================================

// Slots wraps Memory behind the AvailabilityStore interface (Save would
// otherwise collide with the guard type store's method set).
type Slots struct {
	M *Memory
}

func (s *Slots) Save(_ context.Context, slot schedule.AvailabilitySlot) error {
	s.M.mu.Lock()
	defer s.M.mu.Unlock()
	s.M.slots[slot.ID] = slot
	return nil
}

func (s *Slots) DeleteByID(_ context.Context, id schedule.SlotID) error {
	s.M.mu.Lock()
	defer s.M.mu.Unlock()
	if _, ok := s.M.slots[id]; !ok {
		return &schedule.NotFoundError{Kind: "availability slot", ID: string(id)}
	}
	delete(s.M.slots, id)
	return nil
}

func (s *Slots) ListByEmployee(_ context.Context, employee schedule.EmployeeID, from, to schedule.Day) ([]schedule.AvailabilitySlot, error) {
	s.M.mu.RLock()
	defer s.M.mu.RUnlock()
	var out []schedule.AvailabilitySlot
	for _, slot := range s.M.slots {
		if slot.EmployeeID == employee && slot.Date.AfterOrEqual(from) && slot.Date.BeforeOrEqual(to) {
			out = append(out, slot)
		}
	}
	sortSlots(out)
	return out, nil
}

func (s *Slots) ListByDate(_ context.Context, date schedule.Day) ([]schedule.AvailabilitySlot, error) {
	s.M.mu.RLock()
	defer s.M.mu.RUnlock()
	var out []schedule.AvailabilitySlot
	for _, slot := range s.M.slots {
		if slot.Date.Equal(date) {
			out = append(out, slot)
		}
	}
	sortSlots(out)
	return out, nil
}

func sortSlots(slots []schedule.AvailabilitySlot) {
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Date.Equal(slots[j].Date) {
			return slots[i].Date.Before(slots[j].Date)
		}
		return slots[i].ID < slots[j].ID
	})
}
