/*
Package sqlite provides the SQLite-backed implementation of the schedule
storage interfaces.

PURPOSE:
  One database file (or :memory:) backs every store the engine needs:
  assignments, guard types, employees, requests, notifications and
  availability slots. In production the same patterns apply to PostgreSQL -
  only minor SQL dialect differences.

INVARIANT ENFORCEMENT:
  The no-double-booking invariant is enforced by the database itself:

    UNIQUE(employee_id, guard_type_id, date) on assignments

  Two concurrent creates of the same triple race through the unique index;
  exactly one wins, the loser gets *schedule.ConflictError. The application
  never holds a lock across check-and-insert.

TRANSACTIONS:
  Assignments().WithTx wraps the replacement delete+create swap in a single
  database transaction so a conflict on the create half rolls the delete
  back.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so coverage reads don't
  block behind writers and every read observes a consistent snapshot.

USAGE:
  store, err := sqlite.New("./data/shifts.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ledger := schedule.NewLedger(store.Assignments(), store.GuardTypes(), bus, cfg)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - schedule/store.go:        Interface definitions
  - schedule/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/firehall/shift-engine/schedule"
)

// Store owns the database handle. Per-concern views are obtained through
// the accessor methods; all share the same connection and write mutex.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		rank TEXT NOT NULL DEFAULT '',
		officer INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS guard_types (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		required_personnel INTEGER NOT NULL,
		officer_required INTEGER NOT NULL DEFAULT 0,
		weekdays TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS assignments (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		guard_type_id TEXT NOT NULL,
		date TEXT NOT NULL,
		origin TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- One booking per (employee, guard type, date) triple.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_assignments_triple
		ON assignments(employee_id, guard_type_id, date);

	CREATE INDEX IF NOT EXISTS idx_assignments_date
		ON assignments(date);
	CREATE INDEX IF NOT EXISTS idx_assignments_employee
		ON assignments(employee_id);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		requester_id TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		number_of_days INTEGER NOT NULL,
		reason TEXT NOT NULL,
		priority TEXT NOT NULL,
		status TEXT NOT NULL,
		decided_by TEXT NOT NULL DEFAULT '',
		decision_comment TEXT NOT NULL DEFAULT '',
		decided_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS replacement_requests (
		id TEXT PRIMARY KEY,
		requester_id TEXT NOT NULL,
		guard_type_id TEXT NOT NULL,
		date TEXT NOT NULL,
		reason TEXT NOT NULL,
		priority TEXT NOT NULL,
		status TEXT NOT NULL,
		replacement_id TEXT NOT NULL DEFAULT '',
		decided_by TEXT NOT NULL DEFAULT '',
		decision_comment TEXT NOT NULL DEFAULT '',
		decided_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		recipient_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		link TEXT NOT NULL DEFAULT '',
		is_read INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_notifications_recipient
		ON notifications(recipient_id, is_read);

	CREATE TABLE IF NOT EXISTS availability_slots (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		guard_type_id TEXT,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_availability_date
		ON availability_slots(date);
	CREATE INDEX IF NOT EXISTS idx_availability_employee
		ON availability_slots(employee_id, date);
	`
	_, err := s.db.Exec(schema)
	return err
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// =============================================================================
// VIEW ACCESSORS
// =============================================================================

func (s *Store) Assignments() *Assignments   { return &Assignments{s: s} }
func (s *Store) GuardTypes() *GuardTypes     { return &GuardTypes{s: s} }
func (s *Store) Employees() *Employees       { return &Employees{s: s} }
func (s *Store) Requests() *Requests         { return &Requests{s: s} }
func (s *Store) Notifications() *Notices     { return &Notices{s: s} }
func (s *Store) Availability() *Availability { return &Availability{s: s} }

// Compile-time interface checks
var (
	_ schedule.TxAssignmentStore = (*Assignments)(nil)
	_ schedule.GuardTypeStore    = (*GuardTypes)(nil)
	_ schedule.EmployeeDirectory = (*Employees)(nil)
	_ schedule.RequestStore      = (*Requests)(nil)
	_ schedule.NotificationStore = (*Notices)(nil)
	_ schedule.AvailabilityStore = (*Availability)(nil)
)

// querier abstracts *sql.DB and *sql.Tx so the assignment queries run both
// standalone and inside WithTx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

type Assignments struct {
	s *Store
}

func (a *Assignments) Insert(ctx context.Context, rec schedule.Assignment) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return insertAssignment(ctx, a.s.db, rec)
}

func insertAssignment(ctx context.Context, q querier, rec schedule.Assignment) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO assignments (id, employee_id, guard_type_id, date, origin, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.EmployeeID, rec.GuardTypeID, rec.Date.String(), rec.Origin,
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			conflict := &schedule.ConflictError{
				EmployeeID:  rec.EmployeeID,
				GuardTypeID: rec.GuardTypeID,
				Date:        rec.Date,
			}
			// Best effort: the existing ID is detail for the error message.
			var existing string
			if scanErr := q.QueryRowContext(ctx, `
				SELECT id FROM assignments WHERE employee_id = ? AND guard_type_id = ? AND date = ?`,
				rec.EmployeeID, rec.GuardTypeID, rec.Date.String(),
			).Scan(&existing); scanErr == nil {
				conflict.ExistingID = schedule.AssignmentID(existing)
			}
			return conflict
		}
		return fmt.Errorf("failed to insert assignment: %w", err)
	}
	return nil
}

const assignmentColumns = `id, employee_id, guard_type_id, date, origin, created_at`

func scanAssignment(row interface{ Scan(...any) error }) (schedule.Assignment, error) {
	var rec schedule.Assignment
	var date, createdAt string
	if err := row.Scan(&rec.ID, &rec.EmployeeID, &rec.GuardTypeID, &date, &rec.Origin, &createdAt); err != nil {
		return schedule.Assignment{}, err
	}
	var err error
	if rec.Date, err = schedule.ParseDay(date); err != nil {
		return schedule.Assignment{}, err
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return rec, nil
}

func (a *Assignments) GetByID(ctx context.Context, id schedule.AssignmentID) (schedule.Assignment, error) {
	return getAssignmentByID(ctx, a.s.db, id)
}

func getAssignmentByID(ctx context.Context, q querier, id schedule.AssignmentID) (schedule.Assignment, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = ?`, id)
	rec, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return schedule.Assignment{}, &schedule.NotFoundError{Kind: "assignment", ID: string(id)}
	}
	return rec, err
}

func (a *Assignments) Find(ctx context.Context, employee schedule.EmployeeID, guardType schedule.GuardTypeID, date schedule.Day) (schedule.Assignment, error) {
	return findAssignment(ctx, a.s.db, employee, guardType, date)
}

func findAssignment(ctx context.Context, q querier, employee schedule.EmployeeID, guardType schedule.GuardTypeID, date schedule.Day) (schedule.Assignment, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments
		 WHERE employee_id = ? AND guard_type_id = ? AND date = ?`,
		employee, guardType, date.String())
	rec, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return schedule.Assignment{}, &schedule.NotFoundError{
			Kind: "assignment",
			ID:   string(employee) + "/" + string(guardType) + "/" + date.String(),
		}
	}
	return rec, err
}

func (a *Assignments) DeleteByID(ctx context.Context, id schedule.AssignmentID) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return deleteAssignmentByID(ctx, a.s.db, id)
}

func deleteAssignmentByID(ctx context.Context, q querier, id schedule.AssignmentID) error {
	res, err := q.ExecContext(ctx, `DELETE FROM assignments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &schedule.NotFoundError{Kind: "assignment", ID: string(id)}
	}
	return nil
}

func (a *Assignments) DeleteAll(ctx context.Context, guardType schedule.GuardTypeID, date schedule.Day) (int, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	res, err := a.s.db.ExecContext(ctx,
		`DELETE FROM assignments WHERE guard_type_id = ? AND date = ?`,
		guardType, date.String())
	if err != nil {
		return 0, fmt.Errorf("failed to clear assignments: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (a *Assignments) ListByDateRange(ctx context.Context, from, to schedule.Day) ([]schedule.Assignment, error) {
	rows, err := a.s.db.QueryContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments
		 WHERE date >= ? AND date <= ?
		 ORDER BY date, guard_type_id, id`,
		from.String(), to.String())
	if err != nil {
		return nil, err
	}
	return collectAssignments(rows)
}

func (a *Assignments) ListByEmployee(ctx context.Context, employee schedule.EmployeeID) ([]schedule.Assignment, error) {
	rows, err := a.s.db.QueryContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments
		 WHERE employee_id = ? ORDER BY date, guard_type_id`,
		employee)
	if err != nil {
		return nil, err
	}
	return collectAssignments(rows)
}

func collectAssignments(rows *sql.Rows) ([]schedule.Assignment, error) {
	defer rows.Close()
	var out []schedule.Assignment
	for rows.Next() {
		rec, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// WithTx runs fn inside one database transaction, rolled back on error.
func (a *Assignments) WithTx(ctx context.Context, fn func(schedule.AssignmentStore) error) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	tx, err := a.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&txAssignments{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// txAssignments is the AssignmentStore view bound to an open transaction.
type txAssignments struct {
	tx *sql.Tx
}

func (t *txAssignments) Insert(ctx context.Context, rec schedule.Assignment) error {
	return insertAssignment(ctx, t.tx, rec)
}

func (t *txAssignments) GetByID(ctx context.Context, id schedule.AssignmentID) (schedule.Assignment, error) {
	return getAssignmentByID(ctx, t.tx, id)
}

func (t *txAssignments) Find(ctx context.Context, employee schedule.EmployeeID, guardType schedule.GuardTypeID, date schedule.Day) (schedule.Assignment, error) {
	return findAssignment(ctx, t.tx, employee, guardType, date)
}

func (t *txAssignments) DeleteByID(ctx context.Context, id schedule.AssignmentID) error {
	return deleteAssignmentByID(ctx, t.tx, id)
}

func (t *txAssignments) DeleteAll(ctx context.Context, guardType schedule.GuardTypeID, date schedule.Day) (int, error) {
	res, err := t.tx.ExecContext(ctx,
		`DELETE FROM assignments WHERE guard_type_id = ? AND date = ?`,
		guardType, date.String())
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (t *txAssignments) ListByDateRange(ctx context.Context, from, to schedule.Day) ([]schedule.Assignment, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments
		 WHERE date >= ? AND date <= ? ORDER BY date, guard_type_id, id`,
		from.String(), to.String())
	if err != nil {
		return nil, err
	}
	return collectAssignments(rows)
}

func (t *txAssignments) ListByEmployee(ctx context.Context, employee schedule.EmployeeID) ([]schedule.Assignment, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments
		 WHERE employee_id = ? ORDER BY date, guard_type_id`,
		employee)
	if err != nil {
		return nil, err
	}
	return collectAssignments(rows)
}

// =============================================================================
// GUARD TYPES
// =============================================================================

type GuardTypes struct {
	s *Store
}

func (g *GuardTypes) Save(ctx context.Context, rec schedule.GuardType) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	_, err := g.s.db.ExecContext(ctx, `
		INSERT INTO guard_types
			(id, name, start_time, end_time, required_personnel, officer_required, weekdays, color, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			required_personnel = excluded.required_personnel,
			officer_required = excluded.officer_required,
			weekdays = excluded.weekdays,
			color = excluded.color,
			active = excluded.active`,
		rec.ID, rec.Name, rec.Start.String(), rec.End.String(),
		rec.RequiredPersonnel, boolInt(rec.OfficerRequired),
		strings.Join(rec.ApplicableWeekdays.Names(), ","),
		rec.Color, boolInt(rec.Active),
	)
	if err != nil {
		return fmt.Errorf("failed to save guard type: %w", err)
	}
	return nil
}

func (g *GuardTypes) Get(ctx context.Context, id schedule.GuardTypeID) (schedule.GuardType, error) {
	row := g.s.db.QueryRowContext(ctx, `
		SELECT id, name, start_time, end_time, required_personnel, officer_required, weekdays, color, active
		FROM guard_types WHERE id = ?`, id)
	rec, err := scanGuardType(row)
	if err == sql.ErrNoRows {
		return schedule.GuardType{}, &schedule.NotFoundError{Kind: "guard type", ID: string(id)}
	}
	return rec, err
}

func (g *GuardTypes) List(ctx context.Context, includeInactive bool) ([]schedule.GuardType, error) {
	query := `
		SELECT id, name, start_time, end_time, required_personnel, officer_required, weekdays, color, active
		FROM guard_types`
	if !includeInactive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name`

	rows, err := g.s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schedule.GuardType
	for rows.Next() {
		rec, err := scanGuardType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanGuardType(row interface{ Scan(...any) error }) (schedule.GuardType, error) {
	var rec schedule.GuardType
	var start, end, weekdays string
	var officer, active int
	if err := row.Scan(&rec.ID, &rec.Name, &start, &end, &rec.RequiredPersonnel,
		&officer, &weekdays, &rec.Color, &active); err != nil {
		return schedule.GuardType{}, err
	}
	var err error
	if rec.Start, err = schedule.ParseClockTime(start); err != nil {
		return schedule.GuardType{}, err
	}
	if rec.End, err = schedule.ParseClockTime(end); err != nil {
		return schedule.GuardType{}, err
	}
	if weekdays != "" {
		if rec.ApplicableWeekdays, err = schedule.ParseWeekdaySet(strings.Split(weekdays, ",")); err != nil {
			return schedule.GuardType{}, err
		}
	}
	rec.OfficerRequired = officer != 0
	rec.Active = active != 0
	return rec, nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

type Employees struct {
	s *Store
}

func (e *Employees) Save(ctx context.Context, rec schedule.Employee) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	_, err := e.s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, rank, officer, active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			rank = excluded.rank,
			officer = excluded.officer,
			active = excluded.active`,
		rec.ID, rec.Name, rec.Rank, boolInt(rec.Officer), boolInt(rec.Active))
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

func (e *Employees) Get(ctx context.Context, id schedule.EmployeeID) (schedule.Employee, error) {
	var rec schedule.Employee
	var officer, active int
	err := e.s.db.QueryRowContext(ctx,
		`SELECT id, name, rank, officer, active FROM employees WHERE id = ?`, id).
		Scan(&rec.ID, &rec.Name, &rec.Rank, &officer, &active)
	if err == sql.ErrNoRows {
		return schedule.Employee{}, &schedule.NotFoundError{Kind: "employee", ID: string(id)}
	}
	if err != nil {
		return schedule.Employee{}, err
	}
	rec.Officer = officer != 0
	rec.Active = active != 0
	return rec, nil
}

func (e *Employees) List(ctx context.Context, activeOnly bool) ([]schedule.Employee, error) {
	query := `SELECT id, name, rank, officer, active FROM employees`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY id`

	rows, err := e.s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schedule.Employee
	for rows.Next() {
		var rec schedule.Employee
		var officer, active int
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Rank, &officer, &active); err != nil {
			return nil, err
		}
		rec.Officer = officer != 0
		rec.Active = active != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

// =============================================================================
// REQUESTS
// =============================================================================

type Requests struct {
	s *Store
}

func (r *Requests) SaveLeave(ctx context.Context, rec schedule.LeaveRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, err := r.s.db.ExecContext(ctx, `
		INSERT INTO leave_requests
			(id, requester_id, kind, start_date, end_date, number_of_days,
			 reason, priority, status, decided_by, decision_comment, decided_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			decided_by = excluded.decided_by,
			decision_comment = excluded.decision_comment,
			decided_at = excluded.decided_at`,
		rec.ID, rec.RequesterID, rec.Kind, rec.Start.String(), rec.End.String(),
		rec.NumberOfDays, rec.Reason, rec.Priority, rec.Status,
		rec.DecidedBy, rec.DecisionComment, nullTime(rec.DecidedAt),
		rec.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save leave request: %w", err)
	}
	return nil
}

const leaveColumns = `id, requester_id, kind, start_date, end_date, number_of_days,
	reason, priority, status, decided_by, decision_comment, decided_at, created_at`

func (r *Requests) GetLeave(ctx context.Context, id schedule.RequestID) (schedule.LeaveRequest, error) {
	row := r.s.db.QueryRowContext(ctx,
		`SELECT `+leaveColumns+` FROM leave_requests WHERE id = ?`, id)
	rec, err := scanLeave(row)
	if err == sql.ErrNoRows {
		return schedule.LeaveRequest{}, &schedule.NotFoundError{Kind: "leave request", ID: string(id)}
	}
	return rec, err
}

func (r *Requests) ListLeave(ctx context.Context) ([]schedule.LeaveRequest, error) {
	rows, err := r.s.db.QueryContext(ctx,
		`SELECT `+leaveColumns+` FROM leave_requests ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schedule.LeaveRequest
	for rows.Next() {
		rec, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanLeave(row interface{ Scan(...any) error }) (schedule.LeaveRequest, error) {
	var rec schedule.LeaveRequest
	var start, end, createdAt string
	var decidedAt sql.NullString
	if err := row.Scan(&rec.ID, &rec.RequesterID, &rec.Kind, &start, &end,
		&rec.NumberOfDays, &rec.Reason, &rec.Priority, &rec.Status,
		&rec.DecidedBy, &rec.DecisionComment, &decidedAt, &createdAt); err != nil {
		return schedule.LeaveRequest{}, err
	}
	var err error
	if rec.Start, err = schedule.ParseDay(start); err != nil {
		return schedule.LeaveRequest{}, err
	}
	if rec.End, err = schedule.ParseDay(end); err != nil {
		return schedule.LeaveRequest{}, err
	}
	rec.DecidedAt = parseNullTime(decidedAt)
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return rec, nil
}

func (r *Requests) SaveReplacement(ctx context.Context, rec schedule.ReplacementRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, err := r.s.db.ExecContext(ctx, `
		INSERT INTO replacement_requests
			(id, requester_id, guard_type_id, date, reason, priority, status,
			 replacement_id, decided_by, decision_comment, decided_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			replacement_id = excluded.replacement_id,
			decided_by = excluded.decided_by,
			decision_comment = excluded.decision_comment,
			decided_at = excluded.decided_at`,
		rec.ID, rec.RequesterID, rec.GuardTypeID, rec.Date.String(),
		rec.Reason, rec.Priority, rec.Status, rec.ReplacementID,
		rec.DecidedBy, rec.DecisionComment, nullTime(rec.DecidedAt),
		rec.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save replacement request: %w", err)
	}
	return nil
}

const replacementColumns = `id, requester_id, guard_type_id, date, reason, priority,
	status, replacement_id, decided_by, decision_comment, decided_at, created_at`

func (r *Requests) GetReplacement(ctx context.Context, id schedule.RequestID) (schedule.ReplacementRequest, error) {
	row := r.s.db.QueryRowContext(ctx,
		`SELECT `+replacementColumns+` FROM replacement_requests WHERE id = ?`, id)
	rec, err := scanReplacement(row)
	if err == sql.ErrNoRows {
		return schedule.ReplacementRequest{}, &schedule.NotFoundError{Kind: "replacement request", ID: string(id)}
	}
	return rec, err
}

func (r *Requests) ListReplacement(ctx context.Context) ([]schedule.ReplacementRequest, error) {
	rows, err := r.s.db.QueryContext(ctx,
		`SELECT `+replacementColumns+` FROM replacement_requests ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schedule.ReplacementRequest
	for rows.Next() {
		rec, err := scanReplacement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanReplacement(row interface{ Scan(...any) error }) (schedule.ReplacementRequest, error) {
	var rec schedule.ReplacementRequest
	var date, createdAt string
	var decidedAt sql.NullString
	if err := row.Scan(&rec.ID, &rec.RequesterID, &rec.GuardTypeID, &date,
		&rec.Reason, &rec.Priority, &rec.Status, &rec.ReplacementID,
		&rec.DecidedBy, &rec.DecisionComment, &decidedAt, &createdAt); err != nil {
		return schedule.ReplacementRequest{}, err
	}
	var err error
	if rec.Date, err = schedule.ParseDay(date); err != nil {
		return schedule.ReplacementRequest{}, err
	}
	rec.DecidedAt = parseNullTime(decidedAt)
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return rec, nil
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

type Notices struct {
	s *Store
}

func (n *Notices) Insert(ctx context.Context, rec schedule.Notification) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	_, err := n.s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, kind, title, body, link, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RecipientID, rec.Kind, rec.Title, rec.Body, rec.Link,
		boolInt(rec.Read), rec.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (n *Notices) ListByRecipient(ctx context.Context, recipient schedule.EmployeeID) ([]schedule.Notification, error) {
	rows, err := n.s.db.QueryContext(ctx, `
		SELECT id, recipient_id, kind, title, body, link, is_read, created_at
		FROM notifications WHERE recipient_id = ?
		ORDER BY created_at DESC`, recipient)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schedule.Notification
	for rows.Next() {
		var rec schedule.Notification
		var isRead int
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.RecipientID, &rec.Kind, &rec.Title,
			&rec.Body, &rec.Link, &isRead, &createdAt); err != nil {
			return nil, err
		}
		rec.Read = isRead != 0
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (n *Notices) MarkRead(ctx context.Context, id schedule.NotificationID) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	res, err := n.s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return &schedule.NotFoundError{Kind: "notification", ID: string(id)}
	}
	return nil
}

func (n *Notices) MarkAllRead(ctx context.Context, recipient schedule.EmployeeID) (int, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	res, err := n.s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE recipient_id = ? AND is_read = 0`, recipient)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func (n *Notices) UnreadCount(ctx context.Context, recipient schedule.EmployeeID) (int, error) {
	var count int
	err := n.s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND is_read = 0`, recipient).
		Scan(&count)
	return count, err
}

// =============================================================================
// AVAILABILITY
// =============================================================================

type Availability struct {
	s *Store
}

func (a *Availability) Save(ctx context.Context, rec schedule.AvailabilitySlot) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	// NULL guard_type_id means the slot covers any guard type that day.
	var guardType any
	if id, ok := rec.Scope.GuardType(); ok {
		guardType = string(id)
	}
	_, err := a.s.db.ExecContext(ctx, `
		INSERT INTO availability_slots
			(id, employee_id, date, guard_type_id, start_time, end_time, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			guard_type_id = excluded.guard_type_id,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			status = excluded.status`,
		rec.ID, rec.EmployeeID, rec.Date.String(), guardType,
		rec.Start.String(), rec.End.String(), rec.Status,
		rec.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save availability slot: %w", err)
	}
	return nil
}

func (a *Availability) DeleteByID(ctx context.Context, id schedule.SlotID) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	res, err := a.s.db.ExecContext(ctx, `DELETE FROM availability_slots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete availability slot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &schedule.NotFoundError{Kind: "availability slot", ID: string(id)}
	}
	return nil
}

const slotColumns = `id, employee_id, date, guard_type_id, start_time, end_time, status, created_at`

func (a *Availability) ListByEmployee(ctx context.Context, employee schedule.EmployeeID, from, to schedule.Day) ([]schedule.AvailabilitySlot, error) {
	rows, err := a.s.db.QueryContext(ctx,
		`SELECT `+slotColumns+` FROM availability_slots
		 WHERE employee_id = ? AND date >= ? AND date <= ?
		 ORDER BY date, id`,
		employee, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	return collectSlots(rows)
}

func (a *Availability) ListByDate(ctx context.Context, date schedule.Day) ([]schedule.AvailabilitySlot, error) {
	rows, err := a.s.db.QueryContext(ctx,
		`SELECT `+slotColumns+` FROM availability_slots
		 WHERE date = ? ORDER BY employee_id, id`, date.String())
	if err != nil {
		return nil, err
	}
	return collectSlots(rows)
}

func collectSlots(rows *sql.Rows) ([]schedule.AvailabilitySlot, error) {
	defer rows.Close()
	var out []schedule.AvailabilitySlot
	for rows.Next() {
		var rec schedule.AvailabilitySlot
		var date, start, end, createdAt string
		var guardType sql.NullString
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &date, &guardType,
			&start, &end, &rec.Status, &createdAt); err != nil {
			return nil, err
		}
		var err error
		if rec.Date, err = schedule.ParseDay(date); err != nil {
			return nil, err
		}
		if rec.Start, err = schedule.ParseClockTime(start); err != nil {
			return nil, err
		}
		if rec.End, err = schedule.ParseClockTime(end); err != nil {
			return nil, err
		}
		if guardType.Valid {
			rec.Scope = schedule.SpecificGuardType(schedule.GuardTypeID(guardType.String))
		} else {
			rec.Scope = schedule.AnyGuardType()
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}
