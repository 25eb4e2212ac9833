/*
Package sqlite provides the SQLite-backed implementation of pto.TxStore.

PURPOSE:
  Persists the four core tables (employees, holidays, pto_requests,
  pto_ledger) and enforces the legal-state constraints at the schema
  level. The same patterns apply to PostgreSQL with minor dialect changes.

SCHEMA CONSTRAINTS:
  employees:    UNIQUE email, CHECK initial allowance >= 0
  holidays:     UNIQUE holiday_date
  pto_requests: CHECK status in the four-value set,
                chk_pto_requests_date_order (end_date >= start_date)
  pto_ledger:   CHECK transaction_type in the six-value set,
                FK employee ON DELETE CASCADE,
                FK request ON DELETE SET NULL

APPEND-ONLY ENFORCEMENT:
  There are no UPDATE or DELETE statements for pto_ledger anywhere in
  this package. Corrections are new entries.

NO TRIGGERS:
  updated_at columns are set by the application on every mutating write.
  Cross-table consistency (status <-> usage entry) is owned by
  pto.Lifecycle, which wraps each transition in WithTx.

CONCURRENCY:
  WAL mode plus a process-wide mutex: one writer at a time, so two
  concurrent approvals for the same employee cannot both pass the balance
  check against a stale ledger. SQLITE_BUSY surfaces as pto.ErrConflict,
  which the lifecycle manager retries.

DECIMALS:
  Hours are stored as exact decimal strings and parsed back with
  shopspring/decimal; REAL is never used for balance-bearing columns.

SEE ALSO:
  - pto/store.go:       Interface definitions
  - pto/lifecycle.go:   The transactional caller
  - store/memory:       In-memory implementation for tests
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
	"github.com/shopspring/decimal"

	"github.com/warp/pto-tracker/pto"
)

// Store implements pto.TxStore on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: writers are serialized by the mutex anyway, and a
	// pooled :memory: database would otherwise split across connections.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ pto.TxStore = (*Store)(nil)

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		employee_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		hire_date TEXT NOT NULL,
		initial_pto_allowance_hours TEXT NOT NULL DEFAULT '0'
			CHECK (CAST(initial_pto_allowance_hours AS REAL) >= 0),
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS holidays (
		holiday_id TEXT PRIMARY KEY,
		holiday_date TEXT NOT NULL UNIQUE,
		holiday_name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_date ON holidays(holiday_date);

	CREATE TABLE IF NOT EXISTS pto_requests (
		request_id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(employee_id),
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'approved', 'rejected', 'cancelled')),
		notes TEXT,
		requested_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CONSTRAINT chk_pto_requests_date_order CHECK (end_date >= start_date)
	);

	CREATE INDEX IF NOT EXISTS idx_pto_requests_employee
		ON pto_requests(employee_id);
	CREATE INDEX IF NOT EXISTS idx_pto_requests_status
		ON pto_requests(status);
	CREATE INDEX IF NOT EXISTS idx_pto_requests_employee_dates
		ON pto_requests(employee_id, start_date, end_date);

	-- Append-only ledger: no UPDATE or DELETE path exists in this package.
	CREATE TABLE IF NOT EXISTS pto_ledger (
		ledger_id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(employee_id) ON DELETE CASCADE,
		request_id TEXT REFERENCES pto_requests(request_id) ON DELETE SET NULL,
		change_hours TEXT NOT NULL,
		transaction_type TEXT NOT NULL
			CHECK (transaction_type IN ('initial', 'accrual', 'usage', 'adjustment', 'reset', 'correction')),
		description TEXT,
		transaction_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pto_ledger_employee_date
		ON pto_ledger(employee_id, transaction_date);
	CREATE INDEX IF NOT EXISTS idx_pto_ledger_request
		ON pto_ledger(request_id) WHERE request_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_pto_ledger_type
		ON pto_ledger(employee_id, transaction_type);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, e pto.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveEmployee(ctx, s.db, e)
}

func saveEmployee(ctx context.Context, db dbtx, e pto.Employee) error {
	query := `
		INSERT INTO employees
			(employee_id, name, email, hire_date, initial_pto_allowance_hours,
			 is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			hire_date = excluded.hire_date,
			initial_pto_allowance_hours = excluded.initial_pto_allowance_hours,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at
	`
	_, err := db.ExecContext(ctx, query,
		e.ID, e.Name, e.Email,
		e.HireDate.String(),
		e.InitialAllowanceHours.StringFixed(2),
		boolToInt(e.Active),
		e.CreatedAt.UTC().Format(time.RFC3339),
		e.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapError("failed to save employee", err)
	}
	return nil
}

func (s *Store) GetEmployee(ctx context.Context, id pto.EmployeeID) (*pto.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getEmployee(ctx, s.db, "employee_id = ?", string(id))
}

func (s *Store) GetEmployeeByEmail(ctx context.Context, email string) (*pto.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getEmployee(ctx, s.db, "email = ?", email)
}

func getEmployee(ctx context.Context, db dbtx, where string, arg any) (*pto.Employee, error) {
	row := db.QueryRowContext(ctx, `
		SELECT employee_id, name, email, hire_date, initial_pto_allowance_hours,
		       is_active, created_at, updated_at
		FROM employees WHERE `+where, arg)

	e, err := scanEmployee(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("failed to get employee", err)
	}
	return e, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]pto.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, name, email, hire_date, initial_pto_allowance_hours,
		       is_active, created_at, updated_at
		FROM employees ORDER BY email ASC`)
	if err != nil {
		return nil, mapError("failed to list employees", err)
	}
	defer rows.Close()

	var employees []pto.Employee
	for rows.Next() {
		e, err := scanEmployee(rows.Scan)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *e)
	}
	return employees, rows.Err()
}

func scanEmployee(scan func(dest ...any) error) (*pto.Employee, error) {
	var (
		e         pto.Employee
		hireDate  string
		allowance string
		active    int
		createdAt string
		updatedAt string
	)
	if err := scan(&e.ID, &e.Name, &e.Email, &hireDate, &allowance, &active, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if e.HireDate, err = pto.ParseDate(hireDate); err != nil {
		return nil, err
	}
	if e.InitialAllowanceHours, err = decimal.NewFromString(allowance); err != nil {
		return nil, fmt.Errorf("bad allowance value %q: %w", allowance, err)
	}
	e.Active = active != 0
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &e, nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) SaveHoliday(ctx context.Context, h pto.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveHoliday(ctx, s.db, h)
}

func saveHoliday(ctx context.Context, db dbtx, h pto.Holiday) error {
	query := `
		INSERT INTO holidays (holiday_id, holiday_date, holiday_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(holiday_date) DO UPDATE SET
			holiday_name = excluded.holiday_name,
			updated_at = excluded.updated_at
	`
	_, err := db.ExecContext(ctx, query,
		h.ID, h.Date.String(), h.Name,
		h.CreatedAt.UTC().Format(time.RFC3339),
		h.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapError("failed to save holiday", err)
	}
	return nil
}

func (s *Store) ListHolidays(ctx context.Context, from, to *pto.Date) ([]pto.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listHolidays(ctx, s.db, from, to)
}

func listHolidays(ctx context.Context, db dbtx, from, to *pto.Date) ([]pto.Holiday, error) {
	query := `SELECT holiday_id, holiday_date, holiday_name, created_at, updated_at FROM holidays`
	var conds []string
	var args []any
	if from != nil {
		conds = append(conds, "holiday_date >= ?")
		args = append(args, from.String())
	}
	if to != nil {
		conds = append(conds, "holiday_date <= ?")
		args = append(args, to.String())
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY holiday_date ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("failed to list holidays", err)
	}
	defer rows.Close()

	var holidays []pto.Holiday
	for rows.Next() {
		var (
			h         pto.Holiday
			date      string
			createdAt string
			updatedAt string
		)
		if err := rows.Scan(&h.ID, &date, &h.Name, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if h.Date, err = pto.ParseDate(date); err != nil {
			return nil, err
		}
		h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		h.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// =============================================================================
// REQUESTS
// =============================================================================

func (s *Store) SaveRequest(ctx context.Context, r pto.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveRequest(ctx, s.db, r)
}

func saveRequest(ctx context.Context, db dbtx, r pto.Request) error {
	query := `
		INSERT INTO pto_requests
			(request_id, employee_id, start_date, end_date, status, notes,
			 requested_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(request_id) DO UPDATE SET
			status = excluded.status,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`
	_, err := db.ExecContext(ctx, query,
		r.ID, r.EmployeeID,
		r.StartDate.String(), r.EndDate.String(),
		r.Status, nullString(r.Notes),
		r.RequestedAt.UTC().Format(time.RFC3339),
		r.CreatedAt.UTC().Format(time.RFC3339),
		r.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapError("failed to save request", err)
	}
	return nil
}

func (s *Store) GetRequest(ctx context.Context, id pto.RequestID) (*pto.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getRequest(ctx, s.db, id)
}

func getRequest(ctx context.Context, db dbtx, id pto.RequestID) (*pto.Request, error) {
	row := db.QueryRowContext(ctx, `
		SELECT request_id, employee_id, start_date, end_date, status, notes,
		       requested_at, created_at, updated_at
		FROM pto_requests WHERE request_id = ?`, string(id))

	r, err := scanRequest(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("failed to get request", err)
	}
	return r, nil
}

func (s *Store) ListRequests(ctx context.Context, filter pto.RequestFilter) ([]pto.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listRequests(ctx, s.db, filter)
}

func listRequests(ctx context.Context, db dbtx, filter pto.RequestFilter) ([]pto.Request, error) {
	query := `
		SELECT request_id, employee_id, start_date, end_date, status, notes,
		       requested_at, created_at, updated_at
		FROM pto_requests`
	var conds []string
	var args []any
	if filter.EmployeeID != nil {
		conds = append(conds, "employee_id = ?")
		args = append(args, string(*filter.EmployeeID))
	}
	if filter.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.StartFrom != nil {
		conds = append(conds, "start_date >= ?")
		args = append(args, filter.StartFrom.String())
	}
	if filter.StartTo != nil {
		conds = append(conds, "start_date <= ?")
		args = append(args, filter.StartTo.String())
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY start_date DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("failed to list requests", err)
	}
	defer rows.Close()

	var requests []pto.Request
	for rows.Next() {
		r, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

func scanRequest(scan func(dest ...any) error) (*pto.Request, error) {
	var (
		r           pto.Request
		startDate   string
		endDate     string
		notes       sql.NullString
		requestedAt string
		createdAt   string
		updatedAt   string
	)
	if err := scan(&r.ID, &r.EmployeeID, &startDate, &endDate, &r.Status, &notes,
		&requestedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if r.StartDate, err = pto.ParseDate(startDate); err != nil {
		return nil, err
	}
	if r.EndDate, err = pto.ParseDate(endDate); err != nil {
		return nil, err
	}
	r.Notes = notes.String
	r.RequestedAt, _ = time.Parse(time.RFC3339, requestedAt)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &r, nil
}

// =============================================================================
// LEDGER (append-only)
// =============================================================================

func (s *Store) AppendEntry(ctx context.Context, entry pto.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendEntry(ctx, s.db, entry)
}

func appendEntry(ctx context.Context, db dbtx, entry pto.LedgerEntry) error {
	var requestID sql.NullString
	if entry.RequestID != nil {
		requestID = sql.NullString{String: string(*entry.RequestID), Valid: true}
	}

	query := `
		INSERT INTO pto_ledger
			(ledger_id, employee_id, request_id, change_hours, transaction_type,
			 description, transaction_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query,
		entry.ID, entry.EmployeeID, requestID,
		entry.ChangeHours.StringFixed(2),
		entry.Type,
		nullString(entry.Description),
		entry.TransactionDate.UTC().Format(time.RFC3339),
		entry.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapError("failed to append ledger entry", err)
	}
	return nil
}

func (s *Store) ListEntries(ctx context.Context, employeeID pto.EmployeeID) ([]pto.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryEntries(ctx, s.db, "employee_id = ?", string(employeeID))
}

func (s *Store) ListEntriesByRequest(ctx context.Context, requestID pto.RequestID) ([]pto.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryEntries(ctx, s.db, "request_id = ?", string(requestID))
}

func queryEntries(ctx context.Context, db dbtx, where string, arg any) ([]pto.LedgerEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT ledger_id, employee_id, request_id, change_hours, transaction_type,
		       description, transaction_date, created_at
		FROM pto_ledger
		WHERE `+where+`
		ORDER BY transaction_date ASC, created_at ASC`, arg)
	if err != nil {
		return nil, mapError("failed to query ledger", err)
	}
	defer rows.Close()

	var entries []pto.LedgerEntry
	for rows.Next() {
		var (
			e           pto.LedgerEntry
			requestID   sql.NullString
			changeHours string
			description sql.NullString
			txDate      string
			createdAt   string
		)
		if err := rows.Scan(&e.ID, &e.EmployeeID, &requestID, &changeHours, &e.Type,
			&description, &txDate, &createdAt); err != nil {
			return nil, err
		}
		if requestID.Valid {
			rid := pto.RequestID(requestID.String)
			e.RequestID = &rid
		}
		if e.ChangeHours, err = decimal.NewFromString(changeHours); err != nil {
			return nil, fmt.Errorf("bad change_hours value %q: %w", changeHours, err)
		}
		e.Description = description.String
		e.TransactionDate, _ = time.Parse(time.RFC3339, txDate)
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) HasEntryOfType(ctx context.Context, employeeID pto.EmployeeID, t pto.EntryType) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return hasEntryOfType(ctx, s.db, employeeID, t)
}

func hasEntryOfType(ctx context.Context, db dbtx, employeeID pto.EmployeeID, t pto.EntryType) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pto_ledger WHERE employee_id = ? AND transaction_type = ?",
		string(employeeID), string(t),
	).Scan(&count)
	if err != nil {
		return false, mapError("failed to check ledger", err)
	}
	return count > 0, nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn within a database transaction. The store mutex is
// held for the duration, serializing check-then-act sequences across
// goroutines in this process.
func (s *Store) WithTx(ctx context.Context, fn func(pto.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError("failed to begin transaction", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return mapError("failed to commit transaction", err)
	}
	return nil
}

// txStore routes Store calls through an open *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) GetEmployee(ctx context.Context, id pto.EmployeeID) (*pto.Employee, error) {
	return getEmployee(ctx, ts.tx, "employee_id = ?", string(id))
}

func (ts *txStore) GetEmployeeByEmail(ctx context.Context, email string) (*pto.Employee, error) {
	return getEmployee(ctx, ts.tx, "email = ?", email)
}

func (ts *txStore) ListEmployees(ctx context.Context) ([]pto.Employee, error) {
	rows, err := ts.tx.QueryContext(ctx, `
		SELECT employee_id, name, email, hire_date, initial_pto_allowance_hours,
		       is_active, created_at, updated_at
		FROM employees ORDER BY email ASC`)
	if err != nil {
		return nil, mapError("failed to list employees", err)
	}
	defer rows.Close()

	var employees []pto.Employee
	for rows.Next() {
		e, err := scanEmployee(rows.Scan)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *e)
	}
	return employees, rows.Err()
}

func (ts *txStore) SaveEmployee(ctx context.Context, e pto.Employee) error {
	return saveEmployee(ctx, ts.tx, e)
}

func (ts *txStore) ListHolidays(ctx context.Context, from, to *pto.Date) ([]pto.Holiday, error) {
	return listHolidays(ctx, ts.tx, from, to)
}

func (ts *txStore) SaveHoliday(ctx context.Context, h pto.Holiday) error {
	return saveHoliday(ctx, ts.tx, h)
}

func (ts *txStore) GetRequest(ctx context.Context, id pto.RequestID) (*pto.Request, error) {
	return getRequest(ctx, ts.tx, id)
}

func (ts *txStore) ListRequests(ctx context.Context, filter pto.RequestFilter) ([]pto.Request, error) {
	return listRequests(ctx, ts.tx, filter)
}

func (ts *txStore) SaveRequest(ctx context.Context, r pto.Request) error {
	return saveRequest(ctx, ts.tx, r)
}

func (ts *txStore) AppendEntry(ctx context.Context, entry pto.LedgerEntry) error {
	return appendEntry(ctx, ts.tx, entry)
}

func (ts *txStore) ListEntries(ctx context.Context, employeeID pto.EmployeeID) ([]pto.LedgerEntry, error) {
	return queryEntries(ctx, ts.tx, "employee_id = ?", string(employeeID))
}

func (ts *txStore) ListEntriesByRequest(ctx context.Context, requestID pto.RequestID) ([]pto.LedgerEntry, error) {
	return queryEntries(ctx, ts.tx, "request_id = ?", string(requestID))
}

func (ts *txStore) HasEntryOfType(ctx context.Context, employeeID pto.EmployeeID, t pto.EntryType) (bool, error) {
	return hasEntryOfType(ctx, ts.tx, employeeID, t)
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// mapError translates driver errors into the domain's error kinds.
// SQLITE_BUSY / database-is-locked means a concurrent writer interfered;
// callers treat that as retryable.
func mapError(msg string, err error) error {
	es := err.Error()
	if strings.Contains(es, "database is locked") || strings.Contains(es, "SQLITE_BUSY") {
		return fmt.Errorf("%s: %w", msg, pto.ErrConflict)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
