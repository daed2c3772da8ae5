/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements billing.Store, billing.TopUpStore, schedule.Store, and
  invite.CodeStore on a single pooled *sql.DB. The store is created once
  at startup and injected into every engine - no global handle, no
  per-request connect/close.

KEY TABLES:
  companies:     Account state (balance, plan, employees, invite code)
  schedules:     Per-day schedule records, UNIQUE (username, date)
  transactions:  Append-only audit log of billable actions
  topups:        Balance top-up requests

APPEND-ONLY ENFORCEMENT:
  No UPDATE or DELETE statement exists for the transactions table.

TRANSACTIONS:
  WithTx hands the closure a store bound to a database transaction; the
  same method set works inside and outside a transaction. A mutex
  serializes transactions, which combined with the UNIQUE schedule index
  gives mutual exclusion for concurrent billable operations.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency
  and crash recovery.

USAGE:
  store, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ledger := schedule.NewLedger(store, holidaySource)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - billing/store.go: Interface contracts
  - schedule/store.go: Schedule-record extension
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/attendance-engine/billing"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/schedule"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn implements every store method against a queryer, so the same
// code serves the pooled handle and transaction-bound handles.
type conn struct {
	q    queryer
	inTx bool
}

// Store is the production SQLite store.
type Store struct {
	conn
	db *sql.DB
	mu sync.Mutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{conn: conn{q: db}, db: db}
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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Company accounts
	CREATE TABLE IF NOT EXISTS companies (
		username TEXT PRIMARY KEY,
		balance TEXT NOT NULL DEFAULT '0.00',
		plan_type TEXT NOT NULL DEFAULT 'free',
		employees_json TEXT NOT NULL DEFAULT '[]',
		invitation_code TEXT,
		invitation_limit INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	-- Invitation codes are unique across companies at issuance time
	CREATE UNIQUE INDEX IF NOT EXISTS idx_companies_invitation_code
		ON companies(invitation_code)
		WHERE invitation_code IS NOT NULL AND invitation_code != '';

	-- Per-day schedule records.
	-- CRITICAL: at most one record per (company, date). A create racing
	-- past the batch existence check fails here and rolls back its debit.
	CREATE TABLE IF NOT EXISTS schedules (
		username TEXT NOT NULL,
		date TEXT NOT NULL,
		day TEXT NOT NULL,
		attendance_json TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		PRIMARY KEY (username, date)
	);

	-- Audit log (append-only)
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		type TEXT NOT NULL,
		date TEXT NOT NULL,
		charge TEXT NOT NULL,
		metadata_json TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_username_date
		ON transactions(username, date DESC);

	-- Balance top-up requests
	CREATE TABLE IF NOT EXISTS topups (
		topup_id INTEGER PRIMARY KEY,
		username TEXT NOT NULL,
		amount TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_topups_username_status
		ON topups(username, status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONAL BOUNDARY
// =============================================================================

// WithTx executes fn within a database transaction. The billing.Store
// handed to fn also satisfies schedule.Store and billing.TopUpStore.
func (s *Store) WithTx(ctx context.Context, fn func(billing.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&conn{q: tx, inTx: true}); err != nil {
		return err
	}
	return tx.Commit()
}

// WithTx on a transaction-bound conn reuses the open transaction.
func (c *conn) WithTx(ctx context.Context, fn func(billing.Store) error) error {
	if !c.inTx {
		return errors.New("store is not bound to a transaction")
	}
	return fn(c)
}

// =============================================================================
// COMPANIES
// =============================================================================

// SaveCompany inserts or replaces a company account. Registration lives
// outside this core; this exists for seeding and tests.
func (c *conn) SaveCompany(ctx context.Context, company billing.Company) error {
	employeesJSON, err := json.Marshal(emptyIfNil(company.Employees))
	if err != nil {
		return err
	}

	_, err = c.q.ExecContext(ctx, `
		INSERT OR REPLACE INTO companies
		(username, balance, plan_type, employees_json, invitation_code, invitation_limit, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		company.Username,
		company.Balance.String(),
		string(company.Plan),
		string(employeesJSON),
		company.InvitationCode,
		company.InvitationLimit,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save company: %w", err)
	}
	return nil
}

func (c *conn) Company(ctx context.Context, username string) (*billing.Company, error) {
	row := c.q.QueryRowContext(ctx, `
		SELECT username, balance, plan_type, employees_json, invitation_code, invitation_limit
		FROM companies WHERE username = ?`, username)

	var (
		company       billing.Company
		balance       string
		plan          string
		employeesJSON string
		code          sql.NullString
	)
	err := row.Scan(&company.Username, &balance, &plan, &employeesJSON, &code, &company.InvitationLimit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, billing.ErrCompanyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	company.Balance, err = billing.ParseMoney(balance)
	if err != nil {
		return nil, fmt.Errorf("corrupt balance for %s: %w", username, err)
	}
	company.Plan = billing.PlanTier(plan)
	company.InvitationCode = code.String
	if err := json.Unmarshal([]byte(employeesJSON), &company.Employees); err != nil {
		return nil, fmt.Errorf("corrupt employees list for %s: %w", username, err)
	}
	return &company, nil
}

func (c *conn) UpdateCompanyBalance(ctx context.Context, username string, balance billing.Money) error {
	return c.updateCompany(ctx,
		`UPDATE companies SET balance = ? WHERE username = ?`,
		balance.String(), username)
}

func (c *conn) UpdateCompanyPlan(ctx context.Context, username string, plan billing.PlanTier, balance billing.Money) error {
	return c.updateCompany(ctx,
		`UPDATE companies SET plan_type = ?, balance = ? WHERE username = ?`,
		string(plan), balance.String(), username)
}

func (c *conn) SetInvitationCode(ctx context.Context, username, code string, limit int) error {
	return c.updateCompany(ctx,
		`UPDATE companies SET invitation_code = ?, invitation_limit = ? WHERE username = ?`,
		code, limit, username)
}

func (c *conn) updateCompany(ctx context.Context, query string, args ...any) error {
	res, err := c.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return billing.ErrCompanyNotFound
	}
	return nil
}

// CodeExists reports whether any company holds the invitation code.
func (c *conn) CodeExists(ctx context.Context, code string) (bool, error) {
	var n int
	err := c.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM companies WHERE invitation_code = ?`, code).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check invitation code: %w", err)
	}
	return n > 0, nil
}

// =============================================================================
// SCHEDULES
// =============================================================================

func (c *conn) ScheduledDates(ctx context.Context, username string, r calendar.Range) ([]calendar.Date, error) {
	rows, err := c.q.QueryContext(ctx, `
		SELECT date FROM schedules
		WHERE username = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`,
		username, r.Start.String(), r.End.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled dates: %w", err)
	}
	defer rows.Close()

	var dates []calendar.Date
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		date, err := calendar.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt schedule date: %w", err)
		}
		dates = append(dates, date)
	}
	return dates, rows.Err()
}

func (c *conn) InsertSchedule(ctx context.Context, rec schedule.Record) error {
	attendanceJSON, err := json.Marshal(emptyIfNil(rec.Attendance))
	if err != nil {
		return err
	}

	_, err = c.q.ExecContext(ctx, `
		INSERT INTO schedules (username, date, day, attendance_json, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.Username,
		rec.Date.String(),
		rec.Day,
		string(attendanceJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("schedule already exists for %s on %s", rec.Username, rec.Date)
		}
		return fmt.Errorf("failed to insert schedule: %w", err)
	}
	return nil
}

func (c *conn) DeleteSchedules(ctx context.Context, username string, r calendar.Range) ([]schedule.Record, error) {
	removed, err := c.querySchedules(ctx, `
		SELECT username, date, day, attendance_json FROM schedules
		WHERE username = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`,
		username, r.Start.String(), r.End.String())
	if err != nil {
		return nil, err
	}
	if len(removed) == 0 {
		return nil, nil
	}

	_, err = c.q.ExecContext(ctx, `
		DELETE FROM schedules
		WHERE username = ? AND date >= ? AND date <= ?`,
		username, r.Start.String(), r.End.String())
	if err != nil {
		return nil, fmt.Errorf("failed to delete schedules: %w", err)
	}
	return removed, nil
}

func (c *conn) ListSchedules(ctx context.Context, username string, r *calendar.Range, limit, offset int) ([]schedule.Record, error) {
	query := `
		SELECT username, date, day, attendance_json FROM schedules
		WHERE username = ?`
	args := []any{username}
	if r != nil {
		query += ` AND date >= ? AND date <= ?`
		args = append(args, r.Start.String(), r.End.String())
	}
	query += ` ORDER BY date ASC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	return c.querySchedules(ctx, query, args...)
}

func (c *conn) querySchedules(ctx context.Context, query string, args ...any) ([]schedule.Record, error) {
	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	var records []schedule.Record
	for rows.Next() {
		var (
			rec            schedule.Record
			rawDate        string
			attendanceJSON string
		)
		if err := rows.Scan(&rec.Username, &rawDate, &rec.Day, &attendanceJSON); err != nil {
			return nil, err
		}
		rec.Date, err = calendar.ParseDate(rawDate)
		if err != nil {
			return nil, fmt.Errorf("corrupt schedule date: %w", err)
		}
		if err := json.Unmarshal([]byte(attendanceJSON), &rec.Attendance); err != nil {
			return nil, fmt.Errorf("corrupt attendance list: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// =============================================================================
// TRANSACTIONS (append-only)
// =============================================================================

func (c *conn) AppendEntry(ctx context.Context, e billing.Entry) error {
	metadataJSON, err := json.Marshal(e.Metadata)
	if err != nil {
		return err
	}

	_, err = c.q.ExecContext(ctx, `
		INSERT INTO transactions (id, username, type, date, charge, metadata_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.Username,
		e.Type,
		e.Date,
		e.Charge.String(),
		string(metadataJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", billing.ErrTransactionFailed, err)
	}
	return nil
}

func (c *conn) EntriesByCompany(ctx context.Context, username string) ([]billing.Entry, error) {
	rows, err := c.q.QueryContext(ctx, `
		SELECT id, username, type, date, charge, metadata_json FROM transactions
		WHERE username = ?
		ORDER BY date DESC, created_at DESC`, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var entries []billing.Entry
	for rows.Next() {
		var (
			e            billing.Entry
			charge       string
			metadataJSON sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Username, &e.Type, &e.Date, &charge, &metadataJSON); err != nil {
			return nil, err
		}
		e.Charge, err = billing.ParseMoney(charge)
		if err != nil {
			return nil, fmt.Errorf("corrupt charge: %w", err)
		}
		if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
			if err := json.Unmarshal([]byte(metadataJSON.String), &e.Metadata); err != nil {
				return nil, fmt.Errorf("corrupt entry metadata: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// TOP-UPS
// =============================================================================

func (c *conn) PendingTopUp(ctx context.Context, username string) (*billing.TopUpRequest, error) {
	row := c.q.QueryRowContext(ctx, `
		SELECT topup_id, username, amount, status, created FROM topups
		WHERE username = ? AND status = ? LIMIT 1`,
		username, string(billing.TopUpPending))

	req, err := scanTopUp(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return req, err
}

func (c *conn) NextTopUpID(ctx context.Context) (int64, error) {
	var id int64
	err := c.q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(topup_id), 0) + 1 FROM topups`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate top-up id: %w", err)
	}
	return id, nil
}

func (c *conn) InsertTopUp(ctx context.Context, req billing.TopUpRequest) error {
	_, err := c.q.ExecContext(ctx, `
		INSERT INTO topups (topup_id, username, amount, status, created)
		VALUES (?, ?, ?, ?, ?)`,
		req.ID, req.Username, req.Amount.String(), string(req.Status), req.Created)
	if err != nil {
		return fmt.Errorf("failed to insert top-up: %w", err)
	}
	return nil
}

func (c *conn) TopUp(ctx context.Context, id int64) (*billing.TopUpRequest, error) {
	row := c.q.QueryRowContext(ctx, `
		SELECT topup_id, username, amount, status, created FROM topups
		WHERE topup_id = ?`, id)

	req, err := scanTopUp(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, billing.ErrTopUpNotFound
	}
	return req, err
}

func (c *conn) SetTopUpStatus(ctx context.Context, id int64, status billing.TopUpStatus) error {
	res, err := c.q.ExecContext(ctx,
		`UPDATE topups SET status = ? WHERE topup_id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update top-up: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return billing.ErrTopUpNotFound
	}
	return nil
}

func scanTopUp(row *sql.Row) (*billing.TopUpRequest, error) {
	var (
		req    billing.TopUpRequest
		amount string
		status string
	)
	if err := row.Scan(&req.ID, &req.Username, &amount, &status, &req.Created); err != nil {
		return nil, err
	}
	var err error
	req.Amount, err = billing.ParseMoney(amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt top-up amount: %w", err)
	}
	req.Status = billing.TopUpStatus(status)
	return &req, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
