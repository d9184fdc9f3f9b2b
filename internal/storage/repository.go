package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"finsight/internal/core"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateTransaction inserts a ledger entry with a pending sync status.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, amount_cents, direction, category, date, note)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.Amount.Cents, string(t.Direction), string(t.Category),
		t.Date.Format(dateLayout), t.Note)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID.String(),
		"direction", string(t.Direction),
		"category", string(t.Category),
		"amount_cents", t.Amount.Cents)

	return nil
}

// GetTransaction retrieves a single ledger entry by ID.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id uuid.UUID) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, amount_cents, direction, category, date, note
		FROM transactions WHERE id = ?`, id.String())

	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// DeleteTransaction removes a ledger entry. Returns core.ErrNotFound if
// no entry with the given ID exists.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id.String())
	return nil
}

// ListTransactions returns ledger entries ordered by date descending.
// A zero year returns the full ledger; a zero month returns the whole year.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, year, month int) ([]core.Transaction, error) {
	query := `
		SELECT id, amount_cents, direction, category, date, note
		FROM transactions`
	var args []any

	switch {
	case year != 0 && month != 0:
		query += ` WHERE date >= ? AND date < ?`
		from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		args = append(args, from.Format(dateLayout), from.AddDate(0, 1, 0).Format(dateLayout))
	case year != 0:
		query += ` WHERE date >= ? AND date < ?`
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		args = append(args, from.Format(dateLayout), from.AddDate(1, 0, 0).Format(dateLayout))
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return transactions, nil
}

// PendingSyncTransaction represents minimal data needed for sync queue messages
type PendingSyncTransaction struct {
	ID        uuid.UUID
	Attempts  int64
	CreatedAt time.Time
}

// GetPendingSync returns transactions that still need to be exported.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sync_attempts, created_at
		FROM transactions
		WHERE sync_status = 'pending'
		ORDER BY created_at ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncTransaction
	for rows.Next() {
		var (
			rawID     string
			p         PendingSyncTransaction
			createdAt string
		)
		if err := rows.Scan(&rawID, &p.Attempts, &createdAt); err != nil {
			return nil, fmt.Errorf("scan pending sync transaction: %w", err)
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("parse transaction id %q: %w", rawID, err)
		}
		p.ID = id
		if ts, err := parseTimestamp(createdAt); err == nil {
			p.CreatedAt = ts
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending sync transactions: %w", err)
	}

	return pending, nil
}

// MarkSynced marks a transaction as successfully exported.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET sync_status = 'synced' WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}

	slog.InfoContext(ctx, "Transaction marked as synced", "id", id.String())
	return nil
}

// MarkSyncError records a failed export attempt.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET sync_status = 'error', sync_attempts = sync_attempts + 1
		WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}

	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id.String())
	return nil
}

// GetProfile returns the singleton profile row.
func (r *SQLiteRepository) GetProfile(ctx context.Context) (core.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT currency_symbol, monthly_income_cents, monthly_budget_cents, goal_label, primary_category
		FROM profile WHERE id = 1`)

	var p core.Profile
	var primaryCategory string
	err := row.Scan(&p.CurrencySymbol, &p.MonthlyIncome.Cents, &p.MonthlyBudget.Cents,
		&p.GoalLabel, &primaryCategory)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Profile{}, core.ErrNotFound
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	p.PrimaryCategory = core.Category(primaryCategory)
	return p, nil
}

// SaveProfile overwrites the singleton profile row. Last write wins.
func (r *SQLiteRepository) SaveProfile(ctx context.Context, p core.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE profile
		SET currency_symbol = ?, monthly_income_cents = ?, monthly_budget_cents = ?,
		    goal_label = ?, primary_category = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = 1`,
		p.CurrencySymbol, p.MonthlyIncome.Cents, p.MonthlyBudget.Cents,
		p.GoalLabel, string(p.PrimaryCategory))
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	slog.InfoContext(ctx, "Profile saved", "goal_label", p.GoalLabel)
	return nil
}

// RecurringRecord pairs a recurring template with its execution bookkeeping.
type RecurringRecord struct {
	core.RecurringTransaction
	LastExecution time.Time // zero means never executed
}

// CreateRecurring inserts a recurring template and returns its ID.
func (r *SQLiteRepository) CreateRecurring(ctx context.Context, rt core.RecurringTransaction) (int64, error) {
	var endDate any
	if !rt.EndDate.IsZero() {
		endDate = rt.EndDate.Format(dateLayout)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_transactions (start_date, end_date, frequency, amount_cents, direction, category, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rt.StartDate.Format(dateLayout), endDate, string(rt.Every),
		rt.Amount.Cents, string(rt.Direction), string(rt.Category), rt.Note)
	if err != nil {
		return 0, fmt.Errorf("insert recurring transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("recurring transaction last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Recurring transaction saved",
		"id", id,
		"frequency", string(rt.Every),
		"category", string(rt.Category))

	return id, nil
}

// DeleteRecurring removes a recurring template.
func (r *SQLiteRepository) DeleteRecurring(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recurring transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete recurring transaction rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// GetActiveRecurring returns templates whose window contains the given date.
func (r *SQLiteRepository) GetActiveRecurring(ctx context.Context, asOf time.Time) ([]RecurringRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, start_date, end_date, frequency, amount_cents, direction, category, note, last_execution
		FROM recurring_transactions
		WHERE start_date <= ? AND (end_date IS NULL OR end_date >= ?)
		ORDER BY id ASC`,
		asOf.Format(dateLayout), asOf.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("get active recurring transactions: %w", err)
	}
	defer rows.Close()

	return scanRecurringRows(rows)
}

// ListRecurring returns all recurring templates.
func (r *SQLiteRepository) ListRecurring(ctx context.Context) ([]RecurringRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, start_date, end_date, frequency, amount_cents, direction, category, note, last_execution
		FROM recurring_transactions
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list recurring transactions: %w", err)
	}
	defer rows.Close()

	return scanRecurringRows(rows)
}

// UpdateLastExecution records when a template was last expanded.
func (r *SQLiteRepository) UpdateLastExecution(ctx context.Context, id int64, when time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE recurring_transactions SET last_execution = ? WHERE id = ?`,
		when.Format(dateLayout), id)
	if err != nil {
		return fmt.Errorf("update recurring last execution: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		rawID     string
		t         core.Transaction
		direction string
		category  string
		date      string
	)
	if err := row.Scan(&rawID, &t.Amount.Cents, &direction, &category, &date, &t.Note); err != nil {
		return core.Transaction{}, err
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction id %q: %w", rawID, err)
	}
	t.ID = id
	t.Direction = core.Direction(direction)
	t.Category = core.Category(category)

	parsed, err := time.Parse(dateLayout, date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", date, err)
	}
	t.Date = parsed

	return t, nil
}

func scanRecurringRows(rows *sql.Rows) ([]RecurringRecord, error) {
	var records []RecurringRecord
	for rows.Next() {
		var (
			rec           RecurringRecord
			startDate     string
			endDate       sql.NullString
			frequency     string
			direction     string
			category      string
			lastExecution sql.NullString
		)
		if err := rows.Scan(&rec.ID, &startDate, &endDate, &frequency,
			&rec.Amount.Cents, &direction, &category, &rec.Note, &lastExecution); err != nil {
			return nil, fmt.Errorf("scan recurring transaction: %w", err)
		}

		parsed, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return nil, fmt.Errorf("parse recurring start date %q: %w", startDate, err)
		}
		rec.StartDate = parsed

		if endDate.Valid {
			parsed, err := time.Parse(dateLayout, endDate.String)
			if err != nil {
				return nil, fmt.Errorf("parse recurring end date %q: %w", endDate.String, err)
			}
			rec.EndDate = parsed
		}

		rec.Every = core.Frequency(frequency)
		rec.Direction = core.Direction(direction)
		rec.Category = core.Category(category)

		if lastExecution.Valid {
			parsed, err := time.Parse(dateLayout, lastExecution.String)
			if err != nil {
				return nil, fmt.Errorf("parse recurring last execution %q: %w", lastExecution.String, err)
			}
			rec.LastExecution = parsed
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurring transactions: %w", err)
	}

	return records, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", dateLayout} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
