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

	"foyer/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
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

// Ping implements the readiness check.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ReadHousehold implements sheets.HouseholdReader
func (r *SQLiteRepository) ReadHousehold(ctx context.Context) (core.Household, error) {
	var (
		h         core.Household
		splitMode string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT member1_name, member2_name, revenue1, revenue2, split_mode, manual_split1, manual_split2
		FROM household WHERE id = 1`).
		Scan(&h.Member1Name, &h.Member2Name, &h.Revenue1, &h.Revenue2, &splitMode, &h.ManualSplit1, &h.ManualSplit2)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Household{}, core.ErrNoHousehold
	}
	if err != nil {
		return core.Household{}, fmt.Errorf("get household: %w", err)
	}
	h.SplitMode = core.HouseholdSplitMode(splitMode)
	return h, nil
}

// SaveHousehold replaces the household settings.
func (r *SQLiteRepository) SaveHousehold(ctx context.Context, h core.Household) error {
	if err := h.Validate(); err != nil {
		return fmt.Errorf("validate household: %w", err)
	}
	if err := saveHousehold(ctx, r.db, h); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Household saved", "member1", h.Member1Name, "member2", h.Member2Name, "split_mode", h.SplitMode)
	return nil
}

func saveHousehold(ctx context.Context, db execer, h core.Household) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO household (id, member1_name, member2_name, revenue1, revenue2, split_mode, manual_split1, manual_split2, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			member1_name = excluded.member1_name,
			member2_name = excluded.member2_name,
			revenue1 = excluded.revenue1,
			revenue2 = excluded.revenue2,
			split_mode = excluded.split_mode,
			manual_split1 = excluded.manual_split1,
			manual_split2 = excluded.manual_split2,
			updated_at = CURRENT_TIMESTAMP`,
		h.Member1Name, h.Member2Name, h.Revenue1, h.Revenue2, string(h.SplitMode), h.ManualSplit1, h.ManualSplit2)
	if err != nil {
		return fmt.Errorf("save household: %w", err)
	}
	return nil
}

// ListProvisions implements sheets.ProvisionLister. Inactive provisions
// are included; filtering is the engine's job.
func (r *SQLiteRepository) ListProvisions(ctx context.Context) ([]core.Provision, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, is_active, base_calculation, percentage, fixed_amount, split_mode, split_member1, split_member2
		FROM provisions ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("list provisions: %w", err)
	}
	defer rows.Close()

	var out []core.Provision
	for rows.Next() {
		var (
			p           core.Provision
			active      int64
			base, split string
		)
		if err := rows.Scan(&p.ID, &p.Name, &active, &base, &p.Percentage, &p.FixedAmount, &split, &p.SplitMember1, &p.SplitMember2); err != nil {
			return nil, fmt.Errorf("scan provision: %w", err)
		}
		p.IsActive = active != 0
		p.BaseCalculation = core.BaseCalculation(base)
		p.SplitMode = core.ProvisionSplitMode(split)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate provisions: %w", err)
	}
	return out, nil
}

// UpsertProvision creates or updates a provision. New provisions are
// appended after the existing ones.
func (r *SQLiteRepository) UpsertProvision(ctx context.Context, p core.Provision) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validate provision %q: %w", p.ID, err)
	}
	return upsertProvision(ctx, r.db, p)
}

func upsertProvision(ctx context.Context, db execer, p core.Provision) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO provisions (id, name, is_active, base_calculation, percentage, fixed_amount, split_mode, split_member1, split_member2, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM provisions))
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			is_active = excluded.is_active,
			base_calculation = excluded.base_calculation,
			percentage = excluded.percentage,
			fixed_amount = excluded.fixed_amount,
			split_mode = excluded.split_mode,
			split_member1 = excluded.split_member1,
			split_member2 = excluded.split_member2`,
		p.ID, p.Name, boolToInt(p.IsActive), string(p.BaseCalculation), p.Percentage, p.FixedAmount,
		string(p.SplitMode), p.SplitMember1, p.SplitMember2)
	if err != nil {
		return fmt.Errorf("upsert provision %q: %w", p.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteProvision(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "provisions", id)
}

// ListFixedExpenses implements sheets.FixedExpenseLister
func (r *SQLiteRepository) ListFixedExpenses(ctx context.Context) ([]core.FixedExpense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, label, is_active, amount, frequency, split_mode, split_ratio1, split_ratio2
		FROM fixed_expenses ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("list fixed expenses: %w", err)
	}
	defer rows.Close()

	var out []core.FixedExpense
	for rows.Next() {
		var (
			e           core.FixedExpense
			active      int64
			freq, split string
		)
		if err := rows.Scan(&e.ID, &e.Label, &active, &e.Amount, &freq, &split, &e.SplitRatio1, &e.SplitRatio2); err != nil {
			return nil, fmt.Errorf("scan fixed expense: %w", err)
		}
		e.IsActive = active != 0
		e.Frequency = core.Frequency(freq)
		e.SplitMode = core.ExpenseSplitMode(split)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fixed expenses: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) UpsertFixedExpense(ctx context.Context, e core.FixedExpense) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validate fixed expense %q: %w", e.ID, err)
	}
	return upsertFixedExpense(ctx, r.db, e)
}

func upsertFixedExpense(ctx context.Context, db execer, e core.FixedExpense) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO fixed_expenses (id, label, is_active, amount, frequency, split_mode, split_ratio1, split_ratio2, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM fixed_expenses))
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			is_active = excluded.is_active,
			amount = excluded.amount,
			frequency = excluded.frequency,
			split_mode = excluded.split_mode,
			split_ratio1 = excluded.split_ratio1,
			split_ratio2 = excluded.split_ratio2`,
		e.ID, e.Label, boolToInt(e.IsActive), e.Amount, string(e.Frequency), string(e.SplitMode), e.SplitRatio1, e.SplitRatio2)
	if err != nil {
		return fmt.Errorf("upsert fixed expense %q: %w", e.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteFixedExpense(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "fixed_expenses", id)
}

// deleteByID removes one row. table is always a constant from this file.
func deleteByID(ctx context.Context, db execer, table, id string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete from %s %q: %w", table, id, sql.ErrNoRows)
	}
	return nil
}

// AddTransaction stores an imported bank line and returns its id.
func (r *SQLiteRepository) AddTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, fmt.Errorf("validate transaction: %w", err)
	}
	return addTransaction(ctx, r.db, tx)
}

func addTransaction(ctx context.Context, db execer, tx core.Transaction) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO transactions (booked_on, description, amount, category) VALUES (?, ?, ?, ?)`,
		tx.BookedOn.Format(dateLayout), tx.Description, tx.Amount, tx.Category)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction id: %w", err)
	}
	return id, nil
}

// ListTransactions returns the bank lines booked during period.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, period core.Period) ([]core.Transaction, error) {
	from, to := periodBounds(period)
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, booked_on, description, amount, category
		FROM transactions WHERE booked_on >= ? AND booked_on < ?
		ORDER BY booked_on, id`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx     core.Transaction
			booked string
		)
		if err := rows.Scan(&tx.ID, &booked, &tx.Description, &tx.Amount, &tx.Category); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if tx.BookedOn, err = time.Parse(dateLayout, booked); err != nil {
			return nil, fmt.Errorf("parse booking date %q: %w", booked, err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// ReadVariableSpend implements sheets.SpendingReader. Only outflows count,
// returned as a positive amount.
func (r *SQLiteRepository) ReadVariableSpend(ctx context.Context, period core.Period) (float64, error) {
	from, to := periodBounds(period)
	var total float64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(-SUM(amount), 0) FROM transactions
		WHERE amount < 0 AND booked_on >= ? AND booked_on < ?`, from, to).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum variable spend for %s: %w", period, err)
	}
	return total, nil
}

// Seed replaces the household configuration and appends the transactions
// in a single database transaction.
func (r *SQLiteRepository) Seed(ctx context.Context, s core.Setup) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validate setup: %w", err)
	}

	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer dbtx.Rollback()

	if err := saveHousehold(ctx, dbtx, s.Household); err != nil {
		return err
	}
	for _, stmt := range []string{"DELETE FROM provisions", "DELETE FROM fixed_expenses"} {
		if _, err := dbtx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear configuration: %w", err)
		}
	}
	for _, p := range s.Provisions {
		if err := upsertProvision(ctx, dbtx, p); err != nil {
			return err
		}
	}
	for _, e := range s.FixedExpenses {
		if err := upsertFixedExpense(ctx, dbtx, e); err != nil {
			return err
		}
	}
	for _, tx := range s.Transactions {
		if _, err := addTransaction(ctx, dbtx, tx); err != nil {
			return err
		}
	}

	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	slog.InfoContext(ctx, "Database seeded",
		"provisions", len(s.Provisions),
		"fixed_expenses", len(s.FixedExpenses),
		"transactions", len(s.Transactions))
	return nil
}

// NextExportVersion bumps and returns the export version of period.
func (r *SQLiteRepository) NextExportVersion(ctx context.Context, period core.Period) (int64, error) {
	var version int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO report_exports (year, month, version) VALUES (?, ?, 1)
		ON CONFLICT(year, month) DO UPDATE SET version = version + 1
		RETURNING version`, period.Year, period.Month).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("next export version for %s: %w", period, err)
	}
	return version, nil
}

// ExportVersion returns the latest requested export version of period,
// 0 when none was requested.
func (r *SQLiteRepository) ExportVersion(ctx context.Context, period core.Period) (int64, error) {
	var version int64
	err := r.db.QueryRowContext(ctx, `
		SELECT version FROM report_exports WHERE year = ? AND month = ?`, period.Year, period.Month).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("export version for %s: %w", period, err)
	}
	return version, nil
}

// MarkExported records a completed export. It is a no-op when a newer
// version has been requested meanwhile.
func (r *SQLiteRepository) MarkExported(ctx context.Context, period core.Period, version int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE report_exports SET exported_at = CURRENT_TIMESTAMP
		WHERE year = ? AND month = ? AND version = ?`, period.Year, period.Month, version)
	if err != nil {
		return fmt.Errorf("mark %s exported: %w", period, err)
	}
	return nil
}

func periodBounds(p core.Period) (string, string) {
	from := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	return from.Format(dateLayout), from.AddDate(0, 1, 0).Format(dateLayout)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
