package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"financas/internal/core"

	_ "modernc.org/sqlite"
)

// Error taxonomy surfaced by the repository. Constraint violations (unique
// name, foreign keys, nullability) are reported as ErrConstraint with the
// engine's detail wrapped in; missing rows as ErrNotFound.
var (
	ErrNotFound   = errors.New("record not found")
	ErrConstraint = errors.New("constraint violation")
)

// timeLayout is the stored timestamp format. Uniform-width RFC 3339 UTC text
// keeps lexicographic and chronological order identical, which the filtered
// transaction listing relies on.
const timeLayout = time.RFC3339

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
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

// CreateTransaction persists a transaction and returns its assigned id.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	id, err := r.insert(ctx,
		`INSERT INTO transactions (description, amount, kind, timestamp, category) VALUES (?, ?, ?, ?, ?)`,
		t.Description, t.Amount, string(t.Kind), t.Timestamp.UTC().Format(timeLayout), t.Category)
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"description", t.Description,
		"amount", t.Amount,
		"kind", t.Kind)

	return id, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, description, amount, kind, timestamp, category FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	if err := r.deleteByID(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// ListTransactions returns transactions, optionally restricted to a calendar
// month/year. The filter applies only when both parts are supplied, and only
// the filtered listing carries an explicit ordering (most recent first); the
// unfiltered one comes back in insertion order.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, month, year *int) ([]core.Transaction, error) {
	query := `SELECT id, description, amount, kind, timestamp, category FROM transactions`
	var args []any
	if month != nil && year != nil {
		query += ` WHERE CAST(strftime('%m', timestamp) AS INTEGER) = ? AND CAST(strftime('%Y', timestamp) AS INTEGER) = ? ORDER BY timestamp DESC`
		args = append(args, *month, *year)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// CreateCreditCard persists a card. closingDay is deliberately nullable here:
// an absent payload value is passed through and rejected by the NOT NULL
// constraint, not by validation.
func (r *SQLiteRepository) CreateCreditCard(ctx context.Context, name string, dueDay int64, closingDay *int64) (int64, error) {
	id, err := r.insert(ctx,
		`INSERT INTO credit_cards (name, due_day, closing_day) VALUES (?, ?, ?)`,
		name, dueDay, closingDay)
	if err != nil {
		return 0, fmt.Errorf("create credit card: %w", err)
	}

	slog.InfoContext(ctx, "Credit card saved", "id", id, "name", name)
	return id, nil
}

func (r *SQLiteRepository) GetCreditCard(ctx context.Context, id int64) (*core.CreditCard, error) {
	var c core.CreditCard
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, due_day, closing_day FROM credit_cards WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.DueDay, &c.ClosingDay)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get credit card %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get credit card %d: %w", id, err)
	}
	return &c, nil
}

func (r *SQLiteRepository) ListCreditCards(ctx context.Context) ([]core.CreditCard, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, due_day, closing_day FROM credit_cards`)
	if err != nil {
		return nil, fmt.Errorf("list credit cards: %w", err)
	}
	defer rows.Close()

	var out []core.CreditCard
	for rows.Next() {
		var c core.CreditCard
		if err := rows.Scan(&c.ID, &c.Name, &c.DueDay, &c.ClosingDay); err != nil {
			return nil, fmt.Errorf("list credit cards: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list credit cards: %w", err)
	}
	return out, nil
}

// CreateCardCharge persists a charge. The owning card's existence is checked
// by the caller before this point; the foreign key still backstops races.
func (r *SQLiteRepository) CreateCardCharge(ctx context.Context, c core.CardCharge) (int64, error) {
	id, err := r.insert(ctx,
		`INSERT INTO card_charges (description, amount, purchased_at, card_id) VALUES (?, ?, ?, ?)`,
		c.Description, c.Amount, c.PurchasedAt.UTC().Format(timeLayout), c.CardID)
	if err != nil {
		return 0, fmt.Errorf("create card charge: %w", err)
	}

	slog.InfoContext(ctx, "Card charge saved",
		"id", id,
		"card_id", c.CardID,
		"amount", c.Amount)

	return id, nil
}

func (r *SQLiteRepository) GetCardCharge(ctx context.Context, id int64) (*core.CardCharge, error) {
	var (
		c  core.CardCharge
		ts string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, description, amount, purchased_at, card_id FROM card_charges WHERE id = ?`, id).
		Scan(&c.ID, &c.Description, &c.Amount, &ts, &c.CardID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get card charge %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get card charge %d: %w", id, err)
	}
	if c.PurchasedAt, err = time.Parse(timeLayout, ts); err != nil {
		return nil, fmt.Errorf("get card charge %d: parse purchased_at: %w", id, err)
	}
	return &c, nil
}

// ListCardCharges returns charges in insertion order, optionally restricted
// to one card.
func (r *SQLiteRepository) ListCardCharges(ctx context.Context, cardID *int64) ([]core.CardCharge, error) {
	query := `SELECT id, description, amount, purchased_at, card_id FROM card_charges`
	var args []any
	if cardID != nil {
		query += ` WHERE card_id = ?`
		args = append(args, *cardID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list card charges: %w", err)
	}
	defer rows.Close()

	var out []core.CardCharge
	for rows.Next() {
		var (
			c  core.CardCharge
			ts string
		)
		if err := rows.Scan(&c.ID, &c.Description, &c.Amount, &ts, &c.CardID); err != nil {
			return nil, fmt.Errorf("list card charges: %w", err)
		}
		if c.PurchasedAt, err = time.Parse(timeLayout, ts); err != nil {
			return nil, fmt.Errorf("list card charges: parse purchased_at: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list card charges: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateRecurringBill(ctx context.Context, b core.RecurringBill) (int64, error) {
	id, err := r.insert(ctx,
		`INSERT INTO recurring_bills (description, estimated_amount, kind, due_day, recurrence, notify_before_days) VALUES (?, ?, ?, ?, ?, ?)`,
		b.Description, b.EstimatedAmount, string(b.Kind), b.DueDay, b.Recurrence, b.NotifyBeforeDays)
	if err != nil {
		return 0, fmt.Errorf("create recurring bill: %w", err)
	}

	slog.InfoContext(ctx, "Recurring bill saved",
		"id", id,
		"description", b.Description,
		"due_day", b.DueDay)

	return id, nil
}

func (r *SQLiteRepository) GetRecurringBill(ctx context.Context, id int64) (*core.RecurringBill, error) {
	var b core.RecurringBill
	err := r.db.QueryRowContext(ctx,
		`SELECT id, description, estimated_amount, kind, due_day, recurrence, notify_before_days FROM recurring_bills WHERE id = ?`, id).
		Scan(&b.ID, &b.Description, &b.EstimatedAmount, &b.Kind, &b.DueDay, &b.Recurrence, &b.NotifyBeforeDays)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get recurring bill %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get recurring bill %d: %w", id, err)
	}
	return &b, nil
}

func (r *SQLiteRepository) ListRecurringBills(ctx context.Context) ([]core.RecurringBill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, estimated_amount, kind, due_day, recurrence, notify_before_days FROM recurring_bills`)
	if err != nil {
		return nil, fmt.Errorf("list recurring bills: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringBill
	for rows.Next() {
		var b core.RecurringBill
		if err := rows.Scan(&b.ID, &b.Description, &b.EstimatedAmount, &b.Kind, &b.DueDay, &b.Recurrence, &b.NotifyBeforeDays); err != nil {
			return nil, fmt.Errorf("list recurring bills: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recurring bills: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteRecurringBill(ctx context.Context, id int64) error {
	if err := r.deleteByID(ctx, `DELETE FROM recurring_bills WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete recurring bill %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Recurring bill deleted", "id", id)
	return nil
}

// insert runs a single INSERT inside its own transaction so a failed write
// leaves no partial state, and maps engine constraint failures.
func (r *SQLiteRepository) insert(ctx context.Context, query string, args ...any) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapWriteError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// deleteByID runs a single DELETE inside its own transaction and reports
// ErrNotFound when no row matched.
func (r *SQLiteRepository) deleteByID(ctx context.Context, query string, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return mapWriteError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// mapWriteError classifies sqlite write failures. modernc's driver reports
// UNIQUE, NOT NULL and FOREIGN KEY violations with a "constraint failed"
// message, so all three collapse into ErrConstraint with the detail retained.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "constraint failed") {
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*core.Transaction, error) {
	var (
		t        core.Transaction
		ts       string
		category sql.NullString
	)
	err := row.Scan(&t.ID, &t.Description, &t.Amount, &t.Kind, &ts, &category)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if t.Timestamp, err = time.Parse(timeLayout, ts); err != nil {
		return nil, fmt.Errorf("parse timestamp: %w", err)
	}
	if category.Valid {
		t.Category = &category.String
	}
	return &t, nil
}
