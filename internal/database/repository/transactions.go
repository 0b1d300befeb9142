package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TransactionRepo handles transactions.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const insertTransaction = `
	INSERT INTO transactions(id, user_id, date, description, amount_cents, category)
	VALUES(?, ?, ?, ?, ?, ?)`

const selectTransaction = `SELECT id, user_id, date, description, amount_cents, category FROM transactions`

func (r *TransactionRepo) Insert(ctx context.Context, t Transaction) (Transaction, error) {
	t = prepare(t)
	_, err := r.db.ExecContext(ctx, insertTransaction, insertArgs(t)...)
	if err != nil {
		return Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return t, nil
}

// BulkInsert writes all rows in one database transaction and returns how many were written.
func (r *TransactionRepo) BulkInsert(ctx context.Context, txns []Transaction) (int, error) {
	if len(txns) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin bulk insert: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertTransaction)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare bulk insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txns {
		if _, err := stmt.ExecContext(ctx, insertArgs(prepare(t))...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("bulk insert: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bulk insert: %w", err)
	}
	return len(txns), nil
}

// ListRecent returns a user's newest transactions first.
func (r *TransactionRepo) ListRecent(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.query(ctx, selectTransaction+` WHERE user_id = ? ORDER BY date DESC, created_at DESC, id DESC LIMIT ?`, userID, limit)
}

// ListAll returns every transaction of a user, oldest first.
func (r *TransactionRepo) ListAll(ctx context.Context, userID string) ([]Transaction, error) {
	return r.query(ctx, selectTransaction+` WHERE user_id = ? ORDER BY date ASC, id ASC`, userID)
}

// TotalsByCategory sums amounts per category in [from, to]. Zero times leave that end open.
func (r *TransactionRepo) TotalsByCategory(ctx context.Context, userID string, from, to time.Time) ([]CategoryTotal, error) {
	where := []string{"user_id = ?"}
	args := []interface{}{userID}
	if !from.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, from.Format(DateLayout))
	}
	if !to.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, to.Format(DateLayout))
	}
	query := `
	SELECT CASE WHEN category = '' THEN 'uncategorized' ELSE category END AS cat,
	       SUM(amount_cents) AS total, COUNT(*) AS n
	FROM transactions
	WHERE ` + strings.Join(where, " AND ") + `
	GROUP BY cat
	ORDER BY total ASC, cat ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("totals by category: %w", err)
	}
	defer rows.Close()
	var out []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.TotalCents, &ct.Count); err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

// MonthlySummary returns count and sums for one calendar month.
func (r *TransactionRepo) MonthlySummary(ctx context.Context, userID string, year int, month time.Month) (MonthlySummary, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	s := MonthlySummary{Year: year, Month: int(month)}
	row := r.db.QueryRowContext(ctx, `
	SELECT COUNT(*),
	       COALESCE(SUM(amount_cents), 0),
	       COALESCE(SUM(CASE WHEN amount_cents < 0 THEN amount_cents ELSE 0 END), 0),
	       COALESCE(SUM(CASE WHEN amount_cents > 0 THEN amount_cents ELSE 0 END), 0)
	FROM transactions
	WHERE user_id = ? AND date >= ? AND date < ?`,
		userID, start.Format(DateLayout), end.Format(DateLayout))
	if err := row.Scan(&s.Count, &s.TotalCents, &s.SpendCents, &s.IncomeCents); err != nil {
		return MonthlySummary{}, fmt.Errorf("monthly summary: %w", err)
	}
	return s, nil
}

// Count returns how many transactions a user has.
func (r *TransactionRepo) Count(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}

// DeleteAll removes a user's transactions and returns how many went.
func (r *TransactionRepo) DeleteAll(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}
	return res.RowsAffected()
}

func (r *TransactionRepo) query(ctx context.Context, query string, args ...interface{}) ([]Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func prepare(t Transaction) Transaction {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.Category = strings.TrimSpace(t.Category)
	y, m, d := t.Date.Date()
	t.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return t
}

func insertArgs(t Transaction) []interface{} {
	return []interface{}{t.ID, t.UserID, t.Date.Format(DateLayout), t.Description, t.AmountCents, t.Category}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row scanner) (Transaction, error) {
	var t Transaction
	var date string
	if err := row.Scan(&t.ID, &t.UserID, &date, &t.Description, &t.AmountCents, &t.Category); err != nil {
		return Transaction{}, err
	}
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction %s: bad date %q: %w", t.ID, date, err)
	}
	t.Date = d
	return t, nil
}
