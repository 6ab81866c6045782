package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tally/internal/core"
)

// TransactionFilter narrows a transaction listing. Zero values mean "no
// filter" for every field.
type TransactionFilter struct {
	Kind     core.TransactionKind
	Category string
	From     core.Date
	To       core.Date
	Search   string // substring match on the note
}

// CreateTransaction inserts a transaction for the user and populates t.ID.
func (r *Repository) CreateTransaction(ctx context.Context, userID int64, t *core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, kind, amount_cents, category, note, tx_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, string(t.Kind), t.Amount.Cents, t.Category, t.Note, t.Date.String(),
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("transaction id: %w", err)
	}
	t.ID = id
	return nil
}

// GetTransaction fetches one of the user's transactions.
func (r *Repository) GetTransaction(ctx context.Context, userID, id int64) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, kind, amount_cents, category, note, tx_date
		 FROM transactions WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	var t core.Transaction
	var kind, date string
	err := row.Scan(&t.ID, &kind, &t.Amount.Cents, &t.Category, &t.Note, &date)
	if err != nil {
		return nil, notFoundOr("scan transaction", err)
	}
	t.Kind = core.TransactionKind(kind)
	if t.Date, err = core.ParseDate(date); err != nil {
		return nil, fmt.Errorf("transaction %d: %w", t.ID, err)
	}
	return &t, nil
}

// ListTransactions returns the user's transactions newest first, optionally
// filtered.
func (r *Repository) ListTransactions(ctx context.Context, userID int64, filter TransactionFilter) ([]core.Transaction, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}

	if filter.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if !filter.From.IsZero() {
		where = append(where, "tx_date >= ?")
		args = append(args, filter.From.String())
	}
	if !filter.To.IsZero() {
		where = append(where, "tx_date <= ?")
		args = append(args, filter.To.String())
	}
	if filter.Search != "" {
		where = append(where, "note LIKE ?")
		args = append(args, "%"+filter.Search+"%")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, amount_cents, category, note, tx_date FROM transactions
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY tx_date DESC, id DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var kind, date string
		if err := rows.Scan(&t.ID, &kind, &t.Amount.Cents, &t.Category, &t.Note, &date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Kind = core.TransactionKind(kind)
		if t.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", t.ID, err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}

// UpdateTransaction replaces one of the user's transactions.
func (r *Repository) UpdateTransaction(ctx context.Context, userID int64, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET kind = ?, amount_cents = ?, category = ?, note = ?, tx_date = ?
		 WHERE id = ? AND user_id = ?`,
		string(t.Kind), t.Amount.Cents, t.Category, t.Note, t.Date.String(), t.ID, userID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res.RowsAffected())
}

// DeleteTransaction removes one of the user's transactions.
func (r *Repository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = ? AND user_id = ?", id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res.RowsAffected())
}

// CreateBudget inserts a budget for the user and populates b.ID.
func (r *Repository) CreateBudget(ctx context.Context, userID int64, b *core.Budget) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO budgets (user_id, category, limit_cents, month) VALUES (?, ?, ?, ?)",
		userID, b.Category, b.Limit.Cents, b.Month,
	)
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("budget id: %w", err)
	}
	b.ID = id
	return nil
}

// ListBudgets returns the user's budgets, newest month first. month narrows
// to a single YYYY-MM key when non-empty.
func (r *Repository) ListBudgets(ctx context.Context, userID int64, month string) ([]core.Budget, error) {
	query := "SELECT id, category, limit_cents, month FROM budgets WHERE user_id = ?"
	args := []any{userID}
	if month != "" {
		query += " AND month = ?"
		args = append(args, month)
	}
	query += " ORDER BY month DESC, category"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.Category, &b.Limit.Cents, &b.Month); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return budgets, nil
}

// UpdateBudget replaces one of the user's budgets.
func (r *Repository) UpdateBudget(ctx context.Context, userID int64, b core.Budget) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE budgets SET category = ?, limit_cents = ?, month = ? WHERE id = ? AND user_id = ?",
		b.Category, b.Limit.Cents, b.Month, b.ID, userID,
	)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return requireRow(res.RowsAffected())
}

// DeleteBudget removes one of the user's budgets.
func (r *Repository) DeleteBudget(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM budgets WHERE id = ? AND user_id = ?", id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRow(res.RowsAffected())
}

func requireRow(n int64, err error) error {
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func notFoundOr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
