package storage

import (
	"context"
	"fmt"

	"tally/internal/core"
)

// CreateGroup inserts a group with its initial members in one transaction.
// Member positions record the membership order.
func (r *Repository) CreateGroup(ctx context.Context, userID int64, g *core.Group) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, user_id, name) VALUES (?, ?, ?)",
		g.ID, userID, g.Name,
	)
	if err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	for i, m := range g.Members {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO group_members (id, group_id, name, position) VALUES (?, ?, ?, ?)",
			m.ID, g.ID, m.Name, i,
		)
		if err != nil {
			return fmt.Errorf("insert member: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetGroup fetches one of the user's groups with members in membership order.
func (r *Repository) GetGroup(ctx context.Context, userID int64, groupID string) (*core.Group, error) {
	var g core.Group
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name FROM groups WHERE id = ? AND user_id = ?",
		groupID, userID,
	).Scan(&g.ID, &g.Name)
	if err != nil {
		return nil, notFoundOr("scan group", err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name FROM group_members WHERE group_id = ? ORDER BY position",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m core.Member
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		g.Members = append(g.Members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return &g, nil
}

// ListGroups returns the user's groups with their members.
func (r *Repository) ListGroups(ctx context.Context, userID int64) ([]core.Group, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM groups WHERE user_id = ? ORDER BY created_at, id", userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan group id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}

	groups := make([]core.Group, 0, len(ids))
	for _, id := range ids {
		g, err := r.GetGroup(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *g)
	}
	return groups, nil
}

// AddMember appends a member to the end of the group's membership order.
func (r *Repository) AddMember(ctx context.Context, groupID string, m core.Member) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO group_members (id, group_id, name, position)
		 VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM group_members WHERE group_id = ?))`,
		m.ID, groupID, m.Name, groupID,
	)
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

// CreateGroupExpense inserts an expense with its per-member shares in one
// transaction. Shares are stored resolved, equal splits included.
func (r *Repository) CreateGroupExpense(ctx context.Context, e *core.GroupExpense, shares map[string]int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO group_expenses (id, group_id, description, payer_id, amount_cents, expense_date, split_mode)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.GroupID, e.Description, e.PayerID, e.Amount.Cents, e.Date.String(), string(e.Split.Mode),
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	for memberID, cents := range shares {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, member_id, share_cents) VALUES (?, ?, ?)",
			e.ID, memberID, cents,
		)
		if err != nil {
			return fmt.Errorf("insert share: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListGroupExpenses returns the group's expenses oldest first, each with its
// stored shares as a custom split.
func (r *Repository) ListGroupExpenses(ctx context.Context, groupID string) ([]core.GroupExpense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, group_id, description, payer_id, amount_cents, expense_date, split_mode
		 FROM group_expenses WHERE group_id = ? ORDER BY expense_date, created_at, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.GroupExpense
	for rows.Next() {
		var e core.GroupExpense
		var mode, date string
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Description, &e.PayerID, &e.Amount.Cents, &date, &mode); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Split.Mode = core.SplitMode(mode)
		if e.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("expense %s: %w", e.ID, err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	// Equal splits are re-derived from the membership order on demand, so
	// only custom expenses carry their recorded shares.
	for i := range expenses {
		if expenses[i].Split.Mode != core.SplitCustom {
			continue
		}
		shares, err := r.expenseShares(ctx, expenses[i].ID)
		if err != nil {
			return nil, err
		}
		expenses[i].Split = core.CustomSplit(shares)
	}
	return expenses, nil
}

func (r *Repository) expenseShares(ctx context.Context, expenseID string) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT member_id, share_cents FROM expense_shares WHERE expense_id = ?", expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	defer rows.Close()

	shares := make(map[string]int64)
	for rows.Next() {
		var memberID string
		var cents int64
		if err := rows.Scan(&memberID, &cents); err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}
		shares[memberID] = cents
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shares: %w", err)
	}
	return shares, nil
}

// CreateSettlement records a payment between two members.
func (r *Repository) CreateSettlement(ctx context.Context, s *core.Settlement) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settlements (id, group_id, from_member, to_member, amount_cents, paid_date, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.GroupID, s.FromID, s.ToID, s.Amount.Cents, s.Date.String(), s.Note,
	)
	if err != nil {
		return fmt.Errorf("insert settlement: %w", err)
	}
	return nil
}

// ListSettlements returns the group's recorded payments oldest first.
func (r *Repository) ListSettlements(ctx context.Context, groupID string) ([]core.Settlement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, group_id, from_member, to_member, amount_cents, paid_date, note
		 FROM settlements WHERE group_id = ? ORDER BY paid_date, created_at, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []core.Settlement
	for rows.Next() {
		var s core.Settlement
		var date string
		if err := rows.Scan(&s.ID, &s.GroupID, &s.FromID, &s.ToID, &s.Amount.Cents, &date, &s.Note); err != nil {
			return nil, fmt.Errorf("scan settlement: %w", err)
		}
		if s.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("settlement %s: %w", s.ID, err)
		}
		settlements = append(settlements, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settlements: %w", err)
	}
	return settlements, nil
}
