package storage

import (
	"context"
	"database/sql"
	"fmt"

	"tally/internal/core"
)

// CreateUser inserts a new account and populates user.ID.
func (r *Repository) CreateUser(ctx context.Context, user *core.User) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (email, name, password_hash) VALUES (?, ?, ?)",
		user.Email, user.Name, user.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	user.ID = id
	return nil
}

// GetUserByEmail looks up an account by normalized email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		"SELECT id, email, name, password_hash, created_at FROM users WHERE email = ?",
		email,
	))
}

// GetUserByID looks up an account by primary key.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		"SELECT id, email, name, password_hash, created_at FROM users WHERE id = ?",
		id,
	))
}

func (r *Repository) scanUser(row *sql.Row) (*core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
