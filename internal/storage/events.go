package storage

import (
	"context"
	"fmt"
	"time"
)

// InsertEvent archives a consumed domain event. userID is zero for events
// that are not tied to an account.
func (r *Repository) InsertEvent(ctx context.Context, kind, entityID string, userID int64, payload string, occurredAt time.Time) error {
	var uid any
	if userID != 0 {
		uid = userID
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO events (kind, entity_id, user_id, payload, occurred_at) VALUES (?, ?, ?, ?, ?)",
		kind, entityID, uid, payload, occurredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// CountEvents reports how many events of a kind have been archived. An empty
// kind counts everything.
func (r *Repository) CountEvents(ctx context.Context, kind string) (int64, error) {
	query := "SELECT COUNT(*) FROM events"
	args := []any{}
	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, kind)
	}
	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}
