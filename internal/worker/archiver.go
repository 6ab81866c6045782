package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tally/internal/amqp"
)

// EventStore persists consumed events.
type EventStore interface {
	InsertEvent(ctx context.Context, kind, entityID string, userID int64, payload string, occurredAt time.Time) error
}

// Archiver writes every consumed ledger event into the events table, giving
// the ledger an append-only audit trail independent of the API database
// rows it mirrors.
type Archiver struct {
	store EventStore
}

func NewArchiver(store EventStore) *Archiver {
	return &Archiver{store: store}
}

// HandleEvent archives one event. Returning an error requeues the delivery.
func (a *Archiver) HandleEvent(ctx context.Context, event *amqp.Event) error {
	if event.Kind == "" {
		return fmt.Errorf("event without kind")
	}
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	err := a.store.InsertEvent(ctx, event.Kind, event.EntityID, event.UserID, string(event.Payload), occurredAt)
	if err != nil {
		return fmt.Errorf("archive event: %w", err)
	}

	slog.InfoContext(ctx, "archived event",
		"kind", event.Kind,
		"entity_id", event.EntityID,
		"occurred_at", occurredAt)
	return nil
}
