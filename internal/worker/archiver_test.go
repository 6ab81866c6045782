package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"tally/internal/amqp"
)

type fakeEventStore struct {
	inserted []insertedEvent
	err      error
}

type insertedEvent struct {
	kind       string
	entityID   string
	userID     int64
	payload    string
	occurredAt time.Time
}

func (s *fakeEventStore) InsertEvent(ctx context.Context, kind, entityID string, userID int64, payload string, occurredAt time.Time) error {
	if s.err != nil {
		return s.err
	}
	s.inserted = append(s.inserted, insertedEvent{kind, entityID, userID, payload, occurredAt})
	return nil
}

func TestHandleEvent(t *testing.T) {
	store := &fakeEventStore{}
	a := NewArchiver(store)

	event, err := amqp.NewEvent(amqp.KindTransactionCreated, "42", 7, map[string]int64{"id": 42})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	if err := a.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if len(store.inserted) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(store.inserted))
	}
	got := store.inserted[0]
	if got.kind != amqp.KindTransactionCreated || got.entityID != "42" || got.userID != 7 {
		t.Errorf("unexpected insert: %+v", got)
	}
	if !got.occurredAt.Equal(event.OccurredAt) {
		t.Errorf("occurredAt = %v, want %v", got.occurredAt, event.OccurredAt)
	}
}

func TestHandleEventStampsMissingTime(t *testing.T) {
	store := &fakeEventStore{}
	a := NewArchiver(store)

	event := &amqp.Event{Kind: amqp.KindGroupCreated, EntityID: "g1"}
	if err := a.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if store.inserted[0].occurredAt.IsZero() {
		t.Error("expected occurredAt stamped")
	}
}

func TestHandleEventRejectsKindless(t *testing.T) {
	a := NewArchiver(&fakeEventStore{})
	if err := a.HandleEvent(context.Background(), &amqp.Event{EntityID: "x"}); err == nil {
		t.Error("expected error for event without kind")
	}
}

func TestHandleEventPropagatesStoreError(t *testing.T) {
	storeErr := errors.New("disk full")
	a := NewArchiver(&fakeEventStore{err: storeErr})

	event := &amqp.Event{Kind: amqp.KindBudgetCreated, EntityID: "1"}
	if err := a.HandleEvent(context.Background(), event); !errors.Is(err, storeErr) {
		t.Errorf("expected store error, got %v", err)
	}
}
