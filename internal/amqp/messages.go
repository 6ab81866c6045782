package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds published on the ledger exchange.
const (
	KindTransactionCreated = "transaction.created"
	KindTransactionUpdated = "transaction.updated"
	KindTransactionDeleted = "transaction.deleted"
	KindBudgetCreated      = "budget.created"
	KindGroupCreated       = "group.created"
	KindExpenseAdded       = "expense.added"
	KindSettlementRecorded = "settlement.recorded"
)

// Event is the message published for every write to the ledger. The worker
// archives it; payload stays opaque JSON so new kinds need no schema change.
type Event struct {
	Kind       string          `json:"kind"`
	EntityID   string          `json:"entity_id"`
	UserID     int64           `json:"user_id,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewEvent builds an event stamped with the current time. payload must be
// JSON-marshalable.
func NewEvent(kind, entityID string, userID int64, payload any) (*Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Kind:       kind,
		EntityID:   entityID,
		UserID:     userID,
		Payload:    body,
		OccurredAt: time.Now().UTC(),
	}, nil
}

// ToJSON converts the event to JSON bytes.
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON parses an event from JSON bytes.
func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
