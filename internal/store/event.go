package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventRecord is a stored domain event such as an import or an export.
type EventRecord struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// EventStore persists the audit trail of sync and re-add events.
type EventStore interface {
	// Record stores an event. Recording the same ID twice is a no-op.
	Record(ctx context.Context, event *EventRecord) error

	// ListRecent returns at most limit events, newest first.
	ListRecent(ctx context.Context, limit int) ([]*EventRecord, error)

	// WithTx returns a new EventStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) EventStore
}
