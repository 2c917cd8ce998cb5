package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the services.
const (
	TypeVocabReadded    = "vocab.readded"
	TypeReviewSubmitted = "review.submitted"
	TypeSyncExported    = "sync.exported"
	TypeSyncImported    = "sync.imported"
)

// Event is a single occurrence with a JSON payload specific to its Type.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewEvent serializes payload and stamps the event with a fresh ID.
func NewEvent(eventType string, payload any, now time.Time) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: now.UTC(),
	}, nil
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// VocabReaddedPayload accompanies TypeVocabReadded.
type VocabReaddedPayload struct {
	VocabID        uuid.UUID `json:"vocab_id"`
	TermNormalized string    `json:"term_normalized"`
	ReaddCount     int       `json:"readd_count"`
	EaseFactor     float64   `json:"ease_factor"`
}

// ReviewSubmittedPayload accompanies TypeReviewSubmitted.
type ReviewSubmittedPayload struct {
	VocabID      uuid.UUID `json:"vocab_id"`
	ReviewLogID  uuid.UUID `json:"review_log_id"`
	Grade        int       `json:"grade"`
	IntervalDays int       `json:"interval_days"`
}

// SyncExportedPayload accompanies TypeSyncExported.
type SyncExportedPayload struct {
	Vocabs     int `json:"vocabs"`
	ReviewLogs int `json:"review_logs"`
}

// SyncImportedPayload accompanies TypeSyncImported.
type SyncImportedPayload struct {
	AddedVocabs   int `json:"added_vocabs"`
	UpdatedVocabs int `json:"updated_vocabs"`
	AddedLogs     int `json:"added_logs"`
	SkippedVocabs int `json:"skipped_vocabs"`
	SkippedLogs   int `json:"skipped_logs"`
	Conflicts     int `json:"conflicts"`
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *Event) error { return nil }
