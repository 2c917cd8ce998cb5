package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/store"
)

// StoreRecorder is an EventHandler that persists every event it receives.
type StoreRecorder struct {
	events store.EventStore
	logger *slog.Logger
}

var _ EventHandler = (*StoreRecorder)(nil)

// NewStoreRecorder creates a handler that writes events to eventStore.
func NewStoreRecorder(eventStore store.EventStore, logger *slog.Logger) *StoreRecorder {
	if eventStore == nil {
		panic("eventStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreRecorder{
		events: eventStore,
		logger: logger.With(slog.String("component", "event_recorder")),
	}
}

// HandleEvent implements EventHandler.
func (r *StoreRecorder) HandleEvent(ctx context.Context, event *Event) error {
	record := &store.EventRecord{
		ID:        event.ID,
		Type:      event.Type,
		Payload:   event.Payload,
		CreatedAt: event.CreatedAt,
	}
	if err := r.events.Record(ctx, record); err != nil {
		return fmt.Errorf("failed to record %s event: %w", event.Type, err)
	}

	logger.FromContextOrDefault(ctx, r.logger).Debug("event recorded",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type))
	return nil
}
