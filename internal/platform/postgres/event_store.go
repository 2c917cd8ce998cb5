package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/store"
)

// PostgresEventStore implements the store.EventStore interface.
type PostgresEventStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEventStore creates a new PostgreSQL implementation of the EventStore interface.
func NewPostgresEventStore(db store.DBTX, logger *slog.Logger) *PostgresEventStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresEventStore{
		db:     db,
		logger: logger.With(slog.String("component", "event_store")),
	}
}

var _ store.EventStore = (*PostgresEventStore)(nil)

// WithTx implements store.EventStore.WithTx.
func (s *PostgresEventStore) WithTx(tx *sql.Tx) store.EventStore {
	return &PostgresEventStore{
		db:     tx,
		logger: s.logger,
	}
}

// Record implements store.EventStore.Record.
func (s *PostgresEventStore) Record(ctx context.Context, event *store.EventRecord) error {
	if event == nil || event.Type == "" {
		return fmt.Errorf("%w: event type is required", store.ErrInvalidEntity)
	}

	payload := []byte(event.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, type, payload, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`,
		event.ID, event.Type, payload, event.CreatedAt.UTC())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to record event",
			slog.String("error", err.Error()),
			slog.String("event_type", event.Type))
		return MapError(err)
	}
	return nil
}

// ListRecent implements store.EventStore.ListRecent.
func (s *PostgresEventStore) ListRecent(ctx context.Context, limit int) ([]*store.EventRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, payload, created_at
		FROM events
		ORDER BY created_at DESC, id
		LIMIT $1`, limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]*store.EventRecord, 0)
	for rows.Next() {
		var (
			event   store.EventRecord
			payload []byte
		)
		if err := rows.Scan(&event.ID, &event.Type, &payload, &event.CreatedAt); err != nil {
			return nil, err
		}
		event.Payload = append([]byte(nil), payload...)
		event.CreatedAt = event.CreatedAt.UTC()
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return events, nil
}
