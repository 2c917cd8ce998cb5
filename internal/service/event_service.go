package service

import (
	"context"

	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/store"
)

// Bounds for the audit trail feed.
const (
	DefaultEventLimit = 50
	MaxEventLimit     = 200
)

// EventService reads the audit trail of imports, exports and re-adds.
type EventService interface {
	// Recent returns at most limit events, newest first. A non-positive
	// limit means DefaultEventLimit.
	Recent(ctx context.Context, limit int) ([]*store.EventRecord, error)
}

type eventServiceImpl struct {
	events store.EventStore
}

// NewEventService creates a new EventService.
func NewEventService(events store.EventStore) (EventService, error) {
	if events == nil {
		return nil, NewServiceError("event", "init", "event store cannot be nil", domain.ErrValidation)
	}
	return &eventServiceImpl{events: events}, nil
}

// Recent implements EventService.Recent.
func (s *eventServiceImpl) Recent(ctx context.Context, limit int) ([]*store.EventRecord, error) {
	records, err := s.events.ListRecent(ctx, clampLimit(limit, DefaultEventLimit, MaxEventLimit))
	if err != nil {
		return nil, NewServiceError("event", "recent", "failed to list events", err)
	}
	return records, nil
}
