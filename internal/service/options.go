package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain/srs"
	"github.com/phrazzld/lexis/internal/events"
	"github.com/phrazzld/lexis/internal/platform/logger"
)

// Option customizes a service.
type Option func(*runtime)

// runtime holds what every service shares besides its stores.
type runtime struct {
	now       func() time.Time
	newID     func() uuid.UUID
	scheduler srs.Service
	emitter   events.EventEmitter
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(r *runtime) { r.now = now }
}

// WithIDGenerator overrides uuid.New for new items and review logs.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(r *runtime) { r.newID = newID }
}

// WithScheduler overrides the default SM-2 parameters.
func WithScheduler(scheduler srs.Service) Option {
	return func(r *runtime) { r.scheduler = scheduler }
}

// WithEmitter sets the destination of domain events. Events are dropped
// when no emitter is configured.
func WithEmitter(emitter events.EventEmitter) Option {
	return func(r *runtime) { r.emitter = emitter }
}

func newRuntime(opts []Option) runtime {
	r := runtime{
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.New,
		scheduler: srs.NewDefaultService(),
		emitter:   events.NopEmitter{},
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// emit publishes an event after the owning transaction has committed.
// Failures are logged and not returned: the state change already happened.
func (r runtime) emit(ctx context.Context, log *slog.Logger, eventType string, payload any) {
	event, err := events.NewEvent(eventType, payload, r.now())
	if err != nil {
		log.Error("failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
		return
	}
	if err := r.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, log).Warn("failed to emit event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
	}
}
