package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/lexis/internal/api/shared"
	"github.com/phrazzld/lexis/internal/service"
)

// EventHandler serves the audit trail.
type EventHandler struct {
	eventService service.EventService
	logger       *slog.Logger
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(eventService service.EventService, logger *slog.Logger) *EventHandler {
	if eventService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("eventService cannot be nil for EventHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHandler{
		eventService: eventService,
		logger:       logger.With(slog.String("component", "event_handler")),
	}
}

// Recent handles GET /api/events?limit=.
func (h *EventHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	records, err := h.eventService.Recent(r.Context(), limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list events")
		return
	}

	out := make([]EventResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, EventResponse{
			ID:        rec.ID,
			Type:      rec.Type,
			Payload:   rec.Payload,
			CreatedAt: rec.CreatedAt,
		})
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}
