package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/lexis/internal/api/shared"
	"github.com/phrazzld/lexis/internal/service"
)

// SessionHandler serves the daily study session.
type SessionHandler struct {
	sessionService service.SessionService
	logger         *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService, logger *slog.Logger) *SessionHandler {
	if sessionService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("sessionService cannot be nil for SessionHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{
		sessionService: sessionService,
		logger:         logger.With(slog.String("component", "session_handler")),
	}
}

// Today handles GET /api/session/today?limit=.
// A missing or non-positive limit selects the configured default.
func (h *SessionHandler) Today(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	session, err := h.sessionService.Today(r.Context(), limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}
