package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/lexis/internal/api/shared"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/redact"
	"github.com/phrazzld/lexis/internal/service"
)

// WritingHandler handles writing error bank HTTP requests.
type WritingHandler struct {
	writingService service.WritingService
	logger         *slog.Logger
}

// NewWritingHandler creates a new WritingHandler.
func NewWritingHandler(writingService service.WritingService, logger *slog.Logger) *WritingHandler {
	if writingService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("writingService cannot be nil for WritingHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WritingHandler{
		writingService: writingService,
		logger:         logger.With(slog.String("component", "writing_handler")),
	}
}

// Record handles POST /api/writing/error-bank.
// It responds 201 for a new mistake and 200 when a repeat bumped the count.
func (h *WritingHandler) Record(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RecordWritingErrorRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	entry, err := h.writingService.Record(r.Context(), service.WritingErrorInput{
		Sentence:          req.Sentence,
		CorrectedSentence: req.CorrectedSentence,
		Category:          domain.ErrorCategory(req.Category),
		Notes:             req.Notes,
		Topic:             req.Topic,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record writing error")
		return
	}

	status := http.StatusOK
	if entry.Count == 1 {
		status = http.StatusCreated
	}
	shared.RespondWithJSON(w, r, status, writingErrorToResponse(entry))
}

// List handles GET /api/writing/error-bank?category=&topic=&page=&limit=.
func (h *WritingHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	entries, err := h.writingService.List(r.Context(), service.WritingErrorQuery{
		Category: domain.ErrorCategory(r.URL.Query().Get("category")),
		Topic:    r.URL.Query().Get("topic"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list writing errors")
		return
	}

	out := make([]WritingErrorResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, writingErrorToResponse(entry))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// Deck handles GET /api/writing/error-bank/deck?limit=.
func (h *WritingHandler) Deck(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	entries, err := h.writingService.Deck(r.Context(), limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build deck")
		return
	}

	items := make([]WritingDeckItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, WritingDeckItem{
			ID:                entry.ID,
			Sentence:          entry.Sentence,
			CorrectedSentence: entry.CorrectedSentence,
			Category:          string(entry.Category),
		})
	}
	shared.RespondWithJSON(w, r, http.StatusOK, WritingDeckResponse{Items: items})
}

// Delete handles DELETE /api/writing/error-bank/{id}.
func (h *WritingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.writingService.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete writing error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
