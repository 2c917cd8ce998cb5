package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/lexis/internal/api/shared"
	"github.com/phrazzld/lexis/internal/domain/vocab"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/redact"
	"github.com/phrazzld/lexis/internal/service"
)

// VocabHandler handles vocabulary HTTP requests.
type VocabHandler struct {
	vocabService  service.VocabService
	reviewService service.ReviewService
	logger        *slog.Logger
}

// NewVocabHandler creates a new VocabHandler.
func NewVocabHandler(
	vocabService service.VocabService,
	reviewService service.ReviewService,
	logger *slog.Logger,
) *VocabHandler {
	if vocabService == nil || reviewService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("services cannot be nil for VocabHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VocabHandler{
		vocabService:  vocabService,
		reviewService: reviewService,
		logger:        logger.With(slog.String("component", "vocab_handler")),
	}
}

// Add handles POST /api/vocab.
// It responds 201 when the term is new and 200 when an existing item was re-added.
func (h *VocabHandler) Add(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req AddVocabRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	res, err := h.vocabService.Add(r.Context(), vocab.AddInput{
		Term:     req.Term,
		Meanings: req.Meanings,
		Tags:     req.Tags,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add term")
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	shared.RespondWithJSON(w, r, status, AddVocabResponse{
		Item:           vocabToResponse(res.Item),
		Created:        res.Created,
		PenaltyApplied: res.PenaltyApplied,
	})
}

// List handles GET /api/vocab?q=&tag=&page=&limit=.
func (h *VocabHandler) List(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.vocabService.List(r.Context(), service.ListQuery{
		Query: r.URL.Query().Get("q"),
		Tag:   r.URL.Query().Get("tag"),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list terms")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, VocabListResponse{
		Items: vocabsToResponse(result.Items),
		Page:  result.Page,
		Limit: result.Limit,
	})
}

// Get handles GET /api/vocab/{id}.
func (h *VocabHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	item, err := h.vocabService.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load term")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, vocabToResponse(item))
}

// Edit handles PATCH /api/vocab/{id}.
func (h *VocabHandler) Edit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req EditVocabRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	item, err := h.vocabService.Edit(r.Context(), id, vocab.EditInput{
		Term:     req.Term,
		Meanings: req.Meanings,
		Tags:     req.Tags,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to edit term")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, vocabToResponse(item))
}

// Delete handles DELETE /api/vocab/{id}.
func (h *VocabHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.vocabService.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete term")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// History handles GET /api/vocab/{id}/reviews.
func (h *VocabHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	entries, err := h.reviewService.History(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load review history")
		return
	}

	out := make([]ReviewLogResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, reviewLogToResponse(entry))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}
