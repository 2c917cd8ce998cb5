package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/lexis/internal/api/shared"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/redact"
	"github.com/phrazzld/lexis/internal/service"
)

// PackHandler handles topic pack HTTP requests.
type PackHandler struct {
	packService service.PackService
	logger      *slog.Logger
}

// NewPackHandler creates a new PackHandler.
func NewPackHandler(packService service.PackService, logger *slog.Logger) *PackHandler {
	if packService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("packService cannot be nil for PackHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PackHandler{
		packService: packService,
		logger:      logger.With(slog.String("component", "pack_handler")),
	}
}

// Create handles POST /api/packs.
func (h *PackHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreatePackRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	pack, err := h.packService.Create(r.Context(), service.CreatePackInput{
		Name:        req.Name,
		Description: req.Description,
		Topics:      req.Topics,
		TargetBand:  req.TargetBand,
		VocabIDs:    req.VocabIDs,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create pack")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, packToResponse(pack))
}

// List handles GET /api/packs?page=&limit=.
func (h *PackHandler) List(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.packService.List(r.Context(), page, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list packs")
		return
	}

	packs := make([]PackResponse, 0, len(result.Packs))
	for _, pack := range result.Packs {
		packs = append(packs, packToResponse(pack))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, PackListResponse{
		Packs: packs,
		Page:  result.Page,
		Limit: result.Limit,
	})
}

// Get handles GET /api/packs/{id}.
func (h *PackHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	pack, err := h.packService.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load pack")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, packToResponse(pack))
}

// AddVocab handles POST /api/packs/{id}/vocab.
func (h *PackHandler) AddVocab(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req AddPackVocabRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	pack, err := h.packService.AddVocab(r.Context(), id, req.VocabID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update pack")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, packToResponse(pack))
}

// Session handles GET /api/packs/{id}/session?limit=.
func (h *PackHandler) Session(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	session, err := h.packService.Session(r.Context(), id, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load pack session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, PackSessionResponse{
		Pack:   packToResponse(session.Pack),
		Vocabs: vocabsToResponse(session.Vocabs),
	})
}
