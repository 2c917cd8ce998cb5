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

// ReviewHandler handles review submissions.
type ReviewHandler struct {
	reviewService service.ReviewService
	logger        *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService service.ReviewService, logger *slog.Logger) *ReviewHandler {
	if reviewService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("reviewService cannot be nil for ReviewHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewHandler{
		reviewService: reviewService,
		logger:        logger.With(slog.String("component", "review_handler")),
	}
}

// Submit handles POST /api/reviews.
// A grade outside 0..5 is rejected with 400 by the service.
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req SubmitReviewRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	out, err := h.reviewService.Submit(r.Context(), service.SubmitInput{
		VocabID:      req.VocabID,
		Grade:        domain.Grade(*req.Grade),
		Mode:         domain.ReviewMode(req.Mode),
		QuestionType: domain.QuestionType(req.QuestionType),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit review")
		return
	}

	log.Debug("review submitted",
		slog.String("vocab_id", req.VocabID.String()),
		slog.Int("grade", *req.Grade))
	shared.RespondWithJSON(w, r, http.StatusOK, SubmitReviewResponse{
		Item: vocabToResponse(out.Item),
		Log:  reviewLogToResponse(out.Log),
	})
}
