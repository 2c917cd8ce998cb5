package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/events"
	"github.com/phrazzld/lexis/internal/platform/logger"
)

// SubmitInput is one graded review.
type SubmitInput struct {
	VocabID      uuid.UUID
	Grade        domain.Grade
	Mode         domain.ReviewMode
	QuestionType domain.QuestionType
}

// ReviewOutcome is the rescheduled item and the log entry that records it.
type ReviewOutcome struct {
	Item *domain.VocabularyItem
	Log  *domain.ReviewLogEntry
}

// ReviewService records reviews and reschedules items.
type ReviewService interface {
	// Submit applies a grade to an item and appends it to the review log.
	// Returns domain.ErrInvalidGrade for a grade outside [0,5] and
	// store.ErrVocabNotFound for an unknown item.
	Submit(ctx context.Context, in SubmitInput) (*ReviewOutcome, error)

	// History returns the review log of an item, oldest first.
	History(ctx context.Context, vocabID uuid.UUID) ([]*domain.ReviewLogEntry, error)
}

type reviewServiceImpl struct {
	runtime
	tx     TxManager
	logger *slog.Logger
}

var _ ReviewService = (*reviewServiceImpl)(nil)

// NewReviewService creates a new ReviewService.
func NewReviewService(tx TxManager, logger *slog.Logger, opts ...Option) (ReviewService, error) {
	if tx == nil {
		return nil, NewServiceError("review", "init", "tx manager cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &reviewServiceImpl{
		runtime: newRuntime(opts),
		tx:      tx,
		logger:  logger.With(slog.String("component", "review_service")),
	}, nil
}

// Submit implements ReviewService.Submit.
func (s *reviewServiceImpl) Submit(ctx context.Context, in SubmitInput) (*ReviewOutcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !in.Grade.Valid() {
		return nil, domain.ErrInvalidGrade
	}

	var out ReviewOutcome
	err := s.tx.InTx(ctx, func(ctx context.Context, tx Stores) error {
		item, err := tx.Vocabs.GetByIDForUpdate(ctx, in.VocabID)
		if err != nil {
			return err
		}

		now := s.now()
		next, err := s.scheduler.Schedule(item.Scheduling(), in.Grade, now)
		if err != nil {
			return err
		}

		entry, err := domain.NewReviewLogEntry(s.newID(), item.ID, in.Grade, in.Mode, in.QuestionType, next, now)
		if err != nil {
			return err
		}

		updated := item.Clone()
		updated.SchedulingState = next
		updated.UpdatedAt = now
		if err := tx.Vocabs.Update(ctx, updated); err != nil {
			return err
		}
		if err := tx.ReviewLogs.Create(ctx, entry); err != nil {
			return err
		}

		out = ReviewOutcome{Item: updated, Log: entry}
		return nil
	})
	if err != nil {
		if isClientError(err) {
			return nil, err
		}
		log.Error("failed to submit review",
			slog.String("vocab_id", in.VocabID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("review", "submit", "failed to record review", err)
	}

	log.Info("review recorded",
		slog.String("vocab_id", in.VocabID.String()),
		slog.Int("grade", int(in.Grade)),
		slog.Int("interval_days", out.Item.IntervalDays),
		slog.Time("due_at", out.Item.DueAt))
	s.emit(ctx, log, events.TypeReviewSubmitted, events.ReviewSubmittedPayload{
		VocabID:      out.Item.ID,
		ReviewLogID:  out.Log.ID,
		Grade:        int(in.Grade),
		IntervalDays: out.Item.IntervalDays,
	})
	return &out, nil
}

// History implements ReviewService.History.
func (s *reviewServiceImpl) History(ctx context.Context, vocabID uuid.UUID) ([]*domain.ReviewLogEntry, error) {
	stores := s.tx.Stores()
	if _, err := stores.Vocabs.GetByID(ctx, vocabID); err != nil {
		if isClientError(err) {
			return nil, err
		}
		return nil, NewServiceError("review", "history", "failed to load term", err)
	}

	entries, err := stores.ReviewLogs.ListByVocab(ctx, vocabID)
	if err != nil {
		return nil, NewServiceError("review", "history", "failed to load review log", err)
	}
	return entries, nil
}
