package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/store"
)

// Bounds for the writing error deck.
const (
	DefaultDeckSize = 10
	MaxDeckSize     = 100
)

// WritingErrorInput is a mistake to record in the error bank.
type WritingErrorInput struct {
	Sentence          string
	CorrectedSentence string
	Category          domain.ErrorCategory
	Notes             *string
	Topic             *string
}

// WritingErrorQuery filters the error bank. Zero values mean "no filter",
// page 1 and DefaultPageSize.
type WritingErrorQuery struct {
	Category domain.ErrorCategory
	Topic    string
	Page     int
	Limit    int
}

// WritingService manages the writing error bank.
type WritingService interface {
	// Record stores a mistake. Recording the same sentence, correction and
	// category again increments the count of the existing entry.
	Record(ctx context.Context, in WritingErrorInput) (*domain.WritingError, error)

	// List returns entries most frequent first.
	List(ctx context.Context, q WritingErrorQuery) ([]*domain.WritingError, error)

	// Deck returns the size most frequent mistakes for drilling.
	Deck(ctx context.Context, size int) ([]*domain.WritingError, error)

	Delete(ctx context.Context, id uuid.UUID) error
}

type writingServiceImpl struct {
	runtime
	bank   store.WritingErrorStore
	logger *slog.Logger
}

var _ WritingService = (*writingServiceImpl)(nil)

// NewWritingService creates a new WritingService.
func NewWritingService(bank store.WritingErrorStore, logger *slog.Logger, opts ...Option) (WritingService, error) {
	if bank == nil {
		return nil, NewServiceError("writing", "init", "writing error store cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &writingServiceImpl{
		runtime: newRuntime(opts),
		bank:    bank,
		logger:  logger.With(slog.String("component", "writing_service")),
	}, nil
}

// Record implements WritingService.Record.
func (s *writingServiceImpl) Record(ctx context.Context, in WritingErrorInput) (*domain.WritingError, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	entry, err := domain.NewWritingError(s.newID(), in.Sentence, in.CorrectedSentence,
		in.Category, in.Notes, in.Topic, s.now())
	if err != nil {
		return nil, err
	}

	stored, err := s.bank.Record(ctx, entry)
	if err != nil {
		if isClientError(err) {
			return nil, err
		}
		log.Error("failed to record writing error", slog.String("error", err.Error()))
		return nil, NewServiceError("writing", "record", "failed to save writing error", err)
	}

	log.Debug("writing error recorded",
		slog.String("writing_error_id", stored.ID.String()),
		slog.Int("count", stored.Count))
	return stored, nil
}

// List implements WritingService.List.
func (s *writingServiceImpl) List(ctx context.Context, q WritingErrorQuery) ([]*domain.WritingError, error) {
	if q.Category != "" && !q.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, q.Category)
	}
	page := max(q.Page, 1)
	limit := clampLimit(q.Limit, DefaultPageSize, MaxPageSize)

	entries, err := s.bank.List(ctx, store.WritingErrorFilter{
		Category: q.Category,
		Topic:    q.Topic,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	})
	if err != nil {
		return nil, NewServiceError("writing", "list", "failed to list writing errors", err)
	}
	return entries, nil
}

// Deck implements WritingService.Deck.
func (s *writingServiceImpl) Deck(ctx context.Context, size int) ([]*domain.WritingError, error) {
	entries, err := s.bank.List(ctx, store.WritingErrorFilter{
		Limit: clampLimit(size, DefaultDeckSize, MaxDeckSize),
	})
	if err != nil {
		return nil, NewServiceError("writing", "deck", "failed to build deck", err)
	}
	return entries, nil
}

// Delete implements WritingService.Delete.
func (s *writingServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.bank.Delete(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return err
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete writing error",
			slog.String("writing_error_id", id.String()),
			slog.String("error", err.Error()))
		return NewServiceError("writing", "delete", "failed to delete writing error", err)
	}
	return nil
}
