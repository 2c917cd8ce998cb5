package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/domain/vocab"
	"github.com/phrazzld/lexis/internal/events"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/store"
)

// Paging bounds for VocabService.List.
const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// ListQuery selects a page of items. Zero values mean "no filter", page 1
// and DefaultPageSize.
type ListQuery struct {
	Query string
	Tag   string
	Page  int
	Limit int
}

// VocabPage is one page of List results.
type VocabPage struct {
	Items []*domain.VocabularyItem
	Page  int
	Limit int
}

// VocabService provides vocabulary management operations.
type VocabService interface {
	// Add creates an item or, when the normalized term already exists,
	// re-adds it with the re-add penalty.
	Add(ctx context.Context, in vocab.AddInput) (vocab.Resolution, error)

	// Edit changes term, meanings or tags without touching scheduling.
	// Returns store.ErrTermExists when the new term belongs to another item.
	Edit(ctx context.Context, id uuid.UUID, in vocab.EditInput) (*domain.VocabularyItem, error)

	Get(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error)

	List(ctx context.Context, q ListQuery) (*VocabPage, error)

	// Delete removes an item together with its review history.
	Delete(ctx context.Context, id uuid.UUID) error
}

type vocabServiceImpl struct {
	runtime
	tx       TxManager
	resolver *vocab.Resolver
	logger   *slog.Logger
}

var _ VocabService = (*vocabServiceImpl)(nil)

// NewVocabService creates a new VocabService.
// It returns an error if any of the required dependencies are nil.
func NewVocabService(tx TxManager, logger *slog.Logger, opts ...Option) (VocabService, error) {
	if tx == nil {
		return nil, NewServiceError("vocab", "init", "tx manager cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	rt := newRuntime(opts)
	return &vocabServiceImpl{
		runtime:  rt,
		tx:       tx,
		resolver: vocab.NewResolver(rt.scheduler),
		logger:   logger.With(slog.String("component", "vocab_service")),
	}, nil
}

// Add implements VocabService.Add.
func (s *vocabServiceImpl) Add(ctx context.Context, in vocab.AddInput) (vocab.Resolution, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	key := domain.NormalizeTerm(in.Term)
	if key == "" {
		return vocab.Resolution{}, domain.ErrEmptyTerm
	}

	var (
		res vocab.Resolution
		err error
	)
	// A concurrent add of the same new term makes our insert lose the race
	// on the unique key; the second attempt then sees the winner as a re-add.
	for attempt := 0; attempt < 2; attempt++ {
		res, err = s.addOnce(ctx, key, in)
		if !errors.Is(err, store.ErrTermExists) {
			break
		}
		log.Debug("term created concurrently, retrying as re-add", slog.String("term", key))
	}
	if err != nil {
		if isClientError(err) {
			return vocab.Resolution{}, err
		}
		log.Error("failed to add term", slog.String("term", key), slog.String("error", err.Error()))
		return vocab.Resolution{}, NewServiceError("vocab", "add", "failed to save term", err)
	}

	if res.PenaltyApplied {
		log.Info("term re-added",
			slog.String("vocab_id", res.Item.ID.String()),
			slog.Int("readd_count", res.Item.ReaddCount),
			slog.Float64("ease_factor", res.Item.EaseFactor))
		s.emit(ctx, log, events.TypeVocabReadded, events.VocabReaddedPayload{
			VocabID:        res.Item.ID,
			TermNormalized: res.Item.TermNormalized,
			ReaddCount:     res.Item.ReaddCount,
			EaseFactor:     res.Item.EaseFactor,
		})
	} else {
		log.Info("term added", slog.String("vocab_id", res.Item.ID.String()))
	}
	return res, nil
}

func (s *vocabServiceImpl) addOnce(ctx context.Context, key string, in vocab.AddInput) (vocab.Resolution, error) {
	var res vocab.Resolution
	err := s.tx.InTx(ctx, func(ctx context.Context, tx Stores) error {
		existing, err := tx.Vocabs.GetByTermForUpdate(ctx, key)
		if err != nil {
			if !errors.Is(err, store.ErrVocabNotFound) {
				return err
			}
			existing = nil
		}

		res, err = s.resolver.ResolveAdd(existing, in, s.newID(), s.now())
		if err != nil {
			return err
		}
		if res.Created {
			return tx.Vocabs.Create(ctx, res.Item)
		}
		return tx.Vocabs.Update(ctx, res.Item)
	})
	return res, err
}

// Edit implements VocabService.Edit.
func (s *vocabServiceImpl) Edit(ctx context.Context, id uuid.UUID, in vocab.EditInput) (*domain.VocabularyItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var edited *domain.VocabularyItem
	err := s.tx.InTx(ctx, func(ctx context.Context, tx Stores) error {
		item, err := tx.Vocabs.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		edited, err = s.resolver.ApplyEdit(item, in, s.now())
		if err != nil {
			return err
		}

		if edited.TermNormalized != item.TermNormalized {
			other, err := tx.Vocabs.GetByTerm(ctx, edited.TermNormalized)
			switch {
			case err == nil && other.ID != item.ID:
				return store.ErrTermExists
			case err != nil && !errors.Is(err, store.ErrVocabNotFound):
				return err
			}
		}

		return tx.Vocabs.Update(ctx, edited)
	})
	if err != nil {
		if isClientError(err) {
			return nil, err
		}
		log.Error("failed to edit term", slog.String("vocab_id", id.String()), slog.String("error", err.Error()))
		return nil, NewServiceError("vocab", "edit", "failed to save term", err)
	}

	log.Debug("term edited", slog.String("vocab_id", id.String()))
	return edited, nil
}

// Get implements VocabService.Get.
func (s *vocabServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error) {
	item, err := s.tx.Stores().Vocabs.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewServiceError("vocab", "get", "failed to load term", err)
	}
	return item, nil
}

// List implements VocabService.List.
func (s *vocabServiceImpl) List(ctx context.Context, q ListQuery) (*VocabPage, error) {
	page := max(q.Page, 1)
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)

	var tag string
	if tags := domain.CleanTags([]string{q.Tag}); len(tags) > 0 {
		tag = tags[0]
	}

	items, err := s.tx.Stores().Vocabs.Search(ctx, store.VocabFilter{
		Query:  q.Query,
		Tag:    tag,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, NewServiceError("vocab", "list", "failed to list terms", err)
	}

	return &VocabPage{Items: items, Page: page, Limit: limit}, nil
}

// Delete implements VocabService.Delete.
func (s *vocabServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.tx.Stores().Vocabs.Delete(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return err
		}
		log.Error("failed to delete term", slog.String("vocab_id", id.String()), slog.String("error", err.Error()))
		return NewServiceError("vocab", "delete", "failed to delete term", err)
	}

	log.Info("term deleted", slog.String("vocab_id", id.String()))
	return nil
}

// isClientError reports whether err is caused by the request rather than
// by the system, in which case it is returned unwrapped.
func isClientError(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrEmptyTerm) ||
		errors.Is(err, domain.ErrInvalidGrade) ||
		errors.Is(err, domain.ErrIncompatibleSchema) ||
		errors.Is(err, ErrInvalidInput) ||
		store.IsNotFoundError(err) ||
		store.IsDuplicateError(err)
}
