package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/store"
)

// Bounds for a pack study session.
const (
	DefaultPackSessionLimit = 20
	MaxPackSessionLimit     = 100
)

// CreatePackInput describes a new topic pack. VocabIDs that do not exist
// are dropped.
type CreatePackInput struct {
	Name        string
	Description *string
	Topics      []string
	TargetBand  *float64
	VocabIDs    []uuid.UUID
}

// PackPage is one page of packs.
type PackPage struct {
	Packs []*domain.Pack
	Page  int
	Limit int
}

// PackSession is a pack with its items, earliest due first.
type PackSession struct {
	Pack   *domain.Pack
	Vocabs []*domain.VocabularyItem
}

// PackService manages topic packs.
type PackService interface {
	// Create saves a pack. Returns store.ErrPackNameExists when the name is taken.
	Create(ctx context.Context, in CreatePackInput) (*domain.Pack, error)

	// List returns packs most recently updated first.
	List(ctx context.Context, page, limit int) (*PackPage, error)

	Get(ctx context.Context, id uuid.UUID) (*domain.Pack, error)

	// AddVocab links an item to a pack; adding an item twice is a no-op.
	AddVocab(ctx context.Context, packID, vocabID uuid.UUID) (*domain.Pack, error)

	// Session returns at most limit items of the pack ordered by due date.
	// A non-positive limit means DefaultPackSessionLimit.
	Session(ctx context.Context, packID uuid.UUID, limit int) (*PackSession, error)
}

type packServiceImpl struct {
	runtime
	tx     TxManager
	logger *slog.Logger
}

var _ PackService = (*packServiceImpl)(nil)

// NewPackService creates a new PackService.
func NewPackService(tx TxManager, logger *slog.Logger, opts ...Option) (PackService, error) {
	if tx == nil {
		return nil, NewServiceError("pack", "init", "tx manager cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &packServiceImpl{
		runtime: newRuntime(opts),
		tx:      tx,
		logger:  logger.With(slog.String("component", "pack_service")),
	}, nil
}

// Create implements PackService.Create.
func (s *packServiceImpl) Create(ctx context.Context, in CreatePackInput) (*domain.Pack, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	pack, err := domain.NewPack(s.newID(), in.Name, in.Description, in.Topics, in.TargetBand, s.now())
	if err != nil {
		return nil, err
	}
	pack.VocabIDs = uniqueIDs(in.VocabIDs)

	var created *domain.Pack
	err = s.tx.InTx(ctx, func(ctx context.Context, tx Stores) error {
		if err := tx.Packs.Create(ctx, pack); err != nil {
			return err
		}
		var err error
		created, err = tx.Packs.GetByID(ctx, pack.ID)
		return err
	})
	if err != nil {
		if isClientError(err) {
			return nil, err
		}
		log.Error("failed to create pack", slog.String("name", pack.Name), slog.String("error", err.Error()))
		return nil, NewServiceError("pack", "create", "failed to save pack", err)
	}

	log.Info("pack created",
		slog.String("pack_id", created.ID.String()),
		slog.Int("vocab_count", len(created.VocabIDs)))
	return created, nil
}

// List implements PackService.List.
func (s *packServiceImpl) List(ctx context.Context, page, limit int) (*PackPage, error) {
	page = max(page, 1)
	limit = clampLimit(limit, DefaultPageSize, MaxPageSize)

	packs, err := s.tx.Stores().Packs.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, NewServiceError("pack", "list", "failed to list packs", err)
	}
	return &PackPage{Packs: packs, Page: page, Limit: limit}, nil
}

// Get implements PackService.Get.
func (s *packServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Pack, error) {
	pack, err := s.tx.Stores().Packs.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewServiceError("pack", "get", "failed to load pack", err)
	}
	return pack, nil
}

// AddVocab implements PackService.AddVocab.
func (s *packServiceImpl) AddVocab(ctx context.Context, packID, vocabID uuid.UUID) (*domain.Pack, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Pack
	err := s.tx.InTx(ctx, func(ctx context.Context, tx Stores) error {
		if err := tx.Packs.AddVocab(ctx, packID, vocabID, s.now()); err != nil {
			return err
		}
		var err error
		updated, err = tx.Packs.GetByID(ctx, packID)
		return err
	})
	if err != nil {
		if isClientError(err) {
			return nil, err
		}
		log.Error("failed to add vocab to pack",
			slog.String("pack_id", packID.String()),
			slog.String("vocab_id", vocabID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("pack", "add_vocab", "failed to update pack", err)
	}

	log.Debug("vocab added to pack",
		slog.String("pack_id", packID.String()),
		slog.String("vocab_id", vocabID.String()))
	return updated, nil
}

// Session implements PackService.Session.
func (s *packServiceImpl) Session(ctx context.Context, packID uuid.UUID, limit int) (*PackSession, error) {
	limit = clampLimit(limit, DefaultPackSessionLimit, MaxPackSessionLimit)

	var session PackSession
	err := s.tx.InReadTx(ctx, func(ctx context.Context, tx Stores) error {
		pack, err := tx.Packs.GetByID(ctx, packID)
		if err != nil {
			return err
		}
		session.Pack = pack
		if len(pack.VocabIDs) == 0 {
			session.Vocabs = []*domain.VocabularyItem{}
			return nil
		}
		session.Vocabs, err = tx.Packs.SessionVocabs(ctx, packID, limit)
		return err
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewServiceError("pack", "session", "failed to load pack session", err)
	}
	return &session, nil
}

// clampLimit maps a non-positive limit to def and caps it at limitMax.
func clampLimit(limit, def, limitMax int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, limitMax)
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == uuid.Nil {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
