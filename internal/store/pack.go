package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
)

// PackStore defines the interface for topic pack persistence.
type PackStore interface {
	// Create saves a new pack and links every listed vocab ID that exists.
	// Unknown vocab IDs are skipped. Returns ErrPackNameExists if another
	// pack already uses the name.
	Create(ctx context.Context, pack *domain.Pack) error

	// GetByID retrieves a pack with its vocab IDs in insertion order.
	// Returns ErrPackNotFound if the pack does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Pack, error)

	// List returns one page of packs, most recently updated first.
	List(ctx context.Context, limit, offset int) ([]*domain.Pack, error)

	// AddVocab links an item to a pack and touches the pack's updated_at.
	// Linking an item twice is a no-op. Returns ErrPackNotFound or
	// ErrVocabNotFound when either side is missing.
	AddVocab(ctx context.Context, packID, vocabID uuid.UUID, at time.Time) error

	// SessionVocabs returns at most limit items of the pack, earliest due first.
	//
	// IMPORTANT: Links to deleted items are removed by the ON DELETE CASCADE
	// constraint on pack_vocabs.vocab_id, so every returned ID resolves.
	SessionVocabs(ctx context.Context, packID uuid.UUID, limit int) ([]*domain.VocabularyItem, error)

	// WithTx returns a new PackStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) PackStore
}
