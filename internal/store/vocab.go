package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
)

// VocabFilter selects a page of items for browsing.
type VocabFilter struct {
	// Query matches case-insensitively against the term, meanings and tags.
	Query string
	// Tag restricts results to items carrying this exact tag.
	Tag    string
	Limit  int
	Offset int
}

// VocabStore defines the interface for vocabulary item persistence.
type VocabStore interface {
	// Create saves a new item.
	// Returns ErrTermExists if another item already uses its normalized term,
	// or a validation error wrapped in ErrInvalidEntity.
	Create(ctx context.Context, item *domain.VocabularyItem) error

	// Update replaces every mutable field of an existing item.
	// Returns ErrVocabNotFound if the item does not exist and ErrTermExists
	// if the new normalized term belongs to another item.
	Update(ctx context.Context, item *domain.VocabularyItem) error

	// Upsert inserts the item or, when its ID is already stored, overwrites it.
	// Used by sync import, which writes merged items whatever their origin.
	Upsert(ctx context.Context, item *domain.VocabularyItem) error

	// GetByID retrieves an item by its unique ID.
	// Returns ErrVocabNotFound if the item does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error)

	// GetByIDForUpdate retrieves an item and locks its row until the
	// surrounding transaction ends.
	//
	// IMPORTANT: This method must be called on a store obtained from WithTx;
	// outside a transaction the lock is released immediately.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error)

	// GetByTerm retrieves the item with the given normalized term.
	// Returns ErrVocabNotFound if no item uses it.
	GetByTerm(ctx context.Context, termNormalized string) (*domain.VocabularyItem, error)

	// GetByTermForUpdate is GetByTerm with a row lock, see GetByIDForUpdate.
	GetByTermForUpdate(ctx context.Context, termNormalized string) (*domain.VocabularyItem, error)

	// List returns every item ordered by normalized term.
	List(ctx context.Context) ([]*domain.VocabularyItem, error)

	// Search returns one page of items matching the filter, most recently
	// updated first.
	Search(ctx context.Context, filter VocabFilter) ([]*domain.VocabularyItem, error)

	// Delete removes an item by its ID.
	// Returns ErrVocabNotFound if the item does not exist.
	//
	// IMPORTANT: Review logs of the item are removed by the ON DELETE CASCADE
	// constraint on review_logs.vocab_id, not by application code.
	Delete(ctx context.Context, id uuid.UUID) error

	// LockAll takes a table lock that blocks concurrent writers to items and
	// review logs until the transaction ends. Sync import uses it to merge
	// against a frozen snapshot.
	LockAll(ctx context.Context) error

	// WithTx returns a new VocabStore instance that uses the provided transaction.
	//
	// Example usage:
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//       txStore := vocabStore.WithTx(tx)
	//       item, err := txStore.GetByIDForUpdate(ctx, id)
	//       ...
	//   })
	WithTx(tx *sql.Tx) VocabStore
}
