package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
)

// ReviewLogStore defines the interface for the append-only review log.
// Entries are never updated; they disappear only when their item is deleted.
type ReviewLogStore interface {
	// Create appends an entry.
	// Returns ErrReviewLogExists if the ID is taken and ErrVocabNotFound if
	// the referenced item does not exist.
	Create(ctx context.Context, entry *domain.ReviewLogEntry) error

	// CreateIfAbsent appends the entry unless an entry with the same ID is
	// already stored, and reports whether it was inserted.
	CreateIfAbsent(ctx context.Context, entry *domain.ReviewLogEntry) (bool, error)

	// List returns every entry ordered by grading time, then ID.
	List(ctx context.Context) ([]*domain.ReviewLogEntry, error)

	// ListByVocab returns the entries of one item, oldest first.
	ListByVocab(ctx context.Context, vocabID uuid.UUID) ([]*domain.ReviewLogEntry, error)

	// WithTx returns a new ReviewLogStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ReviewLogStore
}
