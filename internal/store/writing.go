package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
)

// WritingErrorFilter selects a page of the error bank.
type WritingErrorFilter struct {
	Category domain.ErrorCategory
	Topic    string
	Limit    int
	Offset   int
}

// WritingErrorStore persists the writing error bank.
type WritingErrorStore interface {
	// Record inserts the entry or, when an entry with the same dedup key is
	// stored, increments its count and overwrites notes, topic and
	// updated_at. It returns the stored entry.
	Record(ctx context.Context, entry *domain.WritingError) (*domain.WritingError, error)

	// List returns entries matching the filter, most frequent first and
	// then most recently updated.
	List(ctx context.Context, filter WritingErrorFilter) ([]*domain.WritingError, error)

	// Delete removes an entry.
	// Returns ErrWritingErrorNotFound if the entry does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new WritingErrorStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) WritingErrorStore
}
