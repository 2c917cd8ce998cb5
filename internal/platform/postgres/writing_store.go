package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/store"
)

const writingErrorColumns = `id, sentence, corrected_sentence, category, notes, topic,
	count, created_at, updated_at`

// PostgresWritingErrorStore implements the store.WritingErrorStore interface.
type PostgresWritingErrorStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWritingErrorStore creates a new PostgreSQL implementation of the WritingErrorStore interface.
func NewPostgresWritingErrorStore(db store.DBTX, logger *slog.Logger) *PostgresWritingErrorStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresWritingErrorStore{
		db:     db,
		logger: logger.With(slog.String("component", "writing_error_store")),
	}
}

var _ store.WritingErrorStore = (*PostgresWritingErrorStore)(nil)

// WithTx implements store.WritingErrorStore.WithTx.
func (s *PostgresWritingErrorStore) WithTx(tx *sql.Tx) store.WritingErrorStore {
	return &PostgresWritingErrorStore{
		db:     tx,
		logger: s.logger,
	}
}

// Record implements store.WritingErrorStore.Record.
// The insert and the count bump are one statement, so concurrent records of
// the same mistake never lose an increment.
func (s *PostgresWritingErrorStore) Record(
	ctx context.Context,
	entry *domain.WritingError,
) (*domain.WritingError, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if entry == nil {
		return nil, fmt.Errorf("%w: nil writing error", store.ErrInvalidEntity)
	}
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO writing_errors (id, dedup_key, sentence, corrected_sentence, category,
			notes, topic, count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (dedup_key) DO UPDATE SET
			count = writing_errors.count + 1,
			notes = EXCLUDED.notes,
			topic = EXCLUDED.topic,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + writingErrorColumns

	stored, err := scanWritingError(s.db.QueryRowContext(ctx, query,
		entry.ID, entry.DedupKey(), entry.Sentence, entry.CorrectedSentence, string(entry.Category),
		nullString(entry.Notes), nullString(entry.Topic), entry.Count,
		entry.CreatedAt.UTC(), entry.UpdatedAt.UTC()))
	if err != nil {
		log.Error("failed to record writing error",
			slog.String("error", err.Error()),
			slog.String("category", string(entry.Category)))
		return nil, MapError(err)
	}

	log.Debug("writing error recorded",
		slog.String("writing_error_id", stored.ID.String()),
		slog.Int("count", stored.Count))
	return stored, nil
}

// List implements store.WritingErrorStore.List.
func (s *PostgresWritingErrorStore) List(
	ctx context.Context,
	filter store.WritingErrorFilter,
) ([]*domain.WritingError, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args := buildWritingErrorQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query writing errors", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*domain.WritingError, 0)
	for rows.Next() {
		entry, err := scanWritingError(rows)
		if err != nil {
			log.Error("failed to scan writing error row", slog.String("error", err.Error()))
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return entries, nil
}

func buildWritingErrorQuery(filter store.WritingErrorFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Topic != "" {
		args = append(args, filter.Topic)
		conds = append(conds, fmt.Sprintf("topic = $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + writingErrorColumns + ` FROM writing_errors`)
	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY count DESC, updated_at DESC, id")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}
	return b.String(), args
}

// Delete implements store.WritingErrorStore.Delete.
func (s *PostgresWritingErrorStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM writing_errors WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete writing error",
			slog.String("error", err.Error()),
			slog.String("writing_error_id", id.String()))
		return fmt.Errorf("%w: %w", store.ErrDeleteFailed, MapError(err))
	}
	return CheckRowsAffected(result, store.ErrWritingErrorNotFound)
}

func scanWritingError(row rowScanner) (*domain.WritingError, error) {
	var (
		entry        domain.WritingError
		category     string
		notes, topic sql.NullString
	)

	err := row.Scan(
		&entry.ID,
		&entry.Sentence,
		&entry.CorrectedSentence,
		&category,
		&notes,
		&topic,
		&entry.Count,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Category = domain.ErrorCategory(category)
	entry.Notes = stringPtr(notes)
	entry.Topic = stringPtr(topic)
	entry.CreatedAt = entry.CreatedAt.UTC()
	entry.UpdatedAt = entry.UpdatedAt.UTC()
	return &entry, nil
}
