package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/store"
)

const reviewLogColumns = `id, vocab_id, graded_at, grade, mode, question_type, result`

// PostgresReviewLogStore implements the store.ReviewLogStore interface.
type PostgresReviewLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewLogStore creates a new PostgreSQL implementation of the ReviewLogStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresReviewLogStore(db store.DBTX, logger *slog.Logger) *PostgresReviewLogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_log_store")),
	}
}

var _ store.ReviewLogStore = (*PostgresReviewLogStore)(nil)

// WithTx implements store.ReviewLogStore.WithTx.
func (s *PostgresReviewLogStore) WithTx(tx *sql.Tx) store.ReviewLogStore {
	return &PostgresReviewLogStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.ReviewLogStore.Create.
func (s *PostgresReviewLogStore) Create(ctx context.Context, entry *domain.ReviewLogEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	args, err := reviewLogArgs(entry)
	if err != nil {
		log.Warn("review log validation failed", slog.String("error", err.Error()))
		return err
	}

	query := `INSERT INTO review_logs (` + reviewLogColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to create review log",
			slog.String("error", err.Error()),
			slog.String("review_log_id", entry.ID.String()),
			slog.String("vocab_id", entry.VocabID.String()))
		return MapError(err)
	}

	log.Debug("review log created",
		slog.String("review_log_id", entry.ID.String()),
		slog.Int("grade", int(entry.Grade)))
	return nil
}

// CreateIfAbsent implements store.ReviewLogStore.CreateIfAbsent.
func (s *PostgresReviewLogStore) CreateIfAbsent(ctx context.Context, entry *domain.ReviewLogEntry) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	args, err := reviewLogArgs(entry)
	if err != nil {
		return false, err
	}

	query := `INSERT INTO review_logs (` + reviewLogColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to insert review log",
			slog.String("error", err.Error()),
			slog.String("review_log_id", entry.ID.String()))
		return false, MapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

// List implements store.ReviewLogStore.List.
func (s *PostgresReviewLogStore) List(ctx context.Context) ([]*domain.ReviewLogEntry, error) {
	return s.query(ctx, `SELECT `+reviewLogColumns+` FROM review_logs ORDER BY graded_at, id`)
}

// ListByVocab implements store.ReviewLogStore.ListByVocab.
func (s *PostgresReviewLogStore) ListByVocab(ctx context.Context, vocabID uuid.UUID) ([]*domain.ReviewLogEntry, error) {
	return s.query(ctx,
		`SELECT `+reviewLogColumns+` FROM review_logs WHERE vocab_id = $1 ORDER BY graded_at, id`,
		vocabID)
}

func (s *PostgresReviewLogStore) query(ctx context.Context, query string, args ...any) ([]*domain.ReviewLogEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query review logs", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*domain.ReviewLogEntry, 0)
	for rows.Next() {
		var (
			entry       domain.ReviewLogEntry
			grade       int
			mode, qtype string
			resultRaw   []byte
		)
		if err := rows.Scan(&entry.ID, &entry.VocabID, &entry.GradedAt, &grade, &mode, &qtype, &resultRaw); err != nil {
			log.Error("failed to scan review log row", slog.String("error", err.Error()))
			return nil, err
		}
		if err := json.Unmarshal(resultRaw, &entry.Result); err != nil {
			return nil, fmt.Errorf("failed to decode review result %s: %w", entry.ID, err)
		}
		entry.Grade = domain.Grade(grade)
		entry.Mode = domain.ReviewMode(mode)
		entry.QuestionType = domain.QuestionType(qtype)
		entry.GradedAt = entry.GradedAt.UTC()
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return entries, nil
}

func reviewLogArgs(entry *domain.ReviewLogEntry) ([]any, error) {
	if entry == nil {
		return nil, fmt.Errorf("%w: nil review log", store.ErrInvalidEntity)
	}
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	result, err := json.Marshal(entry.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode review result: %w", err)
	}

	return []any{
		entry.ID,
		entry.VocabID,
		entry.GradedAt.UTC(),
		int(entry.Grade),
		string(entry.Mode),
		string(entry.QuestionType),
		result,
	}, nil
}
