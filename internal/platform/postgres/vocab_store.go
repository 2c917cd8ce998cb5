package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/store"
)

const vocabColumns = `id, term_raw, term_normalized, meanings, tags,
	ease_factor, interval_days, repetitions, lapses, due_at, last_reviewed_at,
	readd_count, last_readd_at, created_at, updated_at`

// PostgresVocabStore implements the store.VocabStore interface
// using a PostgreSQL database as the storage backend.
type PostgresVocabStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresVocabStore creates a new PostgreSQL implementation of the VocabStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresVocabStore(db store.DBTX, logger *slog.Logger) *PostgresVocabStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresVocabStore{
		db:     db,
		logger: logger.With(slog.String("component", "vocab_store")),
	}
}

// Ensure PostgresVocabStore implements store.VocabStore interface
var _ store.VocabStore = (*PostgresVocabStore)(nil)

// WithTx implements store.VocabStore.WithTx.
func (s *PostgresVocabStore) WithTx(tx *sql.Tx) store.VocabStore {
	return &PostgresVocabStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.VocabStore.Create.
func (s *PostgresVocabStore) Create(ctx context.Context, item *domain.VocabularyItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	args, err := s.validatedArgs(ctx, item, "create")
	if err != nil {
		return err
	}

	query := `INSERT INTO vocabs (` + vocabColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrTermExists) {
			log.Debug("term already exists", slog.String("term", item.TermNormalized))
		} else {
			log.Error("failed to create vocab",
				slog.String("error", err.Error()),
				slog.String("vocab_id", item.ID.String()))
		}
		return mapped
	}

	log.Debug("vocab created",
		slog.String("vocab_id", item.ID.String()),
		slog.String("term", item.TermNormalized))
	return nil
}

// Update implements store.VocabStore.Update.
func (s *PostgresVocabStore) Update(ctx context.Context, item *domain.VocabularyItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	args, err := s.validatedArgs(ctx, item, "update")
	if err != nil {
		return err
	}

	query := `
		UPDATE vocabs SET
			term_raw = $2, term_normalized = $3, meanings = $4, tags = $5,
			ease_factor = $6, interval_days = $7, repetitions = $8, lapses = $9,
			due_at = $10, last_reviewed_at = $11, readd_count = $12, last_readd_at = $13,
			created_at = $14, updated_at = $15
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update vocab",
			slog.String("error", err.Error()),
			slog.String("vocab_id", item.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrVocabNotFound); err != nil {
		log.Debug("vocab not found for update", slog.String("vocab_id", item.ID.String()))
		return err
	}

	log.Debug("vocab updated", slog.String("vocab_id", item.ID.String()))
	return nil
}

// Upsert implements store.VocabStore.Upsert.
func (s *PostgresVocabStore) Upsert(ctx context.Context, item *domain.VocabularyItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	args, err := s.validatedArgs(ctx, item, "upsert")
	if err != nil {
		return err
	}

	query := `INSERT INTO vocabs (` + vocabColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			term_raw = EXCLUDED.term_raw,
			term_normalized = EXCLUDED.term_normalized,
			meanings = EXCLUDED.meanings,
			tags = EXCLUDED.tags,
			ease_factor = EXCLUDED.ease_factor,
			interval_days = EXCLUDED.interval_days,
			repetitions = EXCLUDED.repetitions,
			lapses = EXCLUDED.lapses,
			due_at = EXCLUDED.due_at,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			readd_count = EXCLUDED.readd_count,
			last_readd_at = EXCLUDED.last_readd_at,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at`

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to upsert vocab",
			slog.String("error", err.Error()),
			slog.String("vocab_id", item.ID.String()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.VocabStore.GetByID.
func (s *PostgresVocabStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error) {
	return s.getOne(ctx, "id = $1", id, false)
}

// GetByIDForUpdate implements store.VocabStore.GetByIDForUpdate.
func (s *PostgresVocabStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error) {
	return s.getOne(ctx, "id = $1", id, true)
}

// GetByTerm implements store.VocabStore.GetByTerm.
func (s *PostgresVocabStore) GetByTerm(ctx context.Context, termNormalized string) (*domain.VocabularyItem, error) {
	return s.getOne(ctx, "term_normalized = $1", termNormalized, false)
}

// GetByTermForUpdate implements store.VocabStore.GetByTermForUpdate.
func (s *PostgresVocabStore) GetByTermForUpdate(
	ctx context.Context,
	termNormalized string,
) (*domain.VocabularyItem, error) {
	return s.getOne(ctx, "term_normalized = $1", termNormalized, true)
}

func (s *PostgresVocabStore) getOne(
	ctx context.Context,
	where string,
	arg any,
	forUpdate bool,
) (*domain.VocabularyItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + vocabColumns + ` FROM vocabs WHERE ` + where
	if forUpdate {
		query += ` FOR UPDATE`
	}

	item, err := scanVocab(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("vocab not found", slog.Any("key", arg))
			return nil, store.ErrVocabNotFound
		}
		log.Error("failed to get vocab",
			slog.String("error", err.Error()),
			slog.Any("key", arg))
		return nil, MapError(err)
	}
	return item, nil
}

// List implements store.VocabStore.List.
func (s *PostgresVocabStore) List(ctx context.Context) ([]*domain.VocabularyItem, error) {
	query := `SELECT ` + vocabColumns + ` FROM vocabs ORDER BY term_normalized`
	return s.query(ctx, query)
}

// Search implements store.VocabStore.Search.
func (s *PostgresVocabStore) Search(ctx context.Context, filter store.VocabFilter) ([]*domain.VocabularyItem, error) {
	query, args := buildSearchQuery(filter)
	return s.query(ctx, query, args...)
}

// buildSearchQuery renders the WHERE, LIMIT and OFFSET clauses for a filter.
func buildSearchQuery(filter store.VocabFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(term_raw ILIKE $%d OR term_normalized ILIKE $%d OR meanings::text ILIKE $%d OR tags::text ILIKE $%d)",
			n, n, n, n))
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		args = append(args, tag)
		conds = append(conds, fmt.Sprintf("tags @> jsonb_build_array($%d::text)", len(args)))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + vocabColumns + ` FROM vocabs`)
	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY updated_at DESC, id")
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

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *PostgresVocabStore) query(ctx context.Context, query string, args ...any) ([]*domain.VocabularyItem, error) {
	return queryVocabs(ctx, s.db, logger.FromContextOrDefault(ctx, s.logger), query, args...)
}

// queryVocabs runs a query selecting vocabColumns and scans every row.
func queryVocabs(
	ctx context.Context,
	db store.DBTX,
	log *slog.Logger,
	query string,
	args ...any,
) ([]*domain.VocabularyItem, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query vocabs", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*domain.VocabularyItem, 0)
	for rows.Next() {
		item, err := scanVocab(rows)
		if err != nil {
			log.Error("failed to scan vocab row", slog.String("error", err.Error()))
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating vocab rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return items, nil
}

// Delete implements store.VocabStore.Delete.
func (s *PostgresVocabStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM vocabs WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete vocab",
			slog.String("error", err.Error()),
			slog.String("vocab_id", id.String()))
		return fmt.Errorf("%w: %w", store.ErrDeleteFailed, MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrVocabNotFound); err != nil {
		return err
	}

	log.Debug("vocab deleted", slog.String("vocab_id", id.String()))
	return nil
}

// LockAll implements store.VocabStore.LockAll.
// SHARE ROW EXCLUSIVE conflicts with itself and with every row-level write,
// so two imports serialize while plain reads continue.
func (s *PostgresVocabStore) LockAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `LOCK TABLE vocabs, review_logs IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to lock vocab tables",
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

func (s *PostgresVocabStore) validatedArgs(
	ctx context.Context,
	item *domain.VocabularyItem,
	operation string,
) ([]any, error) {
	if item == nil {
		return nil, fmt.Errorf("%w: nil vocab", store.ErrInvalidEntity)
	}
	if err := item.Validate(); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("vocab validation failed",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
			slog.String("vocab_id", item.ID.String()))
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return vocabArgs(item)
}

func vocabArgs(item *domain.VocabularyItem) ([]any, error) {
	meanings, err := marshalStrings(item.Meanings)
	if err != nil {
		return nil, err
	}
	tags, err := marshalStrings(item.Tags)
	if err != nil {
		return nil, err
	}

	return []any{
		item.ID,
		item.TermRaw,
		item.TermNormalized,
		meanings,
		tags,
		item.EaseFactor,
		item.IntervalDays,
		item.Repetitions,
		item.Lapses,
		item.DueAt.UTC(),
		nullTime(item.LastReviewedAt),
		item.ReaddCount,
		nullTime(item.LastReaddAt),
		item.CreatedAt.UTC(),
		item.UpdatedAt.UTC(),
	}, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanVocab(row rowScanner) (*domain.VocabularyItem, error) {
	var (
		item                    domain.VocabularyItem
		meanings, tags          []byte
		lastReviewed, lastReadd sql.NullTime
	)

	err := row.Scan(
		&item.ID,
		&item.TermRaw,
		&item.TermNormalized,
		&meanings,
		&tags,
		&item.EaseFactor,
		&item.IntervalDays,
		&item.Repetitions,
		&item.Lapses,
		&item.DueAt,
		&lastReviewed,
		&item.ReaddCount,
		&lastReadd,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if item.Meanings, err = unmarshalStrings(meanings); err != nil {
		return nil, fmt.Errorf("failed to decode meanings: %w", err)
	}
	if item.Tags, err = unmarshalStrings(tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}

	item.DueAt = item.DueAt.UTC()
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	item.LastReviewedAt = timePtr(lastReviewed)
	item.LastReaddAt = timePtr(lastReadd)
	return &item, nil
}

func marshalStrings(values []string) ([]byte, error) {
	if values == nil {
		values = []string{}
	}
	return json.Marshal(values)
}

func unmarshalStrings(raw []byte) ([]string, error) {
	values := []string{}
	if len(raw) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	return values, nil
}
