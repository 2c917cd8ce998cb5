package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/store"
)

// packSelect loads a pack with its linked vocab IDs in one row.
const packSelect = `
	SELECT p.id, p.name, p.description, p.topics, p.target_band, p.created_at, p.updated_at,
		COALESCE((
			SELECT jsonb_agg(pv.vocab_id ORDER BY pv.seq)
			FROM pack_vocabs pv
			WHERE pv.pack_id = p.id
		), '[]'::jsonb)
	FROM packs p`

// PostgresPackStore implements the store.PackStore interface.
type PostgresPackStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPackStore creates a new PostgreSQL implementation of the PackStore interface.
func NewPostgresPackStore(db store.DBTX, logger *slog.Logger) *PostgresPackStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPackStore{
		db:     db,
		logger: logger.With(slog.String("component", "pack_store")),
	}
}

var _ store.PackStore = (*PostgresPackStore)(nil)

// WithTx implements store.PackStore.WithTx.
func (s *PostgresPackStore) WithTx(tx *sql.Tx) store.PackStore {
	return &PostgresPackStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.PackStore.Create.
// Call it inside a transaction: the pack row and its links are separate statements.
func (s *PostgresPackStore) Create(ctx context.Context, pack *domain.Pack) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if pack == nil {
		return fmt.Errorf("%w: nil pack", store.ErrInvalidEntity)
	}
	if err := pack.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	topics, err := marshalStrings(pack.Topics)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO packs (id, name, description, topics, target_band, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		pack.ID, pack.Name, nullString(pack.Description), topics, nullFloat(pack.TargetBand),
		pack.CreatedAt.UTC(), pack.UpdatedAt.UTC())
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrPackNameExists) {
			log.Debug("pack name already exists", slog.String("name", pack.Name))
		} else {
			log.Error("failed to create pack",
				slog.String("error", err.Error()),
				slog.String("pack_id", pack.ID.String()))
		}
		return mapped
	}

	for _, vocabID := range pack.VocabIDs {
		// unknown items are skipped rather than rejected
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO pack_vocabs (pack_id, vocab_id, added_at)
			SELECT $1, id, $3 FROM vocabs WHERE id = $2
			ON CONFLICT (pack_id, vocab_id) DO NOTHING`,
			pack.ID, vocabID, pack.CreatedAt.UTC())
		if err != nil {
			log.Error("failed to link vocab to new pack",
				slog.String("error", err.Error()),
				slog.String("pack_id", pack.ID.String()),
				slog.String("vocab_id", vocabID.String()))
			return MapError(err)
		}
	}

	log.Debug("pack created", slog.String("pack_id", pack.ID.String()))
	return nil
}

// GetByID implements store.PackStore.GetByID.
func (s *PostgresPackStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Pack, error) {
	pack, err := scanPack(s.db.QueryRowContext(ctx, packSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPackNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get pack",
			slog.String("error", err.Error()),
			slog.String("pack_id", id.String()))
		return nil, MapError(err)
	}
	return pack, nil
}

// List implements store.PackStore.List.
func (s *PostgresPackStore) List(ctx context.Context, limit, offset int) ([]*domain.Pack, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		packSelect+` ORDER BY p.updated_at DESC, p.id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		log.Error("failed to query packs", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	packs := make([]*domain.Pack, 0)
	for rows.Next() {
		pack, err := scanPack(rows)
		if err != nil {
			log.Error("failed to scan pack row", slog.String("error", err.Error()))
			return nil, err
		}
		packs = append(packs, pack)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return packs, nil
}

// AddVocab implements store.PackStore.AddVocab.
func (s *PostgresPackStore) AddVocab(ctx context.Context, packID, vocabID uuid.UUID, at time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `UPDATE packs SET updated_at = $2 WHERE id = $1`, packID, at.UTC())
	if err != nil {
		log.Error("failed to touch pack",
			slog.String("error", err.Error()),
			slog.String("pack_id", packID.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrPackNotFound); err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pack_vocabs (pack_id, vocab_id, added_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (pack_id, vocab_id) DO NOTHING`,
		packID, vocabID, at.UTC())
	if err != nil {
		mapped := MapError(err)
		if !store.IsNotFoundError(mapped) {
			log.Error("failed to link vocab to pack",
				slog.String("error", err.Error()),
				slog.String("pack_id", packID.String()),
				slog.String("vocab_id", vocabID.String()))
		}
		return mapped
	}
	return nil
}

// SessionVocabs implements store.PackStore.SessionVocabs.
func (s *PostgresPackStore) SessionVocabs(
	ctx context.Context,
	packID uuid.UUID,
	limit int,
) ([]*domain.VocabularyItem, error) {
	query := `SELECT ` + vocabColumns + `
		FROM vocabs
		JOIN pack_vocabs ON pack_vocabs.vocab_id = vocabs.id
		WHERE pack_vocabs.pack_id = $1
		ORDER BY due_at, id
		LIMIT $2`
	return queryVocabs(ctx, s.db, logger.FromContextOrDefault(ctx, s.logger), query, packID, limit)
}

func scanPack(row rowScanner) (*domain.Pack, error) {
	var (
		pack             domain.Pack
		description      sql.NullString
		targetBand       sql.NullFloat64
		topics, vocabIDs []byte
	)

	err := row.Scan(
		&pack.ID,
		&pack.Name,
		&description,
		&topics,
		&targetBand,
		&pack.CreatedAt,
		&pack.UpdatedAt,
		&vocabIDs,
	)
	if err != nil {
		return nil, err
	}

	if pack.Topics, err = unmarshalStrings(topics); err != nil {
		return nil, fmt.Errorf("failed to decode topics: %w", err)
	}
	pack.VocabIDs = []uuid.UUID{}
	if len(vocabIDs) > 0 {
		if err := json.Unmarshal(vocabIDs, &pack.VocabIDs); err != nil {
			return nil, fmt.Errorf("failed to decode vocab ids: %w", err)
		}
	}

	pack.Description = stringPtr(description)
	pack.TargetBand = floatPtr(targetBand)
	pack.CreatedAt = pack.CreatedAt.UTC()
	pack.UpdatedAt = pack.UpdatedAt.UTC()
	return &pack, nil
}
