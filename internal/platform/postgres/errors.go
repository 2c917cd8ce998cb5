package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/lexis/internal/store"
)

// PostgreSQL error codes
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

// Constraint names referenced by MapError, see migrations/.
const (
	vocabTermConstraint = "vocabs_term_normalized_key"
	reviewLogPKey       = "review_logs_pkey"
	reviewLogVocabFKey  = "review_logs_vocab_id_fkey"
	packNameConstraint  = "packs_name_key"
	packVocabPackFKey   = "pack_vocabs_pack_id_fkey"
	packVocabVocabFKey  = "pack_vocabs_vocab_id_fkey"
)

// MapError maps a database error to the store error that describes it.
// The original error stays in the chain for debugging but callers should
// only match on the store sentinels.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolationCode:
		switch pgErr.ConstraintName {
		case vocabTermConstraint:
			return fmt.Errorf("%w: %v", store.ErrTermExists, err)
		case reviewLogPKey:
			return fmt.Errorf("%w: %v", store.ErrReviewLogExists, err)
		case packNameConstraint:
			return fmt.Errorf("%w: %v", store.ErrPackNameExists, err)
		}
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case foreignKeyViolationCode:
		switch pgErr.ConstraintName {
		case reviewLogVocabFKey, packVocabVocabFKey:
			return fmt.Errorf("%w: %v", store.ErrVocabNotFound, err)
		case packVocabPackFKey:
			return fmt.Errorf("%w: %v", store.ErrPackNotFound, err)
		}
		return fmt.Errorf("%w: foreign key violation (%s): %v",
			store.ErrInvalidEntity, pgErr.ConstraintName, err)
	case checkViolationCode:
		return fmt.Errorf("%w: check constraint violation (%s): %v",
			store.ErrInvalidEntity, pgErr.ConstraintName, err)
	case notNullViolationCode:
		return fmt.Errorf("%w: not null violation (%s): %v",
			store.ErrInvalidEntity, pgErr.ColumnName, err)
	}

	return err
}

// IsUniqueViolation checks if the given error is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// CheckRowsAffected returns notFound when an UPDATE or DELETE matched no rows.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
