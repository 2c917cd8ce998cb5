package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/lexis/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	plain := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"term unique", &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: vocabTermConstraint}, store.ErrTermExists},
		{"log unique", &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: reviewLogPKey}, store.ErrReviewLogExists},
		{"pack name unique", &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: packNameConstraint}, store.ErrPackNameExists},
		{"other unique", &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "events_pkey"}, store.ErrDuplicate},
		{"vocab fk", &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: reviewLogVocabFKey}, store.ErrVocabNotFound},
		{"pack link vocab fk", &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: packVocabVocabFKey}, store.ErrVocabNotFound},
		{"pack link pack fk", &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: packVocabPackFKey}, store.ErrPackNotFound},
		{"other fk", &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "x"}, store.ErrInvalidEntity},
		{"check", &pgconn.PgError{Code: checkViolationCode, ConstraintName: "vocabs_ease_factor_floor"}, store.ErrInvalidEntity},
		{"not null", &pgconn.PgError{Code: notNullViolationCode, ColumnName: "due_at"}, store.ErrInvalidEntity},
		{"unmapped", plain, plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: checkViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("x")))
}

func TestCheckRowsAffected(t *testing.T) {
	assert.Error(t, CheckRowsAffected(nil, store.ErrVocabNotFound))
	assert.NoError(t, CheckRowsAffected(sqlmock.NewResult(0, 1), store.ErrVocabNotFound))
	assert.ErrorIs(t, CheckRowsAffected(sqlmock.NewResult(0, 0), store.ErrVocabNotFound), store.ErrVocabNotFound)
	assert.Error(t, CheckRowsAffected(sqlmock.NewErrorResult(errors.New("no count")), store.ErrVocabNotFound))
}
