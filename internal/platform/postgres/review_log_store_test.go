package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLog(t *testing.T) *domain.ReviewLogEntry {
	t.Helper()
	entry, err := domain.NewReviewLogEntry(
		uuid.New(), uuid.New(), 4, domain.ReviewModeFlip, domain.QuestionTermToMeaning,
		domain.NewSchedulingState(fixedNow), fixedNow)
	require.NoError(t, err)
	return entry
}

func TestPostgresReviewLogStore_Create(t *testing.T) {
	t.Run("inserted", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO review_logs").
			WithArgs(anyArgs(7)...).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewPostgresReviewLogStore(db, nil).Create(context.Background(), sampleLog(t)))
	})

	t.Run("unknown vocab", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO review_logs").
			WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: reviewLogVocabFKey})

		err := NewPostgresReviewLogStore(db, nil).Create(context.Background(), sampleLog(t))
		assert.ErrorIs(t, err, store.ErrVocabNotFound)
	})

	t.Run("duplicate id", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO review_logs").
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: reviewLogPKey})

		err := NewPostgresReviewLogStore(db, nil).Create(context.Background(), sampleLog(t))
		assert.ErrorIs(t, err, store.ErrReviewLogExists)
	})

	t.Run("invalid grade", func(t *testing.T) {
		db, _ := newMockDB(t)
		entry := sampleLog(t)
		entry.Grade = 9

		err := NewPostgresReviewLogStore(db, nil).Create(context.Background(), entry)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.ErrorIs(t, err, domain.ErrInvalidGrade)
	})
}

func TestPostgresReviewLogStore_CreateIfAbsent(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`ON CONFLICT \(id\) DO NOTHING`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`ON CONFLICT \(id\) DO NOTHING`).WillReturnResult(sqlmock.NewResult(0, 0))

	s := NewPostgresReviewLogStore(db, nil)
	entry := sampleLog(t)

	inserted, err := s.CreateIfAbsent(context.Background(), entry)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.CreateIfAbsent(context.Background(), entry)
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestPostgresReviewLogStore_ListByVocab(t *testing.T) {
	db, mock := newMockDB(t)
	entry := sampleLog(t)
	rows := sqlmock.NewRows([]string{"id", "vocab_id", "graded_at", "grade", "mode", "question_type", "result"}).
		AddRow(entry.ID.String(), entry.VocabID.String(), entry.GradedAt, int64(4), "flip", "term_to_meaning",
			[]byte(`{"ease_factor":2.5,"interval_days":0,"repetitions":0,"lapses":0,"due_at":"2025-03-01T09:30:00Z"}`))
	mock.ExpectQuery("WHERE vocab_id = \\$1 ORDER BY graded_at, id").
		WithArgs(entry.VocabID).
		WillReturnRows(rows)

	got, err := NewPostgresReviewLogStore(db, nil).ListByVocab(context.Background(), entry.VocabID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, entry.ID, got[0].ID)
	assert.Equal(t, domain.Grade(4), got[0].Grade)
	assert.Equal(t, domain.ReviewModeFlip, got[0].Mode)
	assert.Equal(t, 2.5, got[0].Result.EaseFactor)
	assert.True(t, got[0].Result.DueAt.Equal(fixedNow))
}
