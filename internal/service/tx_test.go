package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/lexis/internal/platform/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLTxManager(t *testing.T) (TxManager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.Default()
	return NewSQLTxManager(db, Stores{
		Vocabs:     postgres.NewPostgresVocabStore(db, logger),
		ReviewLogs: postgres.NewPostgresReviewLogStore(db, logger),
		Packs:      postgres.NewPostgresPackStore(db, logger),
	}), mock
}

func TestSQLTxManager_Commit(t *testing.T) {
	tm, mock := newSQLTxManager(t)
	mock.ExpectBegin()
	mock.ExpectExec("LOCK TABLE vocabs, review_logs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := tm.InTx(context.Background(), func(ctx context.Context, tx Stores) error {
		return tx.Vocabs.LockAll(ctx)
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLTxManager_Rollback(t *testing.T) {
	tm, mock := newSQLTxManager(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := tm.InTx(context.Background(), func(context.Context, Stores) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLTxManager_ReadTx(t *testing.T) {
	tm, mock := newSQLTxManager(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM vocabs").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	err := tm.InReadTx(context.Background(), func(ctx context.Context, tx Stores) error {
		_, err := tx.Vocabs.List(ctx)
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewSQLTxManagerPanics(t *testing.T) {
	assert.Panics(t, func() { NewSQLTxManager(nil, Stores{}) })

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	assert.Panics(t, func() { NewSQLTxManager(db, Stores{}) })
}
