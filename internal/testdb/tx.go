//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

// WithTx runs fn within a transaction that is rolled back afterwards, so
// nothing fn writes outlives the test.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}

	defer func() {
		if r := recover(); r != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				t.Logf("warning: failed to roll back transaction after panic: %v", rbErr)
			}
			// ALLOW-PANIC
			panic(r)
		}

		// sql.ErrTxDone is expected when fn already ended the transaction
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("warning: failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}
