package service

import (
	"context"
	"database/sql"

	"github.com/phrazzld/lexis/internal/store"
)

// Stores bundles the stores a unit of work operates on.
type Stores struct {
	Vocabs     store.VocabStore
	ReviewLogs store.ReviewLogStore
	Packs      store.PackStore
}

// TxManager hands out stores for reads and runs writes in a transaction.
type TxManager interface {
	// Stores returns stores bound to the connection pool.
	Stores() Stores

	// InTx runs fn with stores bound to one transaction. The transaction is
	// committed when fn returns nil and rolled back otherwise.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error

	// InReadTx runs fn with stores bound to one read-only REPEATABLE READ
	// transaction, so every read in fn sees the same committed state.
	InReadTx(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error
}

type sqlTxManager struct {
	db     *sql.DB
	stores Stores
}

// NewSQLTxManager creates a TxManager over db. The given stores must be
// built on the same db; InTx rebinds them with WithTx.
func NewSQLTxManager(db *sql.DB, stores Stores) TxManager {
	if db == nil {
		panic("db cannot be nil")
	}
	if stores.Vocabs == nil || stores.ReviewLogs == nil || stores.Packs == nil {
		panic("stores cannot be nil")
	}
	return &sqlTxManager{db: db, stores: stores}
}

func (m *sqlTxManager) Stores() Stores {
	return m.stores
}

func (m *sqlTxManager) InTx(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error {
	return store.RunInTransaction(ctx, m.db, m.bind(fn))
}

func (m *sqlTxManager) InReadTx(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error {
	return store.RunInTransactionWithOptions(ctx, m.db, store.ReadSnapshotOptions, m.bind(fn))
}

func (m *sqlTxManager) bind(fn func(ctx context.Context, tx Stores) error) store.TxFn {
	return func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, Stores{
			Vocabs:     m.stores.Vocabs.WithTx(tx),
			ReviewLogs: m.stores.ReviewLogs.WithTx(tx),
			Packs:      m.stores.Packs.WithTx(tx),
		})
	}
}
