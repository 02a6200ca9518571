package database

import (
	"context"
	"database/sql"
	"sync"
)

// txKey is a context key type for storing database transactions.
type txKey struct{}

// lockKey marks a context that already holds a LockTxManager lock.
type lockKey struct{}

// Querier represents a database query executor (either *sql.DB or *sql.Tx).
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager manages database transactions.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// sqlTxManager implements TxManager for SQL databases.
type sqlTxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager for the given database.
func NewTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

// WithTx executes the function within a database transaction.
// Calls nested inside an existing transaction join it instead of opening a new one.
func (m *sqlTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	ctx = context.WithValue(ctx, txKey{}, tx)

	if err := fn(ctx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return rbErr
		}
		return err
	}

	return tx.Commit()
}

// GetTx retrieves a transaction from context, or returns the DB connection.
func GetTx(ctx context.Context, db *sql.DB) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// LockTxManager is the TxManager of the in-memory stores. A "transaction" is the
// critical section of a single process-wide mutex, which makes every
// read-modify-write run as one atomic unit. It has no rollback: callers must
// check every failure condition before their first write.
type LockTxManager struct {
	mu sync.Mutex
}

// NewLockTxManager creates a LockTxManager.
func NewLockTxManager() *LockTxManager {
	return &LockTxManager{}
}

// WithTx runs fn while holding the lock. Nested calls reuse the held lock.
func (m *LockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if InLockTx(ctx) {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return fn(context.WithValue(ctx, lockKey{}, m))
}

// Do runs fn under the lock unless ctx already holds it. In-memory repositories
// use it so that calls made outside WithTx are still serialized.
func (m *LockTxManager) Do(ctx context.Context, fn func()) {
	if held, ok := ctx.Value(lockKey{}).(*LockTxManager); ok && held == m {
		fn()
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}

// InLockTx reports whether ctx is running inside a LockTxManager transaction.
func InLockTx(ctx context.Context) bool {
	_, ok := ctx.Value(lockKey{}).(*LockTxManager)
	return ok
}
