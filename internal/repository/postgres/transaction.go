package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codelogn/WinWork-sub000/internal/domain/repositories"
)

// GetTx retrieves the pgx transaction from the context, nil when absent
func GetTx(ctx context.Context) pgx.Tx {
	tx, _ := repositories.TxFrom[pgx.Tx](ctx)
	return tx
}

// TransactionManager implements repositories.TransactionManager on a pgx pool
type TransactionManager struct {
	pool    *pgxpool.Pool
	lockKey string
	logger  *slog.Logger
}

// NewTransactionManager creates a new transaction manager. Transactions on the
// same tables are serialized through an advisory lock keyed on the items table.
func NewTransactionManager(pool *pgxpool.Pool, tables *TableNames, logger *slog.Logger) repositories.TransactionManager {
	return &TransactionManager{pool: pool, lockKey: tables.Items, logger: logger}
}

// writerLockSQL blocks until no other transaction on the same store holds the
// lock. It is released on commit or rollback.
const writerLockSQL = "SELECT pg_advisory_xact_lock(hashtext($1))"

// ExecTx executes a function within a transaction.
// A transaction already stored in ctx is joined rather than nested.
// Cycle checks read the ancestor chain before writing, so two moves must not
// interleave.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if GetTx(ctx) != nil {
		return fn(ctx)
	}

	tx, err := tm.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	// Defer rollback - safe even if commit succeeds
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			tm.logger.Warn("rollback failed", "error", err)
		}
	}()

	if _, err := tx.Exec(ctx, writerLockSQL, tm.lockKey); err != nil {
		return fmt.Errorf("acquire writer lock: %w", err)
	}

	if err := fn(repositories.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
