package repositories

import "context"

// TxFn is the unit of work run by ExecTx
type TxFn func(ctx context.Context) error

// TransactionManager runs multi-statement hierarchy mutations atomically.
//
// ExecTx joins an enclosing transaction when ctx already carries one, so
// services compose (import calls move, move calls renumber) and still commit
// or roll back as a unit.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}

type txKey struct{}

// WithTx stores an engine transaction handle in ctx
func WithTx[T any](ctx context.Context, tx T) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFrom returns the transaction handle of type T stored in ctx
func TxFrom[T any](ctx context.Context) (T, bool) {
	tx, ok := ctx.Value(txKey{}).(T)
	return tx, ok
}
