package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrTxNotSupported is returned by InTx when the querier cannot begin a
// transaction.
var ErrTxNotSupported = errors.New("querier does not support transactions")

// Beginner is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type txKey struct{}

// WithTx returns a context carrying tx. Stores resolve their querier with
// Conn, so statements issued under this context join the transaction.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the transaction carried by ctx, if any.
func TxFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok && tx != nil
}

// Conn returns the transaction carried by ctx, or fallback when there is none.
func Conn(ctx context.Context, fallback Querier) Querier {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return fallback
}

// InTx runs fn inside a transaction begun on db and commits when fn returns
// nil. When ctx already carries a transaction fn joins it instead.
func InTx(ctx context.Context, db Querier, fn func(ctx context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}
	b, ok := db.(Beginner)
	if !ok {
		return ErrTxNotSupported
	}
	return pgx.BeginFunc(ctx, b, func(tx pgx.Tx) error {
		return fn(WithTx(ctx, tx))
	})
}
