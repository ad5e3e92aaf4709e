package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// RunSerializable runs fn inside a SERIALIZABLE transaction on tx
// Conflicting concurrent transactions surface as 40001 on some statement or on commit
func RunSerializable(ctx context.Context, tx TxRunner, fn func(ctx context.Context, q RowQuerier) error) error {
	ctx = WithIsolation(ctx, pgx.Serializable)
	return tx.Tx(ctx, func(q RowQuerier) error {
		return fn(ctx, q)
	})
}

// RunReadOnly runs fn in a REPEATABLE READ transaction so multi-statement reads see one snapshot
func RunReadOnly(ctx context.Context, tx TxRunner, fn func(ctx context.Context, q RowQuerier) error) error {
	ctx = WithIsolation(ctx, pgx.RepeatableRead)
	return tx.Tx(ctx, func(q RowQuerier) error {
		return fn(ctx, q)
	})
}
