// Package repokit binds repositories to transactions for service code
package repokit

import (
	"context"

	perr "changeflow/internal/platform/errors"
	"changeflow/internal/platform/store"
)

// Queryer is the minimal read and write surface for SQL repos
type Queryer = store.RowQuerier

// TxRunner can execute a function inside a transaction
type TxRunner = store.TxRunner

type (
	// Rows are the result set of a query
	Rows = store.Rows

	// Row is a single row result from a query
	Row = store.Row

	// CommandTag is the result of a command that modifies data
	CommandTag = store.CommandTag
)

// Runner opens a transaction of one shape and runs fn in it
// store.RunSerializable and store.RunReadOnly are Runners
type Runner func(ctx context.Context, tx TxRunner, fn func(ctx context.Context, q Queryer) error) error

// Plain runs fn in a transaction at whatever isolation ctx carries
func Plain(ctx context.Context, tx TxRunner, fn func(ctx context.Context, q Queryer) error) error {
	return tx.Tx(ctx, func(q Queryer) error { return fn(ctx, q) })
}

// InTx binds b to a transaction opened by run and hands the repo to fn
// A nil run means Plain; a nil tx fails with InvalidState
func InTx[T any](ctx context.Context, run Runner, tx TxRunner, b Binder[T], fn func(ctx context.Context, repo T) error) error {
	if tx == nil {
		return perr.InvalidStatef("no database configured")
	}
	if b == nil {
		return perr.InvalidStatef("no repository binder configured")
	}
	if run == nil {
		run = Plain
	}
	return run(ctx, tx, func(ctx context.Context, q Queryer) error {
		return fn(ctx, b.Bind(q))
	})
}
