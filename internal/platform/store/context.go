package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type isolationKey struct{}

// WithIsolation asks the next Tx started under ctx to use the given level
func WithIsolation(ctx context.Context, level pgx.TxIsoLevel) context.Context {
	return context.WithValue(ctx, isolationKey{}, level)
}

// Isolation returns the level requested by WithIsolation, if any
func Isolation(ctx context.Context) (pgx.TxIsoLevel, bool) {
	v, ok := ctx.Value(isolationKey{}).(pgx.TxIsoLevel)
	return v, ok && v != ""
}

// txOptions derives pgx begin options from ctx; server default when unset
func txOptions(ctx context.Context) pgx.TxOptions {
	if lvl, ok := Isolation(ctx); ok {
		return pgx.TxOptions{IsoLevel: lvl}
	}
	return pgx.TxOptions{}
}
