// Package pg opens the pgx pool behind the store
package pg

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config describes one pool
type Config struct {
	URL      string
	MaxConns int32
	AppName  string
	// StatementTimeout is sent as the statement_timeout runtime parameter; 0 keeps the server default
	StatementTimeout time.Duration
	// SlowMs marks traced statements as slow; 0 disables
	SlowMs int
	Tracer QueryTracer
}

// PG holds the pool and its trace settings
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

// PoolOption adjusts the parsed pool config before the pool is created
type PoolOption func(*pgxpool.Config)

var newPool = pgxpool.NewWithConfig

// Open parses cfg.URL, applies cfg and opts, and creates the pool
// The pool connects lazily; callers ping it
func Open(ctx context.Context, cfg Config, opts ...PoolOption) (*PG, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}

	params := pcfg.ConnConfig.RuntimeParams
	if params == nil {
		params = map[string]string{}
		pcfg.ConnConfig.RuntimeParams = params
	}
	if cfg.AppName != "" {
		params["application_name"] = cfg.AppName
	}
	if cfg.StatementTimeout > 0 {
		params["statement_timeout"] = strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10)
	}

	for _, o := range opts {
		if o != nil {
			o(pcfg)
		}
	}

	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	return &PG{Pool: pool, Tracer: cfg.Tracer, SlowMs: cfg.SlowMs}, nil
}

// Close releases the pool; safe on nil
func (p *PG) Close() {
	if p == nil || p.Pool == nil {
		return
	}
	p.Pool.Close()
}
