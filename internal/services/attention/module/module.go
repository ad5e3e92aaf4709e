// Package module wires the attention service
package module

import (
	"context"

	"changeflow/internal/modkit"
	"changeflow/internal/modkit/repokit"
	"changeflow/internal/services/attention/domain"
	"changeflow/internal/services/attention/repo"
	"changeflow/internal/services/attention/service"
)

// Ports exposed by the attention module
type Ports struct {
	Writer domain.WriterPort
	Query  domain.QueryPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	name  string
	opts  Options
	ports Ports
}

// New constructs a new attention module
func New(deps modkit.Deps, mopts ...modkit.Option) *Module {
	opts := FromConfig(deps.Cfg)

	hooks := []repokit.BeginHook{}
	if opts.LockTimeout > 0 {
		hooks = append(hooks, repokit.LockTimeout(opts.LockTimeout))
	}
	b := modkit.Build(append([]modkit.Option{modkit.WithTxHooks(hooks...)}, mopts...)...)

	svc := service.New(b.Runner(deps.PG), repo.NewPG(), service.Config{
		MaxAttempts: opts.MaxAttempts,
		Backoff:     opts.Backoff,
		TxTimeout:   opts.TxTimeout,
	})

	m := &Module{deps: deps, name: b.NameOr("attention"), opts: opts}
	m.ports = Ports{Writer: svc, Query: svc}
	return m
}

// Name implements modkit.Module
func (m *Module) Name() string { return m.name }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// Options returns the resolved configuration
func (m *Module) Options() Options { return m.opts }

// Migrate applies the attention schema
func (m *Module) Migrate(ctx context.Context) error { return repo.Migrate(ctx, m.deps.PG) }
