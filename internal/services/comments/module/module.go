// Package module wires the comments service
package module

import (
	"context"

	"changeflow/internal/modkit"
	"changeflow/internal/services/comments/domain"
	"changeflow/internal/services/comments/repo"
	"changeflow/internal/services/comments/service"
)

// Ports exposed by the comments module
type Ports struct {
	Writer domain.WriterPort
	Query  domain.QueryPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	name  string
	ports Ports
}

// New constructs a new comments module
func New(deps modkit.Deps, mopts ...modkit.Option) *Module {
	opts := FromConfig(deps.Cfg)
	b := modkit.Build(mopts...)

	svc := service.New(b.Runner(deps.PG), repo.NewPG(), service.Config{
		HardLimit: opts.HardLimit,
	})

	m := &Module{deps: deps, name: b.NameOr("comments")}
	m.ports = Ports{Writer: svc, Query: svc}
	return m
}

// Name implements modkit.Module
func (m *Module) Name() string { return m.name }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// Migrate applies the comments schema
func (m *Module) Migrate(ctx context.Context) error { return repo.Migrate(ctx, m.deps.PG) }
