// Package module implements the reply module
package module

import (
	"changeflow/internal/modkit"
	"changeflow/internal/services/reply/domain"
	"changeflow/internal/services/reply/service"
)

// Ports exposed by the reply module
type Ports struct {
	Reply domain.ReplyPort
}

// Module implements modkit.Module
type Module struct {
	name  string
	opts  Options
	ports Ports
}

// New constructs a new reply module; it panics unless the comments and
// attention ports are injected with WithDepsModules or WithPorts(domain.Deps)
func New(deps modkit.Deps, mopts ...modkit.Option) *Module {
	b := modkit.Build(mopts...)

	d, ok := b.Ports.(domain.Deps)
	if !ok {
		panic("reply module: expected WithPorts(reply/domain.Deps)")
	}
	if d.Comments == nil || d.Threads == nil || d.Attention == nil {
		panic("reply module: Deps missing Comments, Threads or Attention")
	}

	opts := FromConfig(deps.Cfg)
	svc := service.New(d.Comments, d.Threads, d.Attention, service.NewRules(opts.ServiceUsers...))

	return &Module{
		name:  b.NameOr("reply"),
		opts:  opts,
		ports: Ports{Reply: svc},
	}
}

// Name implements modkit.Module
func (m *Module) Name() string { return m.name }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// Options returns the resolved configuration
func (m *Module) Options() Options { return m.opts }
