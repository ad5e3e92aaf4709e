package modkit

import "changeflow/internal/modkit/repokit"

// Option mutates build configuration for a module
type Option func(*buildCfg)

// buildCfg is internal wiring state for options
type buildCfg struct {
	name    string
	ports   any
	txHooks []repokit.BeginHook
}

// WithName overrides the module name used in logs and registry
func WithName(name string) Option {
	return func(c *buildCfg) { c.name = name }
}

// WithPorts injects cross module ports declared by another module
// the concrete type is owned by the importing module
func WithPorts[T any](p T) Option {
	return func(c *buildCfg) { c.ports = p }
}

// WithTxHooks adds hooks run at the start of every module transaction
func WithTxHooks(hooks ...repokit.BeginHook) Option {
	return func(c *buildCfg) { c.txHooks = append(c.txHooks, hooks...) }
}
