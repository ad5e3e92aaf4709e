package modkit

import "changeflow/internal/modkit/repokit"

// Built is a plain struct with the fields modules care about
type Built struct {
	Name    string
	Ports   any
	TxHooks []repokit.BeginHook
}

// Build applies Option funcs to an internal buildCfg and returns a plain struct
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	return Built{
		Name:    c.name,
		Ports:   c.ports,
		TxHooks: append([]repokit.BeginHook(nil), c.txHooks...),
	}
}

// NameOr returns the configured name or def when none was set
func (b Built) NameOr(def string) string {
	if b.Name == "" {
		return def
	}
	return b.Name
}

// Runner wraps tx with the configured begin hooks; tx is returned as is when there are none
func (b Built) Runner(tx repokit.TxRunner) repokit.TxRunner {
	if tx == nil || len(b.TxHooks) == 0 {
		return tx
	}
	return repokit.WithBeginHooks(tx, b.TxHooks...)
}
