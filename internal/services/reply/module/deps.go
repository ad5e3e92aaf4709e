package module

import (
	"changeflow/internal/modkit"
	mmodule "changeflow/internal/modkit/module"
	attmod "changeflow/internal/services/attention/module"
	cmod "changeflow/internal/services/comments/module"
	"changeflow/internal/services/reply/domain"
)

// WithDepsModules extracts the reply dependencies from the comments and
// attention modules
func WithDepsModules(comments, attention mmodule.Module) modkit.Option {
	cp := mmodule.MustPortsOf[cmod.Ports](comments)
	ap := mmodule.MustPortsOf[attmod.Ports](attention)
	return modkit.WithPorts(domain.Deps{
		Comments:  cp.Writer,
		Threads:   cp.Query,
		Attention: ap.Writer,
	})
}
