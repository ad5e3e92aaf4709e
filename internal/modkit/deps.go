package modkit

import (
	"changeflow/internal/modkit/repokit"
	"changeflow/internal/platform/config"
	"changeflow/internal/platform/logger"
	"changeflow/internal/platform/store"
)

// Deps is what every module receives
// PG is nil when postgres is disabled; modules check before use
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
}

// DepsFrom builds Deps over an opened store
func DepsFrom(st *store.Store, cfg config.Conf, log logger.Logger) Deps {
	d := Deps{Log: log, Cfg: cfg}
	if st != nil {
		d.PG = st.PG
	}
	return d
}
