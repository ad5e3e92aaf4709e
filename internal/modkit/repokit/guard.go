package repokit

import (
	"context"
	"time"

	perr "changeflow/internal/platform/errors"
)

// Guarder reports whether a dependency is ready
type Guarder interface {
	Guard(context.Context) error
}

// Guard checks that the named dependency answers within timeout
// An existing deadline on ctx wins over timeout
func Guard(ctx context.Context, name string, g Guarder, timeout time.Duration) error {
	if g == nil {
		return perr.InvalidStatef("%s: nil dependency", name)
	}
	if _, ok := ctx.Deadline(); !ok && timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := g.Guard(ctx); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s not ready", name)
	}
	return nil
}
