// Package modkit wires service modules from shared deps and options
package modkit

import (
	"context"
	"fmt"

	"changeflow/internal/modkit/module"
)

// Module is a service module exposing ports
type Module = module.Module

// Builder constructs a Module from shared deps and options
type Builder func(Deps, ...Option) Module

// Migrator is a module that owns a schema
type Migrator interface {
	Migrate(ctx context.Context) error
}

// MigrateAll migrates every module that owns a schema, in order
// Modules without a schema are skipped
func MigrateAll(ctx context.Context, ms ...Module) error {
	for _, m := range ms {
		mg, ok := m.(Migrator)
		if !ok {
			continue
		}
		if err := mg.Migrate(ctx); err != nil {
			return fmt.Errorf("%s migrations: %w", m.Name(), err)
		}
	}
	return nil
}
