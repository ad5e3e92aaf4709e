package store

import (
	"context"
	"io/fs"
	"path"
	"sort"
	"strings"

	perr "changeflow/internal/platform/errors"
	"changeflow/internal/platform/logger"
)

const ensureMigrationsSQL = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// Migrate applies every *.up.sql file of fsys in lexical order, once each
// Versions are recorded as "<scope>/<file>" so several packages can share
// the schema_migrations table
func Migrate(ctx context.Context, tx TxRunner, scope string, fsys fs.FS) error {
	if tx == nil {
		return perr.InvalidStatef("migrate %s: postgres is not configured", scope)
	}
	files, err := migrationFiles(fsys)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "migrate %s: list files", scope)
	}
	if _, err := tx.Exec(ctx, ensureMigrationsSQL); err != nil {
		return perr.FromPostgres(err, "ensure schema_migrations")
	}

	log := logger.C(ctx).With().Str("scope", scope).Logger()
	for _, file := range files {
		version := scope + "/" + path.Base(file)
		body, err := fs.ReadFile(fsys, file)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnknown, "read migration %s", version)
		}

		applied := false
		err = tx.Tx(ctx, func(q RowQuerier) error {
			done, err := Scalar[bool](ctx, q, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version)
			if err != nil || done {
				return err
			}
			if _, err := q.Exec(ctx, string(body)); err != nil {
				return err
			}
			if _, err := q.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
				return err
			}
			applied = true
			return nil
		})
		if err != nil {
			return perr.FromPostgresf(err, "apply migration %s", version)
		}
		if applied {
			log.Info().Str("version", version).Msg("migration applied")
		}
	}
	return nil
}

func migrationFiles(fsys fs.FS) ([]string, error) {
	var files []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".up.sql") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return path.Base(files[i]) < path.Base(files[j]) })
	return files, nil
}
