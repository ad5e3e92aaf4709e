package store

import (
	"changeflow/internal/platform/logger"
	"changeflow/internal/platform/store/pg"
)

// Option configures a Store while it is opened
type Option func(*Store) error

// WithLogger routes store and sql trace logs to log
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// WithPoolOptions adjusts the pgx pool config; ignored when postgres is disabled
func WithPoolOptions(opts ...pg.PoolOption) Option {
	return func(s *Store) error {
		s.poolOpts = append(s.poolOpts, opts...)
		return nil
	}
}
