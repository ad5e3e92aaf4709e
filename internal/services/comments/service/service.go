// Package service provides comment publishing and thread reconstruction
package service

import (
	"context"
	"time"

	"changeflow/internal/core/commentgraph"
	"changeflow/internal/core/normalize"
	"changeflow/internal/modkit/repokit"
	perr "changeflow/internal/platform/errors"
	"changeflow/internal/platform/logger"
	"changeflow/internal/platform/store"
	"changeflow/internal/platform/validate"
	"changeflow/internal/services/comments/domain"
	"changeflow/internal/services/comments/repo"
)

// Config for the comments service
type Config struct {
	// HardLimit caps the comments read per change; defaults to 10000 if <=0
	HardLimit int
}

// Service implements domain.WriterPort and domain.QueryPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
	Cfg    Config

	now func() time.Time
}

// New constructs a new comments service
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage], cfg Config) *Service {
	if cfg.HardLimit <= 0 {
		cfg.HardLimit = 10000
	}
	return &Service{DB: db, Binder: b, Cfg: cfg, now: time.Now}
}

// Post implements domain.WriterPort
// The message is normalized before it is checked and stored
func (s *Service) Post(ctx context.Context, in domain.NewComment) (commentgraph.Comment, error) {
	if err := validate.Struct(in); err != nil {
		return commentgraph.Comment{}, err
	}
	msg := normalize.Text(in.Message)
	if msg == "" {
		return commentgraph.Comment{}, perr.WithField(perr.InvalidArgf("message must not be blank"), "message")
	}
	if s.DB == nil {
		return commentgraph.Comment{}, perr.InvalidStatef("comments service has no database")
	}

	c := commentgraph.Comment{
		UUID:       in.UUID,
		ParentUUID: in.ParentUUID,
		WrittenOn:  in.WrittenOn,
		Human:      in.Human,
		Resolved:   in.Resolved,
		Author:     in.Author,
		Message:    msg,
	}
	if c.WrittenOn.IsZero() && s.now != nil {
		c.WrittenOn = s.now().UTC()
	}

	var out commentgraph.Comment
	err := repokit.InTx(ctx, repokit.Plain, s.DB, s.Binder, func(ctx context.Context, st repo.Storage) error {
		var err error
		out, err = st.Insert(ctx, in.ChangeID, c)
		return err
	})
	if err != nil {
		return commentgraph.Comment{}, err
	}
	logger.C(logger.WithChange(ctx, in.ChangeID)).Debug().
		Str("uuid", out.UUID).
		Str("parent_uuid", out.ParentUUID).
		Msg("comment published")
	return out, nil
}

// Comments implements domain.QueryPort
func (s *Service) Comments(ctx context.Context, changeID int64) ([]commentgraph.Comment, error) {
	if changeID <= 0 {
		return nil, perr.WithField(perr.InvalidArgf("change id must be positive, got %d", changeID), "change_id")
	}
	if s.DB == nil {
		return nil, perr.InvalidStatef("comments service has no database")
	}

	var rows []commentgraph.Comment
	err := repokit.InTx(ctx, store.RunReadOnly, s.DB, s.Binder, func(ctx context.Context, st repo.Storage) error {
		var err error
		// one extra row tells a full page from an overflowing one
		rows, err = st.ListByChange(ctx, changeID, s.Cfg.HardLimit+1)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(rows) > s.Cfg.HardLimit {
		return nil, perr.InvalidArgf("change %d has more than %d comments", changeID, s.Cfg.HardLimit)
	}
	return rows, nil
}

// Threads implements domain.QueryPort
func (s *Service) Threads(ctx context.Context, changeID int64) ([]commentgraph.Thread, error) {
	rows, err := s.Comments(ctx, changeID)
	if err != nil {
		return nil, err
	}
	threads, err := commentgraph.ForComments(rows)
	if err != nil {
		return nil, perr.WithOp(err, "comments.threads")
	}
	return threads, nil
}

// RepliedThreads implements domain.QueryPort
func (s *Service) RepliedThreads(ctx context.Context, changeID int64, uuids []string) ([]commentgraph.Thread, error) {
	if len(uuids) == 0 {
		return nil, nil
	}
	threads, err := s.Threads(ctx, changeID)
	if err != nil {
		return nil, err
	}
	return commentgraph.ThreadsForChildren(threads, uuids), nil
}
