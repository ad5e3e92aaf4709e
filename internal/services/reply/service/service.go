// Package service publishes replies on a change: comments first, then the
// attention set updates the reply implies
package service

import (
	"context"

	"changeflow/internal/core/commentgraph"
	perr "changeflow/internal/platform/errors"
	"changeflow/internal/platform/logger"
	"changeflow/internal/platform/validate"
	attdom "changeflow/internal/services/attention/domain"
	cdom "changeflow/internal/services/comments/domain"
	"changeflow/internal/services/reply/domain"
)

// Service implements domain.ReplyPort
type Service struct {
	Comments  cdom.WriterPort
	Threads   cdom.QueryPort
	Attention attdom.WriterPort
	Rules     Rules
}

// New constructs a new reply service
func New(comments cdom.WriterPort, threads cdom.QueryPort, att attdom.WriterPort, rules Rules) *Service {
	return &Service{Comments: comments, Threads: threads, Attention: att, Rules: rules}
}

// Reply validates in, publishes its comments and applies the resulting
// attention operations in one attention transaction
//
// Comments are committed before the attention transaction runs; a failed
// attention update leaves them published
func (s *Service) Reply(ctx context.Context, in domain.Input) (domain.Result, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Result{}, perr.WithOp(err, "reply")
	}
	if err := s.Rules.Check(in); err != nil {
		return domain.Result{}, perr.WithOp(err, "reply")
	}
	if s.Comments == nil || s.Threads == nil || s.Attention == nil {
		return domain.Result{}, perr.InvalidStatef("reply service is not wired")
	}

	ctx = logger.WithActor(logger.WithChange(ctx, in.ChangeID), in.Actor)
	log := logger.C(ctx)

	posted := make([]commentgraph.Comment, 0, len(in.Comments))
	for _, ci := range in.Comments {
		c, err := s.Comments.Post(ctx, cdom.NewComment{
			ChangeID:   in.ChangeID,
			UUID:       ci.UUID,
			ParentUUID: ci.ParentUUID,
			Author:     in.Actor,
			Human:      true,
			Resolved:   resolved(ci.Unresolved),
			Message:    ci.Message,
		})
		if err != nil {
			return domain.Result{}, err
		}
		posted = append(posted, c)
	}

	var replied []commentgraph.Thread
	if len(posted) > 0 {
		uuids := make([]string, len(posted))
		for i, c := range posted {
			uuids[i] = c.UUID
		}
		var err error
		if replied, err = s.Threads.RepliedThreads(ctx, in.ChangeID, uuids); err != nil {
			return domain.Result{}, err
		}
	}

	ops, err := s.Rules.Plan(in, posted, replied)
	if err != nil {
		return domain.Result{}, err
	}
	ar, err := s.Attention.Apply(ctx, in.ChangeID, ops...)
	if err != nil {
		return domain.Result{}, err
	}

	log.Info().
		Int64("actor", in.Actor).
		Int("comments", len(posted)).
		Int("threads", len(replied)).
		Int("ops", len(ops)).
		Int("events", len(ar.Events)).
		Bool("frozen", ar.Frozen).
		Msg("reply posted")
	return domain.Result{Comments: posted, Attention: ar}, nil
}

func resolved(unresolved *bool) *bool {
	if unresolved == nil {
		return nil
	}
	r := !*unresolved
	return &r
}
