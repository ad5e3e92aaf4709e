// Package service runs attention operations inside serializable change transactions
package service

import (
	"context"
	"math/rand"
	"time"

	"changeflow/internal/core/attention"
	"changeflow/internal/modkit/repokit"
	perr "changeflow/internal/platform/errors"
	"changeflow/internal/platform/logger"
	"changeflow/internal/platform/store"
	dom "changeflow/internal/services/attention/domain"
	"changeflow/internal/services/attention/repo"
)

// Config for the attention service
type Config struct {
	MaxAttempts int           // whole-transaction attempts on conflict; <=0 -> 1
	Backoff     time.Duration // base backoff between attempts; <=0 -> 50ms
	TxTimeout   time.Duration // applied when ctx has no deadline; 0 disables
}

// Service implements domain.Ports
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
	Cfg    Config
}

// sleep is a seam for tests
var sleep = sleepCtx

// New constructs a new attention service
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage], cfg Config) *Service {
	cfg.MaxAttempts = max(cfg.MaxAttempts, 1)
	if cfg.Backoff <= 0 {
		cfg.Backoff = 50 * time.Millisecond
	}
	return &Service{DB: db, Binder: b, Cfg: cfg}
}

// Apply runs ops in order against a fresh planner inside one serializable
// transaction. When any op reports modified, a change update row and the
// planned events are written. Conflicts recompute the whole transaction
func (s *Service) Apply(ctx context.Context, changeID int64, ops ...attention.Op) (dom.Result, error) {
	if changeID <= 0 {
		return dom.Result{}, perr.WithField(perr.InvalidArgf("change id must be positive, got %d", changeID), "change_id")
	}
	for _, op := range ops {
		if op == nil {
			return dom.Result{}, perr.InvalidArgf("nil attention operation")
		}
		if err := op.Validate(); err != nil {
			return dom.Result{}, err
		}
	}
	if s.DB == nil {
		return dom.Result{}, perr.InvalidStatef("attention service has no database")
	}

	ctx = logger.WithChange(ctx, changeID)
	if _, ok := ctx.Deadline(); !ok && s.Cfg.TxTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Cfg.TxTimeout)
		defer cancel()
	}
	log := logger.C(ctx)

	attempts := max(s.Cfg.MaxAttempts, 1)
	var last error
	for i := range attempts {
		res, err := s.applyOnce(ctx, changeID, ops)
		if err == nil {
			res.Attempts = i + 1
			log.Debug().
				Bool("modified", res.Modified).
				Bool("frozen", res.Frozen).
				Int("events", len(res.Events)).
				Int("attempts", res.Attempts).
				Msg("attention tx committed")
			return res, nil
		}
		last = err

		if !perr.Retryable(err) {
			return dom.Result{}, err
		}
		if i == attempts-1 {
			break
		}

		d := backoffFor(s.Cfg.Backoff, i)
		j := d/2 + time.Duration(rand.Int63n(int64(d/2)+1))
		log.Warn().Err(err).Int("attempt", i+1).Dur("backoff", j).Msg("attention tx conflict, retrying")
		if se := sleep(ctx, j); se != nil {
			return dom.Result{}, perr.Wrap(se, perr.ErrorCodeUnavailable, "attention tx retry interrupted")
		}
	}
	return dom.Result{}, perr.Wrapf(last, perr.ErrorCodeConflict,
		"attention tx on change %d failed after %d attempts", changeID, attempts)
}

const maxBackoff = 2 * time.Second

// backoffFor doubles base once per attempt and stops at maxBackoff
func backoffFor(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := min(base, maxBackoff)
	for range attempt {
		if d >= maxBackoff {
			break
		}
		d = min(2*d, maxBackoff)
	}
	return d
}

func (s *Service) applyOnce(ctx context.Context, changeID int64, ops []attention.Op) (dom.Result, error) {
	var res dom.Result
	err := repokit.InTx(ctx, store.RunSerializable, s.DB, s.Binder, func(ctx context.Context, st repo.Storage) error {
		tx := &attention.Tx{
			ChangeID: changeID,
			Planner:  attention.NewPlanner(),
			Set:      st,
			Messages: st,
		}

		modified := false
		for _, op := range ops {
			m, err := op.Update(ctx, tx)
			if err != nil {
				return err
			}
			modified = modified || m
		}

		res = dom.Result{
			ChangeID: changeID,
			Modified: modified,
			Frozen:   tx.Planner.Vetoed(),
			Events:   tx.Planner.Events(),
		}
		if !modified {
			return nil
		}

		cu, err := st.InsertChangeUpdate(ctx, changeID, res.Frozen)
		if err != nil {
			return err
		}
		res.ChangeUpdateID = cu.ID
		return st.AppendUpdates(ctx, changeID, cu.ID, res.Events)
	})
	if err != nil {
		return dom.Result{}, err
	}
	return res, nil
}

// EffectiveSet implements domain.QueryPort
func (s *Service) EffectiveSet(ctx context.Context, changeID int64) ([]attention.AccountID, error) {
	var out []attention.AccountID
	err := s.read(ctx, func(ctx context.Context, st repo.Storage) (err error) {
		out, err = st.EffectiveSet(ctx, changeID)
		return err
	})
	return out, err
}

// History implements domain.QueryPort
func (s *Service) History(ctx context.Context, changeID int64) ([]dom.Update, error) {
	var out []dom.Update
	err := s.read(ctx, func(ctx context.Context, st repo.Storage) (err error) {
		out, err = st.History(ctx, changeID)
		return err
	})
	return out, err
}

// Messages implements domain.QueryPort
func (s *Service) Messages(ctx context.Context, changeID int64) ([]dom.Message, error) {
	var out []dom.Message
	err := s.read(ctx, func(ctx context.Context, st repo.Storage) (err error) {
		out, err = st.ListMessages(ctx, changeID)
		return err
	})
	return out, err
}

func (s *Service) read(ctx context.Context, fn func(context.Context, repo.Storage) error) error {
	if s.DB == nil {
		return perr.InvalidStatef("attention service has no database")
	}
	return repokit.InTx(ctx, store.RunReadOnly, s.DB, s.Binder, fn)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
