// Package repo provides the attention set log and change message timeline on Postgres
package repo

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"changeflow/internal/core/attention"
	"changeflow/internal/modkit/repokit"
	perr "changeflow/internal/platform/errors"
	"changeflow/internal/platform/store"
	"changeflow/internal/services/attention/domain"
)

//go:embed migrations/*.up.sql
var migrations embed.FS

// Migrate applies the attention schema
func Migrate(ctx context.Context, tx repokit.TxRunner) error {
	return store.Migrate(ctx, tx, "attention", migrations)
}

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the attention repository
// It is also the effective set reader and message writer handed to attention ops
type Storage interface {
	attention.EffectiveSetReader
	attention.MessageWriter

	InsertChangeUpdate(ctx context.Context, changeID int64, frozen bool) (domain.ChangeUpdate, error)
	AppendUpdates(ctx context.Context, changeID, changeUpdateID int64, evs []attention.Event) error
	History(ctx context.Context, changeID int64) ([]domain.Update, error)
	ListMessages(ctx context.Context, changeID int64) ([]domain.Message, error)
}

// EffectiveSet implements Storage
// The latest change update touching an account wins. Within one change update
// the first event for the account wins, so a manual removal queued ahead of an
// automatic re-add keeps the account out. The account attends iff it is an ADD
func (s *pg) EffectiveSet(ctx context.Context, changeID int64) ([]attention.AccountID, error) {
	ids, err := store.Many(ctx, s.q, scanAccount, `
		SELECT account_id FROM (
			SELECT DISTINCT ON (account_id) account_id, operation
			FROM attention_set_updates
			WHERE change_id = $1
			ORDER BY account_id, change_update_id DESC, seq ASC
		) latest
		WHERE operation = 'ADD'
		ORDER BY account_id`, changeID)
	if err != nil {
		return nil, perr.FromPostgresf(err, "effective attention set of change %d", changeID)
	}
	return ids, nil
}

// AppendMessage implements Storage
func (s *pg) AppendMessage(ctx context.Context, changeID int64, text string) error {
	err := store.ExecOne(ctx, s.q,
		`INSERT INTO change_messages (change_id, text) VALUES ($1, $2)`, changeID, text)
	return perr.FromPostgresf(err, "append message to change %d", changeID)
}

// InsertChangeUpdate implements Storage
func (s *pg) InsertChangeUpdate(ctx context.Context, changeID int64, frozen bool) (domain.ChangeUpdate, error) {
	cu := domain.ChangeUpdate{ChangeID: changeID, Frozen: frozen}
	err := s.q.QueryRow(ctx, `
		INSERT INTO change_updates (change_id, frozen) VALUES ($1, $2)
		RETURNING id, created_at`, changeID, frozen).Scan(&cu.ID, &cu.CreatedAt)
	if err != nil {
		return domain.ChangeUpdate{}, perr.FromPostgresf(err, "record update of change %d", changeID)
	}
	return cu, nil
}

// AppendUpdates implements Storage
// Events keep their planned order through seq
func (s *pg) AppendUpdates(ctx context.Context, changeID, changeUpdateID int64, evs []attention.Event) error {
	if len(evs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO attention_set_updates
		(change_id, change_update_id, seq, account_id, operation, reason) VALUES `)

	args := make([]any, 0, len(evs)*6)
	for i, ev := range evs {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*6 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d)",
			base, base+1, base+2, base+3, base+4, base+5)
		args = append(args, changeID, changeUpdateID, i, int64(ev.Account), string(ev.Op), ev.Reason)
	}

	tag, err := s.q.Exec(ctx, sb.String(), args...)
	if err != nil {
		return perr.FromPostgresf(err, "append %d attention updates to change %d", len(evs), changeID)
	}
	if n := tag.RowsAffected(); n != int64(len(evs)) {
		return perr.DBf("append attention updates: wrote %d of %d rows", n, len(evs))
	}
	return nil
}

// History implements Storage
func (s *pg) History(ctx context.Context, changeID int64) ([]domain.Update, error) {
	out, err := store.Many(ctx, s.q, scanUpdate, `
		SELECT id, change_id, change_update_id, seq, account_id, operation, reason, created_at
		FROM attention_set_updates
		WHERE change_id = $1
		ORDER BY change_update_id, seq`, changeID)
	if err != nil {
		return nil, perr.FromPostgresf(err, "attention history of change %d", changeID)
	}
	return out, nil
}

// ListMessages implements Storage
func (s *pg) ListMessages(ctx context.Context, changeID int64) ([]domain.Message, error) {
	out, err := store.Many(ctx, s.q, func(r store.Row) (domain.Message, error) {
		var m domain.Message
		err := r.Scan(&m.ID, &m.ChangeID, &m.Text, &m.CreatedAt)
		return m, err
	}, `
		SELECT id, change_id, text, created_at
		FROM change_messages
		WHERE change_id = $1
		ORDER BY id`, changeID)
	if err != nil {
		return nil, perr.FromPostgresf(err, "messages of change %d", changeID)
	}
	return out, nil
}

func scanAccount(r store.Row) (attention.AccountID, error) {
	var id int64
	err := r.Scan(&id)
	return attention.AccountID(id), err
}

func scanUpdate(r store.Row) (domain.Update, error) {
	var (
		u  domain.Update
		id int64
		op string
	)
	if err := r.Scan(&u.ID, &u.ChangeID, &u.ChangeUpdateID, &u.Seq, &id, &op, &u.Reason, &u.CreatedAt); err != nil {
		return domain.Update{}, err
	}
	u.Account = attention.AccountID(id)
	u.Op = attention.Operation(op)
	return u, nil
}
