package repokit

import (
	"context"
	"errors"
	"testing"

	perr "changeflow/internal/platform/errors"
	"changeflow/internal/platform/store"

	"github.com/jackc/pgx/v5"
)

// notes is a toy repository bound per transaction
type notes struct{ q Queryer }

func (n notes) Add(ctx context.Context, text string) error {
	_, err := n.q.Exec(ctx, "INSERT INTO notes (text) VALUES ($1)", text)
	return err
}

var notesBinder = BindFunc[notes](func(q Queryer) notes { return notes{q: q} })

func TestInTx_BindsRepoToTransaction(t *testing.T) {
	t.Parallel()

	tx := newRecTx()
	err := InTx(context.Background(), nil, tx, notesBinder, func(ctx context.Context, n notes) error {
		if n.q != Queryer(tx.recQ) {
			t.Fatalf("repo bound to %T, want the tx queryer", n.q)
		}
		return n.Add(ctx, "hello")
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
	if tx.txs != 1 || len(tx.sqls) != 1 {
		t.Fatalf("txs = %d, sqls = %v", tx.txs, tx.sqls)
	}
	if _, ok := store.Isolation(tx.lastCtx); ok {
		t.Fatalf("Plain must not set an isolation level")
	}
}

func TestInTx_UsesRunner(t *testing.T) {
	t.Parallel()

	tx := newRecTx()
	err := InTx(context.Background(), store.RunSerializable, tx, notesBinder, func(context.Context, notes) error { return nil })
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
	if lvl, ok := store.Isolation(tx.lastCtx); !ok || lvl != pgx.Serializable {
		t.Fatalf("isolation = %v, %v", lvl, ok)
	}
}

func TestInTx_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	noop := func(context.Context, notes) error { return nil }

	if err := InTx(ctx, nil, nil, notesBinder, noop); !perr.IsCode(err, perr.ErrorCodeInvalidState) {
		t.Fatalf("nil tx: %v", err)
	}
	if err := InTx[notes](ctx, nil, newRecTx(), nil, noop); !perr.IsCode(err, perr.ErrorCodeInvalidState) {
		t.Fatalf("nil binder: %v", err)
	}

	boom := errors.New("boom")
	if err := InTx(ctx, nil, newRecTx(), notesBinder, func(context.Context, notes) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("fn error: %v", err)
	}
	commitErr := errors.New("commit failed")
	tx := newRecTx()
	tx.err = commitErr
	if err := InTx(ctx, nil, tx, notesBinder, noop); !errors.Is(err, commitErr) {
		t.Fatalf("tx error: %v", err)
	}
}
