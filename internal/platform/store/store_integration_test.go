//go:build integration_pg

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	perr "changeflow/internal/platform/errors"
	"changeflow/internal/platform/store"
	"changeflow/internal/platform/store/pgtest"
)

func TestTxCommitRollbackAndIsolation(t *testing.T) {
	db := pgtest.Open(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := db.Exec(ctx, `create table kv (k text primary key, v int not null)`); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := store.RunSerializable(ctx, db, func(ctx context.Context, q store.RowQuerier) error {
		lvl, err := store.Scalar[string](ctx, q, `select current_setting('transaction_isolation')`)
		if err != nil {
			return err
		}
		if lvl != "serializable" {
			t.Errorf("isolation = %q, want serializable", lvl)
		}
		return store.ExecOne(ctx, q, `insert into kv (k, v) values ('a', 1)`)
	})
	if err != nil {
		t.Fatalf("serializable tx: %v", err)
	}

	boom := errors.New("abort")
	err = db.Tx(ctx, func(q store.RowQuerier) error {
		if _, err := q.Exec(ctx, `insert into kv (k, v) values ('b', 2)`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("rollback tx = %v", err)
	}

	n, err := store.Scalar[int64](ctx, db, `select count(*) from kv`)
	if err != nil || n != 1 {
		t.Fatalf("rows after rollback = %d, %v", n, err)
	}

	_, err = db.Exec(ctx, `insert into kv (k, v) values ('a', 3)`)
	if !perr.IsDuplicateKey(err) {
		t.Fatalf("duplicate insert = %v", err)
	}

	if p, ok := db.(store.Pinger); !ok || p.Ping(ctx) != nil {
		t.Fatalf("adapter should answer Ping")
	}
}
