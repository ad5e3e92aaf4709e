package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func pg(code string) *pgconn.PgError {
	return &pgconn.PgError{Code: code}
}

func TestDBErrorCodeMappings(t *testing.T) {
	cases := []struct {
		code string
		want ErrorCode
	}{
		{"23505", ErrorCodeDuplicateKey},    // unique violation
		{"23503", ErrorCodeInvalidArgument}, // fk violation -> invalid input
		{"23502", ErrorCodeInvalidArgument}, // not null
		{"23514", ErrorCodeInvalidArgument}, // check (operation enum)
		{"22P02", ErrorCodeInvalidArgument}, // invalid text representation
		{"40001", ErrorCodeConflict},        // serialization failure
		{"40P01", ErrorCodeConflict},        // deadlock
		{"55P03", ErrorCodeConflict},        // lock not available
		{"25006", ErrorCodeUnavailable},     // read-only
		{"57P03", ErrorCodeUnavailable},     // cannot connect now
		{"XXXXX", ErrorCodeDB},              // default branch
	}
	for _, c := range cases {
		got, ok := DBErrorCode(pg(c.code))
		if !ok {
			t.Fatalf("expected ok for PgError code %s", c.code)
		}
		if got != c.want {
			t.Fatalf("DBErrorCode(%s) = %v, want %v", c.code, got, c.want)
		}
	}

	if _, ok := DBErrorCode(stderrs.New("nope")); ok {
		t.Fatalf("DBErrorCode should return ok=false for non-pg error")
	}
}

func TestFromPostgres(t *testing.T) {
	if FromPostgres(nil, "x") != nil {
		t.Fatalf("FromPostgres(nil) should be nil")
	}
	if FromPostgresf(nil, "x %d", 1) != nil {
		t.Fatalf("FromPostgresf(nil) should be nil")
	}

	err := FromPostgresf(pg("23505"), "insert update %d", 7)
	if !IsCode(err, ErrorCodeDuplicateKey) {
		t.Fatalf("code = %v, want duplicate_key", CodeOf(err))
	}
	if !IsDuplicateKey(err) {
		t.Fatalf("IsDuplicateKey should see through the wrap")
	}

	check := FromPostgres(&pgconn.PgError{Code: "23514", ConstraintName: "attention_set_updates_reason_check"}, "append")
	if e, ok := As(check); !ok || e.Field() != "attention_set_updates_reason_check" || !IsCode(check, ErrorCodeInvalidArgument) {
		t.Fatalf("check violation = %#v", check)
	}
	notNull := FromPostgres(&pgconn.PgError{Code: "23502", ColumnName: "message", ConstraintName: "ignored"}, "insert")
	if e, _ := As(notNull); e.Field() != "message" {
		t.Fatalf("column should win over constraint, got %q", e.Field())
	}

	foreign := FromPostgres(stderrs.New("socket closed"), "append")
	if !IsCode(foreign, ErrorCodeDB) {
		t.Fatalf("non-pg error should map to db, got %v", CodeOf(foreign))
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(pg("40001")) {
		t.Fatalf("40001 should be retryable")
	}
	if !IsRetryable(fmt.Errorf("commit: %w", pg("40P01"))) {
		t.Fatalf("wrapped deadlock should be retryable")
	}
	if !IsRetryable(pg("55P03")) {
		t.Fatalf("55P03 should be retryable")
	}
	if !IsRetryable(stderrs.New("commit unexpectedly resulted in rollback")) {
		t.Fatalf("commit rollback text should be retryable")
	}
	if IsRetryable(pg("23505")) {
		t.Fatalf("23505 should not be retryable")
	}
	if IsRetryable(stderrs.New("nope")) {
		t.Fatalf("non-pg error should not be retryable")
	}
	if IsRetryable(context.Canceled) || IsRetryable(nil) {
		t.Fatalf("cancellation and nil are not retryable")
	}
	if !Retryable(pg("40001")) || !IsSerializationFailure(pg("40001")) || !IsDeadlock(pg("40P01")) {
		t.Fatalf("predicates disagree with IsRetryable")
	}
}
