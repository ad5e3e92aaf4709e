package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE classes the stores run into
var sqlStateCodes = map[string]ErrorCode{
	"23505": ErrorCodeDuplicateKey, // unique_violation

	"23503": ErrorCodeInvalidArgument, // foreign_key_violation
	"23502": ErrorCodeInvalidArgument, // not_null_violation
	"23514": ErrorCodeInvalidArgument, // check_violation
	"22001": ErrorCodeInvalidArgument, // string_data_right_truncation
	"22P02": ErrorCodeInvalidArgument, // invalid_text_representation

	// two writers on one change; the whole transaction can be recomputed
	"40001": ErrorCodeConflict, // serialization_failure
	"40P01": ErrorCodeConflict, // deadlock_detected
	"55P03": ErrorCodeConflict, // lock_not_available

	"25006": ErrorCodeUnavailable, // read_only_sql_transaction
	"57P03": ErrorCodeUnavailable, // cannot_connect_now
}

// pgx sometimes reports these only as text, e.g. on commit
var retryableText = []string{
	"commit unexpectedly resulted in rollback",
	"deadlock detected",
	"could not serialize access",
	"serialization failure",
	"canceling statement due to lock timeout",
	"could not obtain lock on row",
}

// ExtractPgError finds the *pgconn.PgError at the root of err
func ExtractPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if err != nil && stderrs.As(Root(err), &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsSQLState reports whether err is a postgres error with the given SQLSTATE
func IsSQLState(err error, state string) bool {
	pgErr, ok := ExtractPgError(err)
	return ok && pgErr.Code == state
}

// IsDuplicateKey reports a unique violation
func IsDuplicateKey(err error) bool { return IsSQLState(err, "23505") }

// IsSerializationFailure reports a serialization failure
func IsSerializationFailure(err error) bool { return IsSQLState(err, "40001") }

// IsDeadlock reports a detected deadlock
func IsDeadlock(err error) bool { return IsSQLState(err, "40P01") }

// DBErrorCode maps a postgres error to an ErrorCode
// ok is false when err carries no PgError
func DBErrorCode(err error) (ErrorCode, bool) {
	var pgErr *pgconn.PgError
	if !stderrs.As(err, &pgErr) {
		return ErrorCodeUnknown, false
	}
	if code, found := sqlStateCodes[pgErr.Code]; found {
		return code, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps err with its mapped code and msg; nil stays nil
// The offending column or constraint, when postgres names one, becomes the field
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	out := Wrap(err, code, msg)
	if pgErr, ok := ExtractPgError(err); ok {
		switch {
		case pgErr.ColumnName != "":
			out = WithField(out, pgErr.ColumnName)
		case pgErr.ConstraintName != "":
			out = WithField(out, pgErr.ConstraintName)
		}
	}
	return out
}

// FromPostgresf is FromPostgres with a formatted message
func FromPostgresf(err error, format string, a ...any) error {
	return FromPostgres(err, fmt.Sprintf(format, a...))
}

// IsRetryable reports a transient conflict worth rerunning the transaction for
// Context cancellation is never retryable
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pgErr, ok := ExtractPgError(err); ok {
		return sqlStateCodes[pgErr.Code] == ErrorCodeConflict
	}
	s := strings.ToLower(Root(err).Error())
	for _, t := range retryableText {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
