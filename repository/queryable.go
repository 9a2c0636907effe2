package repository

import (
	"context"
	"errors"
	"fmt"

	"bankroll/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Queryable is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so the
// same repository code runs standalone or inside a unit of work.
type Queryable interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres error codes that mean "another writer got there first":
// lock timeout, serialization failure, deadlock victim.
const (
	pgCodeLockNotAvailable     = "55P03"
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"
)

// mapConcurrencyError converts transient locking failures into the retryable
// domain error; everything else passes through unchanged.
func mapConcurrencyError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeLockNotAvailable, pgCodeSerializationFailure, pgCodeDeadlockDetected:
			return fmt.Errorf("%w: %v", service.ErrConcurrentModification, err)
		}
	}
	return err
}
