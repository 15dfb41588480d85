package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

// Retrier retries operations that fail with a transient PostgreSQL error
// (serialization failure or deadlock) using exponential backoff. Permanent
// errors pass through on the first attempt.
type Retrier struct {
	maxElapsed time.Duration
}

// NewRetrier creates a new Retrier. maxElapsed bounds the total time spent
// retrying one operation.
func NewRetrier(maxElapsed time.Duration) *Retrier {
	return &Retrier{maxElapsed: maxElapsed}
}

// Retry runs operation, retrying while it fails transiently.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxElapsedTime = r.maxElapsed

	return backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		if isTransient(err) {
			return err
		}

		return backoff.Permanent(err)
	}, backoff.WithContext(bo, ctx))
}

func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	return pgErr.Code == serializationFailure || pgErr.Code == deadlockDetected
}
