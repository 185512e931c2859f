package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/utafrali/StorefrontGo/pkg/errors"
)

const (
	defaultTxMaxAttempts = 3
	defaultTxRetryBase   = 100 * time.Millisecond
)

// TxOptions tunes the retry behavior of a TxRunner.
type TxOptions struct {
	// MaxAttempts is the total number of times a transaction is tried,
	// including the first attempt. Values below 1 fall back to the default.
	MaxAttempts int
	// RetryBase is the backoff before the second attempt; it doubles on each
	// subsequent attempt and carries ±25% jitter.
	RetryBase time.Duration
}

// TxRunner executes a callback inside a database transaction and retries the
// whole transaction when it fails for transient infrastructure reasons
// (connection loss, serialization failure, deadlock). Business errors returned
// by the callback abort the transaction immediately and are never retried.
type TxRunner struct {
	db     DBTX
	logger *slog.Logger
	opts   TxOptions
}

// NewTxRunner creates a TxRunner over the given pool handle.
func NewTxRunner(db DBTX, logger *slog.Logger, opts TxOptions) *TxRunner {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = defaultTxMaxAttempts
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = defaultTxRetryBase
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TxRunner{db: db, logger: logger, opts: opts}
}

// InTx runs fn inside a transaction. On any error from fn the transaction is
// rolled back; on success it is committed. Transient failures (from Begin,
// fn, or Commit) are retried up to MaxAttempts with exponential backoff, and
// each retry starts a fresh transaction so no partial writes survive a failed
// attempt. When all attempts are exhausted the caller receives a service
// unavailable error wrapping the last failure.
func (r *TxRunner) InTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	var lastErr error
	for attempt := 0; attempt < r.opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			wait := r.retryBackoff(attempt - 1)
			r.logger.WarnContext(ctx, "transaction failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", r.opts.MaxAttempts),
				slog.Duration("backoff", wait),
				slog.String("error", lastErr.Error()),
			)
			select {
			case <-ctx.Done():
				return fmt.Errorf("transaction: context canceled during retry: %w", ctx.Err())
			case <-time.After(wait):
			}
		}

		err := r.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		lastErr = err
	}

	return apperrors.Unavailable(
		fmt.Sprintf("transaction failed after %d attempts", r.opts.MaxAttempts),
		lastErr,
	)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *TxRunner) retryBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := r.opts.RetryBase << attempt
	jitter := time.Duration(float64(base) * retryJitterFraction * (2*rand.Float64() - 1)) // #nosec G404 -- non-cryptographic jitter for retry backoff
	return base + jitter
}

// Transient SQLSTATE classes: 08xxx (connection exception), 40001
// (serialization failure), 40P01 (deadlock detected).
func isTransientSQLState(code string) bool {
	return strings.HasPrefix(code, "08") || code == "40001" || code == "40P01"
}

// IsTransient reports whether err looks like a failure that a fresh
// transaction attempt could succeed past. Constraint violations, syntax
// errors, and business errors are not transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientSQLState(pgErr.Code)
	}
	return isConnectionError(err)
}
