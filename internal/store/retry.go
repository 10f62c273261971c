package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/metrics"
)

var ErrRetriesExhausted = errors.New("store: conflict retries exhausted")

// RetryPolicy controls how a logical operation is re-run after a conflict.
// MaxAttempts of zero retries without bound.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	Deadline    time.Duration
}

// Do runs fn until it returns something other than ErrConflict. fn must
// contain the whole operation, precondition reads included.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if p.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Deadline)
		defer cancel()
	}

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if !errors.Is(err, ErrConflict) {
			return err
		}
		metrics.ConflictRetries.WithLabelValues(op).Inc()

		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			return fmt.Errorf("%w: %s after %d attempts: %v", ErrRetriesExhausted, op, attempt, err)
		}
		if err := p.wait(ctx, attempt); err != nil {
			return fmt.Errorf("%s: retry aborted after %d attempts: %w", op, attempt, err)
		}
	}
}

func (p RetryPolicy) wait(ctx context.Context, attempt int) error {
	if p.Backoff <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(time.Duration(attempt) * p.Backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func PolicyFromConfig(cfg config.RetryConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		Backoff:     time.Duration(cfg.BackoffMS) * time.Millisecond,
		Deadline:    time.Duration(cfg.DeadlineSeconds) * time.Second,
	}
}
