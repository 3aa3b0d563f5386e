package dataset

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
)

// RetryLoader retries TransientError failures of the wrapped loader with a
// doubling backoff. Every other outcome is returned as-is, so callers only
// ever see a terminal success or failure.
type RetryLoader struct {
	next     Loader
	attempts int
	backoff  time.Duration
	logger   *slog.Logger
}

// NewRetryLoader wraps next. attempts < 1 means a single try.
func NewRetryLoader(next Loader, attempts int, backoff time.Duration, logger *slog.Logger) *RetryLoader {
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RetryLoader{
		next:     next,
		attempts: attempts,
		backoff:  backoff,
		logger:   logger,
	}
}

// Load implements Loader.
func (l *RetryLoader) Load(ctx context.Context, q Query) (*Dataset, error) {
	wait := l.backoff
	var lastErr error

	for attempt := 1; attempt <= l.attempts; attempt++ {
		ds, err := l.next.Load(ctx, q)
		if err == nil {
			return ds, nil
		}

		var transient *TransientError
		if !errors.As(err, &transient) {
			return nil, err
		}
		lastErr = transient.Err

		if attempt == l.attempts {
			break
		}
		l.logger.Warn("dataset load failed, retrying",
			"attempt", attempt,
			"max_attempts", l.attempts,
			"backoff", wait,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}

	return nil, lastErr
}
