package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/regionpulse/prosperity-index/internal/domain"
)

// RetryCounter counts transient load failures that were retried. Satisfied
// by prometheus.Counter.
type RetryCounter interface {
	Inc()
}

// RetryingStore decorates a Store with bounded Load retries. A Load that
// races a concurrent Replace can fail transiently; that is expected and
// recoverable, so it is retried a fixed number of times with a short delay
// before a terminal read failure is surfaced. ErrNotFound is terminal
// immediately: waiting will not conjure a dataset.
//
// Replace is passed through untouched. Write failures have no in-cycle
// retry; the next scheduled refresh is the retry path.
type RetryingStore struct {
	inner    Store
	attempts int
	delay    time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	retries  RetryCounter
}

// NewRetryingStore wraps inner with the given retry budget. Pass a fake
// clock in tests to skip the real delays; retries may be nil.
func NewRetryingStore(inner Store, attempts int, delay time.Duration, clock clockwork.Clock, logger *slog.Logger, retries RetryCounter) *RetryingStore {
	return &RetryingStore{
		inner:    inner,
		attempts: attempts,
		delay:    delay,
		clock:    clock,
		logger:   logger,
		retries:  retries,
	}
}

// Replace delegates to the wrapped store.
func (s *RetryingStore) Replace(ctx context.Context, ds domain.Dataset) error {
	return s.inner.Replace(ctx, ds)
}

// Load attempts the wrapped Load up to the configured budget.
func (s *RetryingStore) Load(ctx context.Context) (domain.Dataset, error) {
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		ds, err := s.inner.Load(ctx)
		if err == nil {
			return ds, nil
		}
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		lastErr = err

		if attempt == s.attempts {
			break
		}
		s.logger.Warn("dataset load failed, retrying",
			"attempt", attempt, "attempts", s.attempts, "delay", s.delay, "error", err)
		if s.retries != nil {
			s.retries.Inc()
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.clock.After(s.delay):
		}
	}
	return nil, fmt.Errorf("load failed after %d attempts: %w", s.attempts, lastErr)
}

// Close delegates to the wrapped store.
func (s *RetryingStore) Close() error {
	return s.inner.Close()
}
