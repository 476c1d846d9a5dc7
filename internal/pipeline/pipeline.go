// Package pipeline orchestrates one refresh cycle:
// fetch → validate → normalize → aggregate → persist.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/regionpulse/prosperity-index/internal/domain"
	"github.com/regionpulse/prosperity-index/internal/observability"
)

// Fetcher retrieves a raw indicator batch from the external source.
type Fetcher interface {
	Fetch(ctx context.Context) ([]domain.RawIndicatorRecord, error)
}

// Replacer persists a freshly computed dataset, superseding the prior one.
type Replacer interface {
	Replace(ctx context.Context, ds domain.Dataset) error
}

// Announcer publishes a notification after a successful refresh. Optional.
type Announcer interface {
	Announce(ctx context.Context, completedAt time.Time, records int) error
}

// Outcome names how a refresh cycle ended. Every cycle ends in exactly one
// outcome; failures never escape the cycle.
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeFetchFailed     Outcome = "fetch_failed"
	OutcomeEmptyBatch      Outcome = "empty_batch"
	OutcomeInvalidSchema   Outcome = "invalid_schema"
	OutcomeAggregateFailed Outcome = "aggregate_failed"
	OutcomePersistFailed   Outcome = "persist_failed"
)

// CycleResult reports one refresh cycle. Err is nil only for
// OutcomeSuccess. Recoverable outcomes are retried naturally by the next
// scheduled cycle; the rest warrant attention.
type CycleResult struct {
	Outcome  Outcome
	Err      error
	Records  int
	Duration time.Duration
}

// Recoverable reports whether the cycle failed in an expected, self-healing
// way (source trouble or bad upstream data) rather than a defect.
func (r CycleResult) Recoverable() bool {
	return r.Err != nil && domain.Recoverable(r.Err)
}

// Refresher runs refresh cycles against a fetcher and a store.
type Refresher struct {
	fetcher   Fetcher
	store     Replacer
	announcer Announcer
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Refresher. announcer may be nil to disable refresh
// announcements.
func New(fetcher Fetcher, store Replacer, announcer Announcer, logger *slog.Logger, metrics *observability.Metrics) *Refresher {
	return &Refresher{
		fetcher:   fetcher,
		store:     store,
		announcer: announcer,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once at least one cycle has persisted a
// dataset, or an error describing why the service is not yet ready.
func (r *Refresher) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no refresh cycle has completed yet")
	}
	return nil
}

// RunCycle executes one full refresh cycle. It never panics or returns an
// error directly: every failure mode is folded into the CycleResult so the
// scheduler stays failure-agnostic and the next trigger always fires.
func (r *Refresher) RunCycle(ctx context.Context) CycleResult {
	start := time.Now()

	res := r.runCycle(ctx)
	res.Duration = time.Since(start)

	r.metrics.CyclesTotal.WithLabelValues(string(res.Outcome)).Inc()
	r.metrics.CycleDuration.Observe(res.Duration.Seconds())

	switch {
	case res.Err == nil:
		r.metrics.RecordsIndexed.Set(float64(res.Records))
		r.metrics.LastRefreshTime.SetToCurrentTime()
		r.ready.Store(true)
		r.logger.Info("refresh cycle complete", "records", res.Records, "duration", res.Duration)
	case errors.Is(res.Err, domain.ErrEmptyBatch):
		r.logger.Warn("refresh cycle halted: no data received", "duration", res.Duration)
	case res.Recoverable():
		r.logger.Error("refresh cycle failed, next scheduled cycle will retry",
			"outcome", res.Outcome, "error", res.Err, "duration", res.Duration)
	default:
		r.logger.Error("refresh cycle failed",
			"outcome", res.Outcome, "error", res.Err, "duration", res.Duration)
	}

	return res
}

func (r *Refresher) runCycle(ctx context.Context) CycleResult {
	raw, err := r.fetcher.Fetch(ctx)
	if err != nil {
		return CycleResult{Outcome: OutcomeFetchFailed, Err: err}
	}

	records, err := domain.ValidateBatch(raw)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyBatch) {
			return CycleResult{Outcome: OutcomeEmptyBatch, Err: err}
		}
		return CycleResult{Outcome: OutcomeInvalidSchema, Err: err}
	}

	ds, err := domain.Aggregate(domain.Normalize(records))
	if err != nil {
		return CycleResult{Outcome: OutcomeAggregateFailed, Err: err}
	}

	if err := r.store.Replace(ctx, ds); err != nil {
		// No in-cycle write retry: the prior dataset stays in place as
		// last-known-good, and the next scheduled cycle is the retry path.
		return CycleResult{Outcome: OutcomePersistFailed, Err: err}
	}

	r.announce(ctx, len(ds))

	return CycleResult{Outcome: OutcomeSuccess, Records: len(ds)}
}

// announce publishes the refresh notification. Best effort: a failed
// announcement does not fail the cycle, the dataset is already persisted.
func (r *Refresher) announce(ctx context.Context, records int) {
	if r.announcer == nil {
		return
	}
	if err := r.announcer.Announce(ctx, time.Now().UTC(), records); err != nil {
		r.logger.Warn("refresh announcement failed", "error", err)
	}
}
