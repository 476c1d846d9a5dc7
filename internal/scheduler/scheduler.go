// Package scheduler triggers refresh cycles: once synchronously at startup,
// then on a fixed recurring interval.
package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/regionpulse/prosperity-index/internal/observability"
	"github.com/regionpulse/prosperity-index/internal/pipeline"
)

// CycleRunner executes one refresh cycle. Implemented by pipeline.Refresher.
type CycleRunner interface {
	RunCycle(ctx context.Context) pipeline.CycleResult
}

// Scheduler alternates between Idle and Running. The interval vastly
// exceeds cycle duration in practice, but that is not relied on: a trigger
// that arrives while a cycle is still running is skipped explicitly rather
// than overlapping it.
type Scheduler struct {
	runner   CycleRunner
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
	running  atomic.Bool
}

// New creates a Scheduler. Pass a fake clock in tests to drive ticks.
func New(runner CycleRunner, interval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run executes one cycle synchronously, so a dataset exists before any
// reader is served, then re-runs the pipeline on every interval tick until
// the context is cancelled. Cycle failures never stop future ticks; each
// cycle is independent.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.TriggerNow(ctx)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping", "reason", ctx.Err())
			return
		case <-ticker.Chan():
			s.TriggerNow(ctx)
		}
	}
}

// TriggerNow runs one cycle unless the previous one is still in flight.
// Safe to call concurrently with the scheduled loop; the loser of the race
// is skipped, never queued.
func (s *Scheduler) TriggerNow(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("previous refresh cycle still running, skipping trigger")
		s.metrics.CyclesSkipped.Inc()
		return
	}
	s.metrics.SchedulerRunning.Set(1)
	defer func() {
		s.metrics.SchedulerRunning.Set(0)
		s.running.Store(false)
	}()

	s.runner.RunCycle(ctx)
}
