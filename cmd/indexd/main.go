// Command indexd computes the regional health and prosperity index. It runs
// one refresh cycle at startup, re-runs it on the configured interval, and
// serves the persisted dataset over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/regionpulse/prosperity-index/internal/adapter/datausa"
	"github.com/regionpulse/prosperity-index/internal/adapter/httpapi"
	kafkaadapter "github.com/regionpulse/prosperity-index/internal/adapter/kafka"
	"github.com/regionpulse/prosperity-index/internal/config"
	"github.com/regionpulse/prosperity-index/internal/observability"
	"github.com/regionpulse/prosperity-index/internal/pipeline"
	"github.com/regionpulse/prosperity-index/internal/scheduler"
	"github.com/regionpulse/prosperity-index/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	backing, err := store.Open(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}

	// The read path absorbs transient failures from a concurrent replace;
	// the write path inside the pipeline goes straight to the backend.
	reading := store.NewRetryingStore(backing, cfg.LoadRetryAttempts, cfg.LoadRetryDelay, clock, logger, metrics.LoadRetries)

	source := datausa.NewClient(cfg.SourceURL, cfg.SourceTimeout, logger)

	var announcer pipeline.Announcer
	var announcerCloser *kafkaadapter.Announcer
	if cfg.KafkaAnnounceEnabled {
		announcerCloser = kafkaadapter.NewAnnouncer(cfg, logger)
		announcer = announcerCloser
		logger.Info("refresh announcements enabled", "topic", cfg.KafkaAnnounceTopic)
	}

	refresher := pipeline.New(source, backing, announcer, logger, metrics)
	sched := scheduler.New(refresher, cfg.RefreshInterval, clock, logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, refresher, reading, sched, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the refresh scheduler: one synchronous cycle, then the daily loop.
	go sched.Run(ctx)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if announcerCloser != nil {
		if err := announcerCloser.Close(); err != nil {
			logger.Error("announcer close error", "error", err)
		}
	}
	if err := backing.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
