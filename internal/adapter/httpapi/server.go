// Package httpapi exposes the service's HTTP surface: health, readiness,
// metrics, the dataset read path, and a manual refresh trigger.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/regionpulse/prosperity-index/internal/domain"
	"github.com/regionpulse/prosperity-index/internal/store"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Loader reads the persisted dataset. Implemented by the retrying store, so
// a read racing a replace is absorbed before it reaches a client.
type Loader interface {
	Load(ctx context.Context) (domain.Dataset, error)
}

// RefreshTrigger starts a refresh cycle unless one is already running.
type RefreshTrigger interface {
	TriggerNow(ctx context.Context)
}

// Server exposes the HTTP endpoints.
type Server struct {
	httpServer *http.Server
	loader     Loader
	trigger    RefreshTrigger
	logger     *slog.Logger
}

// NewServer creates an HTTP server with health, metrics, and dataset routes.
func NewServer(addr string, ready ReadinessChecker, loader Loader, trigger RefreshTrigger, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		loader:  loader,
		trigger: trigger,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /dataset", s.handleDataset)
	mux.HandleFunc("GET /chart", s.handleChart)
	mux.HandleFunc("POST /refresh", s.handleRefresh)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// datasetRow is the read-path row shape: region key plus the composite
// index, with the raw indicators included for drill-down.
type datasetRow struct {
	State string  `json:"state"`
	Index float64 `json:"index"`
	domain.IndicatorRecord
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.loadDataset(w, r)
	if !ok {
		return
	}

	rows := make([]datasetRow, len(ds))
	for i, rec := range ds {
		rows[i] = datasetRow{State: rec.RegionID, Index: rec.Index, IndicatorRecord: rec.IndicatorRecord}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": rows})
}

var chartTemplate = template.Must(template.New("chart").Parse(`<!doctype html>
<html><head><title>Health and Prosperity Index</title></head>
<body>
<h1>Health and Prosperity Index</h1>
{{range .}}<div style="margin:2px 0">
  <span style="display:inline-block;width:14em">{{.State}}</span>
  <span style="display:inline-block;background:#4a90d9;height:1em;width:{{.Width}}%"></span>
  {{printf "%.3f" .Index}}
</div>
{{end}}</body></html>
`))

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.loadDataset(w, r)
	if !ok {
		return
	}

	type bar struct {
		State string
		Index float64
		Width float64
	}
	bars := make([]bar, len(ds))
	for i, rec := range ds {
		bars[i] = bar{State: rec.RegionID, Index: rec.Index, Width: rec.Index * 100}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chartTemplate.Execute(w, bars); err != nil {
		s.logger.Error("render chart failed", "error", err)
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	// Fire and return; the outcome lands in logs and metrics. An overlapping
	// trigger is skipped by the scheduler, so this is always safe.
	go s.trigger.TriggerNow(context.WithoutCancel(r.Context()))
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh triggered"})
}

// loadDataset fetches the dataset and translates load failures into
// responses. Returns false if a response has already been written.
func (s *Server) loadDataset(w http.ResponseWriter, r *http.Request) (domain.Dataset, bool) {
	ds, err := s.loader.Load(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "no dataset found; trigger a refresh first (POST /refresh)",
			})
			return nil, false
		}
		s.logger.Error("dataset load failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": fmt.Sprintf("dataset temporarily unavailable: %v", err),
		})
		return nil, false
	}
	return ds, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
