package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// refresh pipeline and the persistence layer.
type Metrics struct {
	CyclesTotal     *prometheus.CounterVec // label: outcome
	CycleDuration   prometheus.Histogram
	RecordsIndexed  prometheus.Gauge
	LastRefreshTime prometheus.Gauge

	LoadRetries prometheus.Counter

	SchedulerRunning prometheus.Gauge
	CyclesSkipped    prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CyclesTotal,
		m.CycleDuration,
		m.RecordsIndexed,
		m.LastRefreshTime,
		m.LoadRetries,
		m.SchedulerRunning,
		m.CyclesSkipped,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prosperity_index",
			Name:      "refresh_cycles_total",
			Help:      "Refresh cycles by outcome (success, fetch_failed, empty_batch, invalid_schema, aggregate_failed, persist_failed).",
		}, []string{"outcome"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "prosperity_index",
			Name:      "refresh_cycle_duration_seconds",
			Help:      "Duration of a complete fetch-validate-normalize-aggregate-persist cycle.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		RecordsIndexed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "prosperity_index",
			Name:      "records_indexed",
			Help:      "Number of region records in the most recently persisted dataset.",
		}),
		LastRefreshTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "prosperity_index",
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful refresh cycle.",
		}),
		LoadRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "prosperity_index",
			Name:      "store_load_retries_total",
			Help:      "Transient dataset load failures that were retried.",
		}),
		SchedulerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "prosperity_index",
			Name:      "scheduler_cycle_running",
			Help:      "1 while a refresh cycle is executing, 0 while idle.",
		}),
		CyclesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "prosperity_index",
			Name:      "refresh_cycles_skipped_total",
			Help:      "Scheduled triggers skipped because the previous cycle was still running.",
		}),
	}
}
