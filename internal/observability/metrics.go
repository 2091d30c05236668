package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// fetch/classify refresh cycle.
type Metrics struct {
	TAFFetches   *prometheus.CounterVec // labels: outcome={ok,no_data,error}
	NOTAMFetches *prometheus.CounterVec // labels: outcome={ok,no_data,error}

	RefreshDuration  prometheus.Histogram
	RefreshCycles    prometheus.Counter
	SnapshotAirports prometheus.Gauge

	FlaggedCategories *prometheus.CounterVec // labels: category
}

// NewMetrics creates and registers all board metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.TAFFetches,
		m.NOTAMFetches,
		m.RefreshDuration,
		m.RefreshCycles,
		m.SnapshotAirports,
		m.FlaggedCategories,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		TAFFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tafboard",
			Name:      "taf_fetch_results_total",
			Help:      "Per-airport TAF fetch outcomes by status.",
		}, []string{"outcome"}),
		NOTAMFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tafboard",
			Name:      "notam_fetch_results_total",
			Help:      "Per-airport NOTAM fetch outcomes by status.",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tafboard",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete fetch-classify-snapshot cycle.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RefreshCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tafboard",
			Name:      "refresh_cycles_total",
			Help:      "Total completed refresh cycles.",
		}),
		SnapshotAirports: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tafboard",
			Name:      "snapshot_airports",
			Help:      "Number of airports covered by the current snapshot.",
		}),
		FlaggedCategories: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tafboard",
			Name:      "flagged_categories_total",
			Help:      "Hazard categories flagged during classification.",
		}, []string{"category"}),
	}
}
