package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the analysis pipeline.
type Metrics struct {
	AnalysesTotal    prometheus.Counter
	AnalysisDuration prometheus.Histogram
	RisksTriggered   *prometheus.CounterVec // labels: risk_id

	// Reasoning chain metrics.
	ReasoningAttempts *prometheus.CounterVec   // labels: strategy, outcome={success,failure}
	ReasoningDuration *prometheus.HistogramVec // labels: strategy

	// Data acquisition metrics.
	SourceFallbacks *prometheus.CounterVec // labels: source={weather,complaints,trends,news}
	SnapshotCache   *prometheus.CounterVec // labels: result={hit,miss,error}

	CatalogProtocols prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.RisksTriggered,
		m.ReasoningAttempts,
		m.ReasoningDuration,
		m.SourceFallbacks,
		m.SnapshotCache,
		m.CatalogProtocols,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build as many
// as they like without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AnalysesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "calo",
			Name:      "analyses_total",
			Help:      "Total analyses published.",
		}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "calo",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a complete analysis, acquisition included.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 20},
		}),
		RisksTriggered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "calo",
			Name:      "risks_triggered_total",
			Help:      "Risk scenarios triggered, by risk id.",
		}, []string{"risk_id"}),
		ReasoningAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "calo",
			Name:      "reasoning_attempts_total",
			Help:      "Reasoning strategy attempts by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		ReasoningDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "calo",
			Name:      "reasoning_duration_seconds",
			Help:      "Reasoning strategy latency in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"strategy"}),
		SourceFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "calo",
			Name:      "source_fallbacks_total",
			Help:      "Data sources that degraded to their default value.",
		}, []string{"source"}),
		SnapshotCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "calo",
			Name:      "snapshot_cache_total",
			Help:      "Snapshot cache lookups by result.",
		}, []string{"result"}),
		CatalogProtocols: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "calo",
			Name:      "catalog_protocols",
			Help:      "Protocols loaded into the catalog.",
		}),
	}
}
