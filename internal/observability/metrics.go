package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// risk engine and the alert pipeline.
type Metrics struct {
	AssessmentsTotal   prometheus.Counter
	AssessmentDuration prometheus.Histogram

	// Per-source scoring metrics.
	SourceResults  *prometheus.CounterVec   // labels: source, outcome={genuine,degraded}
	SourceDuration *prometheus.HistogramVec // labels: source
	CacheLookups   *prometheus.CounterVec   // labels: source, result={hit,miss}

	// Batch orchestration metrics.
	BatchGroups      prometheus.Counter
	BatchAssessments *prometheus.CounterVec // labels: outcome={succeeded,failed}

	// Alerting metrics.
	AlertsEmitted     *prometheus.CounterVec // labels: severity
	StreamSubscribers prometheus.Gauge
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		AssessmentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floodrisk",
			Name:      "assessments_total",
			Help:      "Total completed flood risk assessments.",
		}),
		AssessmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "floodrisk",
			Name:      "assessment_duration_seconds",
			Help:      "Duration of a complete five-source assessment.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		SourceResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodrisk",
			Name:      "source_results_total",
			Help:      "Per-source scoring results by outcome.",
		}, []string{"source", "outcome"}),
		SourceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "floodrisk",
			Name:      "source_duration_seconds",
			Help:      "Per-source scoring duration including provider calls.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodrisk",
			Name:      "cache_lookups_total",
			Help:      "Per-source cache lookups by result.",
		}, []string{"source", "result"}),
		BatchGroups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floodrisk",
			Name:      "batch_groups_total",
			Help:      "Total concurrent assessment groups dispatched.",
		}),
		BatchAssessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodrisk",
			Name:      "batch_assessments_total",
			Help:      "Batch assessment outcomes.",
		}, []string{"outcome"}),
		AlertsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodrisk",
			Name:      "alerts_emitted_total",
			Help:      "Alerts produced by the compiler, by severity.",
		}, []string{"severity"}),
		StreamSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "floodrisk",
			Name:      "stream_subscribers",
			Help:      "Currently connected alert stream subscribers.",
		}),
	}

	prometheus.MustRegister(
		m.AssessmentsTotal,
		m.AssessmentDuration,
		m.SourceResults,
		m.SourceDuration,
		m.CacheLookups,
		m.BatchGroups,
		m.BatchAssessments,
		m.AlertsEmitted,
		m.StreamSubscribers,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		AssessmentsTotal:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "floodrisk", Name: "assessments_total"}),
		AssessmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "floodrisk", Name: "assessment_duration_seconds"}),
		SourceResults:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "floodrisk", Name: "source_results_total"}, []string{"source", "outcome"}),
		SourceDuration:     prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "floodrisk", Name: "source_duration_seconds"}, []string{"source"}),
		CacheLookups:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "floodrisk", Name: "cache_lookups_total"}, []string{"source", "result"}),
		BatchGroups:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "floodrisk", Name: "batch_groups_total"}),
		BatchAssessments:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "floodrisk", Name: "batch_assessments_total"}, []string{"outcome"}),
		AlertsEmitted:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "floodrisk", Name: "alerts_emitted_total"}, []string{"severity"}),
		StreamSubscribers:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "floodrisk", Name: "stream_subscribers"}),
	}
}
