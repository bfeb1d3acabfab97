// Package metrics provides Prometheus metrics for the voidframe
// analysis pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Throughput - per-play accounting across a run
	playsProcessed prometheus.Counter
	playsFiltered  prometheus.Counter
	playsSkipped   prometheus.Counter

	// Quality - undefined metrics and data-quality signals
	undefinedMetrics    *prometheus.CounterVec
	dataQualityWarnings prometheus.Counter

	// Stage timings
	stageDuration *prometheus.HistogramVec

	// Model fit health
	modelTrainAccuracy prometheus.Gauge
	modelTestAccuracy  prometheus.Gauge
	modelTrainRows     prometheus.Gauge

	// Last-run snapshot
	lastRunPlays  prometheus.Gauge
	lastRunUnix   prometheus.Gauge
	rankedPlayers *prometheus.GaugeVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "voidframe",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.playsProcessed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "plays_processed_total",
		Help:      "Plays that passed the filter and had metrics computed.",
	})
	m.playsFiltered = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "plays_filtered_total",
		Help:      "Plays excluded by the analysis-subset filter.",
	})
	m.playsSkipped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "plays_skipped_total",
		Help:      "Plays dropped before filtering (no release event or missing roles).",
	})
	m.undefinedMetrics = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "metric_undefined_total",
		Help:      "Per-play metric values that could not be computed, by metric.",
	}, []string{"metric"})
	m.dataQualityWarnings = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "data_quality_warnings_total",
		Help:      "Non-fatal data-quality signals reported alongside output.",
	})
	m.stageDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stage_duration_seconds",
		Help:      "Wall-clock duration of each pipeline stage.",
		Buckets:   m.histogramBuckets,
	}, []string{"stage"})
	m.modelTrainAccuracy = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "model_train_accuracy",
		Help:      "Baseline model accuracy on the training partition.",
	})
	m.modelTestAccuracy = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "model_test_accuracy",
		Help:      "Baseline model accuracy on the held-out partition.",
	})
	m.modelTrainRows = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "model_train_rows",
		Help:      "Rows used to fit the baseline model.",
	})
	m.lastRunPlays = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_run_plays",
		Help:      "Plays in the analysis subset of the most recent run.",
	})
	m.lastRunUnix = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_run_timestamp_seconds",
		Help:      "Completion time of the most recent run.",
	})
	m.rankedPlayers = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranked_players",
		Help:      "Players surviving the minimum-sample cutoff, by table.",
	}, []string{"table"})
}

// Package-level helpers against the global manager.

// RecordPlayProcessed counts a play through metric extraction.
func RecordPlayProcessed() {
	if globalManager.enabled {
		globalManager.playsProcessed.Inc()
	}
}

// RecordPlayFiltered counts a play excluded by the subset filter.
func RecordPlayFiltered() {
	if globalManager.enabled {
		globalManager.playsFiltered.Inc()
	}
}

// RecordPlaySkipped counts a play dropped before filtering.
func RecordPlaySkipped() {
	if globalManager.enabled {
		globalManager.playsSkipped.Inc()
	}
}

// RecordUndefinedMetric counts an undefined per-play metric value.
func RecordUndefinedMetric(metric string) {
	if globalManager.enabled {
		globalManager.undefinedMetrics.WithLabelValues(metric).Inc()
	}
}

// RecordDataQualityWarning counts a non-fatal data-quality signal.
func RecordDataQualityWarning() {
	if globalManager.enabled {
		globalManager.dataQualityWarnings.Inc()
	}
}

// ObserveStageDuration records a pipeline stage's wall-clock time.
func ObserveStageDuration(stage string, d time.Duration) {
	if globalManager.enabled {
		globalManager.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// SetModelReport publishes the fit accuracy gauges.
func SetModelReport(trainAccuracy, testAccuracy float64, trainRows int) {
	if globalManager.enabled {
		globalManager.modelTrainAccuracy.Set(trainAccuracy)
		globalManager.modelTestAccuracy.Set(testAccuracy)
		globalManager.modelTrainRows.Set(float64(trainRows))
	}
}

// SetLastRun publishes the last-run snapshot gauges.
func SetLastRun(plays int, finished time.Time) {
	if globalManager.enabled {
		globalManager.lastRunPlays.Set(float64(plays))
		globalManager.lastRunUnix.Set(float64(finished.Unix()))
	}
}

// SetRankedPlayers publishes the size of a ranking table.
func SetRankedPlayers(table string, n int) {
	if globalManager.enabled {
		globalManager.rankedPlayers.WithLabelValues(table).Set(float64(n))
	}
}

// Registry returns the custom registry backing the global manager, for
// callers that want to expose or gather the pipeline metrics.
func Registry() *prometheus.Registry {
	return customRegistry
}
