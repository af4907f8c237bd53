// Package metrics provides Prometheus metrics for the analysis pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the analyzer.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Session-level outcomes
	sessionsAnalyzed prometheus.Counter
	sessionsFailed   prometheus.Counter

	// Alignment outcomes
	targetsMatched   prometheus.Counter
	targetsUnmatched prometheus.Counter
	matchDelta       prometheus.Histogram

	// Filtering outcomes
	deviationsKept     prometheus.Counter
	deviationsRejected prometheus.Counter

	// Library lookup
	libraryFilesHashed prometheus.Counter
	libraryIndexHits   prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Get returns the global metrics manager.
func Get() *Manager {
	return globalManager
}

// Handler exposes the global registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "aimdrift",
		subsystem: "analysis",
		// Match deltas live inside the alignment tolerance (default 80 ms).
		histogramBuckets: []float64{1, 2, 5, 10, 20, 40, 80, 160},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.sessionsAnalyzed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_analyzed_total",
		Help:      "Total number of recorded sessions analyzed to completion",
	})
	m.sessionsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_failed_total",
		Help:      "Total number of sessions skipped (unreadable or unresolvable)",
	})
	m.targetsMatched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "targets_matched_total",
		Help:      "Total number of target events matched to a device sample",
	})
	m.targetsUnmatched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "targets_unmatched_total",
		Help:      "Total number of target events with no sample within tolerance",
	})
	m.matchDelta = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_delta_milliseconds",
		Help:      "Histogram of |sample time - target time| for matched events",
		Buckets:   m.histogramBuckets,
	})
	m.deviationsKept = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "deviations_kept_total",
		Help:      "Total number of deviations within the inclusion radius",
	})
	m.deviationsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "deviations_rejected_total",
		Help:      "Total number of deviations rejected as whiffs",
	})
	m.libraryFilesHashed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "library_files_hashed_total",
		Help:      "Total number of library files hashed during digest scans",
	})
	m.libraryIndexHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "library_index_hits_total",
		Help:      "Total number of digest lookups served from the index",
	})
}

// RecordSessionAnalyzed counts a session analyzed to completion.
func (m *Manager) RecordSessionAnalyzed() {
	if m == nil {
		return
	}
	m.sessionsAnalyzed.Inc()
}

// RecordSessionFailed counts a session skipped due to an error.
func (m *Manager) RecordSessionFailed() {
	if m == nil {
		return
	}
	m.sessionsFailed.Inc()
}

// RecordTargetMatched counts a matched target and observes its time delta.
func (m *Manager) RecordTargetMatched(deltaMS float64) {
	if m == nil {
		return
	}
	m.targetsMatched.Inc()
	m.matchDelta.Observe(deltaMS)
}

// RecordTargetUnmatched counts a target with no sample within tolerance.
func (m *Manager) RecordTargetUnmatched() {
	if m == nil {
		return
	}
	m.targetsUnmatched.Inc()
}

// RecordDeviationKept counts a deviation accepted by the filter.
func (m *Manager) RecordDeviationKept() {
	if m == nil {
		return
	}
	m.deviationsKept.Inc()
}

// RecordDeviationRejected counts a deviation rejected as a whiff.
func (m *Manager) RecordDeviationRejected() {
	if m == nil {
		return
	}
	m.deviationsRejected.Inc()
}

// RecordLibraryFileHashed counts one library file hashed during a scan.
func (m *Manager) RecordLibraryFileHashed() {
	if m == nil {
		return
	}
	m.libraryFilesHashed.Inc()
}

// RecordLibraryIndexHit counts a digest lookup served from the index.
func (m *Manager) RecordLibraryIndexHit() {
	if m == nil {
		return
	}
	m.libraryIndexHits.Inc()
}
