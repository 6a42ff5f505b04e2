// Package metrics provides Prometheus metrics for the screening pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the screening service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Core business metrics - what matters for a screening pipeline
	attemptsProcessed prometheus.Counter
	attemptsDuplicate prometheus.Counter
	attemptsDegraded  prometheus.Counter
	scoringLatency    *prometheus.HistogramVec
	riskTierTotal     *prometheus.CounterVec

	// Operational health metrics
	queueSize    prometheus.Gauge
	workerCount  prometheus.Gauge
	caseloadSize prometheus.Gauge

	// Queue metrics
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Repository metrics
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// Error tracking by component
	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "screening",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
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

	m.attemptsProcessed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "attempts_processed_total",
		Help:      "Total number of assessment attempts processed.",
	})
	m.attemptsDuplicate = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "attempts_duplicate_total",
		Help:      "Total number of duplicate attempts rejected.",
	})
	m.attemptsDegraded = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "attempts_degraded_total",
		Help:      "Total number of attempts with at least one degraded domain prediction.",
	})
	m.scoringLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_latency_ms",
		Help:      "Per-domain scoring latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"domain"})
	m.riskTierTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "risk_tier_total",
		Help:      "Count of predictions by domain and assigned risk tier.",
	}, []string{"domain", "tier"})

	m.queueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of attempts waiting in the queue.",
	})
	m.workerCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of assessment workers.",
	})
	m.caseloadSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "caseload_size",
		Help:      "Number of students tracked in the caseload.",
	})

	m.queueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured queue capacity.",
	})
	m.queueUtilization = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization",
		Help:      "Queue fill ratio between 0 and 1.",
	})
	m.queueEnqueueRate = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of successful enqueues.",
	})
	m.queueDequeueRate = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of dequeues.",
	})
	m.queueEnqueueErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of failed enqueues.",
	})

	m.workerProcessingLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_ms",
		Help:      "End-to-end attempt processing latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.workerErrorRate = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of worker processing errors.",
	})

	m.repositoryUpdateLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_update_latency_ms",
		Help:      "Caseload update latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.repositoryQueryLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_query_latency_ms",
		Help:      "Caseload query latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.errorsByComponent = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Errors grouped by component and kind.",
	}, []string{"component", "kind"})
}

// Registry returns the custom registry used by the global manager.
func Registry() *prometheus.Registry { return customRegistry }

// Package-level helpers operating on the global manager.

func RecordAttemptProcessed() { globalManager.attemptsProcessed.Inc() }
func RecordAttemptDuplicate() { globalManager.attemptsDuplicate.Inc() }
func RecordAttemptDegraded()  { globalManager.attemptsDegraded.Inc() }

func RecordScoringLatency(domain string, ms float64) {
	globalManager.scoringLatency.WithLabelValues(domain).Observe(ms)
}

func RecordRiskTier(domain, tier string) {
	globalManager.riskTierTotal.WithLabelValues(domain, tier).Inc()
}

func UpdateQueueSize(n int)              { globalManager.queueSize.Set(float64(n)) }
func UpdateWorkerCount(n int)            { globalManager.workerCount.Set(float64(n)) }
func UpdateCaseloadSize(n int)           { globalManager.caseloadSize.Set(float64(n)) }
func UpdateQueueCapacity(n int)          { globalManager.queueCapacity.Set(float64(n)) }
func UpdateQueueUtilization(r float64)   { globalManager.queueUtilization.Set(r) }
func RecordQueueEnqueue()                { globalManager.queueEnqueueRate.Inc() }
func RecordQueueDequeue()                { globalManager.queueDequeueRate.Inc() }
func RecordQueueEnqueueError()           { globalManager.queueEnqueueErrors.Inc() }
func RecordWorkerProcessingLatency(ms float64) { globalManager.workerProcessingLatency.Observe(ms) }
func RecordWorkerError()                 { globalManager.workerErrorRate.Inc() }
func RecordRepositoryUpdateLatency(ms float64) { globalManager.repositoryUpdateLatency.Observe(ms) }
func RecordRepositoryQueryLatency(ms float64)  { globalManager.repositoryQueryLatency.Observe(ms) }

func RecordErrorByComponent(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}
