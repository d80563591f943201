// Package metrics provides Prometheus metrics for the caliper evaluation
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Generation pipeline
	generationsTotal  prometheus.Counter
	generationErrors  prometheus.Counter
	generationLatency prometheus.Histogram

	// Metrics engine
	scoringLatency prometheus.Histogram

	// Persistence
	evaluationsPersisted prometheus.Counter
	persistenceErrors    prometheus.Counter
	storeQueryLatency    prometheus.Histogram
	totalEvaluations     prometheus.Gauge

	// Job queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueDequeues      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount      prometheus.Gauge
	workerJobLatency prometheus.Histogram
	workerErrors     prometheus.Counter

	// Analytics reads
	analyticsBuilds  prometheus.Counter
	analyticsLatency prometheus.Histogram

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Runtime
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var defaultManager *Manager

func init() { //nolint:gochecknoinits // global metrics setup mirrors prometheus conventions
	defaultManager = NewManager()
}

// NewManager creates a Manager and registers all collectors on a private
// registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "caliper",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.generationsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "generations_total",
		Help: "Total number of completed LLM generation calls.",
	})
	m.generationErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "generation_errors_total",
		Help: "Total number of failed LLM generation calls.",
	})
	m.generationLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "generation_latency_ms",
		Help:    "Latency of LLM generation calls in milliseconds.",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	})

	m.scoringLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "scoring_latency_ms",
		Help:    "Latency of per-response metric computation in milliseconds.",
		Buckets: m.histogramBuckets,
	})

	m.evaluationsPersisted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "evaluations_persisted_total",
		Help: "Total number of evaluation rows written to the store.",
	})
	m.persistenceErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "persistence_errors_total",
		Help: "Total number of failed store writes.",
	})
	m.storeQueryLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "store_query_latency_ms",
		Help:    "Latency of store queries in milliseconds.",
		Buckets: m.histogramBuckets,
	})
	m.totalEvaluations = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "evaluations_total",
		Help: "Current number of evaluation rows in the store.",
	})

	m.queueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_size",
		Help: "Current number of queued generation jobs.",
	})
	m.queueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_capacity",
		Help: "Configured capacity of the generation job queue.",
	})
	m.queueEnqueues = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_enqueues_total",
		Help: "Total number of jobs accepted by the queue.",
	})
	m.queueDequeues = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_dequeues_total",
		Help: "Total number of jobs handed to workers.",
	})
	m.queueEnqueueErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_enqueue_errors_total",
		Help: "Total number of rejected enqueue attempts (backpressure or closed queue).",
	})

	m.workerCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_count",
		Help: "Number of generation workers.",
	})
	m.workerJobLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "worker_job_latency_ms",
		Help:    "End-to-end job processing latency in milliseconds.",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	})
	m.workerErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_errors_total",
		Help: "Total number of worker job failures.",
	})

	m.analyticsBuilds = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "analytics_builds_total",
		Help: "Total number of analytics payload builds.",
	})
	m.analyticsLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "analytics_build_latency_ms",
		Help:    "Latency of analytics aggregation in milliseconds.",
		Buckets: m.histogramBuckets,
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "Total HTTP requests by endpoint, method and status code.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000, 30000},
	}, []string{"endpoint", "method", "status"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "system_memory_bytes",
		Help: "Current heap allocation in bytes.",
	})
	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "system_goroutines",
		Help: "Current number of goroutines.",
	})
}

// RecordGeneration increments the completed generations counter.
func RecordGeneration() {
	defaultManager.generationsTotal.Inc()
}

// RecordGenerationError increments the failed generations counter.
func RecordGenerationError() {
	defaultManager.generationErrors.Inc()
}

// RecordGenerationLatency records generation latency in milliseconds.
func RecordGenerationLatency(ms float64) {
	defaultManager.generationLatency.Observe(ms)
}

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(ms float64) {
	defaultManager.scoringLatency.Observe(ms)
}

// RecordEvaluationPersisted increments the persisted evaluations counter.
func RecordEvaluationPersisted() {
	defaultManager.evaluationsPersisted.Inc()
}

// RecordPersistenceError increments the failed store writes counter.
func RecordPersistenceError() {
	defaultManager.persistenceErrors.Inc()
}

// RecordStoreQueryLatency records store query latency in milliseconds.
func RecordStoreQueryLatency(ms float64) {
	defaultManager.storeQueryLatency.Observe(ms)
}

// UpdateTotalEvaluations sets the stored evaluation row count.
func UpdateTotalEvaluations(count int64) {
	defaultManager.totalEvaluations.Set(float64(count))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	defaultManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the configured queue capacity.
func UpdateQueueCapacity(n int) {
	defaultManager.queueCapacity.Set(float64(n))
}

// RecordQueueEnqueue increments the accepted enqueues counter.
func RecordQueueEnqueue() {
	defaultManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dequeues counter.
func RecordQueueDequeue() {
	defaultManager.queueDequeues.Inc()
}

// RecordQueueEnqueueError increments the rejected enqueues counter.
func RecordQueueEnqueueError() {
	defaultManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	defaultManager.workerCount.Set(float64(count))
}

// RecordWorkerJobLatency records end-to-end job latency in milliseconds.
func RecordWorkerJobLatency(ms float64) {
	defaultManager.workerJobLatency.Observe(ms)
}

// RecordWorkerError increments the worker failures counter.
func RecordWorkerError() {
	defaultManager.workerErrors.Inc()
}

// RecordAnalyticsBuild tracks one aggregation pass and its latency.
func RecordAnalyticsBuild(ms float64) {
	defaultManager.analyticsBuilds.Inc()
	defaultManager.analyticsLatency.Observe(ms)
}

func RecordHTTPRequest(endpoint, method, status string) {
	defaultManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	defaultManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

func UpdateSystemMemoryUsage(bytes uint64) {
	defaultManager.systemMemoryUsage.Set(float64(bytes))
}

func UpdateSystemGoroutineCount(count int) {
	defaultManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry exposes the default manager's registry for HTTP scraping.
func GetRegistry() *prometheus.Registry {
	return defaultManager.registry
}
