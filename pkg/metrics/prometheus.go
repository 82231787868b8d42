// Package metrics provides Prometheus metrics for the player-events bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the bot.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Page outcomes
	pagesProcessed *prometheus.CounterVec
	eventsOrdered  prometheus.Counter
	malformed      prometheus.Counter
	orderLatency   prometheus.Histogram
	pageLatency    prometheus.Histogram
	wikiRequests   *prometheus.CounterVec
	journalWrites  *prometheus.CounterVec
	dedupeHits     prometheus.Counter

	// Queue and workers
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueRejected    prometheus.Counter
	workerCount      prometheus.Gauge
	workerActive     prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

// Metric name prefix shared by both binaries.
const (
	Namespace = "maccabipedia"
	Subsystem = "events_bot"
)

// latencyBucketsMs covers ordering a single field up to a slow wiki round trip.
var latencyBucketsMs = []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000} //nolint:gochecknoglobals // bucket layout

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(
		WithNamespace(Namespace),
		WithSubsystem(Subsystem),
		WithHistogramBuckets(latencyBucketsMs),
		WithPrometheusRegistry(customRegistry),
	)
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "maccabipedia",
		subsystem:        "events_bot",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.pagesProcessed = m.counterVec("pages_processed_total", "Pages handled by the sorter, by outcome", "outcome")
	m.eventsOrdered = m.counter("events_ordered_total", "Player events passed through the ordering engine")
	m.malformed = m.counter("malformed_records_total", "Stored event records that failed to parse")
	m.orderLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "order_latency_milliseconds",
		Help:    "Time spent ordering one page's events",
		Buckets: m.histogramBuckets,
	})
	m.pageLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "page_latency_milliseconds",
		Help:    "End-to-end time to read, sort and save one page",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})
	m.wikiRequests = m.counterVec("wiki_requests_total", "Requests sent to the wiki API", "action", "status")
	m.journalWrites = m.counterVec("journal_writes_total", "Edit journal writes", "status")
	m.dedupeHits = m.counter("dedupe_hits_total", "Pages skipped because the run already saw them")

	m.queueSize = m.gauge("queue_size", "Current number of pages waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (0-1)")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Pages accepted by the queue")
	m.queueRejected = m.counter("queue_rejected_total", "Pages rejected by a full or closed queue")
	m.workerCount = m.gauge("worker_count", "Configured number of workers")
	m.workerActive = m.gauge("worker_active_count", "Workers currently processing a page")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "system_gc_pause_time_milliseconds",
		Help:    "GC pause time in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordPage counts one page outcome.
func RecordPage(outcome string) {
	globalManager.pagesProcessed.WithLabelValues(outcome).Inc()
}

// RecordEventsOrdered adds to the ordered events counter.
func RecordEventsOrdered(n int) {
	globalManager.eventsOrdered.Add(float64(n))
}

// RecordMalformedRecord increments the malformed records counter.
func RecordMalformedRecord() {
	globalManager.malformed.Inc()
}

// RecordOrderLatency records ordering latency in milliseconds.
func RecordOrderLatency(latencyMs float64) {
	globalManager.orderLatency.Observe(latencyMs)
}

// RecordPageLatency records the latency of one page in milliseconds.
func RecordPageLatency(latencyMs float64) {
	globalManager.pageLatency.Observe(latencyMs)
}

// RecordWikiRequest counts a wiki API call.
func RecordWikiRequest(action, status string) {
	globalManager.wikiRequests.WithLabelValues(action, status).Inc()
}

// RecordJournalWrite counts an edit journal write.
func RecordJournalWrite(status string) {
	globalManager.journalWrites.WithLabelValues(status).Inc()
}

// RecordDedupeHit increments the dedupe hit counter.
func RecordDedupeHit() {
	globalManager.dedupeHits.Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueRejected increments the rejected enqueue counter.
func RecordQueueRejected() {
	globalManager.queueRejected.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActive.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
