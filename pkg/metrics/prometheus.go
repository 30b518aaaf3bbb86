// Package metrics exposes the Prometheus instruments of the barberbook service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every instrument registered by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Ledger
	entriesRecorded  *prometheus.CounterVec
	entriesDuplicate prometheus.Counter
	entriesDeleted   prometheus.Counter
	recordsSkipped   *prometheus.CounterVec
	activeBarbers    prometheus.Gauge

	// Aggregation
	aggregationLatency *prometheus.HistogramVec

	// Achievements
	achievementsPersisted prometheus.Counter
	achievementErrors     prometheus.Counter

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec

	// Workers
	workerActive            prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Store
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// Access
	authAttempts     *prometheus.CounterVec
	reportsGenerated *prometheus.CounterVec

	// Runtime
	memoryUsage    prometheus.Gauge
	goroutineCount prometheus.Gauge
}

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

var globalManager *Manager //nolint:gochecknoglobals // process-wide instruments

func init() { //nolint:gochecknoinits // instruments must exist before any package uses them
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager builds a Manager and registers its instruments.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "barberbook",
		subsystem:        "ledger",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.register()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) register() { //nolint:funlen // flat list of instruments
	auto := promauto.With(m.registry)

	m.entriesRecorded = auto.NewCounterVec(m.counterOpts("entries_recorded_total",
		"Production entries written, by kind"), []string{"kind"})
	m.entriesDuplicate = auto.NewCounter(m.counterOpts("entries_duplicate_total",
		"Entry submissions rejected by the idempotency cache"))
	m.entriesDeleted = auto.NewCounter(m.counterOpts("entries_deleted_total",
		"Production entries hard deleted"))
	m.recordsSkipped = auto.NewCounterVec(m.counterOpts("records_skipped_total",
		"Stored records excluded from aggregation, by reason"), []string{"reason"})
	m.activeBarbers = auto.NewGauge(m.gaugeOpts("active_barbers",
		"Distinct barbers with at least one production entry"))

	m.aggregationLatency = auto.NewHistogramVec(m.histogramOpts("aggregation_latency_milliseconds",
		"Time spent loading and aggregating production entries"), []string{"operation"})

	m.achievementsPersisted = auto.NewCounter(m.counterOpts("achievements_persisted_total",
		"Achievement sets written to barber profiles"))
	m.achievementErrors = auto.NewCounter(m.counterOpts("achievement_errors_total",
		"Failed achievement recomputations"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Jobs waiting in the achievement queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Achievement queue capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Jobs enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Jobs handed to workers"))
	m.queueEnqueueErrors = auto.NewCounterVec(m.counterOpts("queue_enqueue_errors_total",
		"Rejected enqueue attempts, by reason"), []string{"reason"})

	m.workerActive = auto.NewGauge(m.gaugeOpts("worker_active_count", "Running achievement workers"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds",
		"Time spent on one achievement job"))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Achievement jobs that failed"))

	m.storeLatency = auto.NewHistogramVec(m.histogramOpts("store_latency_milliseconds",
		"Record store call latency"), []string{"backend", "operation"})
	m.storeErrors = auto.NewCounterVec(m.counterOpts("store_errors_total",
		"Record store call failures"), []string{"backend", "operation"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration"), []string{"endpoint", "method", "status_code"})
	m.httpErrors = auto.NewCounterVec(m.counterOpts("http_errors_total",
		"HTTP responses with status >= 400"), []string{"endpoint", "method", "error_type"})

	m.authAttempts = auto.NewCounterVec(m.counterOpts("auth_attempts_total",
		"Sign-in and manager gate attempts"), []string{"surface", "outcome"})
	m.reportsGenerated = auto.NewCounterVec(m.counterOpts("reports_generated_total",
		"PDF reports rendered, by section filter"), []string{"section"})

	m.memoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes in use"))
	m.goroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Live goroutines"))
}

// RecordEntry counts a written production entry of the given kind.
func RecordEntry(kind string) { globalManager.entriesRecorded.WithLabelValues(kind).Inc() }

// RecordEntryDuplicate counts a submission dropped as a duplicate.
func RecordEntryDuplicate() { globalManager.entriesDuplicate.Inc() }

// RecordEntryDeleted counts a hard delete.
func RecordEntryDeleted() { globalManager.entriesDeleted.Inc() }

// RecordSkipped counts a stored record that could not be decoded.
func RecordSkipped(reason string) { globalManager.recordsSkipped.WithLabelValues(reason).Inc() }

// UpdateActiveBarbers sets the active barber gauge.
func UpdateActiveBarbers(n int) { globalManager.activeBarbers.Set(float64(n)) }

// RecordAggregationLatency observes one aggregation in milliseconds.
func RecordAggregationLatency(operation string, ms float64) {
	globalManager.aggregationLatency.WithLabelValues(operation).Observe(ms)
}

// RecordAchievementsPersisted counts a successful achievement write.
func RecordAchievementsPersisted() { globalManager.achievementsPersisted.Inc() }

// RecordAchievementError counts a failed achievement recomputation.
func RecordAchievementError() { globalManager.achievementErrors.Inc() }

// UpdateQueueSize sets the queue depth gauge.
func UpdateQueueSize(n int) { globalManager.queueSize.Set(float64(n)) }

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(n int) { globalManager.queueCapacity.Set(float64(n)) }

// RecordQueueEnqueue counts an accepted job.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue counts a job handed to a worker.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError counts a rejected job.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// UpdateWorkerActiveCount sets the running worker gauge.
func UpdateWorkerActiveCount(n int) { globalManager.workerActive.Set(float64(n)) }

// RecordWorkerProcessingLatency observes one job in milliseconds.
func RecordWorkerProcessingLatency(ms float64) { globalManager.workerProcessingLatency.Observe(ms) }

// RecordWorkerError counts a failed job.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordStoreLatency observes one store call.
func RecordStoreLatency(backend, operation string, ms float64) {
	globalManager.storeLatency.WithLabelValues(backend, operation).Observe(ms)
}

// RecordStoreError counts a failed store call.
func RecordStoreError(backend, operation string) {
	globalManager.storeErrors.WithLabelValues(backend, operation).Inc()
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

// RecordHTTPError counts an error response.
func RecordHTTPError(endpoint, method, errorType string) {
	globalManager.httpErrors.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordAuthAttempt counts a sign-in ("barber") or gate ("manager") attempt.
func RecordAuthAttempt(surface, outcome string) {
	globalManager.authAttempts.WithLabelValues(surface, outcome).Inc()
}

// RecordReportGenerated counts a rendered report.
func RecordReportGenerated(section string) {
	globalManager.reportsGenerated.WithLabelValues(section).Inc()
}

// UpdateSystemMemoryUsage sets the heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.memoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(n int) { globalManager.goroutineCount.Set(float64(n)) }

// GetRegistry returns the registry every instrument is registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
