// Package metrics provides Prometheus metrics for the lnkd score service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns every collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Scoring
	calculationsSubmitted prometheus.Counter
	calculationsCompleted prometheus.Counter
	calculationsRejected  *prometheus.CounterVec
	calculationsReplayed  prometheus.Counter
	inputFallbacks        *prometheus.CounterVec
	computeLatency        prometheus.Histogram
	displayDelay          prometheus.Histogram
	scoreTotals           prometheus.Histogram

	// Pipeline
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	workerCount   prometheus.Gauge
	storeEntries  prometheus.Gauge
	storeEvicted  prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByComponent   *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var (
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // private registry keeps default Go collectors out
	globalManager  *Manager                   //nolint:gochecknoglobals // package-level recording helpers
)

func init() { //nolint:gochecknoinits // global collectors must exist before any Record call
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a Manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "lnkd",
		subsystem:        "calculator",
		histogramBuckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000, 2500, 5000},
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

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.calculationsSubmitted = m.counter("calculations_submitted_total", "Calculations accepted for asynchronous processing")
	m.calculationsCompleted = m.counter("calculations_completed_total", "Calculations that reached the done phase")
	m.calculationsRejected = m.counterVec("calculations_rejected_total", "Calculations refused before processing", "reason")
	m.calculationsReplayed = m.counter("calculations_replayed_total", "Submissions answered with an existing calculation for a repeated idempotency key")
	m.inputFallbacks = m.counterVec("input_fallbacks_total", "Input fields replaced by zero", "field", "reason")
	m.computeLatency = m.histogram("compute_latency_milliseconds", "Time spent evaluating the score formula", m.histogramBuckets)
	m.displayDelay = m.histogram("display_delay_milliseconds", "Delay applied before a calculation is marked done", m.histogramBuckets)
	m.scoreTotals = m.histogram("score_total", "Distribution of computed totals", []float64{0, 10, 20, 30, 45, 60, 90, 120, 180, 300, 600})

	m.queueSize = m.gauge("queue_size", "Calculations waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum number of queued calculations")
	m.workerCount = m.gauge("worker_count", "Number of calculation workers")
	m.storeEntries = m.gauge("store_entries", "Calculations held in memory")
	m.storeEvicted = m.counter("store_evictions_total", "Calculations evicted to respect store capacity")

	auto := promauto.With(m.registry)
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "HTTP errors by endpoint", "endpoint", "method", "error_type")
	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordCalculationSubmitted counts an accepted calculation.
func RecordCalculationSubmitted() { globalManager.calculationsSubmitted.Inc() }

// RecordCalculationCompleted counts a finished calculation.
func RecordCalculationCompleted() { globalManager.calculationsCompleted.Inc() }

// RecordCalculationRejected counts a refused calculation, e.g. reason "queue_full".
func RecordCalculationRejected(reason string) {
	globalManager.calculationsRejected.WithLabelValues(reason).Inc()
}

// RecordCalculationReplayed counts a submission served from its idempotency key.
func RecordCalculationReplayed() { globalManager.calculationsReplayed.Inc() }

// RecordInputFallback counts a field that degraded to zero.
func RecordInputFallback(field, reason string) {
	globalManager.inputFallbacks.WithLabelValues(field, reason).Inc()
}

// RecordComputeLatency records formula evaluation time in milliseconds.
func RecordComputeLatency(ms float64) { globalManager.computeLatency.Observe(ms) }

// RecordDisplayDelay records the applied display delay in milliseconds.
func RecordDisplayDelay(ms float64) { globalManager.displayDelay.Observe(ms) }

// RecordScoreTotal records a computed total.
func RecordScoreTotal(total float64) { globalManager.scoreTotals.Observe(total) }

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateWorkerCount sets the worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// UpdateStoreEntries sets the number of stored calculations.
func UpdateStoreEntries(count int) { globalManager.storeEntries.Set(float64(count)) }

// RecordStoreEviction counts an evicted calculation.
func RecordStoreEviction() { globalManager.storeEvicted.Inc() }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

// RecordErrorByEndpoint records an HTTP error.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByComponent records an internal error.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// Handler serves the private registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
