// Package metrics provides Prometheus metrics for the DKP scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// latencyBuckets are millisecond buckets sized for in-memory scoring.
var latencyBuckets = []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000} //nolint:gochecknoglobals // bucket layout

// Manager manages all Prometheus metrics for the DKP service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Scoring
	computations       prometheus.Counter
	computationLatency prometheus.Histogram
	entitiesScored     prometheus.Counter
	quadrantAssigned   *prometheus.CounterVec

	// Ingestion
	snapshotRows prometheus.Counter
	ingestErrors *prometheus.CounterVec

	// Profiles
	profilesSaved   prometheus.Counter
	profilesDeleted prometheus.Counter
	profilesStored  prometheus.Gauge
	storeLatency    *prometheus.HistogramVec

	// Batch recomputation
	recomputeJobs    *prometheus.CounterVec
	recomputeLatency prometheus.Histogram
	workersBusy      prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "dkp",
		subsystem:        "scoring",
		histogramBuckets: latencyBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
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
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.computations = auto.NewCounter(m.counterOpts("computations_total",
		"Total number of snapshot diff computations"))
	m.computationLatency = auto.NewHistogram(m.histogramOpts("computation_latency_milliseconds",
		"Histogram of scoring latency in milliseconds"))
	m.entitiesScored = auto.NewCounter(m.counterOpts("entities_scored_total",
		"Total number of governors scored"))
	m.quadrantAssigned = auto.NewCounterVec(m.counterOpts("quadrant_assignments_total",
		"Governors classified per quadrant"), []string{"quadrant"})

	m.snapshotRows = auto.NewCounter(m.counterOpts("snapshot_rows_total",
		"Total number of snapshot rows ingested"))
	m.ingestErrors = auto.NewCounterVec(m.counterOpts("ingest_errors_total",
		"Snapshot ingestion failures by reason"), []string{"reason"})

	m.profilesSaved = auto.NewCounter(m.counterOpts("profiles_saved_total",
		"Total number of profiles saved or replaced"))
	m.profilesDeleted = auto.NewCounter(m.counterOpts("profiles_deleted_total",
		"Total number of profiles deleted"))
	m.profilesStored = auto.NewGauge(m.gaugeOpts("profiles_stored",
		"Current number of stored profiles"))
	m.storeLatency = auto.NewHistogramVec(m.histogramOpts("store_latency_milliseconds",
		"Profile store latency in milliseconds by operation"), []string{"operation"})

	m.recomputeJobs = auto.NewCounterVec(m.counterOpts("recompute_jobs_total",
		"Profile recompute jobs by outcome"), []string{"outcome"})
	m.recomputeLatency = auto.NewHistogram(m.histogramOpts("recompute_latency_milliseconds",
		"Latency of a single profile recompute job in milliseconds"))
	m.workersBusy = auto.NewGauge(m.gaugeOpts("workers_busy",
		"Number of recompute workers currently running a job"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total",
		"Total number of errors by component"), []string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total",
		"Total number of errors by type and severity"), []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"Total number of errors by HTTP endpoint"), []string{"endpoint", "method", "error_type"})
	m.errorLatency = auto.NewHistogramVec(m.histogramOpts("error_latency_milliseconds",
		"Latency of failed operations in milliseconds"), []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes",
		"Current heap allocation in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines",
		"Current number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds",
		"Average GC pause time in milliseconds"))
}

// RecordComputation records one scoring run over n governors.
func RecordComputation(entities int, latencyMs float64) {
	globalManager.computations.Inc()
	globalManager.entitiesScored.Add(float64(entities))
	globalManager.computationLatency.Observe(latencyMs)
}

// RecordQuadrant adds n governors to a quadrant tally.
func RecordQuadrant(quadrant string, n int) {
	globalManager.quadrantAssigned.WithLabelValues(quadrant).Add(float64(n))
}

// RecordSnapshotRows records rows read from an export.
func RecordSnapshotRows(n int) {
	globalManager.snapshotRows.Add(float64(n))
}

// RecordIngestError records a failed export parse.
func RecordIngestError(reason string) {
	globalManager.ingestErrors.WithLabelValues(reason).Inc()
}

// RecordProfileSaved records a profile save.
func RecordProfileSaved() {
	globalManager.profilesSaved.Inc()
}

// RecordProfileDeleted records a profile deletion.
func RecordProfileDeleted() {
	globalManager.profilesDeleted.Inc()
}

// UpdateProfilesStored sets the stored profile gauge.
func UpdateProfilesStored(count int) {
	globalManager.profilesStored.Set(float64(count))
}

// RecordStoreLatency records the latency of a store operation.
func RecordStoreLatency(operation string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordRecomputeJob records a finished recompute job.
func RecordRecomputeJob(outcome string, latencyMs float64) {
	globalManager.recomputeJobs.WithLabelValues(outcome).Inc()
	globalManager.recomputeLatency.Observe(latencyMs)
}

// AddWorkersBusy adjusts the busy worker gauge by delta.
func AddWorkersBusy(delta int) {
	globalManager.workersBusy.Add(float64(delta))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error by component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error by HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage updates system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
