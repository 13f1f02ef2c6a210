package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	ingestedRows    *prometheus.CounterVec
	exportedRows    *prometheus.CounterVec
	enrollmentOps   *prometheus.CounterVec
	exportJobs      *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	rowsAccepted         uint64
	rowsRejected         uint64
	rowsExported         uint64
}

// MetricsSnapshot aggregates counters for the system endpoint.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	RowsAccepted             uint64    `json:"rows_accepted"`
	RowsRejected             uint64    `json:"rows_rejected"`
	RowsExported             uint64    `json:"rows_exported"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	ingestedRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "records_ingested_rows_total",
		Help: "Rows read by imports, by entity and outcome",
	}, []string{"entity", "outcome"})

	exportedRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "records_exported_rows_total",
		Help: "Rows written by exports, by entity",
	}, []string{"entity"})

	enrollmentOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enrollment_operations_total",
		Help: "Evaluation engine operations by kind and outcome",
	}, []string{"operation", "outcome"})

	exportJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "export_jobs_total",
		Help: "Background export jobs by terminal status",
	}, []string{"status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, ingestedRows, exportedRows, enrollmentOps, exportJobs, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		ingestedRows:    ingestedRows,
		exportedRows:    exportedRows,
		enrollmentOps:   enrollmentOps,
		exportJobs:      exportJobs,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordIngestion counts accepted and rejected rows of one import.
func (m *MetricsService) RecordIngestion(entity string, accepted, rejected int) {
	if m == nil {
		return
	}
	m.ingestedRows.WithLabelValues(entity, "accepted").Add(float64(accepted))
	m.ingestedRows.WithLabelValues(entity, "rejected").Add(float64(rejected))
	atomic.AddUint64(&m.rowsAccepted, uint64(accepted))
	atomic.AddUint64(&m.rowsRejected, uint64(rejected))
}

// RecordExport counts rows written by one export.
func (m *MetricsService) RecordExport(entity string, rows int) {
	if m == nil {
		return
	}
	m.exportedRows.WithLabelValues(entity).Add(float64(rows))
	atomic.AddUint64(&m.rowsExported, uint64(rows))
}

// RecordEnrollmentOperation counts one engine call.
func (m *MetricsService) RecordEnrollmentOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.enrollmentOps.WithLabelValues(operation, outcome).Inc()
}

// RecordExportJob counts a background export reaching status.
func (m *MetricsService) RecordExportJob(status string) {
	if m == nil {
		return
	}
	m.exportJobs.WithLabelValues(status).Inc()
}

// Snapshot returns aggregated metrics suitable for the system endpoint.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		RowsAccepted:             atomic.LoadUint64(&m.rowsAccepted),
		RowsRejected:             atomic.LoadUint64(&m.rowsRejected),
		RowsExported:             atomic.LoadUint64(&m.rowsExported),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
