package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campushq/timetable-api/internal/timetable"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// conflict detection engine.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	cacheLatency      prometheus.Observer
	cacheWrite        prometheus.Observer
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
	detectionDuration prometheus.Observer
	conflictsDetected *prometheus.CounterVec
	skippedEntries    prometheus.Counter
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

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	detectionDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "conflict_detection_duration_seconds",
		Help:    "Duration of full conflict detection passes",
		Buckets: prometheus.DefBuckets,
	})

	conflictsDetected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "conflicts_detected_total",
		Help: "Conflicts found by detection passes, by kind",
	}, []string{"kind"})

	skippedEntries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "detection_skipped_entries_total",
		Help: "Entries skipped during detection due to missing references",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHits, cacheMisses, detectionDuration, conflictsDetected, skippedEntries, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:          registry,
		handler:           handler,
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		cacheLatency:      cacheLatency,
		cacheWrite:        cacheWrite,
		cacheHits:         cacheHits,
		cacheMisses:       cacheMisses,
		detectionDuration: detectionDuration,
		conflictsDetected: conflictsDetected,
		skippedEntries:    skippedEntries,
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDetection records the outcome of one conflict detection pass.
func (m *MetricsService) ObserveDetection(duration time.Duration, report *timetable.Report) {
	if m == nil || report == nil {
		return
	}
	m.detectionDuration.Observe(duration.Seconds())
	summary := report.Summarize()
	m.conflictsDetected.WithLabelValues(string(timetable.ConflictRoomCapacity)).Add(float64(summary.RoomCapacity))
	m.conflictsDetected.WithLabelValues(string(timetable.ConflictRoomDoubleBook)).Add(float64(summary.RoomDoubleBook))
	m.conflictsDetected.WithLabelValues(string(timetable.ConflictInstructor)).Add(float64(summary.Instructor))
	m.conflictsDetected.WithLabelValues(string(timetable.ConflictTimeSlotExceeded)).Add(float64(summary.TimeSlotExceeded))
	m.skippedEntries.Add(float64(report.Skipped))
}
