package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// layer and the blob cleanup pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	blobDeletions   prometheus.Counter
	blobFailures    prometheus.Counter
	cleanupPending  prometheus.Gauge
	subtreeDeletes  prometheus.Histogram
}

// NewMetricsService registers the collectors.
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

	blobDeletions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "material_blob_deletions_total",
		Help: "Blobs physically removed by the cleanup pipeline",
	})

	blobFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "material_blob_cleanup_failures_total",
		Help: "Blob deletion attempts that failed and were requeued",
	})

	cleanupPending := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "material_blob_cleanup_pending",
		Help: "Journaled blob paths awaiting deletion at the last sweep",
	})

	subtreeDeletes := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "material_subtree_delete_nodes",
		Help:    "Number of records removed per material subtree deletion",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, blobDeletions, blobFailures, cleanupPending, subtreeDeletes, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		blobDeletions:   blobDeletions,
		blobFailures:    blobFailures,
		cleanupPending:  cleanupPending,
		subtreeDeletes:  subtreeDeletes,
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

// ObserveBlobDeleted counts a successfully removed blob.
func (m *MetricsService) ObserveBlobDeleted() {
	if m == nil {
		return
	}
	m.blobDeletions.Inc()
}

// ObserveBlobCleanupFailure counts a failed deletion attempt.
func (m *MetricsService) ObserveBlobCleanupFailure() {
	if m == nil {
		return
	}
	m.blobFailures.Inc()
}

// ObserveCleanupSweep records the journal backlog found by a sweep.
func (m *MetricsService) ObserveCleanupSweep(pending int) {
	if m == nil {
		return
	}
	m.cleanupPending.Set(float64(pending))
}

// ObserveSubtreeDelete records the size of a subtree deletion.
func (m *MetricsService) ObserveSubtreeDelete(records int) {
	if m == nil {
		return
	}
	m.subtreeDeletes.Observe(float64(records))
}
