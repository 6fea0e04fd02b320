package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	reviewsTotal          *prometheus.CounterVec
	signalTogglesTotal    *prometheus.CounterVec
	runsTotal             *prometheus.CounterVec
	reportExportsTotal    *prometheus.CounterVec
	reportExportDuration  *prometheus.HistogramVec
	featureListedFeatures *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "triage",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "triage",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "triage",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	reviewsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "triage",
			Subsystem: "review",
			Name:      "decisions_total",
			Help:      "Total cluster review decisions by outcome.",
		},
		[]string{"service", "decision"},
	)
	signalTogglesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "triage",
			Subsystem: "signals",
			Name:      "toggles_total",
			Help:      "Total signal activation toggles by resulting state.",
		},
		[]string{"service", "state"},
	)
	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "triage",
			Subsystem: "runs",
			Name:      "started_total",
			Help:      "Total clustering runs accepted for processing.",
		},
		[]string{"service"},
	)
	reportExportsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "triage",
			Subsystem: "reports",
			Name:      "exports_total",
			Help:      "Total workbook exports by status.",
		},
		[]string{"service", "status"},
	)
	reportExportDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "triage",
			Subsystem: "reports",
			Name:      "export_duration_seconds",
			Help:      "Workbook export duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	featureListedFeatures := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "triage",
			Subsystem: "features",
			Name:      "list_result_size",
			Help:      "Distribution of result sizes for feature list queries.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		reviewsTotal,
		signalTogglesTotal,
		runsTotal,
		reportExportsTotal,
		reportExportDuration,
		featureListedFeatures,
	)

	return &HTTPServerMetrics{
		registry:              registry,
		requestTotal:          requestTotal,
		requestDuration:       requestDuration,
		requestInFlight:       requestInFlight,
		reviewsTotal:          reviewsTotal,
		signalTogglesTotal:    signalTogglesTotal,
		runsTotal:             runsTotal,
		reportExportsTotal:    reportExportsTotal,
		reportExportDuration:  reportExportDuration,
		featureListedFeatures: featureListedFeatures,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses resource ids so the path label stays low-cardinality.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/themes/") && path != "/v1/themes/hierarchy" && path != "/v1/themes/batch":
		return "/v1/themes/{theme_id}"
	case strings.HasPrefix(path, "/v1/features/"):
		return "/v1/features/{feature_id}"
	case strings.HasPrefix(path, "/v1/clusters/"):
		return "/v1/clusters/{cluster_id}"
	case strings.HasPrefix(path, "/v1/signals/"):
		return "/v1/signals/{signal_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordReviewDecision(service, decision string) {
	if decision == "" {
		decision = "unknown"
	}
	m.reviewsTotal.WithLabelValues(service, decision).Inc()
}

func (m *HTTPServerMetrics) RecordSignalToggle(service string, active bool) {
	state := "inactive"
	if active {
		state = "active"
	}
	m.signalTogglesTotal.WithLabelValues(service, state).Inc()
}

func (m *HTTPServerMetrics) RecordRunStarted(service string) {
	m.runsTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordReportExport(service string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.reportExportsTotal.WithLabelValues(service, status).Inc()
	m.reportExportDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordFeatureListSize(service string, size int) {
	m.featureListedFeatures.WithLabelValues(service).Observe(float64(size))
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
