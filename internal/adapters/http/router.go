package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mlevkov/feedback-triage/internal/core/ports"
	"github.com/mlevkov/feedback-triage/internal/observability/metrics"
)

type Router struct {
	service  string
	themes   ports.ThemeDirectory
	features ports.FeatureDirectory
	reviewer ports.ClusterReviewer
	signals  ports.SignalDirectory
	runs     ports.RunLauncher
	exporter ports.ReportExporter
	metrics  *metrics.HTTPServerMetrics

	rateLimitRPS   float64
	rateLimitBurst int
	maxInFlight    int
}

type RouterOptions struct {
	Service        string
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int
}

func NewRouter(
	themes ports.ThemeDirectory,
	features ports.FeatureDirectory,
	reviewer ports.ClusterReviewer,
	signals ports.SignalDirectory,
	runs ports.RunLauncher,
	exporter ports.ReportExporter,
	httpMetrics *metrics.HTTPServerMetrics,
	options RouterOptions,
) *Router {
	service := options.Service
	if service == "" {
		service = "api"
	}
	return &Router{
		service:        service,
		themes:         themes,
		features:       features,
		reviewer:       reviewer,
		signals:        signals,
		runs:           runs,
		exporter:       exporter,
		metrics:        httpMetrics,
		rateLimitRPS:   options.RateLimitRPS,
		rateLimitBurst: options.RateLimitBurst,
		maxInFlight:    options.MaxInFlight,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/themes", rt.themesCollection)
	mux.HandleFunc("/v1/themes/hierarchy", rt.themeHierarchy)
	mux.HandleFunc("/v1/themes/batch", rt.createThemesBatch)
	mux.HandleFunc("/v1/themes/", rt.themeByID)
	mux.HandleFunc("/v1/features", rt.featuresCollection)
	mux.HandleFunc("/v1/features/", rt.featureByID)
	mux.HandleFunc("/v1/clusters/pending", rt.pendingClusters)
	mux.HandleFunc("/v1/clusters/", rt.clusterDecision)
	mux.HandleFunc("/v1/signals", rt.listSignals)
	mux.HandleFunc("/v1/signals/", rt.toggleSignal)
	mux.HandleFunc("/v1/runs", rt.startRun)
	mux.HandleFunc("/v1/reports/features.xlsx", rt.exportFeatures)

	var handler http.Handler = mux
	if rt.maxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.maxInFlight, 100*time.Millisecond)
	}
	if rt.rateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	}
	handler = accessLogMiddleware(handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

// writeSubmissionError echoes the rejected payload back so the operator can
// correct and resubmit without reconstructing the request.
func writeSubmissionError(w http.ResponseWriter, err error, submitted any) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]any{
		"error":     err.Error(),
		"submitted": submitted,
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}
