package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mlevkov/feedback-triage/internal/core/domain"
)

type reviewRequest struct {
	ReviewedBy string                   `json:"reviewed_by"`
	Feedback   string                   `json:"feedback,omitempty"`
	Overrides  *domain.ClusterOverrides `json:"overrides,omitempty"`
}

func (rt *Router) pendingClusters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	clusters, err := rt.reviewer.Pending(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clusters": clusters})
}

func (rt *Router) clusterDecision(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/clusters/")
	clusterID, decision, ok := strings.Cut(rest, "/")
	if !ok || clusterID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "expected /v1/clusters/{cluster_id}/{decision}"})
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.ReviewedBy) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reviewed_by is required"})
		return
	}

	var cluster *domain.DiscoveredCluster
	var err error
	switch decision {
	case "approve":
		cluster, err = rt.reviewer.Approve(r.Context(), clusterID, req.ReviewedBy, req.Feedback)
	case "reject":
		cluster, err = rt.reviewer.Reject(r.Context(), clusterID, req.ReviewedBy, req.Feedback)
	case "modify":
		if req.Overrides == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "overrides is required for modify"})
			return
		}
		cluster, err = rt.reviewer.Modify(r.Context(), clusterID, req.ReviewedBy, req.Feedback, *req.Overrides)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown decision " + decision})
		return
	}
	if err != nil {
		writeSubmissionError(w, err, req)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordReviewDecision(rt.service, decision)
	}
	writeJSON(w, http.StatusOK, cluster)
}
