package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/mlevkov/feedback-triage/internal/core/domain"
)

func (rt *Router) featuresCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		criteria, err := parseFeatureCriteria(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		features, err := rt.features.List(r.Context(), r.URL.Query().Get("theme_id"), criteria)
		if err != nil {
			writeError(w, err)
			return
		}
		if rt.metrics != nil {
			rt.metrics.RecordFeatureListSize(rt.service, len(features))
		}
		writeJSON(w, http.StatusOK, map[string]any{"features": features})
	case http.MethodPost:
		var draft domain.Feature
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		feature, err := rt.features.Create(r.Context(), draft)
		if err != nil {
			writeSubmissionError(w, err, draft)
			return
		}
		writeJSON(w, http.StatusCreated, feature)
	default:
		methodNotAllowed(w)
	}
}

func (rt *Router) featureByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/features/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "feature id is required"})
		return
	}

	switch r.Method {
	case http.MethodPut:
		var feature domain.Feature
		if err := json.NewDecoder(r.Body).Decode(&feature); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		feature.ID = id
		updated, err := rt.features.Update(r.Context(), feature)
		if err != nil {
			writeSubmissionError(w, err, feature)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := rt.features.Delete(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func parseFeatureCriteria(r *http.Request) (domain.FeatureCriteria, error) {
	q := r.URL.Query()
	criteria := domain.FeatureCriteria{
		SearchQuery: q.Get("search"),
		Status:      q.Get("status"),
		Urgency:     q.Get("urgency"),
		SortBy:      domain.SortField(q.Get("sort_by")),
		SortOrder:   domain.SortOrder(q.Get("sort_order")),
	}

	if raw := q.Get("mrr_min"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.FeatureCriteria{}, fmt.Errorf("mrr_min must be a number")
		}
		criteria.MRRMin = &value
	}
	if raw := q.Get("mrr_max"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.FeatureCriteria{}, fmt.Errorf("mrr_max must be a number")
		}
		criteria.MRRMax = &value
	}
	return criteria, nil
}
