package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mlevkov/feedback-triage/internal/core/domain"
)

func (rt *Router) startRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var params domain.RunParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	run, err := rt.runs.Start(r.Context(), params)
	if err != nil {
		writeSubmissionError(w, err, params)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordRunStarted(rt.service)
	}
	writeJSON(w, http.StatusAccepted, run)
}

func (rt *Router) exportFeatures(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	start := time.Now()
	features, err := rt.features.List(r.Context(), "", domain.FeatureCriteria{})
	if err != nil {
		writeError(w, err)
		return
	}
	themes, err := rt.themes.FlatHierarchy(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	workbook, err := rt.exporter.ExportFeatures(r.Context(), features, themes)
	if rt.metrics != nil {
		rt.metrics.RecordReportExport(rt.service, time.Since(start), err)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="features.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(workbook)
}
