package httpadapter

import (
	"net/http"
	"strings"

	"github.com/mlevkov/feedback-triage/internal/core/domain"
)

func (rt *Router) listSignals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	q := r.URL.Query()
	var filter domain.SignalFilter
	if raw := q.Get("signal_type"); raw != "" {
		signalType := domain.SignalType(raw)
		filter.Type = &signalType
	}
	if raw := q.Get("is_active"); raw != "" {
		active := raw == "true"
		filter.IsActive = &active
	}
	filter.TargetCategory = q.Get("target_category")

	signals, err := rt.signals.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"signals": signals})
}

func (rt *Router) toggleSignal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/signals/")
	signalID, action, ok := strings.Cut(rest, "/")
	if !ok || signalID == "" || action != "toggle" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "expected /v1/signals/{signal_id}/toggle"})
		return
	}

	signal, err := rt.signals.Toggle(r.Context(), signalID)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordSignalToggle(rt.service, signal.IsActive)
	}
	writeJSON(w, http.StatusOK, signal)
}
