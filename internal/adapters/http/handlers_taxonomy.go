package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mlevkov/feedback-triage/internal/core/domain"
)

type themeRequest struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	ParentThemeID *string `json:"parent_theme_id,omitempty"`
}

func (rt *Router) themesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		themes, err := rt.themes.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"themes": themes})
	case http.MethodPost:
		var req themeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		theme, err := rt.themes.Create(r.Context(), req.Name, req.Description, req.ParentThemeID)
		if err != nil {
			writeSubmissionError(w, err, req)
			return
		}
		writeJSON(w, http.StatusCreated, theme)
	default:
		methodNotAllowed(w)
	}
}

func (rt *Router) themeHierarchy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	if r.URL.Query().Get("flat") == "true" {
		themes, err := rt.themes.FlatHierarchy(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"themes": themes})
		return
	}

	tree, err := rt.themes.Hierarchy(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hierarchy": tree})
}

func (rt *Router) createThemesBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		Themes []themeRequest `json:"themes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if len(req.Themes) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "themes is required"})
		return
	}

	drafts := make([]domain.Theme, 0, len(req.Themes))
	for _, t := range req.Themes {
		drafts = append(drafts, domain.Theme{
			Name:          t.Name,
			Description:   t.Description,
			ParentThemeID: t.ParentThemeID,
		})
	}

	created, err := rt.themes.CreateBatch(r.Context(), drafts)
	if err != nil {
		// Partial success: report what landed alongside the failure.
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]any{
			"error":   err.Error(),
			"created": created,
		})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"created": created})
}

func (rt *Router) themeByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/themes/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "theme id is required"})
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req themeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		theme, err := rt.themes.Update(r.Context(), id, req.Name, req.Description, req.ParentThemeID)
		if err != nil {
			writeSubmissionError(w, err, req)
			return
		}
		writeJSON(w, http.StatusOK, theme)
	case http.MethodDelete:
		if err := rt.themes.Delete(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}
