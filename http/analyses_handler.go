package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/comps-api/internal/canon"
	"github.com/yourorg/comps-api/internal/property"
	"github.com/yourorg/comps-api/internal/store"
)

type AnalysesDeps struct {
	Store *store.Store // nil when persistence is not configured
}

type SaveAnalysisRequest struct {
	Name    string                    `json:"name"`
	Mode    property.SearchMode       `json:"mode"`
	Subject *property.SubjectProperty `json:"subject"`
	Results []property.CompResult     `json:"results"`
}

// RegisterAnalyses exposes saved comp analyses: create, list, get, delete.
func RegisterAnalyses(r chi.Router, d AnalysesDeps) {
	guard := func(w http.ResponseWriter, req *http.Request) bool {
		if d.Store == nil {
			render.Status(req, http.StatusServiceUnavailable)
			render.JSON(w, req, map[string]any{"error": "persistence_unavailable", "detail": "PG_DSN not configured"})
			return false
		}
		return true
	}

	r.Post("/analyses", func(w http.ResponseWriter, req *http.Request) {
		if !guard(w, req) {
			return
		}
		var body SaveAnalysisRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "invalid_json", "detail": err.Error()})
			return
		}
		if body.Name == "" || body.Subject == nil {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "name_and_subject_required"})
			return
		}
		subj := *body.Subject
		analysis, err := d.Store.SaveAnalysis(req.Context(), store.SaveAnalysisInput{
			Name:        body.Name,
			PropertyKey: canon.Key(subj.Address, subj.City, subj.State, subj.Zip),
			Mode:        body.Mode,
			Subject:     subj,
			Results:     body.Results,
		})
		if err != nil {
			render.Status(req, http.StatusInternalServerError)
			render.JSON(w, req, map[string]any{"error": "save_failed", "detail": err.Error()})
			return
		}
		render.Status(req, http.StatusCreated)
		render.JSON(w, req, analysis)
	})

	r.Get("/analyses", func(w http.ResponseWriter, req *http.Request) {
		if !guard(w, req) {
			return
		}
		limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
		analyses, err := d.Store.ListAnalyses(req.Context(), limit)
		if err != nil {
			render.Status(req, http.StatusInternalServerError)
			render.JSON(w, req, map[string]any{"error": "list_failed", "detail": err.Error()})
			return
		}
		render.JSON(w, req, map[string]any{"ok": true, "count": len(analyses), "analyses": analyses})
	})

	r.Get("/analyses/{id}", func(w http.ResponseWriter, req *http.Request) {
		if !guard(w, req) {
			return
		}
		analysis, err := d.Store.GetAnalysis(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			render.Status(req, http.StatusInternalServerError)
			render.JSON(w, req, map[string]any{"error": "get_failed", "detail": err.Error()})
			return
		}
		if analysis == nil {
			render.Status(req, http.StatusNotFound)
			render.JSON(w, req, map[string]any{"error": "not_found"})
			return
		}
		render.JSON(w, req, analysis)
	})

	r.Delete("/analyses/{id}", func(w http.ResponseWriter, req *http.Request) {
		if !guard(w, req) {
			return
		}
		deleted, err := d.Store.DeleteAnalysis(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			render.Status(req, http.StatusInternalServerError)
			render.JSON(w, req, map[string]any{"error": "delete_failed", "detail": err.Error()})
			return
		}
		if !deleted {
			render.Status(req, http.StatusNotFound)
			render.JSON(w, req, map[string]any{"error": "not_found"})
			return
		}
		render.JSON(w, req, map[string]any{"ok": true})
	})
}
