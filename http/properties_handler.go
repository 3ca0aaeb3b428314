package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/comps-api/internal/canon"
	"github.com/yourorg/comps-api/internal/property"
	"github.com/yourorg/comps-api/internal/redisx"
)

type PropertiesDeps struct {
	Service property.Service
	Redis   *redisx.Client // optional geocode cache
}

// RegisterProperties exposes single-listing lookup and address geocoding.
func RegisterProperties(r chi.Router, d PropertiesDeps) {
	r.Get("/properties/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		p, err := d.Service.GetProperty(req.Context(), id)
		if err != nil {
			writeUpstreamError(w, req, err)
			return
		}
		if p == nil {
			render.Status(req, http.StatusNotFound)
			render.JSON(w, req, map[string]any{"error": "not_found", "id": id})
			return
		}
		render.JSON(w, req, p)
	})

	r.Get("/properties/{id}/photos", func(w http.ResponseWriter, req *http.Request) {
		photos, err := d.Service.GetPropertyPhotos(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeUpstreamError(w, req, err)
			return
		}
		if photos == nil {
			photos = []string{}
		}
		render.JSON(w, req, map[string]any{"ok": true, "photos": photos})
	})

	r.Post("/geocode", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Address string `json:"address"`
			City    string `json:"city"`
			State   string `json:"state"`
			Zip     string `json:"zip"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "invalid_json", "detail": err.Error()})
			return
		}
		if body.Address == "" || body.City == "" {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "address_required", "detail": "address and city are required"})
			return
		}

		ctx := req.Context()
		cacheKey := "geocode:" + canon.Key(body.Address, body.City, body.State, body.Zip)

		if d.Redis != nil {
			if val, err := d.Redis.Get(ctx, cacheKey); err == nil && val != "" {
				var coords property.Coordinates
				if err := json.Unmarshal([]byte(val), &coords); err == nil {
					render.JSON(w, req, map[string]any{"ok": true, "source": "cache", "coords": coords})
					return
				}
			}
		}

		coords, err := d.Service.GeocodeAddress(ctx, body.Address, body.City, body.State, body.Zip)
		if err != nil {
			render.Status(req, http.StatusBadGateway)
			render.JSON(w, req, map[string]any{"error": "geocode_failed", "detail": err.Error()})
			return
		}
		if coords == nil {
			render.Status(req, http.StatusNotFound)
			render.JSON(w, req, map[string]any{"error": "no_match"})
			return
		}

		if d.Redis != nil {
			if b, err := json.Marshal(coords); err == nil {
				_ = d.Redis.Set(ctx, cacheKey, string(b), 7*24*time.Hour)
			}
		}
		render.JSON(w, req, map[string]any{"ok": true, "source": "live", "coords": coords})
	})
}
