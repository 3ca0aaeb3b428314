package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yourorg/comps-api/internal/metrics"
	"github.com/yourorg/comps-api/internal/redisx"
	"github.com/yourorg/comps-api/rets"
)

// PhotoFetcher fetches one listing photo. Implemented by the MLS service;
// nil when the data source has no photo backend.
type PhotoFetcher interface {
	GetPhoto(ctx context.Context, listingID string, index int) (*rets.Object, error)
}

type PhotosDeps struct {
	Photos   PhotoFetcher
	Redis    *redisx.Client // optional byte cache
	CacheTTL time.Duration
}

// RegisterPhotos serves the photo proxy: GET /photos/{id}?idx=N. Photos are
// served raw with day-long cache headers so browsers and CDNs keep the load
// off the MLS.
func RegisterPhotos(r chi.Router, d PhotosDeps) {
	ttl := d.CacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	r.Get("/photos/{id}", func(w http.ResponseWriter, req *http.Request) {
		if d.Photos == nil {
			http.Error(w, "photo backend not configured", http.StatusServiceUnavailable)
			return
		}
		id := chi.URLParam(req, "id")
		idx, _ := strconv.Atoi(req.URL.Query().Get("idx"))

		ctx := req.Context()
		bodyKey := "photo:body:" + id + ":" + strconv.Itoa(idx)
		ctKey := "photo:ct:" + id + ":" + strconv.Itoa(idx)

		if d.Redis != nil {
			if data, err := d.Redis.GetBytes(ctx, bodyKey); err == nil && len(data) > 0 {
				contentType, _ := d.Redis.Get(ctx, ctKey)
				if contentType == "" {
					contentType = "image/jpeg"
				}
				metrics.PhotoCache.WithLabelValues("hit").Inc()
				servePhoto(w, data, contentType)
				return
			}
			metrics.PhotoCache.WithLabelValues("miss").Inc()
		}

		obj, err := d.Photos.GetPhoto(ctx, id, idx)
		if err != nil {
			http.Error(w, "photo fetch failed", http.StatusBadGateway)
			return
		}
		if obj == nil {
			http.NotFound(w, req)
			return
		}

		if d.Redis != nil {
			_ = d.Redis.SetBytes(ctx, bodyKey, obj.Data, ttl)
			_ = d.Redis.Set(ctx, ctKey, obj.ContentType, ttl)
		}
		servePhoto(w, obj.Data, obj.ContentType)
	})
}

func servePhoto(w http.ResponseWriter, data []byte, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400, s-maxage=86400")
	_, _ = w.Write(data)
}
