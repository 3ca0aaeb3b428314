package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mmcloughlin/geohash"

	"github.com/yourorg/comps-api/internal/metrics"
	"github.com/yourorg/comps-api/internal/prefetch"
	"github.com/yourorg/comps-api/internal/property"
	"github.com/yourorg/comps-api/internal/redisx"
	"github.com/yourorg/comps-api/internal/store"
	"github.com/yourorg/comps-api/rets"
)

type CompsDeps struct {
	Service  property.Service
	Redis    *redisx.Client       // optional result cache
	Store    *store.Store         // optional snapshot persistence
	Prefetch *prefetch.Prefetcher // optional photo warmup
	CacheTTL time.Duration
	Log      *slog.Logger
}

type CompsRequest struct {
	Subject *property.SubjectProperty `json:"subject"`
	Mode    string                    `json:"mode,omitempty"`
}

func RegisterComps(r chi.Router, d CompsDeps) {
	if d.Log == nil {
		d.Log = slog.Default()
	}

	// POST: JSON body
	r.Post("/comps/search", func(w http.ResponseWriter, req *http.Request) {
		var body CompsRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "invalid_json", "detail": err.Error()})
			return
		}
		handleCompsRequest(w, req, d, body)
	})

	// GET: query params (compatibility)
	r.Get("/comps/search", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		subject := property.SubjectProperty{
			Address:      q.Get("address"),
			City:         q.Get("city"),
			State:        q.Get("state"),
			Zip:          q.Get("zip"),
			PropertyType: property.Type(q.Get("property_type")),
		}
		if v := q.Get("bedrooms"); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				subject.Bedrooms = i
			}
		}
		if v := q.Get("bathrooms"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				subject.Bathrooms = f
			}
		}
		if v := q.Get("sqft"); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				subject.Sqft = i
			}
		}
		if v := q.Get("lat"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				subject.Lat = f
			}
		}
		if v := q.Get("lng"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				subject.Lng = f
			}
		}
		handleCompsRequest(w, req, d, CompsRequest{Subject: &subject, Mode: q.Get("mode")})
	})
}

func handleCompsRequest(w http.ResponseWriter, req *http.Request, d CompsDeps, body CompsRequest) {
	if body.Subject == nil || body.Subject.City == "" {
		render.Status(req, http.StatusBadRequest)
		render.JSON(w, req, map[string]any{"error": "subject_required", "detail": "subject property with city is required"})
		return
	}
	subject := *body.Subject

	mode := property.ModeSold
	if body.Mode == string(property.ModeActive) {
		mode = property.ModeActive
	}

	ctx := req.Context()
	cacheKey := compsCacheKey(subject, mode)

	if d.Redis != nil {
		if val, err := d.Redis.Get(ctx, cacheKey); err == nil && val != "" {
			var cached []property.CompResult
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				metrics.SearchCache.WithLabelValues("hit").Inc()
				render.JSON(w, req, map[string]any{
					"ok":      true,
					"source":  "cache",
					"mode":    mode,
					"count":   len(cached),
					"results": cached,
				})
				return
			}
		}
		metrics.SearchCache.WithLabelValues("miss").Inc()
	}

	results, err := d.Service.SearchComps(ctx, subject, mode)
	if err != nil {
		writeUpstreamError(w, req, err)
		return
	}

	if d.Redis != nil {
		if b, err := json.Marshal(results); err == nil {
			ttl := d.CacheTTL
			if ttl <= 0 {
				ttl = 5 * time.Minute
			}
			_ = d.Redis.Set(ctx, cacheKey, string(b), ttl)
		}
	}

	if d.Store != nil {
		snap := store.SnapshotInput{
			Mode:        mode,
			SubjectCity: subject.City,
			Query:       cacheKey,
			Results:     results,
		}
		if err := d.Store.SaveSearchSnapshot(ctx, snap); err != nil {
			d.Log.Warn("snapshot persist failed", "error", err)
		}
	}

	// Warm the photo cache for the first photo of each comp.
	if d.Prefetch != nil {
		for _, comp := range results {
			if len(comp.Photos) > 0 {
				d.Prefetch.Enqueue(prefetch.Job{ListingID: comp.ID, Index: 0})
			}
		}
	}

	render.JSON(w, req, map[string]any{
		"ok":      true,
		"source":  "live",
		"mode":    mode,
		"count":   len(results),
		"results": results,
	})
}

// compsCacheKey buckets the subject by attributes and a coarse geohash so
// nearby repeat searches share a cache entry.
func compsCacheKey(subject property.SubjectProperty, mode property.SearchMode) string {
	cell := "nogeo"
	if subject.HasCoords() {
		cell = geohash.EncodeWithPrecision(subject.Lat, subject.Lng, 6)
	}
	return fmt.Sprintf("comps:%s:%s:%d:%s:%d:%s:%s",
		mode,
		strings.ToLower(strings.TrimSpace(subject.City)),
		subject.Bedrooms,
		strconv.FormatFloat(subject.Bathrooms, 'f', -1, 64),
		subject.Sqft,
		subject.PropertyType,
		cell,
	)
}

func writeUpstreamError(w http.ResponseWriter, req *http.Request, err error) {
	var reply *rets.ReplyError
	if errors.As(err, &reply) {
		render.Status(req, http.StatusBadGateway)
		render.JSON(w, req, map[string]any{
			"error":      "mls_error",
			"reply_code": reply.Code,
			"detail":     reply.Error(),
		})
		return
	}
	render.Status(req, http.StatusBadGateway)
	render.JSON(w, req, map[string]any{"error": "upstream_error", "detail": err.Error()})
}
