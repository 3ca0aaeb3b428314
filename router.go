package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"

	httpapi "github.com/yourorg/comps-api/http"
	"github.com/yourorg/comps-api/internal/logger"
	"github.com/yourorg/comps-api/internal/metrics"
)

func BuildRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(logger.Middleware(app.Log))
	r.Use(httprate.LimitByIP(100, 1*time.Minute)) // protect upstream MLS quota
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		httpapi.RegisterComps(r, httpapi.CompsDeps{
			Service:  app.Service,
			Redis:    app.Redis,
			Store:    app.Store,
			Prefetch: app.Prefetch,
			CacheTTL: app.SearchCacheTTL,
			Log:      app.Log,
		})
		httpapi.RegisterListings(r, httpapi.ListingsDeps{Listings: app.Listings})
		httpapi.RegisterAnalyses(r, httpapi.AnalysesDeps{Store: app.Store})
		httpapi.RegisterProperties(r, httpapi.PropertiesDeps{Service: app.Service, Redis: app.Redis})
	})

	// Photos serve raw bytes, not JSON.
	httpapi.RegisterPhotos(r, httpapi.PhotosDeps{
		Photos:   app.Photos,
		Redis:    app.Redis,
		CacheTTL: app.PhotoCacheTTL,
	})

	return r
}
