package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	httpapi "github.com/yourorg/comps-api/http"
	"github.com/yourorg/comps-api/internal/demo"
	"github.com/yourorg/comps-api/internal/env"
	"github.com/yourorg/comps-api/internal/geocode"
	"github.com/yourorg/comps-api/internal/logger"
	"github.com/yourorg/comps-api/internal/prefetch"
	"github.com/yourorg/comps-api/internal/property"
	"github.com/yourorg/comps-api/internal/redisx"
	"github.com/yourorg/comps-api/internal/store"
	"github.com/yourorg/comps-api/mls"
	"github.com/yourorg/comps-api/rets"
)

// App holds the wired dependencies. The data-source variant is resolved once
// here and injected; handlers never inspect types at runtime.
type App struct {
	Log            *slog.Logger
	Service        property.Service
	Photos         httpapi.PhotoFetcher  // nil for the demo source
	Listings       httpapi.ActiveLister  // nil for the demo source
	Redis          *redisx.Client        // nil when REDIS_ADDR unset
	Store          *store.Store          // nil when PG_DSN unset
	Prefetch       *prefetch.Prefetcher  // nil without Redis + MLS
	CORSOrigins    []string
	SearchCacheTTL time.Duration
	PhotoCacheTTL  time.Duration
}

func main() {
	_ = godotenv.Load()

	log := logger.New(env.Get("LOG_LEVEL", "info"))
	port := env.GetInt("PORT", 4002)

	app := &App{
		Log:            log,
		CORSOrigins:    strings.Split(env.Get("CORS_ORIGINS", "*"), ","),
		SearchCacheTTL: env.GetDuration("SEARCH_CACHE_TTL", 5*time.Minute),
		PhotoCacheTTL:  env.GetDuration("PHOTO_CACHE_TTL", 24*time.Hour),
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		app.Redis = redisx.New(addr, os.Getenv("REDIS_PASSWORD"), env.GetInt("REDIS_DB", 0))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := app.Redis.Ping(ctx); err != nil {
			cancel()
			log.Error("redis ping failed", "error", err)
			os.Exit(1)
		}
		cancel()
	}

	if dsn := os.Getenv("PG_DSN"); dsn != "" {
		st, err := store.Open(dsn)
		if err != nil {
			log.Error("store open failed", "error", err)
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := st.Ping(ctx); err != nil {
			cancel()
			log.Error("postgres ping failed", "error", err)
			os.Exit(1)
		}
		if err := st.Migrate(ctx); err != nil {
			cancel()
			log.Error("postgres migrate failed", "error", err)
			os.Exit(1)
		}
		cancel()
		app.Store = st
	}

	// DATA_SOURCE selects the service variant: 'mls' | 'demo'.
	dataSource := env.Get("DATA_SOURCE", "demo")
	switch dataSource {
	case "mls":
		client := rets.NewClient(rets.Config{
			LoginURL:  env.Must("MLS_RETS_URL"),
			Username:  env.Must("MLS_USERNAME"),
			Password:  env.Must("MLS_PASSWORD"),
			UserAgent: env.Get("MLS_USER_AGENT", "CompSearch/1.0"),
		}, log)

		var geocoder *geocode.Client
		if key := os.Getenv("GOOGLE_MAPS_API_KEY"); key != "" {
			geocoder = geocode.NewClient(key)
		}

		svc := mls.NewService(client, geocoder, log)
		app.Service = svc
		app.Photos = svc
		app.Listings = svc

		if app.Redis != nil && env.GetBool("PHOTO_PREFETCH", true) {
			app.Prefetch = prefetch.New(256, 2, 2, func(ctx context.Context, j prefetch.Job) {
				warmPhoto(ctx, app, svc, j)
			})
		}
	case "demo":
		svc, err := demo.NewService(time.Now().UnixNano())
		if err != nil {
			log.Error("demo data load failed", "error", err)
			os.Exit(1)
		}
		app.Service = svc
	default:
		log.Error("unknown DATA_SOURCE", "value", dataSource)
		os.Exit(1)
	}

	router := BuildRouter(app)

	log.Info("comps-api listening", "port", port, "data_source", dataSource)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), router); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// warmPhoto fetches one photo and drops it into the Redis cache the photo
// handler reads from.
func warmPhoto(ctx context.Context, app *App, svc *mls.Service, j prefetch.Job) {
	bodyKey := fmt.Sprintf("photo:body:%s:%d", j.ListingID, j.Index)
	if ok, _ := app.Redis.Exists(ctx, bodyKey); ok {
		return
	}
	obj, err := svc.GetPhoto(ctx, j.ListingID, j.Index)
	if err != nil || obj == nil {
		return
	}
	_ = app.Redis.SetBytes(ctx, bodyKey, obj.Data, app.PhotoCacheTTL)
	_ = app.Redis.Set(ctx, fmt.Sprintf("photo:ct:%s:%d", j.ListingID, j.Index), obj.ContentType, app.PhotoCacheTTL)
}
