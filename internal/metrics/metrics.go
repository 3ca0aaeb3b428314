// Package metrics exposes Prometheus collectors for the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RetsRequests counts upstream RETS round trips by step and outcome.
	RetsRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "comps_rets_requests_total",
		Help: "Upstream RETS requests by step (login, search, getobject, logout) and outcome.",
	}, []string{"step", "outcome"})

	// PhotoCache counts photo cache lookups at the HTTP boundary.
	PhotoCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "comps_photo_cache_total",
		Help: "Photo cache hits and misses.",
	}, []string{"result"})

	// SearchCache counts comp-search cache lookups.
	SearchCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "comps_search_cache_total",
		Help: "Comp search cache hits and misses.",
	}, []string{"result"})
)

func Handler() http.Handler { return promhttp.Handler() }
