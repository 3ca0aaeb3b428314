package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/comps-api/internal/property"
)

// ActiveLister lists every active listing; only the MLS backend offers it.
type ActiveLister interface {
	GetAllActive(ctx context.Context) ([]property.Property, error)
}

type ListingsDeps struct {
	Listings ActiveLister
}

func RegisterListings(r chi.Router, d ListingsDeps) {
	r.Get("/listings", func(w http.ResponseWriter, req *http.Request) {
		if d.Listings == nil {
			render.Status(req, http.StatusServiceUnavailable)
			render.JSON(w, req, map[string]any{"error": "listings_unavailable", "detail": "active data source has no listings feed"})
			return
		}
		listings, err := d.Listings.GetAllActive(req.Context())
		if err != nil {
			writeUpstreamError(w, req, err)
			return
		}
		render.JSON(w, req, map[string]any{
			"ok":       true,
			"count":    len(listings),
			"listings": listings,
		})
	})
}
