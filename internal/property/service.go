package property

import "context"

// Service is the boundary the HTTP layer calls. Implementations: the MLS
// RETS-backed service and the bundled demo data source. The variant is
// chosen once at startup by configuration and injected into the handlers.
type Service interface {
	// SearchComps returns ranked comparables for the subject. Zero matches
	// is a successful empty result, not an error.
	SearchComps(ctx context.Context, subject SubjectProperty, mode SearchMode) ([]CompResult, error)

	// GetProperty returns a single listing by ID, or nil when not found.
	GetProperty(ctx context.Context, id string) (*Property, error)

	// GetPropertyPhotos returns the listing's photo reference URLs.
	GetPropertyPhotos(ctx context.Context, id string) ([]string, error)

	// GeocodeAddress resolves an address to coordinates, or nil when the
	// backend cannot resolve it.
	GeocodeAddress(ctx context.Context, address, city, state, zip string) (*Coordinates, error)
}
