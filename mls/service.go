package mls

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/comps-api/internal/comps"
	"github.com/yourorg/comps-api/internal/geocode"
	"github.com/yourorg/comps-api/internal/property"
	"github.com/yourorg/comps-api/rets"
)

// Result limits per query execution.
const (
	soldSearchLimit   = 25
	activeSearchLimit = 50
)

// Service is the RETS-backed property service. Each call runs its own
// login -> action -> logout cycle; there is no shared session state.
type Service struct {
	client   *rets.Client
	geocoder *geocode.Client // nil when no API key is configured
	engine   comps.Engine
	mapper   *Mapper
	log      *slog.Logger
	now      func() time.Time
}

var _ property.Service = (*Service)(nil)

func NewService(client *rets.Client, geocoder *geocode.Client, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		client:   client,
		geocoder: geocoder,
		engine:   comps.ProviderEngine(),
		mapper:   NewMapper(time.Now().UnixNano()),
		log:      log,
		now:      time.Now,
	}
}

// SearchComps queries the MLS and returns ranked comparables. Active mode
// queries the residential and condo/townhouse classes; sold mode queries
// residential only.
func (s *Service) SearchComps(ctx context.Context, subject property.SubjectProperty, mode property.SearchMode) ([]property.CompResult, error) {
	rows, err := s.fetchListings(ctx, subject, mode)
	if err != nil {
		return nil, err
	}

	listings := make([]property.Property, 0, len(rows))
	for _, row := range rows {
		listings = append(listings, s.mapper.Property(row, mode))
	}
	return s.engine.Match(listings, subject, mode, s.now()), nil
}

func (s *Service) fetchListings(ctx context.Context, subject property.SubjectProperty, mode property.SearchMode) ([]rets.Row, error) {
	if mode != property.ModeActive {
		query := BuildSoldQuery(subject, s.now())
		s.log.Debug("rets sold query", "query", query)
		return s.client.Search(ctx, "Property", classResidential, query, selectFields, soldSearchLimit)
	}

	query := BuildActiveQuery(subject)
	s.log.Debug("rets active query", "query", query)

	// The condo/townhouse class runs concurrently with the residential
	// class. Its failure degrades to zero results from that class; a
	// residential failure propagates.
	condoCh := make(chan []rets.Row, 1)
	go func() {
		rows, err := s.client.Search(ctx, "Property", classCondo, query, selectFields, activeSearchLimit)
		if err != nil {
			s.log.Warn("condo class search failed", "error", err)
			rows = nil
		}
		condoCh <- rows
	}()

	residential, err := s.client.Search(ctx, "Property", classResidential, query, selectFields, activeSearchLimit)
	if err != nil {
		return nil, err
	}
	return append(residential, <-condoCh...), nil
}

// GetProperty fetches a single listing by ID, or nil when it doesn't exist.
func (s *Service) GetProperty(ctx context.Context, id string) (*property.Property, error) {
	rows, err := s.client.Search(ctx, "Property", classResidential, QueryByListingID(id), selectFields, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	p := s.mapper.Property(rows[0], property.ModeSold)
	return &p, nil
}

// GetPropertyPhotos returns the proxy photo URLs synthesized for a listing.
func (s *Service) GetPropertyPhotos(ctx context.Context, id string) ([]string, error) {
	p, err := s.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return p.Photos, nil
}

// GetAllActive returns every active listing across both classes, for the
// listings browse surface.
func (s *Service) GetAllActive(ctx context.Context) ([]property.Property, error) {
	query := cityCondition("") + "," + lookupCondition(fieldStatusCat, statusActive)

	condoCh := make(chan []rets.Row, 1)
	go func() {
		rows, err := s.client.Search(ctx, "Property", classCondo, query, selectFields, activeSearchLimit)
		if err != nil {
			s.log.Warn("condo class search failed", "error", err)
			rows = nil
		}
		condoCh <- rows
	}()

	residential, err := s.client.Search(ctx, "Property", classResidential, query, selectFields, activeSearchLimit)
	if err != nil {
		return nil, err
	}
	rows := append(residential, <-condoCh...)

	listings := make([]property.Property, 0, len(rows))
	for _, row := range rows {
		listings = append(listings, s.mapper.Property(row, property.ModeActive))
	}
	return listings, nil
}

// GetPhoto fetches one listing photo from the MLS. Returns (nil, nil) when
// the photo is unavailable.
func (s *Service) GetPhoto(ctx context.Context, listingID string, index int) (*rets.Object, error) {
	return s.client.GetPhoto(ctx, listingID, index)
}

// GeocodeAddress resolves coordinates via Google, or nil when geocoding is
// not configured or has no result.
func (s *Service) GeocodeAddress(ctx context.Context, address, city, state, zip string) (*property.Coordinates, error) {
	if s.geocoder == nil {
		return nil, nil
	}
	return s.geocoder.Geocode(ctx, address, city, state, zip)
}
