// Package demo implements the property service over bundled listings so the
// API runs without MLS credentials.
package demo

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/yourorg/comps-api/internal/comps"
	"github.com/yourorg/comps-api/internal/property"
)

//go:embed properties.json
var propertiesJSON []byte

// Fallback geocode center (Sea Isle City) with enough jitter to spread
// markers on a map.
var demoCenter = property.Coordinates{Lat: 39.1534, Lng: -74.6929}

type Service struct {
	properties []property.Property
	engine     comps.Engine
	mu         sync.Mutex // guards rng
	rng        *rand.Rand
	now        func() time.Time
}

var _ property.Service = (*Service)(nil)

// NewService loads the bundled listings. The seed drives geocode jitter
// only; pass a fixed seed in tests.
func NewService(seed int64) (*Service, error) {
	var props []property.Property
	if err := json.Unmarshal(propertiesJSON, &props); err != nil {
		return nil, fmt.Errorf("demo data: %w", err)
	}
	return &Service{
		properties: props,
		engine:     comps.LocalEngine(property.DefaultCriteria()),
		rng:        rand.New(rand.NewSource(seed)),
		now:        time.Now,
	}, nil
}

func (s *Service) SearchComps(_ context.Context, subject property.SubjectProperty, mode property.SearchMode) ([]property.CompResult, error) {
	return s.engine.Match(s.properties, subject, mode, s.now()), nil
}

func (s *Service) GetProperty(_ context.Context, id string) (*property.Property, error) {
	for _, p := range s.properties {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (s *Service) GetPropertyPhotos(ctx context.Context, id string) ([]string, error) {
	p, err := s.GetProperty(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}
	return p.Photos, nil
}

// GeocodeAddress fakes a hit near the demo center so map features work
// offline; the city is matched against bundled listings when possible.
func (s *Service) GeocodeAddress(_ context.Context, _, city, _, _ string) (*property.Coordinates, error) {
	center := demoCenter
	for _, p := range s.properties {
		if strings.EqualFold(p.City, city) && p.HasCoords() {
			center = property.Coordinates{Lat: p.Lat, Lng: p.Lng}
			break
		}
	}
	s.mu.Lock()
	latJitter := (s.rng.Float64() - 0.5) * 0.01
	lngJitter := (s.rng.Float64() - 0.5) * 0.01
	s.mu.Unlock()
	return &property.Coordinates{
		Lat: center.Lat + latJitter,
		Lng: center.Lng + lngJitter,
	}, nil
}
