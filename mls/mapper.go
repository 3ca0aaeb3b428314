package mls

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yourorg/comps-api/internal/property"
	"github.com/yourorg/comps-api/rets"
)

// Listings never expose more photo slots than this.
const maxPhotoRefs = 10

// Jitter applied to city-center fallback coordinates, in degrees (~300m),
// so markers for listings without real coordinates do not stack.
const coordJitter = 0.003

// Mapper converts decoded RETS rows into normalized properties. The seeded
// rng only feeds the fallback-coordinate jitter; tests pin it for
// determinism. Safe for concurrent use: one Mapper serves every request.
type Mapper struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewMapper(seed int64) *Mapper {
	return &Mapper{rng: rand.New(rand.NewSource(seed))}
}

func (m *Mapper) jitter() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (m.rng.Float64() - 0.5) * 2 * coordJitter
}

// Property maps one wire row. Active listings use the asking price; sold
// listings prefer the sold price and fall back to asking.
func (m *Mapper) Property(row rets.Row, mode property.SearchMode) property.Property {
	bathsFull := rowFloat(row, fieldBathsFull)
	baths := rowFloat(row, fieldBathsTotal)
	if baths == 0 {
		baths = bathsFull
	}

	price := rowInt(row, fieldAskingPrice)
	if mode == property.ModeSold {
		if sold := rowInt(row, fieldSoldPrice); sold > 0 {
			price = sold
		}
	}

	listingID := row[fieldListingID]
	photoCount := rowInt(row, fieldPictureCount)
	if photoCount > maxPhotoRefs {
		photoCount = maxPhotoRefs
	}
	photos := make([]string, 0, photoCount)
	for i := 0; i < photoCount; i++ {
		photos = append(photos, fmt.Sprintf("/photos/%s?idx=%d", listingID, i))
	}

	city := row[fieldCity]
	lat := rowFloat(row, fieldLat)
	lng := rowFloat(row, fieldLng)
	if lat == 0 && lng == 0 {
		if center, ok := cityCoords[city]; ok {
			lat = center.Lat + m.jitter()
			lng = center.Lng + m.jitter()
		}
	}

	return property.Property{
		ID:           listingID,
		Address:      row[fieldAddress],
		City:         city,
		State:        "NJ",
		Zip:          row[fieldZip],
		Bedrooms:     rowInt(row, fieldBedrooms),
		Bathrooms:    baths,
		Sqft:         rowInt(row, fieldSqft),
		YearBuilt:    rowInt(row, fieldYearBuilt),
		PropertyType: mapPropertyType(row[fieldType]),
		SaleDate:     parseWireDate(row[fieldStatusDate]),
		SalePrice:    price,
		Lat:          lat,
		Lng:          lng,
		Photos:       photos,
	}
}

func mapPropertyType(raw string) property.Type {
	t := strings.ToLower(raw)
	switch {
	case strings.Contains(t, "condo"):
		return property.Condo
	case strings.Contains(t, "town"):
		return property.Townhouse
	default:
		return property.SingleFamily
	}
}

func parseWireDate(raw string) time.Time {
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func rowInt(row rets.Row, field string) int {
	// Some providers emit decimals in integer fields.
	return int(rowFloat(row, field))
}

func rowFloat(row rets.Row, field string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(row[field]), 64)
	if err != nil {
		return 0
	}
	return v
}
