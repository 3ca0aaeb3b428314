package property

import "time"

type Type string

const (
	SingleFamily Type = "Single Family"
	Condo        Type = "Condo"
	Townhouse    Type = "Townhouse"
)

type SearchMode string

const (
	ModeActive SearchMode = "active"
	ModeSold   SearchMode = "sold"
)

// Property is a normalized listing. Immutable once mapped from a wire row.
type Property struct {
	ID           string    `json:"id"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Zip          string    `json:"zip"`
	Bedrooms     int       `json:"bedrooms"`
	Bathrooms    float64   `json:"bathrooms"` // half bath = 0.5
	Sqft         int       `json:"sqft"`
	YearBuilt    int       `json:"yearBuilt"`
	PropertyType Type      `json:"propertyType"`
	SaleDate     time.Time `json:"saleDate"`
	SalePrice    int       `json:"salePrice"`
	DaysOnMarket int       `json:"daysOnMarket"`
	Lat          float64   `json:"lat"`
	Lng          float64   `json:"lng"`
	Photos       []string  `json:"photos"`
}

// HasCoords reports whether the listing carries real coordinates.
func (p Property) HasCoords() bool { return p.Lat != 0 && p.Lng != 0 }

// SubjectProperty is the user-supplied query anchor. Coordinates and photos
// are optional.
type SubjectProperty struct {
	Address      string   `json:"address"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	Zip          string   `json:"zip"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    float64  `json:"bathrooms"`
	Sqft         int      `json:"sqft"`
	YearBuilt    int      `json:"yearBuilt"`
	PropertyType Type     `json:"propertyType"`
	Lat          float64  `json:"lat,omitempty"`
	Lng          float64  `json:"lng,omitempty"`
	Photos       []string `json:"photos,omitempty"`
	ListingID    string   `json:"listingId,omitempty"`
}

func (s SubjectProperty) HasCoords() bool { return s.Lat != 0 && s.Lng != 0 }

// CompResult is a Property annotated by the scoring engine.
type CompResult struct {
	Property
	DistanceMiles   float64 `json:"distanceMiles"`
	PricePerSqft    int     `json:"pricePerSqft"`
	Selected        bool    `json:"selected"`
	SimilarityScore int     `json:"similarityScore"`
}

// SearchCriteria tunes soft filtering for the local matching path.
type SearchCriteria struct {
	RadiusMiles         float64 `json:"radiusMiles"`
	DateRangeMonths     int     `json:"dateRangeMonths"`
	BedVariance         int     `json:"bedVariance"`
	BathVariance        float64 `json:"bathVariance"`
	SqftVariancePercent float64 `json:"sqftVariancePercent"`
	PropertyTypeMatch   bool    `json:"propertyTypeMatch"`
}

func DefaultCriteria() SearchCriteria {
	return SearchCriteria{
		RadiusMiles:         2,
		DateRangeMonths:     12,
		BedVariance:         1,
		BathVariance:        1,
		SqftVariancePercent: 20,
		PropertyTypeMatch:   true,
	}
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
