// Package comps turns raw listings into a ranked, capped set of comparables
// for a subject property.
package comps

import (
	"math"
	"sort"
	"time"

	"github.com/yourorg/comps-api/internal/geo"
	"github.com/yourorg/comps-api/internal/property"
)

// Component weights shared by both engine variants.
const (
	sqftWeight     = 35
	distanceWeight = 25
	bedWeight      = 20
	bathWeight     = 15
	recencyWeight  = 5
)

// HardFilter drops candidates outright before scoring. Used only by the
// local/demo path; the MLS path filters at the query layer instead.
type HardFilter struct {
	TypeMatch        bool
	BedVariance      int
	BathVariance     float64
	SaleWindowMonths int
	SqftVariancePct  float64
	MaxDistanceMiles float64
}

// Engine scores candidate listings against a subject and returns a ranked,
// capped result set. Configure via ProviderEngine or LocalEngine.
type Engine struct {
	// SqftVariance is the sqft difference (as a fraction of the subject's
	// sqft) at which the sqft component falls to zero.
	SqftVariance float64
	// DistanceMiles is the distance at which the distance component falls
	// to zero.
	DistanceMiles float64
	// NoGeoCredit is awarded instead of the distance component when either
	// endpoint lacks coordinates.
	NoGeoCredit float64
	// RecencyDays is the listing age at which the recency component falls
	// to zero.
	RecencyDays float64

	MinScore  int
	MaxActive int
	MaxSold   int

	Filter *HardFilter // nil = no hard filtering
}

// ProviderEngine matches the MLS-backed path: wider falloffs, a minimum
// similarity threshold, and partial distance credit for geocoding gaps.
func ProviderEngine() Engine {
	return Engine{
		SqftVariance:  0.25,
		DistanceMiles: 5,
		NoGeoCredit:   15,
		RecencyDays:   730,
		MinScore:      15,
		MaxActive:     15,
		MaxSold:       10,
	}
}

// LocalEngine matches the demo data path: strict hard filters, tight
// falloffs, no minimum threshold, fixed cap of 10. Missing coordinates earn
// the full distance component rather than the provider path's partial credit.
func LocalEngine(c property.SearchCriteria) Engine {
	return Engine{
		SqftVariance:  c.SqftVariancePercent / 100,
		DistanceMiles: c.RadiusMiles,
		NoGeoCredit:   distanceWeight,
		RecencyDays:   365,
		MinScore:      0,
		MaxActive:     10,
		MaxSold:       10,
		Filter: &HardFilter{
			TypeMatch:        c.PropertyTypeMatch,
			BedVariance:      c.BedVariance,
			BathVariance:     c.BathVariance,
			SaleWindowMonths: c.DateRangeMonths,
			SqftVariancePct:  c.SqftVariancePercent,
			MaxDistanceMiles: c.RadiusMiles,
		},
	}
}

// Match filters, scores, sorts and caps the listings. Ties keep input order
// (stable sort), which is the order the provider returned them in.
func (e Engine) Match(listings []property.Property, subject property.SubjectProperty, mode property.SearchMode, now time.Time) []property.CompResult {
	results := make([]property.CompResult, 0, len(listings))
	for _, p := range listings {
		// A subject picked from the listings surface is not its own comp.
		if subject.ListingID != "" && p.ID == subject.ListingID {
			continue
		}
		hasGeo := subject.HasCoords() && p.HasCoords()
		dist := geo.MilesBetween(subject.Lat, subject.Lng, p.Lat, p.Lng)
		if e.Filter != nil && !e.Filter.keep(p, subject, dist, hasGeo, now) {
			continue
		}
		score := e.Score(p, subject, dist, hasGeo, now)
		if score < e.MinScore {
			continue
		}
		results = append(results, property.CompResult{
			Property:        p,
			DistanceMiles:   dist,
			PricePerSqft:    PricePerSqft(p.SalePrice, p.Sqft),
			SimilarityScore: score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})

	limit := e.MaxSold
	if mode == property.ModeActive {
		limit = e.MaxActive
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Score computes the 0-100 similarity of a listing to the subject. Each
// component is clamped at zero before summation.
func (e Engine) Score(p property.Property, subject property.SubjectProperty, distanceMiles float64, hasGeo bool, now time.Time) int {
	var score float64

	if subject.Sqft > 0 && p.Sqft > 0 {
		diffPct := math.Abs(float64(p.Sqft-subject.Sqft)) / float64(subject.Sqft)
		score += math.Max(0, sqftWeight*(1-diffPct/e.SqftVariance))
	}

	if hasGeo {
		score += math.Max(0, distanceWeight*(1-distanceMiles/e.DistanceMiles))
	} else {
		score += e.NoGeoCredit
	}

	switch bedDiff := abs(p.Bedrooms - subject.Bedrooms); {
	case bedDiff == 0:
		score += bedWeight
	case bedDiff == 1:
		score += bedWeight / 2
	}

	switch bathDiff := math.Abs(p.Bathrooms - subject.Bathrooms); {
	case bathDiff == 0:
		score += bathWeight
	case bathDiff <= 1:
		score += 7
	}

	if !p.SaleDate.IsZero() {
		// A sale date in the future counts as today, not as extra credit.
		days := math.Max(0, math.Floor(now.Sub(p.SaleDate).Hours()/24))
		score += math.Max(0, recencyWeight*(1-days/e.RecencyDays))
	}

	return int(math.Round(score))
}

// PricePerSqft divides sale price by square footage, guarding sqft = 0.
func PricePerSqft(price, sqft int) int {
	if sqft <= 0 {
		return 0
	}
	return int(math.Round(float64(price) / float64(sqft)))
}

func (f *HardFilter) keep(p property.Property, subject property.SubjectProperty, dist float64, hasGeo bool, now time.Time) bool {
	if f.TypeMatch && p.PropertyType != subject.PropertyType {
		return false
	}
	if abs(p.Bedrooms-subject.Bedrooms) > f.BedVariance {
		return false
	}
	if math.Abs(p.Bathrooms-subject.Bathrooms) > f.BathVariance {
		return false
	}
	if p.SaleDate.Before(now.AddDate(0, -f.SaleWindowMonths, 0)) {
		return false
	}
	if subject.Sqft > 0 {
		diffPct := math.Abs(float64(p.Sqft-subject.Sqft)) / float64(subject.Sqft) * 100
		if diffPct > f.SqftVariancePct {
			return false
		}
	}
	if hasGeo && dist > f.MaxDistanceMiles {
		return false
	}
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
