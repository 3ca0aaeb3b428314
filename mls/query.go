package mls

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yourorg/comps-api/internal/property"
)

// Sold comps only look back this far.
const soldWindowDays = 90

// BuildSoldQuery builds the DMQL2 query for sold comparables: city lookup
// (or every known city when the subject city is unknown), sold status, beds
// and baths within one, sqft within 25%, and a recent status-date bound.
func BuildSoldQuery(subject property.SubjectProperty, now time.Time) string {
	conditions := []string{
		cityCondition(subject.City),
		lookupCondition(fieldStatusCat, statusSold),
		rangeCondition(fieldBedrooms, float64(subject.Bedrooms-1), float64(subject.Bedrooms+1)),
		rangeCondition(fieldBathsFull, subject.Bathrooms-1, subject.Bathrooms+1),
	}

	if subject.Sqft > 0 {
		lo := math.Round(float64(subject.Sqft) * 0.75)
		hi := math.Round(float64(subject.Sqft) * 1.25)
		conditions = append(conditions, rangeCondition(fieldSqft, lo, hi))
	}

	cutoff := now.AddDate(0, 0, -soldWindowDays).Format("2006-01-02")
	conditions = append(conditions, fmt.Sprintf("(%s=%s+)", fieldStatusDate, cutoff))

	return strings.Join(conditions, ",")
}

// BuildActiveQuery builds the DMQL2 query for active listings. Ranges are
// wider than the sold query (beds/baths within two, sqft within 50%) and
// there is no date bound.
func BuildActiveQuery(subject property.SubjectProperty) string {
	conditions := []string{
		cityCondition(subject.City),
		lookupCondition(fieldStatusCat, statusActive),
	}

	if subject.Bedrooms > 0 {
		conditions = append(conditions,
			rangeCondition(fieldBedrooms, float64(subject.Bedrooms-2), float64(subject.Bedrooms+2)))
	}
	if subject.Bathrooms > 0 {
		conditions = append(conditions,
			rangeCondition(fieldBathsFull, subject.Bathrooms-2, subject.Bathrooms+2))
	}
	if subject.Sqft > 0 {
		lo := math.Round(float64(subject.Sqft) * 0.50)
		hi := math.Round(float64(subject.Sqft) * 1.50)
		conditions = append(conditions, rangeCondition(fieldSqft, lo, hi))
	}

	return strings.Join(conditions, ",")
}

// QueryByListingID matches a single listing exactly.
func QueryByListingID(id string) string {
	return fmt.Sprintf("(%s=%s)", fieldListingID, id)
}

// cityCondition restricts by the subject's city lookup code; an unknown city
// deliberately broadens to every known city instead of failing.
func cityCondition(city string) string {
	if code, ok := LookupCity(city); ok {
		return lookupCondition(fieldCity, code)
	}
	return lookupCondition(fieldCity, allCityCodes()...)
}

// lookupCondition emits (Field=|A,|B,...); the | prefix requests exact
// lookup-code matching rather than free text.
func lookupCondition(field string, values ...string) string {
	return fmt.Sprintf("(%s=|%s)", field, strings.Join(values, ",|"))
}

// rangeCondition emits (Field=Min-Max) with the lower bound floored at 1.
func rangeCondition(field string, lo, hi float64) string {
	lo = math.Max(1, lo)
	return fmt.Sprintf("(%s=%s-%s)", field, formatNumber(lo), formatNumber(hi))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
