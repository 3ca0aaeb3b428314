// Package geo provides great-circle distance in miles.
package geo

import "math"

const earthRadiusMiles = 3959

// MilesBetween returns the haversine distance between two points, rounded to
// two decimals. If any coordinate is missing (zero) it returns 0.
func MilesBetween(lat1, lng1, lat2, lng2 float64) float64 {
	if lat1 == 0 || lng1 == 0 || lat2 == 0 || lng2 == 0 {
		return 0
	}
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return math.Round(earthRadiusMiles*c*100) / 100
}

func toRad(deg float64) float64 { return deg * (math.Pi / 180) }
