package geo

import (
	"math"
	"testing"
)

func TestMilesBetween(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want, tolerance        float64
	}{
		{"same point", 39.1534, -74.6929, 39.1534, -74.6929, 0, 0},
		{"sea isle to avalon", 39.1534, -74.6929, 39.1012, -74.7177, 3.9, 0.5},
		{"sea isle to cape may", 39.1534, -74.6929, 38.9351, -74.9060, 18.7, 1},
		{"missing first coords", 0, 0, 39.1012, -74.7177, 0, 0},
		{"missing second coords", 39.1534, -74.6929, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MilesBetween(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("MilesBetween = %f, want %f +/- %f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestMilesBetweenRoundsToHundredths(t *testing.T) {
	got := MilesBetween(39.1534, -74.6929, 39.1012, -74.7177)
	if got != math.Round(got*100)/100 {
		t.Errorf("distance not rounded: %f", got)
	}
}

func TestMilesBetweenSymmetric(t *testing.T) {
	a := MilesBetween(39.1534, -74.6929, 38.9351, -74.9060)
	b := MilesBetween(38.9351, -74.9060, 39.1534, -74.6929)
	if a != b {
		t.Errorf("asymmetric distance: %f vs %f", a, b)
	}
}
