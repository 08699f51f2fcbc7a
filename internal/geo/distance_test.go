package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistanceMiles(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want, delta            float64
	}{
		{"same point", 40.7128, -74.0060, 40.7128, -74.0060, 0, 1e-9},
		{"new york to seattle", 40.7128, -74.0060, 47.6062, -122.3321, 2402, 1},
		{"new york to los angeles", 40.7128, -74.0060, 34.0522, -118.2437, 2445.6, 1},
		{"quarter meridian", 0, 0, 90, 0, EarthRadiusMiles * 3.141592653589793 / 2, 1e-6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMiles(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			require.InDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestDistanceMilesIsSymmetric(t *testing.T) {
	a := DistanceMiles(51.5074, -0.1278, 48.8566, 2.3522)
	b := DistanceMiles(48.8566, 2.3522, 51.5074, -0.1278)
	require.InDelta(t, a, b, 1e-9)
}

func TestWithinRadius(t *testing.T) {
	require.True(t, WithinRadius(40.7128, -74.0060, 40.7128, -74.0060, 0))
	require.False(t, WithinRadius(40.7128, -74.0060, 47.6062, -122.3321, 10))
	require.True(t, WithinRadius(40.7128, -74.0060, 47.6062, -122.3321, 4000))
}

func TestDistanceMilesNearAntipodes(t *testing.T) {
	half := EarthRadiusMiles * math.Pi
	for lat := -89.0; lat <= 89; lat += 0.37 {
		for lon := -179.0; lon < 0; lon += 7.3 {
			d := DistanceMiles(lat, lon, -lat, lon+180)
			require.False(t, math.IsNaN(d), "(%v,%v)", lat, lon)
			require.InDelta(t, half, d, 1e-3)
		}
	}
	require.True(t, WithinRadius(-86.78, -179, 86.78, 1, 20000))
}
