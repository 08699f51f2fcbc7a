// Package geo holds the great-circle math used by radius searches.
package geo

import "math"

// EarthRadiusMiles is the mean Earth radius used for distance calculations.
const EarthRadiusMiles = 3958.8

// DistanceMiles returns the haversine great-circle distance in miles between
// two points given in decimal degrees.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push a just past 1 for near-antipodal points.
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMiles * c
}

// WithinRadius reports whether (lat2, lon2) lies at most radius miles from
// (lat1, lon1).
func WithinRadius(lat1, lon1, lat2, lon2, radius float64) bool {
	return DistanceMiles(lat1, lon1, lat2, lon2) <= radius
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
