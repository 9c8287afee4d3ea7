package domain

import "math"

// Immutable geographic coordinates (latitude, longitude) in degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Mean Earth radius used by the great-circle distance computation.
const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance between two points in kilometers.
// The result is zero for identical points, symmetric in its arguments, and
// never negative. Coordinates are not range-validated.
func Haversine(a, b Coordinate) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Asin(math.Sqrt(h))

	return earthRadiusKm * c
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
