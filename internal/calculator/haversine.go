package calculator

import (
	"math"

	"contact-radar/internal/models"
)

const earthRadiusKm = 6371.0

// Radians converts decimal degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Haversine computes the great-circle distance between two points in kilometers, unrounded.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := Radians(lat1)
	lat2Rad := Radians(lat2)

	dLat := Radians(lat2 - lat1)
	dLon := Radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push a past 1 for antipodal points
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// DistanceKm is the haversine distance rounded to the nearest 0.1 km.
func DistanceKm(a, b models.Coordinate) float64 {
	return roundTenth(Haversine(a.Lat, a.Lon, b.Lat, b.Lon))
}

func roundTenth(km float64) float64 {
	return math.Round(km*10) / 10
}
