// Package geo contains pure geographic computation helpers.
package geo

import (
	"errors"
	"math"
)

const (
	// EarthRadiusKm is Earth's radius in kilometres for the Haversine formula.
	EarthRadiusKm = 6371.0
	// MilesPerKm is the conversion factor from kilometres to miles.
	MilesPerKm = 0.621371
)

// ErrInvalidCoordinate is returned when a coordinate is NaN or out of
// the valid latitude/longitude range.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// DistanceKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees. Invalid coordinates are a caller
// error, never coerced to zero.
func DistanceKm(lat1, lng1, lat2, lng2 float64) (float64, error) {
	for _, lat := range []float64{lat1, lat2} {
		if math.IsNaN(lat) || lat < -90 || lat > 90 {
			return 0, ErrInvalidCoordinate
		}
	}
	for _, lng := range []float64{lng1, lng2} {
		if math.IsNaN(lng) || lng < -180 || lng > 180 {
			return 0, ErrInvalidCoordinate
		}
	}

	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)
	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c, nil
}

// KmToMiles converts kilometres to miles.
func KmToMiles(km float64) float64 {
	return km * MilesPerKm
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
