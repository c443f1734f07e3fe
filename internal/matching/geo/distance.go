// Package geo provides great-circle distance calculation for proximity scoring.
package geo

import (
	"math"

	apperrors "forgelink/internal/common/errors"
	"forgelink/internal/models"
)

// Mean Earth radius in kilometers, spherical approximation.
const earthRadiusKM = 6371.0

// DistanceKM returns the haversine great-circle distance between two points.
func DistanceKM(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}

// Between returns the distance between two locations, failing with
// MISSING_COORDINATES when either location lacks coordinates.
func Between(a, b models.Location) (float64, error) {
	if !a.HasCoordinates() {
		return 0, apperrors.NewMissingCoordinatesError("first location has no coordinates")
	}
	if !b.HasCoordinates() {
		return 0, apperrors.NewMissingCoordinatesError("second location has no coordinates")
	}
	return DistanceKM(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude), nil
}
