package detection

import (
	"math"

	"github.com/fleetguard/backend/models"
)

const earthRadiusMeters = 6371000

// DistanceMeters returns the great-circle distance between two points using
// the haversine formula. Never negative; zero for identical points.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// IsWithin reports whether a point falls inside a circular geofence.
func IsWithin(lat, lng float64, g *models.Geofence) bool {
	return DistanceMeters(lat, lng, g.Lat, g.Lng) <= g.RadiusM
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
