package detection

import (
	"time"

	"github.com/fleetguard/backend/models"
)

// HoursSinceLastTrip returns the hours elapsed since the vehicle's latest
// completed trip ended. known is false when the vehicle has no trips at all.
func HoursSinceLastTrip(v *models.Vehicle, ix *Index, now time.Time) (hours float64, known bool) {
	var latest time.Time
	for _, trip := range ix.VehicleTrips(v.ID) {
		if trip.EndTime.After(latest) {
			latest = trip.EndTime
		}
	}
	if latest.IsZero() {
		return 0, false
	}
	return now.Sub(latest).Hours(), true
}

// LastKnownPosition returns the GPS point with the highest sequence number of
// the vehicle's most recent trip. When no point exists the configured
// fallback coordinate is returned with known=false; downstream severity
// scoring treats that the same as "position unknown".
func LastKnownPosition(v *models.Vehicle, ix *Index, p Params) (lat, lng float64, known bool) {
	trips := ix.VehicleTrips(v.ID)
	if len(trips) > 0 {
		var best *models.TripPoint
		points := trips[len(trips)-1].Points
		for j := range points {
			if best == nil || points[j].Seq > best.Seq {
				best = &points[j]
			}
		}
		if best != nil {
			return best.Lat, best.Lng, true
		}
	}
	return p.FallbackLat, p.FallbackLng, false
}
