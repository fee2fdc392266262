package detection

import (
	"fmt"
	"math"
	"time"

	"github.com/fleetguard/backend/models"
)

// CheckOdometerGap compares the odometer delta between a vehicle's two most
// recent refuels against the GPS-measured trip distance over the same span.
//
// The detector is wired into the pipeline but disabled unless
// Params.EnableOdometerCheck is set: it existed in configuration only in the
// system this replaces, and enabling it is an explicit operator decision.
func CheckOdometerGap(v *models.Vehicle, ix *Index, p Params, now time.Time) *models.Alert {
	events := ix.VehicleFuelEvents(v.ID)
	if len(events) < 2 {
		return nil
	}
	prev := events[len(events)-2]
	last := events[len(events)-1]

	odoDelta := last.Odometer - prev.Odometer
	if odoDelta <= 0 {
		return nil
	}

	var gpsKm float64
	for _, trip := range ix.VehicleTrips(v.ID) {
		if trip.StartTime.Before(prev.Timestamp) || trip.StartTime.After(last.Timestamp) {
			continue
		}
		gpsKm += trip.DistanceKm
	}
	if gpsKm <= 0 {
		return nil
	}

	deviation := math.Abs(odoDelta-gpsKm) / odoDelta * 100
	if deviation <= p.OdometerGapPct {
		return nil
	}

	eventID := last.ID
	deviationCopy := deviation
	return &models.Alert{
		VehicleID:    v.ID,
		DriverID:     last.DriverID,
		Type:         models.AlertOdometerGap,
		Title:        "Écart kilométrage/GPS",
		Description:  fmt.Sprintf("Écart de %.1f%% entre l'odomètre (%.0f km) et la distance GPS (%.0f km) entre les deux derniers pleins", deviation, odoDelta, gpsKm),
		Severity:     clampScore(30 + deviation),
		DeviationPct: &deviationCopy,
		SourceID:     &eventID,
	}
}
