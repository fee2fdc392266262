package detection

import (
	"fmt"

	"github.com/fleetguard/backend/models"
)

// CheckFuelTheft infers fuel disappearance around a refuel: after a full
// tank, physics predicts the level remaining after the next trip. The
// detector compares that prediction against the measured after-trip level.
//
//	theoretical = trip distance × nominal rate / 100
//	missing     = (after_refuel − theoretical) − after_trip
//
// Evaluated only when the before_refuel and after_refuel readings, a matched
// trip (first trip starting at or after the refuel) and that trip's
// after_trip reading all resolve; otherwise it skips silently.
func CheckFuelTheft(ev *models.FuelEvent, ix *Index, p Params) *models.Alert {
	v, ok := ix.Vehicle(ev.VehicleID)
	if !ok {
		return nil
	}
	if _, ok := ix.EventReading(ev.ID, models.ReadingBeforeRefuel); !ok {
		return nil
	}
	afterRefuel, ok := ix.EventReading(ev.ID, models.ReadingAfterRefuel)
	if !ok {
		return nil
	}

	var matched *models.Trip
	for _, trip := range ix.VehicleTrips(ev.VehicleID) {
		if !trip.StartTime.Before(ev.Timestamp) {
			matched = trip
			break
		}
	}
	if matched == nil {
		return nil
	}

	afterTrip, ok := ix.TripReading(matched.ID, models.ReadingAfterTrip)
	if !ok {
		return nil
	}

	theoretical := matched.DistanceKm * v.NominalConsumption / 100
	missing := (afterRefuel - theoretical) - afterTrip

	if missing <= p.MissingFuelLiters {
		return nil
	}

	eventID := ev.ID
	missingCopy := missing
	return &models.Alert{
		VehicleID:     ev.VehicleID,
		DriverID:      ev.DriverID,
		Type:          models.AlertFuelMissing,
		Title:         "Carburant disparu",
		Description:   fmt.Sprintf("%.1f L manquants après un trajet de %.1f km suivant le plein", missing, matched.DistanceKm),
		Severity:      clampScore(40 + missing*4),
		MissingLiters: &missingCopy,
		SourceID:      &eventID,
	}
}
