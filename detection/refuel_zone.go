package detection

import (
	"fmt"

	"github.com/fleetguard/backend/models"
)

// CheckRefuelZone flags a refuel logged with a GPS coordinate that falls
// outside every authorized station geofence. A refuel without a coordinate
// cannot be verified and never produces an alert; neither does a fleet with
// no station geofences configured.
func CheckRefuelZone(ev *models.FuelEvent, ix *Index) *models.Alert {
	if ev.Lat == nil || ev.Lng == nil {
		return nil
	}
	stations := ix.Stations()
	if len(stations) == 0 {
		return nil
	}

	// Distance past the nearest station's fence, in meters
	nearestExcess := -1.0
	for _, g := range stations {
		d := DistanceMeters(*ev.Lat, *ev.Lng, g.Lat, g.Lng)
		if d <= g.RadiusM {
			return nil
		}
		excess := d - g.RadiusM
		if nearestExcess < 0 || excess < nearestExcess {
			nearestExcess = excess
		}
	}

	// 50 at the fence, +1 per 100 m beyond, saturating at 100 (>= 5 km out)
	severity := clampScore(50 + nearestExcess/100)

	eventID := ev.ID
	return &models.Alert{
		VehicleID:   ev.VehicleID,
		DriverID:    ev.DriverID,
		Type:        models.AlertRefuelOutsideZone,
		Title:       "Plein hors zone autorisée",
		Description: fmt.Sprintf("Plein de %.1f L effectué à %.1f km de la station autorisée la plus proche", ev.Liters, nearestExcess/1000),
		Severity:    severity,
		SourceID:    &eventID,
		Details: models.NewJSONB(map[string]interface{}{
			"excessMeters": nearestExcess,
		}),
	}
}
