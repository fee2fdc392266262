package detection

import (
	"fmt"
	"time"

	"github.com/fleetguard/backend/models"
)

// CheckImmobilization flags a vehicle idle for longer than the configured
// threshold since its last completed trip. A vehicle idle away from every
// depot geofence scores strictly higher than one idle at the depot; an
// unknown position counts as away.
func CheckImmobilization(v *models.Vehicle, ix *Index, p Params, now time.Time) *models.Alert {
	hours, known := HoursSinceLastTrip(v, ix, now)
	if !known || hours <= p.ImmobilizationHours {
		return nil
	}

	lat, lng, posKnown := LastKnownPosition(v, ix, p)
	inDepot := false
	if posKnown {
		for _, g := range ix.Depots() {
			if IsWithin(lat, lng, g) {
				inDepot = true
				break
			}
		}
	}

	base := 60.0
	where := "hors de tout dépôt"
	if inDepot {
		base = 35
		where = "au dépôt"
	}
	if !posKnown {
		where = "à une position inconnue"
	}
	// +2 per extra hour past the threshold, capped
	extra := (hours - p.ImmobilizationHours) * 2
	if extra > 25 {
		extra = 25
	}

	var sourceID *int64
	if trips := ix.VehicleTrips(v.ID); len(trips) > 0 {
		id := trips[len(trips)-1].ID
		sourceID = &id
	}

	return &models.Alert{
		VehicleID:   v.ID,
		Type:        models.AlertImmobilization,
		Title:       "Immobilisation prolongée",
		Description: fmt.Sprintf("Véhicule immobilisé depuis %.1f h (seuil %.1f h), %s", hours, p.ImmobilizationHours, where),
		Severity:    clampScore(base + extra),
		SourceID:    sourceID,
		Details: models.NewJSONB(map[string]interface{}{
			"hoursIdle":     hours,
			"inDepot":       inDepot,
			"positionKnown": posKnown,
		}),
	}
}
