package detection

import (
	"fmt"
	"time"

	"github.com/fleetguard/backend/models"
)

// CheckOverconsumption compares a vehicle's rolling-window average
// consumption against its rated nominal. A zero average means "no data" and
// skips; so does a vehicle with no usable nominal rate.
func CheckOverconsumption(v *models.Vehicle, ix *Index, p Params, now time.Time) *models.Alert {
	if v.NominalConsumption <= 0 {
		return nil
	}
	avg := RollingAverageConsumption(v, p.RollingWindowDays, ix, now)
	if avg == 0 {
		return nil
	}

	deviation := (avg - v.NominalConsumption) / v.NominalConsumption * 100
	if deviation <= p.OverconsumptionPct {
		return nil
	}

	deviationCopy := deviation
	return &models.Alert{
		VehicleID:    v.ID,
		Type:         models.AlertOverconsumption,
		Title:        "Surconsommation détectée",
		Description:  fmt.Sprintf("Consommation moyenne de %.1f L/100km sur %d jours, soit +%.1f%% par rapport au nominal (%.1f L/100km)", avg, p.RollingWindowDays, deviation, v.NominalConsumption),
		Severity:     clampScore(30 + deviation),
		DeviationPct: &deviationCopy,
	}
}
