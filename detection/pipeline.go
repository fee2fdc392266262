package detection

import (
	"log"
	"time"

	"github.com/fleetguard/backend/models"
)

// Run evaluates every detector over the snapshot and returns the combined
// alert list. Pure recomputation: no dedup, no persistence, deterministic
// for identical inputs. Per-event detectors run in fuel-event slice order,
// per-vehicle detectors in vehicle slice order.
//
// A panicking detector call skips only that record; the rest of the fleet is
// still evaluated.
func Run(snap *Snapshot, p Params, now time.Time) []models.Alert {
	ix := snap.Index()

	alerts := []models.Alert{}
	emit := func(a *models.Alert) {
		if a == nil {
			return
		}
		a.Status = models.AlertNew
		a.DetectedAt = now
		alerts = append(alerts, *a)
	}

	for i := range snap.FuelEvents {
		ev := &snap.FuelEvents[i]
		if _, ok := ix.Vehicle(ev.VehicleID); !ok {
			continue
		}
		guard(func() { emit(CheckRefuelZone(ev, ix)) })
		guard(func() { emit(CheckPhotoConsistency(ev, ix, p)) })
		guard(func() { emit(CheckFuelTheft(ev, ix, p)) })
	}

	for i := range snap.Vehicles {
		v := &snap.Vehicles[i]
		if !v.IsActive {
			continue
		}
		guard(func() { emit(CheckOverconsumption(v, ix, p, now)) })
		guard(func() { emit(CheckImmobilization(v, ix, p, now)) })
		if p.EnableOdometerCheck {
			guard(func() { emit(CheckOdometerGap(v, ix, p, now)) })
		}
	}

	return alerts
}

func guard(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ Detector panic recovered: %v", r)
		}
	}()
	fn()
}
