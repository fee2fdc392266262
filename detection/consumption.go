package detection

import (
	"time"

	"github.com/fleetguard/backend/models"
)

// TripConsumedLiters reconciles a trip's fuel-level drop with any refuels that
// happened mid-trip. Requires both the before_trip and after_trip readings;
// ok is false when either is missing.
func TripConsumedLiters(trip *models.Trip, ix *Index) (float64, bool) {
	before, okB := ix.TripReading(trip.ID, models.ReadingBeforeTrip)
	after, okA := ix.TripReading(trip.ID, models.ReadingAfterTrip)
	if !okB || !okA {
		return 0, false
	}

	consumed := before - after
	for _, ev := range ix.VehicleFuelEvents(trip.VehicleID) {
		if !ev.Timestamp.Before(trip.StartTime) && !ev.Timestamp.After(trip.EndTime) {
			consumed += ev.Liters
		}
	}
	return consumed, true
}

// TripConsumptionPer100 returns a trip's actual consumption in liters per
// 100 km. Returns 0 when a required reading is missing or the distance is
// zero; callers must treat 0 as "unknown", not "zero consumption". Never
// negative.
func TripConsumptionPer100(trip *models.Trip, ix *Index) float64 {
	consumed, ok := TripConsumedLiters(trip, ix)
	if !ok || trip.DistanceKm <= 0 {
		return 0
	}
	per100 := consumed / trip.DistanceKm * 100
	if per100 < 0 {
		return 0
	}
	return per100
}

// RollingAverageConsumption averages consumption over the vehicle's trips
// that started within the trailing window, weighting by distance. Trips
// lacking either level reading are skipped. Returns 0 when no trip qualifies
// or the total distance is zero.
func RollingAverageConsumption(v *models.Vehicle, windowDays int, ix *Index, now time.Time) float64 {
	cutoff := now.AddDate(0, 0, -windowDays)

	var totalConsumed, totalDistance float64
	for _, trip := range ix.VehicleTrips(v.ID) {
		if trip.StartTime.Before(cutoff) {
			continue
		}
		consumed, ok := TripConsumedLiters(trip, ix)
		if !ok {
			continue
		}
		totalConsumed += consumed
		totalDistance += trip.DistanceKm
	}

	if totalDistance <= 0 {
		return 0
	}
	avg := totalConsumed / totalDistance * 100
	if avg < 0 {
		return 0
	}
	return avg
}
