package detection

import (
	"time"

	"github.com/fleetguard/backend/models"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func fptr(v float64) *float64 { return &v }
func iptr(v int64) *int64     { return &v }

// tripWithReadings builds a completed trip plus its before/after level
// readings, ready to drop into a snapshot.
func tripWithReadings(id, vehicleID int64, start, end time.Time, distanceKm, before, after float64) (models.Trip, []models.FuelLevelReading) {
	trip := models.Trip{
		ID:         id,
		VehicleID:  vehicleID,
		StartTime:  start,
		EndTime:    end,
		DistanceKm: distanceKm,
	}
	readings := []models.FuelLevelReading{
		{ID: id*10 + 1, VehicleID: vehicleID, Timestamp: start, Liters: before, Kind: models.ReadingBeforeTrip, TripID: iptr(id)},
		{ID: id*10 + 2, VehicleID: vehicleID, Timestamp: end, Liters: after, Kind: models.ReadingAfterTrip, TripID: iptr(id)},
	}
	return trip, readings
}
