package detection

import (
	"math"
	"testing"
	"time"

	"github.com/fleetguard/backend/models"
)

func TestTripConsumptionPer100(t *testing.T) {
	start := testNow.Add(-3 * time.Hour)
	end := testNow.Add(-1 * time.Hour)

	trip, readings := tripWithReadings(1, 1, start, end, 100, 80, 68)
	snap := &Snapshot{
		Vehicles:      []models.Vehicle{{ID: 1, IsActive: true}},
		Trips:         []models.Trip{trip},
		LevelReadings: readings,
	}
	ix := snap.Index()

	got := TripConsumptionPer100(&snap.Trips[0], ix)
	if math.Abs(got-12) > 1e-9 {
		t.Fatalf("expected 12 L/100km, got %f", got)
	}
}

func TestTripConsumptionPer100MidTripRefuel(t *testing.T) {
	start := testNow.Add(-3 * time.Hour)
	end := testNow.Add(-1 * time.Hour)

	trip, readings := tripWithReadings(1, 1, start, end, 100, 80, 75)
	snap := &Snapshot{
		Vehicles:      []models.Vehicle{{ID: 1, IsActive: true}},
		Trips:         []models.Trip{trip},
		LevelReadings: readings,
		FuelEvents: []models.FuelEvent{
			// mid-trip refuel must count toward consumed liters
			{ID: 1, VehicleID: 1, Timestamp: start.Add(time.Hour), Liters: 10},
			// outside the trip window, must not count
			{ID: 2, VehicleID: 1, Timestamp: end.Add(time.Hour), Liters: 30},
		},
	}
	ix := snap.Index()

	got := TripConsumptionPer100(&snap.Trips[0], ix)
	if math.Abs(got-15) > 1e-9 {
		t.Fatalf("expected 15 L/100km (5 level drop + 10 refueled over 100 km), got %f", got)
	}
}

func TestTripConsumptionPer100MissingReadings(t *testing.T) {
	start := testNow.Add(-3 * time.Hour)
	end := testNow.Add(-1 * time.Hour)

	cases := []struct {
		name string
		kind models.ReadingKind
	}{
		{"only before_trip", models.ReadingBeforeTrip},
		{"only after_trip", models.ReadingAfterTrip},
	}
	for _, tc := range cases {
		snap := &Snapshot{
			Trips: []models.Trip{{ID: 1, VehicleID: 1, StartTime: start, EndTime: end, DistanceKm: 100}},
			LevelReadings: []models.FuelLevelReading{
				{ID: 1, VehicleID: 1, Liters: 80, Kind: tc.kind, TripID: iptr(1)},
			},
		}
		ix := snap.Index()
		if got := TripConsumptionPer100(&snap.Trips[0], ix); got != 0 {
			t.Fatalf("%s: expected 0 (unknown) with a missing reading, got %f", tc.name, got)
		}
	}
}

func TestTripConsumptionPer100ZeroDistance(t *testing.T) {
	start := testNow.Add(-3 * time.Hour)
	end := testNow.Add(-1 * time.Hour)

	trip, readings := tripWithReadings(1, 1, start, end, 0, 80, 68)
	snap := &Snapshot{Trips: []models.Trip{trip}, LevelReadings: readings}
	ix := snap.Index()

	if got := TripConsumptionPer100(&snap.Trips[0], ix); got != 0 {
		t.Fatalf("expected 0 for zero distance, got %f", got)
	}
}

func TestTripConsumptionNeverNegative(t *testing.T) {
	start := testNow.Add(-3 * time.Hour)
	end := testNow.Add(-1 * time.Hour)

	// after > before with no refuel: inconsistent data, clamp to 0
	trip, readings := tripWithReadings(1, 1, start, end, 100, 60, 70)
	snap := &Snapshot{Trips: []models.Trip{trip}, LevelReadings: readings}
	ix := snap.Index()

	if got := TripConsumptionPer100(&snap.Trips[0], ix); got != 0 {
		t.Fatalf("expected 0 for negative consumption, got %f", got)
	}
}

func TestRollingAverageConsumption(t *testing.T) {
	v := models.Vehicle{ID: 1, NominalConsumption: 10, IsActive: true}

	t1, r1 := tripWithReadings(1, 1, testNow.AddDate(0, 0, -2), testNow.AddDate(0, 0, -2).Add(2*time.Hour), 100, 80, 68)
	t2, r2 := tripWithReadings(2, 1, testNow.AddDate(0, 0, -1), testNow.AddDate(0, 0, -1).Add(time.Hour), 50, 68, 62)
	// too old for a 7-day window, must be excluded
	t3, r3 := tripWithReadings(3, 1, testNow.AddDate(0, 0, -30), testNow.AddDate(0, 0, -30).Add(time.Hour), 1000, 80, 10)
	// lacks readings, must be skipped
	t4 := models.Trip{ID: 4, VehicleID: 1, StartTime: testNow.AddDate(0, 0, -3), EndTime: testNow.AddDate(0, 0, -3).Add(time.Hour), DistanceKm: 500}

	snap := &Snapshot{
		Vehicles:      []models.Vehicle{v},
		Trips:         []models.Trip{t1, t2, t3, t4},
		LevelReadings: append(append(r1, r2...), r3...),
	}
	ix := snap.Index()

	got := RollingAverageConsumption(&snap.Vehicles[0], 7, ix, testNow)
	want := (12.0 + 6.0) / 150.0 * 100 // 12 L/100km
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %.4f L/100km, got %f", want, got)
	}
}

func TestRollingAverageConsumptionEmptyWindow(t *testing.T) {
	v := models.Vehicle{ID: 1, IsActive: true}
	snap := &Snapshot{Vehicles: []models.Vehicle{v}}
	ix := snap.Index()

	if got := RollingAverageConsumption(&snap.Vehicles[0], 7, ix, testNow); got != 0 {
		t.Fatalf("expected 0 over an empty trip window, got %f", got)
	}
}
