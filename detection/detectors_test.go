package detection

import (
	"math"
	"testing"
	"time"

	"github.com/fleetguard/backend/models"
)

func stationSnapshot(ev models.FuelEvent) *Snapshot {
	return &Snapshot{
		Vehicles:   []models.Vehicle{{ID: 1, NominalConsumption: 10, IsActive: true}},
		FuelEvents: []models.FuelEvent{ev},
		Geofences: []models.Geofence{
			{ID: 1, Name: "Station Total A7", Kind: models.GeofenceStation, Lat: 0, Lng: 0, RadiusM: 600},
		},
	}
}

func TestCheckRefuelZoneInside(t *testing.T) {
	snap := stationSnapshot(models.FuelEvent{ID: 1, VehicleID: 1, Timestamp: testNow, Liters: 40, Lat: fptr(0), Lng: fptr(0.003)})
	ix := snap.Index()

	if a := CheckRefuelZone(&snap.FuelEvents[0], ix); a != nil {
		t.Fatalf("refuel inside a station fence must not alert, got %+v", a)
	}
}

func TestCheckRefuelZoneOutside(t *testing.T) {
	snap := stationSnapshot(models.FuelEvent{ID: 1, VehicleID: 1, Timestamp: testNow, Liters: 40, Lat: fptr(0), Lng: fptr(0.02)})
	ix := snap.Index()

	a := CheckRefuelZone(&snap.FuelEvents[0], ix)
	if a == nil {
		t.Fatalf("refuel outside every station fence must alert")
	}
	if a.Type != models.AlertRefuelOutsideZone {
		t.Fatalf("expected type %s, got %s", models.AlertRefuelOutsideZone, a.Type)
	}
	if a.Severity < 50 || a.Severity > 100 {
		t.Fatalf("severity out of range: %d", a.Severity)
	}
	if a.SourceID == nil || *a.SourceID != 1 {
		t.Fatalf("alert must reference the fuel event")
	}
}

func TestCheckRefuelZoneSeverityGrowsWithDistance(t *testing.T) {
	near := stationSnapshot(models.FuelEvent{ID: 1, VehicleID: 1, Lat: fptr(0), Lng: fptr(0.01)})
	far := stationSnapshot(models.FuelEvent{ID: 1, VehicleID: 1, Lat: fptr(0), Lng: fptr(0.2)})

	aNear := CheckRefuelZone(&near.FuelEvents[0], near.Index())
	aFar := CheckRefuelZone(&far.FuelEvents[0], far.Index())
	if aNear == nil || aFar == nil {
		t.Fatalf("both refuels are outside the fence and must alert")
	}
	if aFar.Severity <= aNear.Severity {
		t.Fatalf("severity must grow with excess distance: near=%d far=%d", aNear.Severity, aFar.Severity)
	}
	if aFar.Severity != 100 {
		t.Fatalf("severity must saturate at 100 far from the fence, got %d", aFar.Severity)
	}
}

func TestCheckRefuelZoneNoCoordinates(t *testing.T) {
	snap := stationSnapshot(models.FuelEvent{ID: 1, VehicleID: 1, Timestamp: testNow, Liters: 40})
	ix := snap.Index()

	if a := CheckRefuelZone(&snap.FuelEvents[0], ix); a != nil {
		t.Fatalf("a refuel without coordinates cannot be verified and must not alert")
	}
}

func TestCheckRefuelZoneNoStations(t *testing.T) {
	snap := &Snapshot{
		Vehicles:   []models.Vehicle{{ID: 1, IsActive: true}},
		FuelEvents: []models.FuelEvent{{ID: 1, VehicleID: 1, Lat: fptr(0), Lng: fptr(0.02)}},
	}
	ix := snap.Index()

	if a := CheckRefuelZone(&snap.FuelEvents[0], ix); a != nil {
		t.Fatalf("with no station geofences configured nothing can be verified")
	}
}

func TestCheckPhotoConsistencyMissingPhoto(t *testing.T) {
	cases := []struct {
		method    models.EntryMethod
		wantAlert bool
	}{
		{models.EntryOCR, true},
		{models.EntryManuelle, false},
	}
	for _, tc := range cases {
		snap := &Snapshot{
			Vehicles:   []models.Vehicle{{ID: 1, IsActive: true}},
			FuelEvents: []models.FuelEvent{{ID: 1, VehicleID: 1, Timestamp: testNow, EntryMethod: tc.method}},
		}
		ix := snap.Index()

		a := CheckPhotoConsistency(&snap.FuelEvents[0], ix, DefaultParams())
		if tc.wantAlert && (a == nil || a.Type != models.AlertPhotoSuspect) {
			t.Fatalf("%s entry without photo must raise photo_suspect", tc.method)
		}
		if !tc.wantAlert && a != nil {
			t.Fatalf("%s entry without photo must not alert, got %+v", tc.method, a)
		}
	}
}

func TestCheckPhotoConsistencyTimeMismatch(t *testing.T) {
	snap := &Snapshot{
		Vehicles: []models.Vehicle{{ID: 1, IsActive: true}},
		FuelEvents: []models.FuelEvent{
			{ID: 1, VehicleID: 1, Timestamp: testNow, EntryMethod: models.EntryOCR},
		},
		Photos: []models.PhotoMetadata{
			{ID: 1, FuelEventID: 1, CapturedAt: testNow.Add(-5 * time.Hour)},
		},
	}
	ix := snap.Index()

	a := CheckPhotoConsistency(&snap.FuelEvents[0], ix, DefaultParams())
	if a == nil {
		t.Fatalf("a photo taken 5 h from the declared refuel (2 h threshold) must alert")
	}
	if a.DeviationPct == nil || *a.DeviationPct <= 0 {
		t.Fatalf("expected a positive deviation, got %+v", a.DeviationPct)
	}
}

func TestCheckPhotoConsistencyLocationMismatch(t *testing.T) {
	snap := &Snapshot{
		Vehicles: []models.Vehicle{{ID: 1, IsActive: true}},
		FuelEvents: []models.FuelEvent{
			{ID: 1, VehicleID: 1, Timestamp: testNow, EntryMethod: models.EntryManuelle, Lat: fptr(0), Lng: fptr(0)},
		},
		Photos: []models.PhotoMetadata{
			// ~22 km away, threshold 5 km; capture time is consistent
			{ID: 1, FuelEventID: 1, CapturedAt: testNow.Add(30 * time.Minute), Lat: fptr(0), Lng: fptr(0.2)},
		},
	}
	ix := snap.Index()

	a := CheckPhotoConsistency(&snap.FuelEvents[0], ix, DefaultParams())
	if a == nil {
		t.Fatalf("a photo taken 22 km from the declared location must alert")
	}
	if a.Type != models.AlertPhotoSuspect {
		t.Fatalf("expected photo_suspect, got %s", a.Type)
	}
}

func TestCheckPhotoConsistencyConsistentPhoto(t *testing.T) {
	snap := &Snapshot{
		Vehicles: []models.Vehicle{{ID: 1, IsActive: true}},
		FuelEvents: []models.FuelEvent{
			{ID: 1, VehicleID: 1, Timestamp: testNow, EntryMethod: models.EntryOCR, Lat: fptr(0), Lng: fptr(0)},
		},
		Photos: []models.PhotoMetadata{
			{ID: 1, FuelEventID: 1, CapturedAt: testNow.Add(10 * time.Minute), Lat: fptr(0), Lng: fptr(0.001)},
		},
	}
	ix := snap.Index()

	if a := CheckPhotoConsistency(&snap.FuelEvents[0], ix, DefaultParams()); a != nil {
		t.Fatalf("a consistent photo must not alert, got %+v", a)
	}
}

func theftSnapshot(afterRefuel, afterTrip float64, withBefore bool) *Snapshot {
	refuelAt := testNow.Add(-10 * time.Hour)
	trip := models.Trip{
		ID: 1, VehicleID: 1,
		StartTime: refuelAt.Add(time.Hour), EndTime: refuelAt.Add(3 * time.Hour),
		DistanceKm: 100,
	}
	readings := []models.FuelLevelReading{
		{ID: 2, VehicleID: 1, Liters: afterRefuel, Kind: models.ReadingAfterRefuel, FuelEventID: iptr(1)},
		{ID: 3, VehicleID: 1, Liters: afterTrip, Kind: models.ReadingAfterTrip, TripID: iptr(1)},
	}
	if withBefore {
		readings = append(readings, models.FuelLevelReading{ID: 1, VehicleID: 1, Liters: 30, Kind: models.ReadingBeforeRefuel, FuelEventID: iptr(1)})
	}
	return &Snapshot{
		Vehicles:      []models.Vehicle{{ID: 1, NominalConsumption: 10, TankCapacity: 80, IsActive: true}},
		Trips:         []models.Trip{trip},
		FuelEvents:    []models.FuelEvent{{ID: 1, VehicleID: 1, Timestamp: refuelAt, Liters: 50}},
		LevelReadings: readings,
	}
}

func TestCheckFuelTheft(t *testing.T) {
	// theoretical = 100 km × 10 L/100km = 10 L
	// missing = (80 − 10) − 60 = 10 L > 5 L threshold
	snap := theftSnapshot(80, 60, true)
	ix := snap.Index()

	a := CheckFuelTheft(&snap.FuelEvents[0], ix, DefaultParams())
	if a == nil {
		t.Fatalf("expected a carburant_disparu alert")
	}
	if a.Type != models.AlertFuelMissing {
		t.Fatalf("expected type %s, got %s", models.AlertFuelMissing, a.Type)
	}
	if a.MissingLiters == nil || math.Abs(*a.MissingLiters-10) > 1e-9 {
		t.Fatalf("expected 10 missing liters, got %+v", a.MissingLiters)
	}
}

func TestCheckFuelTheftBelowThreshold(t *testing.T) {
	// missing = (80 − 10) − 66 = 4 L < 5 L threshold
	snap := theftSnapshot(80, 66, true)
	ix := snap.Index()

	if a := CheckFuelTheft(&snap.FuelEvents[0], ix, DefaultParams()); a != nil {
		t.Fatalf("a gap below the threshold must not alert, got %+v", a)
	}
}

func TestCheckFuelTheftMissingReading(t *testing.T) {
	snap := theftSnapshot(80, 60, false) // no before_refuel reading
	ix := snap.Index()

	if a := CheckFuelTheft(&snap.FuelEvents[0], ix, DefaultParams()); a != nil {
		t.Fatalf("a missing reading must silently disable the detector, got %+v", a)
	}
}

func TestCheckOverconsumption(t *testing.T) {
	v := models.Vehicle{ID: 1, NominalConsumption: 10, IsActive: true}
	trip, readings := tripWithReadings(1, 1, testNow.AddDate(0, 0, -2), testNow.AddDate(0, 0, -2).Add(2*time.Hour), 100, 80, 68)
	snap := &Snapshot{Vehicles: []models.Vehicle{v}, Trips: []models.Trip{trip}, LevelReadings: readings}
	ix := snap.Index()

	p := DefaultParams()
	p.OverconsumptionPct = 15

	a := CheckOverconsumption(&snap.Vehicles[0], ix, p, testNow)
	if a == nil {
		t.Fatalf("+20%% over nominal with a 15%% threshold must alert")
	}
	if a.DeviationPct == nil || math.Abs(*a.DeviationPct-20) > 1e-9 {
		t.Fatalf("expected 20%% deviation, got %+v", a.DeviationPct)
	}

	p.OverconsumptionPct = 25
	if a := CheckOverconsumption(&snap.Vehicles[0], ix, p, testNow); a != nil {
		t.Fatalf("+20%% under a 25%% threshold must not alert, got %+v", a)
	}
}

func TestCheckOverconsumptionNoData(t *testing.T) {
	v := models.Vehicle{ID: 1, NominalConsumption: 10, IsActive: true}
	snap := &Snapshot{Vehicles: []models.Vehicle{v}}
	ix := snap.Index()

	if a := CheckOverconsumption(&snap.Vehicles[0], ix, DefaultParams(), testNow); a != nil {
		t.Fatalf("a zero rolling average means no data and must not alert, got %+v", a)
	}
}

func idleSnapshot(pointLng float64) *Snapshot {
	return &Snapshot{
		Vehicles: []models.Vehicle{{ID: 1, IsActive: true}},
		Trips: []models.Trip{
			{
				ID: 1, VehicleID: 1,
				StartTime: testNow.Add(-26 * time.Hour), EndTime: testNow.Add(-24 * time.Hour),
				Points: []models.TripPoint{{Seq: 1, Lat: 0, Lng: pointLng}},
			},
		},
		Geofences: []models.Geofence{
			{ID: 1, Name: "Dépôt central", Kind: models.GeofenceDepot, Lat: 0, Lng: 0, RadiusM: 500},
		},
	}
}

func TestCheckImmobilization(t *testing.T) {
	inDepot := idleSnapshot(0.001)  // ~111 m from depot center
	outside := idleSnapshot(0.1)    // ~11 km away

	aIn := CheckImmobilization(&inDepot.Vehicles[0], inDepot.Index(), DefaultParams(), testNow)
	aOut := CheckImmobilization(&outside.Vehicles[0], outside.Index(), DefaultParams(), testNow)
	if aIn == nil || aOut == nil {
		t.Fatalf("24 h idle with a 10 h threshold must alert in both cases")
	}
	if aOut.Severity <= aIn.Severity {
		t.Fatalf("idle away from the depot must score higher: outside=%d inside=%d", aOut.Severity, aIn.Severity)
	}
}

func TestCheckImmobilizationBelowThreshold(t *testing.T) {
	snap := &Snapshot{
		Vehicles: []models.Vehicle{{ID: 1, IsActive: true}},
		Trips: []models.Trip{
			{ID: 1, VehicleID: 1, StartTime: testNow.Add(-3 * time.Hour), EndTime: testNow.Add(-2 * time.Hour)},
		},
	}
	ix := snap.Index()

	if a := CheckImmobilization(&snap.Vehicles[0], ix, DefaultParams(), testNow); a != nil {
		t.Fatalf("2 h idle with a 10 h threshold must not alert, got %+v", a)
	}
}

func TestCheckImmobilizationNoTrips(t *testing.T) {
	snap := &Snapshot{Vehicles: []models.Vehicle{{ID: 1, IsActive: true}}}
	ix := snap.Index()

	if a := CheckImmobilization(&snap.Vehicles[0], ix, DefaultParams(), testNow); a != nil {
		t.Fatalf("unknown idle time must skip, got %+v", a)
	}
}

func TestCheckOdometerGap(t *testing.T) {
	v := models.Vehicle{ID: 1, IsActive: true}
	snap := &Snapshot{
		Vehicles: []models.Vehicle{v},
		FuelEvents: []models.FuelEvent{
			{ID: 1, VehicleID: 1, Timestamp: testNow.AddDate(0, 0, -5), Odometer: 1000},
			{ID: 2, VehicleID: 1, Timestamp: testNow.AddDate(0, 0, -1), Odometer: 1200},
		},
		Trips: []models.Trip{
			{ID: 1, VehicleID: 1, StartTime: testNow.AddDate(0, 0, -3), EndTime: testNow.AddDate(0, 0, -3).Add(2 * time.Hour), DistanceKm: 150},
		},
	}
	ix := snap.Index()

	a := CheckOdometerGap(&snap.Vehicles[0], ix, DefaultParams(), testNow)
	if a == nil {
		t.Fatalf("a 25%% odometer/GPS gap with a 10%% threshold must alert")
	}
	if a.Type != models.AlertOdometerGap {
		t.Fatalf("expected type %s, got %s", models.AlertOdometerGap, a.Type)
	}
	if a.DeviationPct == nil || math.Abs(*a.DeviationPct-25) > 1e-9 {
		t.Fatalf("expected 25%% deviation, got %+v", a.DeviationPct)
	}
}
