package detection

import (
	"math"
	"testing"
	"time"

	"github.com/fleetguard/backend/models"
)

func TestRunOverconsumptionScenario(t *testing.T) {
	// Vehicle V: nominal 10 L/100km, tank 80 L. One 100 km trip with 80/68
	// readings gives 12 L/100km, +20% over nominal, threshold 15%.
	v := models.Vehicle{ID: 1, PlateNumber: "AB-123-CD", NominalConsumption: 10, TankCapacity: 80, IsActive: true}
	trip, readings := tripWithReadings(1, 1, testNow.Add(-3*time.Hour), testNow.Add(-1*time.Hour), 100, 80, 68)

	snap := &Snapshot{
		Vehicles:      []models.Vehicle{v},
		Trips:         []models.Trip{trip},
		LevelReadings: readings,
	}
	p := DefaultParams()
	p.OverconsumptionPct = 15

	alerts := Run(snap, p, testNow)
	if len(alerts) != 1 {
		t.Fatalf("expected exactly one alert, got %d: %+v", len(alerts), alerts)
	}
	a := alerts[0]
	if a.Type != models.AlertOverconsumption {
		t.Fatalf("expected surconsommation, got %s", a.Type)
	}
	if a.DeviationPct == nil || math.Abs(*a.DeviationPct-20) > 0.01 {
		t.Fatalf("expected deviation ≈ 20%%, got %+v", a.DeviationPct)
	}
	if a.Status != models.AlertNew {
		t.Fatalf("the pipeline only ever emits status new, got %s", a.Status)
	}
	if !a.DetectedAt.Equal(testNow) {
		t.Fatalf("detection timestamp must be the pipeline reference time")
	}
}

func TestRunPhotoSuspectScenario(t *testing.T) {
	v := models.Vehicle{ID: 1, PlateNumber: "AB-123-CD", IsActive: true}

	for _, tc := range []struct {
		method models.EntryMethod
		want   int
	}{
		{models.EntryOCR, 1},
		{models.EntryManuelle, 0},
	} {
		snap := &Snapshot{
			Vehicles:   []models.Vehicle{v},
			FuelEvents: []models.FuelEvent{{ID: 1, VehicleID: 1, Timestamp: testNow, Liters: 40, EntryMethod: tc.method}},
		}

		alerts := Run(snap, DefaultParams(), testNow)
		if len(alerts) != tc.want {
			t.Fatalf("%s entry without photo: expected %d alert(s), got %d: %+v", tc.method, tc.want, len(alerts), alerts)
		}
		if tc.want == 1 && alerts[0].Type != models.AlertPhotoSuspect {
			t.Fatalf("expected photo_suspect, got %s", alerts[0].Type)
		}
	}
}

func TestRunIdempotent(t *testing.T) {
	v := models.Vehicle{ID: 1, PlateNumber: "AB-123-CD", NominalConsumption: 10, IsActive: true}
	trip, readings := tripWithReadings(1, 1, testNow.AddDate(0, 0, -2), testNow.AddDate(0, 0, -2).Add(2*time.Hour), 100, 80, 66)

	snap := &Snapshot{
		Vehicles:      []models.Vehicle{v},
		Trips:         []models.Trip{trip},
		LevelReadings: readings,
		FuelEvents: []models.FuelEvent{
			{ID: 1, VehicleID: 1, Timestamp: testNow.AddDate(0, 0, -1), Liters: 40, EntryMethod: models.EntryOCR, Lat: fptr(0), Lng: fptr(0.05)},
		},
		Geofences: []models.Geofence{
			{ID: 1, Kind: models.GeofenceStation, Lat: 0, Lng: 0, RadiusM: 500},
			{ID: 2, Kind: models.GeofenceDepot, Lat: 10, Lng: 10, RadiusM: 500},
		},
	}
	p := DefaultParams()
	p.OverconsumptionPct = 15

	first := Run(snap, p, testNow)
	second := Run(snap, p, testNow)

	if len(first) == 0 {
		t.Fatalf("fixture is built to produce alerts")
	}
	if len(first) != len(second) {
		t.Fatalf("two runs over identical input differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Type != second[i].Type || first[i].VehicleID != second[i].VehicleID ||
			first[i].Severity != second[i].Severity || first[i].Description != second[i].Description {
			t.Fatalf("run not deterministic at index %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRunSkipsUnresolvableReferences(t *testing.T) {
	snap := &Snapshot{
		Vehicles: []models.Vehicle{{ID: 1, IsActive: true}},
		// references a vehicle absent from the snapshot
		FuelEvents: []models.FuelEvent{{ID: 1, VehicleID: 99, Timestamp: testNow, Liters: 40, EntryMethod: models.EntryOCR}},
	}

	alerts := Run(snap, DefaultParams(), testNow)
	if len(alerts) != 0 {
		t.Fatalf("a record whose vehicle does not resolve must be skipped, got %+v", alerts)
	}
}

func TestRunInactiveVehiclesSkipped(t *testing.T) {
	v := models.Vehicle{ID: 1, NominalConsumption: 10, IsActive: false}
	trip, readings := tripWithReadings(1, 1, testNow.AddDate(0, 0, -2), testNow.AddDate(0, 0, -2).Add(2*time.Hour), 100, 80, 60)

	snap := &Snapshot{Vehicles: []models.Vehicle{v}, Trips: []models.Trip{trip}, LevelReadings: readings}
	p := DefaultParams()
	p.OverconsumptionPct = 15

	if alerts := Run(snap, p, testNow); len(alerts) != 0 {
		t.Fatalf("inactive vehicles are not evaluated, got %+v", alerts)
	}
}

func TestRefuelZoneAlertCarriesDetails(t *testing.T) {
	snap := &Snapshot{
		Vehicles: []models.Vehicle{{ID: 1, IsActive: true}},
		FuelEvents: []models.FuelEvent{
			{ID: 1, VehicleID: 1, Timestamp: testNow, Liters: 40, Lat: fptr(0), Lng: fptr(0.05)},
		},
		Geofences: []models.Geofence{
			{ID: 1, Kind: models.GeofenceStation, Lat: 0, Lng: 0, RadiusM: 500},
		},
	}
	ix := snap.Index()

	a := CheckRefuelZone(&snap.FuelEvents[0], ix)
	if a == nil {
		t.Fatalf("refuel 5 km from the station must alert")
	}
	details, ok := a.Details.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("alert details must carry the detector context, got %+v", a.Details.Data)
	}
	excess, ok := details["excessMeters"].(float64)
	if !ok || excess <= 0 {
		t.Fatalf("expected positive excessMeters in details, got %+v", details["excessMeters"])
	}
}

func TestImmobilizationAlertCarriesDetails(t *testing.T) {
	v := models.Vehicle{ID: 1, IsActive: true}
	snap := &Snapshot{
		Vehicles: []models.Vehicle{v},
		Trips: []models.Trip{
			{ID: 1, VehicleID: 1, StartTime: testNow.AddDate(0, 0, -3), EndTime: testNow.AddDate(0, 0, -2)},
		},
	}
	ix := snap.Index()

	a := CheckImmobilization(&snap.Vehicles[0], ix, DefaultParams(), testNow)
	if a == nil {
		t.Fatalf("48 h idle over a 10 h threshold must alert")
	}
	details, ok := a.Details.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("alert details must carry the detector context, got %+v", a.Details.Data)
	}
	hours, ok := details["hoursIdle"].(float64)
	if !ok || hours < 47 || hours > 49 {
		t.Fatalf("expected hoursIdle ≈ 48 in details, got %+v", details["hoursIdle"])
	}
	if _, ok := details["inDepot"].(bool); !ok {
		t.Fatalf("details must record whether the vehicle idles in a depot")
	}
}

func TestRunOdometerCheckOptIn(t *testing.T) {
	v := models.Vehicle{ID: 1, IsActive: true}
	snap := &Snapshot{
		Vehicles: []models.Vehicle{v},
		FuelEvents: []models.FuelEvent{
			{ID: 1, VehicleID: 1, Timestamp: testNow.AddDate(0, 0, -5), Odometer: 1000},
			{ID: 2, VehicleID: 1, Timestamp: testNow.AddDate(0, 0, -1), Odometer: 1200},
		},
		Trips: []models.Trip{
			// recent trip also keeps immobilization quiet
			{ID: 1, VehicleID: 1, StartTime: testNow.AddDate(0, 0, -3), EndTime: testNow.Add(-time.Hour), DistanceKm: 150},
		},
	}

	p := DefaultParams()
	alerts := Run(snap, p, testNow)
	for _, a := range alerts {
		if a.Type == models.AlertOdometerGap {
			t.Fatalf("odometer check is disabled by default")
		}
	}

	p.EnableOdometerCheck = true
	alerts = Run(snap, p, testNow)
	found := false
	for _, a := range alerts {
		if a.Type == models.AlertOdometerGap {
			found = true
		}
	}
	if !found {
		t.Fatalf("odometer check enabled but no ecart_kilometrage emitted: %+v", alerts)
	}
}
