package detection

import (
	"sort"

	"github.com/fleetguard/backend/models"
)

// Snapshot is a fully materialized, read-only view of the fleet telemetry for
// one detection pass. Detectors never mutate it.
type Snapshot struct {
	Vehicles      []models.Vehicle
	Trips         []models.Trip
	FuelEvents    []models.FuelEvent
	LevelReadings []models.FuelLevelReading
	Geofences     []models.Geofence
	Photos        []models.PhotoMetadata
}

type readingKey struct {
	id   int64
	kind models.ReadingKind
}

// Index holds the cross-reference lookups over a snapshot. Every lookup
// returns an explicit ok flag: missing data disables a detector for that
// record, it is never an error.
type Index struct {
	snap *Snapshot

	vehicles      map[int64]*models.Vehicle
	tripReadings  map[readingKey]*models.FuelLevelReading
	eventReadings map[readingKey]*models.FuelLevelReading
	photos        map[int64]*models.PhotoMetadata

	// per vehicle, sorted by start time ascending
	tripsByVehicle map[int64][]*models.Trip
	// per vehicle, sorted by timestamp ascending
	eventsByVehicle map[int64][]*models.FuelEvent

	stations []*models.Geofence
	depots   []*models.Geofence
}

// Index builds the lookup structures for a snapshot.
func (s *Snapshot) Index() *Index {
	ix := &Index{
		snap:            s,
		vehicles:        make(map[int64]*models.Vehicle, len(s.Vehicles)),
		tripReadings:    make(map[readingKey]*models.FuelLevelReading),
		eventReadings:   make(map[readingKey]*models.FuelLevelReading),
		photos:          make(map[int64]*models.PhotoMetadata),
		tripsByVehicle:  make(map[int64][]*models.Trip),
		eventsByVehicle: make(map[int64][]*models.FuelEvent),
	}

	for i := range s.Vehicles {
		v := &s.Vehicles[i]
		ix.vehicles[v.ID] = v
	}

	for i := range s.Trips {
		t := &s.Trips[i]
		ix.tripsByVehicle[t.VehicleID] = append(ix.tripsByVehicle[t.VehicleID], t)
	}
	for _, trips := range ix.tripsByVehicle {
		sort.SliceStable(trips, func(a, b int) bool {
			return trips[a].StartTime.Before(trips[b].StartTime)
		})
	}

	for i := range s.FuelEvents {
		ev := &s.FuelEvents[i]
		ix.eventsByVehicle[ev.VehicleID] = append(ix.eventsByVehicle[ev.VehicleID], ev)
		if ev.Photo != nil {
			ix.photos[ev.ID] = ev.Photo
		}
	}
	for _, events := range ix.eventsByVehicle {
		sort.SliceStable(events, func(a, b int) bool {
			return events[a].Timestamp.Before(events[b].Timestamp)
		})
	}

	for i := range s.Photos {
		p := &s.Photos[i]
		ix.photos[p.FuelEventID] = p
	}

	for i := range s.LevelReadings {
		r := &s.LevelReadings[i]
		if r.TripID != nil {
			ix.tripReadings[readingKey{*r.TripID, r.Kind}] = r
		}
		if r.FuelEventID != nil {
			ix.eventReadings[readingKey{*r.FuelEventID, r.Kind}] = r
		}
	}

	for i := range s.Geofences {
		g := &s.Geofences[i]
		switch g.Kind {
		case models.GeofenceStation:
			ix.stations = append(ix.stations, g)
		case models.GeofenceDepot:
			ix.depots = append(ix.depots, g)
		}
	}

	return ix
}

// Vehicle resolves a vehicle reference within the snapshot.
func (ix *Index) Vehicle(id int64) (*models.Vehicle, bool) {
	v, ok := ix.vehicles[id]
	return v, ok
}

// TripReading returns the level reading of the given kind tagged to a trip.
func (ix *Index) TripReading(tripID int64, kind models.ReadingKind) (float64, bool) {
	r, ok := ix.tripReadings[readingKey{tripID, kind}]
	if !ok {
		return 0, false
	}
	return r.Liters, true
}

// EventReading returns the level reading of the given kind tagged to a refuel.
func (ix *Index) EventReading(eventID int64, kind models.ReadingKind) (float64, bool) {
	r, ok := ix.eventReadings[readingKey{eventID, kind}]
	if !ok {
		return 0, false
	}
	return r.Liters, true
}

// Photo returns the photo metadata attached to a fuel event, if any.
func (ix *Index) Photo(eventID int64) (*models.PhotoMetadata, bool) {
	p, ok := ix.photos[eventID]
	return p, ok
}

// VehicleTrips returns a vehicle's trips sorted by start time ascending.
func (ix *Index) VehicleTrips(vehicleID int64) []*models.Trip {
	return ix.tripsByVehicle[vehicleID]
}

// VehicleFuelEvents returns a vehicle's refuels sorted by timestamp ascending.
func (ix *Index) VehicleFuelEvents(vehicleID int64) []*models.FuelEvent {
	return ix.eventsByVehicle[vehicleID]
}

// Stations returns the station geofences of the snapshot.
func (ix *Index) Stations() []*models.Geofence {
	return ix.stations
}

// Depots returns the depot geofences of the snapshot.
func (ix *Index) Depots() []*models.Geofence {
	return ix.depots
}
