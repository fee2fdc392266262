package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/fleetguard/backend/database"
	"github.com/fleetguard/backend/models"
	"github.com/joho/godotenv"
)

var samplePlates = []string{
	"AB-123-CD", "EF-456-GH", "IJ-789-KL", "MN-012-OP", "QR-345-ST",
	"UV-678-WX", "YZ-901-AB", "CD-234-EF", "GH-567-IJ", "KL-890-MN",
}

var sampleDrivers = []string{
	"Karim Bensaïd", "Sophie Martin", "Ahmed Touati", "Julien Petit",
	"Nadia Cherif", "Luc Moreau",
}

var sampleSites = []string{"Alger Centre", "Oran", "Constantine"}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Connect to database
	if err := database.Connect(); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	fmt.Println("🌱 Starting fleet seed...")

	rand.Seed(time.Now().UnixNano())
	now := time.Now()

	// Geofences: one depot and two stations around a city center
	geofences := []models.Geofence{
		{Name: "Dépôt principal", Kind: models.GeofenceDepot, Lat: 36.7538, Lng: 3.0588, RadiusM: 400, IsActive: true},
		{Name: "Station Naftal Didouche", Kind: models.GeofenceStation, Lat: 36.7600, Lng: 3.0500, RadiusM: 250, IsActive: true},
		{Name: "Station Total Hydra", Kind: models.GeofenceStation, Lat: 36.7400, Lng: 3.0300, RadiusM: 250, IsActive: true},
	}
	for i := range geofences {
		if err := database.DB.Create(&geofences[i]).Error; err != nil {
			log.Fatalf("Failed to seed geofences: %v", err)
		}
	}
	fmt.Printf("✅ Seeded %d geofences\n", len(geofences))

	// Drivers
	var drivers []models.Driver
	for _, name := range sampleDrivers {
		license := fmt.Sprintf("DZ%06d", rand.Intn(999999))
		d := models.Driver{FullName: name, LicenseNumber: &license, IsActive: true}
		if err := database.DB.Create(&d).Error; err != nil {
			log.Fatalf("Failed to seed drivers: %v", err)
		}
		drivers = append(drivers, d)
	}
	fmt.Printf("✅ Seeded %d drivers\n", len(drivers))

	// Vehicles
	var vehicles []models.Vehicle
	for i, plate := range samplePlates {
		site := sampleSites[i%len(sampleSites)]
		v := models.Vehicle{
			PlateNumber:        plate,
			NominalConsumption: 8 + rand.Float64()*6, // 8-14 L/100km
			TankCapacity:       60 + float64(rand.Intn(3))*10,
			InitialFuelLevel:   40,
			IsActive:           true,
			Site:               &site,
		}
		if err := database.DB.Create(&v).Error; err != nil {
			log.Fatalf("Failed to seed vehicles: %v", err)
		}
		vehicles = append(vehicles, v)
	}
	fmt.Printf("✅ Seeded %d vehicles\n", len(vehicles))

	totalTrips := 0
	totalRefuels := 0

	for vi, v := range vehicles {
		driver := drivers[vi%len(drivers)]
		fuel := v.InitialFuelLevel

		// Two weeks of daily trips with before/after readings
		for day := 13; day >= 1; day-- {
			start := now.AddDate(0, 0, -day).Truncate(time.Hour).Add(8 * time.Hour)
			end := start.Add(2*time.Hour + time.Duration(rand.Intn(90))*time.Minute)
			distance := 60 + rand.Float64()*80

			// Vehicle 0 burns ~35% over nominal, the rest stay near nominal
			rate := v.NominalConsumption
			if vi == 0 {
				rate *= 1.35
			} else {
				rate *= 0.95 + rand.Float64()*0.1
			}
			consumed := distance * rate / 100

			trip := models.Trip{
				VehicleID:   v.ID,
				DriverID:    &driver.ID,
				StartTime:   start,
				EndTime:     end,
				DistanceKm:  distance,
				EntryMethod: models.EntryGPS,
				Points: []models.TripPoint{
					{Seq: 1, Lat: 36.7538, Lng: 3.0588, Timestamp: start},
					{Seq: 2, Lat: 36.7538 + distance/222, Lng: 3.0588, Timestamp: end},
				},
			}
			if err := database.DB.Create(&trip).Error; err != nil {
				log.Fatalf("Failed to seed trips: %v", err)
			}
			totalTrips++

			readings := []models.FuelLevelReading{
				{VehicleID: v.ID, Timestamp: start, Liters: fuel, Kind: models.ReadingBeforeTrip, TripID: &trip.ID},
				{VehicleID: v.ID, Timestamp: end, Liters: fuel - consumed, Kind: models.ReadingAfterTrip, TripID: &trip.ID},
			}
			for i := range readings {
				if err := database.DB.Create(&readings[i]).Error; err != nil {
					log.Fatalf("Failed to seed readings: %v", err)
				}
			}
			fuel -= consumed

			// Refuel when the tank gets low
			if fuel < v.TankCapacity*0.3 {
				liters := v.TankCapacity - fuel
				station := geofences[1]

				ev := models.FuelEvent{
					VehicleID:   v.ID,
					DriverID:    &driver.ID,
					Timestamp:   end.Add(30 * time.Minute),
					Liters:      liters,
					UnitPrice:   45.62,
					Odometer:    10000 + float64(totalTrips)*100,
					StationName: &station.Name,
					Lat:         &station.Lat,
					Lng:         &station.Lng,
					EntryMethod: models.EntryOCR,
				}

				// Vehicle 1 refuels far from any station
				if vi == 1 {
					offLat, offLng := 36.9000, 3.3000
					ev.Lat, ev.Lng = &offLat, &offLng
					ev.StationName = nil
				}

				if err := database.DB.Create(&ev).Error; err != nil {
					log.Fatalf("Failed to seed fuel events: %v", err)
				}
				totalRefuels++

				photo := models.PhotoMetadata{
					FuelEventID: ev.ID,
					CapturedAt:  ev.Timestamp,
					Lat:         ev.Lat,
					Lng:         ev.Lng,
				}
				// Vehicle 2's photos are hours old
				if vi == 2 {
					photo.CapturedAt = ev.Timestamp.Add(-6 * time.Hour)
				}
				if err := database.DB.Create(&photo).Error; err != nil {
					log.Fatalf("Failed to seed photo metadata: %v", err)
				}

				before := fuel
				after := fuel + liters
				refuelReadings := []models.FuelLevelReading{
					{VehicleID: v.ID, Timestamp: ev.Timestamp, Liters: before, Kind: models.ReadingBeforeRefuel, FuelEventID: &ev.ID},
					{VehicleID: v.ID, Timestamp: ev.Timestamp, Liters: after, Kind: models.ReadingAfterRefuel, FuelEventID: &ev.ID},
				}
				for i := range refuelReadings {
					if err := database.DB.Create(&refuelReadings[i]).Error; err != nil {
						log.Fatalf("Failed to seed refuel readings: %v", err)
					}
				}
				fuel = after
			}
		}
	}

	// Vehicle 3 has no trips for the last 13 days; wipe its telemetry so
	// the idle detector has something to find
	if len(vehicles) > 3 {
		idle := vehicles[3]
		database.DB.Where("vehicle_id = ? AND start_time >= ?", idle.ID, now.AddDate(0, 0, -12)).Delete(&models.Trip{})
	}

	fmt.Printf("✅ Seeded %d trips and %d refuels\n", totalTrips, totalRefuels)
	fmt.Println("🌱 Seed finished. Run a detection pass to generate alerts.")
}
