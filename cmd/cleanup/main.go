package main

import (
	"fmt"
	"log"

	"github.com/fleetguard/backend/database"
	"github.com/fleetguard/backend/models"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

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

	fmt.Println("Start cleanup...")

	// Delete all Alerts
	if err := database.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Alert{}).Error; err != nil {
		log.Fatalf("Failed to delete alerts: %v", err)
	}
	fmt.Println("✅ Deleted all alerts")

	// Delete all FuelLevelReadings
	if err := database.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.FuelLevelReading{}).Error; err != nil {
		log.Fatalf("Failed to delete fuel level readings: %v", err)
	}
	fmt.Println("✅ Deleted all fuel level readings")

	// Delete all PhotoMetadata
	if err := database.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.PhotoMetadata{}).Error; err != nil {
		log.Fatalf("Failed to delete photo metadata: %v", err)
	}
	fmt.Println("✅ Deleted all photo metadata")

	// Delete all FuelEvents
	if err := database.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.FuelEvent{}).Error; err != nil {
		log.Fatalf("Failed to delete fuel events: %v", err)
	}
	fmt.Println("✅ Deleted all fuel events")

	// Delete all TripPoints
	if err := database.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.TripPoint{}).Error; err != nil {
		log.Fatalf("Failed to delete trip points: %v", err)
	}
	fmt.Println("✅ Deleted all trip points")

	// Delete all Trips
	if err := database.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Trip{}).Error; err != nil {
		log.Fatalf("Failed to delete trips: %v", err)
	}
	fmt.Println("✅ Deleted all trips")

	fmt.Println("Cleanup finished successfully")
}
