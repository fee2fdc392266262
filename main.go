package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/fleetguard/backend/database"
	"github.com/fleetguard/backend/handlers"
	"github.com/fleetguard/backend/natsserver"
	"github.com/fleetguard/backend/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Connect to database
	if err := database.Connect(); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
	defer database.Close()

	// Ensure the default admin login exists
	handlers.SeedAdminUser()

	// Start embedded NATS server for the alert bus
	natsPort := 4222
	if portStr := os.Getenv("NATS_PORT"); portStr != "" {
		if parsed, err := strconv.Atoi(portStr); err == nil {
			natsPort = parsed
		}
	}
	natsServer, err := natsserver.New(natsserver.Config{Port: natsPort})
	if err != nil {
		log.Fatalf("❌ Failed to start NATS server: %v", err)
	}
	defer natsServer.Shutdown()

	natsConn := natsServer.Conn()

	// Initialize alert hub for WebSocket streaming
	alertHub := services.NewAlertHub(natsConn)
	go alertHub.Run()
	handlers.SetAlertHub(alertHub)
	log.Println("🔔 Alert hub initialized")

	// Initialize detection runner
	provider := &services.DBSnapshotProvider{DB: database.DB}
	runner := services.NewDetectionRunner(database.DB, provider, natsConn)
	handlers.SetDetectionRunner(runner)

	// Periodic detection, disabled when DETECTION_INTERVAL_MIN is 0
	intervalMin := 15
	if intervalStr := os.Getenv("DETECTION_INTERVAL_MIN"); intervalStr != "" {
		if parsed, err := strconv.Atoi(intervalStr); err == nil {
			intervalMin = parsed
		}
	}
	stop := make(chan struct{})
	defer close(stop)
	runner.Start(time.Duration(intervalMin)*time.Minute, stop)

	// Setup Gin router
	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// CORS middleware
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(config))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// WebSocket route for live alerts (outside /api group)
	router.GET("/ws/alerts", handlers.HandleAlertWebSocket)

	// Auth
	router.POST("/api/auth/login", handlers.Login)

	// API Routes
	api := router.Group("/api")
	api.Use(handlers.AuthMiddleware())
	{
		// Alert hub stats
		api.GET("/feed/stats", handlers.GetAlertHubStats)

		// Vehicle routes
		vehicles := api.Group("/vehicles")
		{
			vehicles.POST("", handlers.PostVehicle)
			vehicles.GET("", handlers.GetVehicles)
			vehicles.GET("/:id", handlers.GetVehicle)
			vehicles.PATCH("/:id", handlers.UpdateVehicle)
			vehicles.GET("/:id/alerts", handlers.GetVehicleAlerts)
			vehicles.GET("/:id/trips", handlers.GetVehicleTrips)
			vehicles.GET("/:id/fuel-events", handlers.GetVehicleFuelEvents)
		}

		// Driver routes
		drivers := api.Group("/drivers")
		{
			drivers.POST("", handlers.PostDriver)
			drivers.GET("", handlers.GetDrivers)
			drivers.GET("/:id", handlers.GetDriver)
			drivers.PATCH("/:id", handlers.UpdateDriver)
		}

		// Trip routes
		trips := api.Group("/trips")
		{
			trips.POST("", handlers.PostTrip)
			trips.GET("", handlers.GetTrips)
			trips.GET("/:id", handlers.GetTrip)
		}

		// Refuel routes
		fuelEvents := api.Group("/fuel-events")
		{
			fuelEvents.POST("", handlers.PostFuelEvent)
			fuelEvents.GET("", handlers.GetFuelEvents)
			fuelEvents.GET("/:id", handlers.GetFuelEvent)
		}

		// Geofence routes
		geofences := api.Group("/geofences")
		{
			geofences.POST("", handlers.PostGeofence)
			geofences.GET("", handlers.GetGeofences)
			geofences.PATCH("/:id", handlers.UpdateGeofence)
			geofences.DELETE("/:id", handlers.DeleteGeofence)
		}

		// Alert routes
		alerts := api.Group("/alerts")
		{
			alerts.GET("", handlers.GetAlerts)
			alerts.GET("/stats", handlers.GetAlertStats)
			alerts.GET("/:id", handlers.GetAlert)
			alerts.PATCH("/:id/ack", handlers.AcknowledgeAlert)
			alerts.PATCH("/:id/resolve", handlers.ResolveAlert)
			alerts.PATCH("/:id/dismiss", handlers.DismissAlert)
		}

		// Detection settings
		settings := api.Group("/settings")
		{
			settings.GET("/detection", handlers.GetDetectionSettings)
			settings.PUT("/detection", handlers.UpdateDetectionSettings)
		}

		// Detection control
		detection := api.Group("/detection")
		{
			detection.POST("/run", handlers.RunDetection)
			detection.GET("/status", handlers.GetDetectionStatus)
		}
	}

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	log.Printf("🚀 Server running on http://localhost:%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
