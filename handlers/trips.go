package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fleetguard/backend/database"
	"github.com/fleetguard/backend/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PostTrip handles POST /api/trips - Record a completed trip with its GPS
// trace and optional before/after tank readings
func PostTrip(c *gin.Context) {
	var req struct {
		VehicleID   int64              `json:"vehicleId" binding:"required"`
		DriverID    *int64             `json:"driverId"`
		StartTime   time.Time          `json:"startTime" binding:"required"`
		EndTime     time.Time          `json:"endTime" binding:"required"`
		DistanceKm  float64            `json:"distanceKm"`
		EntryMethod models.EntryMethod `json:"entryMethod"`
		Points      []struct {
			Lat       float64   `json:"lat"`
			Lng       float64   `json:"lng"`
			Timestamp time.Time `json:"timestamp"`
		} `json:"points"`
		FuelBefore *float64 `json:"fuelBefore"`
		FuelAfter  *float64 `json:"fuelAfter"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !req.EndTime.After(req.StartTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endTime must be after startTime"})
		return
	}
	if req.DistanceKm < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "distanceKm must not be negative"})
		return
	}

	var vehicle models.Vehicle
	if err := database.DB.First(&vehicle, req.VehicleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check vehicle"})
		return
	}

	entryMethod := req.EntryMethod
	if entryMethod == "" {
		entryMethod = models.EntryGPS
	}

	trip := models.Trip{
		VehicleID:   req.VehicleID,
		DriverID:    req.DriverID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		DistanceKm:  req.DistanceKm,
		EntryMethod: entryMethod,
	}
	for i, pt := range req.Points {
		trip.Points = append(trip.Points, models.TripPoint{
			Seq:       i + 1,
			Lat:       pt.Lat,
			Lng:       pt.Lng,
			Timestamp: pt.Timestamp,
		})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&trip).Error; err != nil {
			return err
		}
		if req.FuelBefore != nil {
			reading := models.FuelLevelReading{
				VehicleID: req.VehicleID,
				Timestamp: req.StartTime,
				Liters:    *req.FuelBefore,
				Kind:      models.ReadingBeforeTrip,
				TripID:    &trip.ID,
			}
			if err := tx.Create(&reading).Error; err != nil {
				return err
			}
		}
		if req.FuelAfter != nil {
			reading := models.FuelLevelReading{
				VehicleID: req.VehicleID,
				Timestamp: req.EndTime,
				Liters:    *req.FuelAfter,
				Kind:      models.ReadingAfterTrip,
				TripID:    &trip.ID,
			}
			if err := tx.Create(&reading).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create trip"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "id": strconv.FormatInt(trip.ID, 10)})
}

// GetTrips handles GET /api/trips - List trips with filters
func GetTrips(c *gin.Context) {
	query := database.DB.Model(&models.Trip{})

	if vehicleID := c.Query("vehicleId"); vehicleID != "" {
		query = query.Where("vehicle_id = ?", vehicleID)
	}
	if driverID := c.Query("driverId"); driverID != "" {
		query = query.Where("driver_id = ?", driverID)
	}
	if startTime := c.Query("startTime"); startTime != "" {
		if parsed, err := time.Parse(time.RFC3339, startTime); err == nil {
			query = query.Where("start_time >= ?", parsed)
		}
	}
	if endTime := c.Query("endTime"); endTime != "" {
		if parsed, err := time.Parse(time.RFC3339, endTime); err == nil {
			query = query.Where("end_time <= ?", parsed)
		}
	}

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}
	offset := 0
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	var trips []models.Trip
	var total int64

	query.Model(&models.Trip{}).Count(&total)

	if err := query.Preload("Vehicle", func(db *gorm.DB) *gorm.DB {
		return db.Select("id, plate_number, site")
	}).Order("start_time DESC").Limit(limit).Offset(offset).Find(&trips).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trips"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trips":  trips,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetTrip handles GET /api/trips/:id - Get single trip with its GPS trace
func GetTrip(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trip ID"})
		return
	}

	var trip models.Trip
	if err := database.DB.Preload("Points", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq ASC")
	}).Preload("Vehicle").Preload("Driver").First(&trip, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trip"})
		return
	}

	c.JSON(http.StatusOK, trip)
}
