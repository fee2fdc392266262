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

// PostFuelEvent handles POST /api/fuel-events - Record a refuel with its
// optional tank readings and proof photo metadata
func PostFuelEvent(c *gin.Context) {
	var req struct {
		VehicleID   int64              `json:"vehicleId" binding:"required"`
		DriverID    *int64             `json:"driverId"`
		Timestamp   time.Time          `json:"timestamp" binding:"required"`
		Liters      float64            `json:"liters" binding:"required"`
		UnitPrice   float64            `json:"unitPrice"`
		Odometer    float64            `json:"odometer"`
		StationName *string            `json:"stationName"`
		Lat         *float64           `json:"lat"`
		Lng         *float64           `json:"lng"`
		EntryMethod models.EntryMethod `json:"entryMethod"`
		FuelBefore  *float64           `json:"fuelBefore"`
		FuelAfter   *float64           `json:"fuelAfter"`
		Photo       *struct {
			CapturedAt  time.Time `json:"capturedAt"`
			Lat         *float64  `json:"lat"`
			Lng         *float64  `json:"lng"`
			DeviceModel *string   `json:"deviceModel"`
		} `json:"photo"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Liters <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "liters must be positive"})
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
		entryMethod = models.EntryManuelle
	}

	event := models.FuelEvent{
		VehicleID:   req.VehicleID,
		DriverID:    req.DriverID,
		Timestamp:   req.Timestamp,
		Liters:      req.Liters,
		UnitPrice:   req.UnitPrice,
		Odometer:    req.Odometer,
		StationName: req.StationName,
		Lat:         req.Lat,
		Lng:         req.Lng,
		EntryMethod: entryMethod,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		if req.Photo != nil {
			photo := models.PhotoMetadata{
				FuelEventID: event.ID,
				CapturedAt:  req.Photo.CapturedAt,
				Lat:         req.Photo.Lat,
				Lng:         req.Photo.Lng,
				DeviceModel: req.Photo.DeviceModel,
			}
			if err := tx.Create(&photo).Error; err != nil {
				return err
			}
		}
		if req.FuelBefore != nil {
			reading := models.FuelLevelReading{
				VehicleID:   req.VehicleID,
				Timestamp:   req.Timestamp,
				Liters:      *req.FuelBefore,
				Kind:        models.ReadingBeforeRefuel,
				FuelEventID: &event.ID,
			}
			if err := tx.Create(&reading).Error; err != nil {
				return err
			}
		}
		if req.FuelAfter != nil {
			reading := models.FuelLevelReading{
				VehicleID:   req.VehicleID,
				Timestamp:   req.Timestamp,
				Liters:      *req.FuelAfter,
				Kind:        models.ReadingAfterRefuel,
				FuelEventID: &event.ID,
			}
			if err := tx.Create(&reading).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create fuel event"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "id": strconv.FormatInt(event.ID, 10)})
}

// GetFuelEvents handles GET /api/fuel-events - List refuels with filters
func GetFuelEvents(c *gin.Context) {
	query := database.DB.Model(&models.FuelEvent{})

	if vehicleID := c.Query("vehicleId"); vehicleID != "" {
		query = query.Where("vehicle_id = ?", vehicleID)
	}
	if driverID := c.Query("driverId"); driverID != "" {
		query = query.Where("driver_id = ?", driverID)
	}
	if entryMethod := c.Query("entryMethod"); entryMethod != "" {
		query = query.Where("entry_method = ?", entryMethod)
	}
	if startTime := c.Query("startTime"); startTime != "" {
		if parsed, err := time.Parse(time.RFC3339, startTime); err == nil {
			query = query.Where("timestamp >= ?", parsed)
		}
	}
	if endTime := c.Query("endTime"); endTime != "" {
		if parsed, err := time.Parse(time.RFC3339, endTime); err == nil {
			query = query.Where("timestamp <= ?", parsed)
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

	var events []models.FuelEvent
	var total int64

	query.Model(&models.FuelEvent{}).Count(&total)

	if err := query.Preload("Photo").Preload("Vehicle", func(db *gorm.DB) *gorm.DB {
		return db.Select("id, plate_number, site")
	}).Order("timestamp DESC").Limit(limit).Offset(offset).Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch fuel events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fuelEvents": events,
		"total":      total,
		"limit":      limit,
		"offset":     offset,
	})
}

// GetFuelEvent handles GET /api/fuel-events/:id - Get single refuel
func GetFuelEvent(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fuel event ID"})
		return
	}

	var event models.FuelEvent
	if err := database.DB.Preload("Photo").Preload("Vehicle").Preload("Driver").First(&event, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Fuel event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch fuel event"})
		return
	}

	c.JSON(http.StatusOK, event)
}
