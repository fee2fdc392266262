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

// PostVehicle handles POST /api/vehicles - Register a fleet vehicle
func PostVehicle(c *gin.Context) {
	var req struct {
		PlateNumber        string  `json:"plateNumber" binding:"required"`
		Name               *string `json:"name"`
		NominalConsumption float64 `json:"nominalConsumption"`
		TankCapacity       float64 `json:"tankCapacity"`
		InitialFuelLevel   float64 `json:"initialFuelLevel"`
		Site               *string `json:"site"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.NominalConsumption < 0 || req.TankCapacity < 0 || req.InitialFuelLevel < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fuel figures must not be negative"})
		return
	}

	var count int64
	database.DB.Model(&models.Vehicle{}).Where("plate_number = ?", req.PlateNumber).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Plate number already registered"})
		return
	}

	vehicle := models.Vehicle{
		PlateNumber:        req.PlateNumber,
		Name:               req.Name,
		NominalConsumption: req.NominalConsumption,
		TankCapacity:       req.TankCapacity,
		InitialFuelLevel:   req.InitialFuelLevel,
		IsActive:           true,
		Site:               req.Site,
	}

	if err := database.DB.Create(&vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vehicle"})
		return
	}

	c.JSON(http.StatusCreated, vehicle)
}

// GetVehicles handles GET /api/vehicles - Search/list vehicles
func GetVehicles(c *gin.Context) {
	query := database.DB.Model(&models.Vehicle{})

	// Search by plate number
	if plateNumber := c.Query("plateNumber"); plateNumber != "" {
		query = query.Where("plate_number ILIKE ?", "%"+plateNumber+"%")
	}

	// Filter by site
	if site := c.Query("site"); site != "" {
		query = query.Where("site = ?", site)
	}

	// Filter by active status
	if active := c.Query("active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	// Pagination
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

	var vehicles []models.Vehicle
	var total int64

	query.Model(&models.Vehicle{}).Count(&total)

	if err := query.Order("plate_number ASC").Limit(limit).Offset(offset).Find(&vehicles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vehicles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicles": vehicles,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetVehicle handles GET /api/vehicles/:id - Get single vehicle
func GetVehicle(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	var vehicle models.Vehicle
	if err := database.DB.First(&vehicle, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vehicle"})
		return
	}

	c.JSON(http.StatusOK, vehicle)
}

// GetVehicleAlerts handles GET /api/vehicles/:id/alerts - Alert history for one vehicle
func GetVehicleAlerts(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	query := database.DB.Model(&models.Alert{}).Where("vehicle_id = ?", id)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var alerts []models.Alert
	if err := query.Order("detected_at DESC").Limit(limit).Find(&alerts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch alerts"})
		return
	}

	c.JSON(http.StatusOK, alerts)
}

// GetVehicleFuelEvents handles GET /api/vehicles/:id/fuel-events - Refuel history for one vehicle
func GetVehicleFuelEvents(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	query := database.DB.Model(&models.FuelEvent{}).Where("vehicle_id = ?", id)

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

	limit := 100
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	var events []models.FuelEvent
	if err := query.Preload("Photo").Order("timestamp DESC").Limit(limit).Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch fuel events"})
		return
	}

	c.JSON(http.StatusOK, events)
}

// GetVehicleTrips handles GET /api/vehicles/:id/trips - Trip history for one vehicle
func GetVehicleTrips(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	query := database.DB.Model(&models.Trip{}).Where("vehicle_id = ?", id)

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

	limit := 100
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	var trips []models.Trip
	if err := query.Order("start_time DESC").Limit(limit).Find(&trips).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trips"})
		return
	}

	c.JSON(http.StatusOK, trips)
}

// UpdateVehicle handles PATCH /api/vehicles/:id - Update vehicle information
func UpdateVehicle(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	var req struct {
		Name               *string  `json:"name"`
		NominalConsumption *float64 `json:"nominalConsumption"`
		TankCapacity       *float64 `json:"tankCapacity"`
		IsActive           *bool    `json:"isActive"`
		Site               *string  `json:"site"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.NominalConsumption != nil {
		if *req.NominalConsumption < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "nominalConsumption must not be negative"})
			return
		}
		updates["nominal_consumption"] = *req.NominalConsumption
	}
	if req.TankCapacity != nil {
		updates["tank_capacity"] = *req.TankCapacity
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Site != nil {
		updates["site"] = *req.Site
	}

	if err := database.DB.Model(&models.Vehicle{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vehicle"})
		return
	}

	var vehicle models.Vehicle
	if err := database.DB.First(&vehicle, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}
	c.JSON(http.StatusOK, vehicle)
}
