package handlers

import (
	"net/http"
	"strconv"

	"github.com/fleetguard/backend/database"
	"github.com/fleetguard/backend/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PostGeofence handles POST /api/geofences - Register a circular zone
func PostGeofence(c *gin.Context) {
	var req struct {
		Name    string              `json:"name" binding:"required"`
		Kind    models.GeofenceKind `json:"kind" binding:"required"`
		Lat     float64             `json:"lat"`
		Lng     float64             `json:"lng"`
		RadiusM float64             `json:"radiusM"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	switch req.Kind {
	case models.GeofenceDepot, models.GeofenceStation, models.GeofenceRiskZone:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be depot, station or risk_zone"})
		return
	}
	if req.RadiusM <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "radiusM must be positive"})
		return
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
		return
	}

	geofence := models.Geofence{
		Name:     req.Name,
		Kind:     req.Kind,
		Lat:      req.Lat,
		Lng:      req.Lng,
		RadiusM:  req.RadiusM,
		IsActive: true,
	}

	if err := database.DB.Create(&geofence).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create geofence"})
		return
	}

	c.JSON(http.StatusCreated, geofence)
}

// GetGeofences handles GET /api/geofences - List zones
func GetGeofences(c *gin.Context) {
	query := database.DB.Model(&models.Geofence{})

	if kind := c.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if active := c.Query("active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	var geofences []models.Geofence
	if err := query.Order("name ASC").Find(&geofences).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch geofences"})
		return
	}

	c.JSON(http.StatusOK, geofences)
}

// DeleteGeofence handles DELETE /api/geofences/:id - Remove a zone
func DeleteGeofence(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid geofence ID"})
		return
	}

	result := database.DB.Delete(&models.Geofence{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete geofence"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Geofence not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateGeofence handles PATCH /api/geofences/:id - Update a zone
func UpdateGeofence(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid geofence ID"})
		return
	}

	var req struct {
		Name     *string  `json:"name"`
		Lat      *float64 `json:"lat"`
		Lng      *float64 `json:"lng"`
		RadiusM  *float64 `json:"radiusM"`
		IsActive *bool    `json:"isActive"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Lat != nil {
		updates["lat"] = *req.Lat
	}
	if req.Lng != nil {
		updates["lng"] = *req.Lng
	}
	if req.RadiusM != nil {
		if *req.RadiusM <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "radiusM must be positive"})
			return
		}
		updates["radius_m"] = *req.RadiusM
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := database.DB.Model(&models.Geofence{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update geofence"})
		return
	}

	var geofence models.Geofence
	if err := database.DB.First(&geofence, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Geofence not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch geofence"})
		return
	}
	c.JSON(http.StatusOK, geofence)
}
