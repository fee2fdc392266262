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

// GetAlerts handles GET /api/alerts - List alerts with filters
func GetAlerts(c *gin.Context) {
	query := database.DB.Model(&models.Alert{})

	// Filter by status
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	// Filter by alert type
	if alertType := c.Query("type"); alertType != "" {
		query = query.Where("type = ?", alertType)
	}

	// Filter by vehicle
	if vehicleID := c.Query("vehicleId"); vehicleID != "" {
		query = query.Where("vehicle_id = ?", vehicleID)
	}

	// Filter by minimum severity
	if minSeverity := c.Query("minSeverity"); minSeverity != "" {
		if parsed, err := strconv.Atoi(minSeverity); err == nil {
			query = query.Where("severity >= ?", parsed)
		}
	}

	// Filter by date range
	if startTime := c.Query("startTime"); startTime != "" {
		if parsed, err := time.Parse(time.RFC3339, startTime); err == nil {
			query = query.Where("detected_at >= ?", parsed)
		}
	}
	if endTime := c.Query("endTime"); endTime != "" {
		if parsed, err := time.Parse(time.RFC3339, endTime); err == nil {
			query = query.Where("detected_at <= ?", parsed)
		}
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

	var alerts []models.Alert
	var total int64

	query.Model(&models.Alert{}).Count(&total)

	if err := query.Preload("Vehicle", func(db *gorm.DB) *gorm.DB {
		return db.Select("id, plate_number, site")
	}).Order("detected_at DESC").Limit(limit).Offset(offset).Find(&alerts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch alerts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetAlert handles GET /api/alerts/:id - Get single alert
func GetAlert(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert ID"})
		return
	}

	var alert models.Alert
	if err := database.DB.Preload("Vehicle").Preload("Driver").First(&alert, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch alert"})
		return
	}

	c.JSON(http.StatusOK, alert)
}

// AcknowledgeAlert handles PATCH /api/alerts/:id/ack
func AcknowledgeAlert(c *gin.Context) {
	transitionAlert(c, models.AlertInProgress, false)
}

// ResolveAlert handles PATCH /api/alerts/:id/resolve
func ResolveAlert(c *gin.Context) {
	transitionAlert(c, models.AlertResolved, true)
}

// DismissAlert handles PATCH /api/alerts/:id/dismiss
func DismissAlert(c *gin.Context) {
	transitionAlert(c, models.AlertDismissed, true)
}

// transitionAlert applies a status change. Resolve and dismiss are terminal:
// they stamp resolved_at and accept an optional note and operator name.
func transitionAlert(c *gin.Context, target models.AlertStatus, terminal bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert ID"})
		return
	}

	var req struct {
		Note       *string `json:"note"`
		ResolvedBy *string `json:"resolvedBy"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		// Optional body, continue without it
	}

	var alert models.Alert
	if err := database.DB.First(&alert, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch alert"})
		return
	}

	// Terminal alerts stay terminal
	if alert.Status == models.AlertResolved || alert.Status == models.AlertDismissed {
		c.JSON(http.StatusConflict, gin.H{"error": "Alert already closed"})
		return
	}

	updates := map[string]interface{}{
		"status": target,
	}
	if terminal {
		updates["resolved_at"] = time.Now()
		if req.Note != nil {
			updates["resolution_note"] = *req.Note
		}
		if req.ResolvedBy != nil {
			updates["resolved_by"] = *req.ResolvedBy
		}
	}

	if err := database.DB.Model(&models.Alert{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update alert"})
		return
	}

	database.DB.First(&alert, id)
	c.JSON(http.StatusOK, alert)
}

// GetAlertStats handles GET /api/alerts/stats - Get alert statistics
func GetAlertStats(c *gin.Context) {
	var stats struct {
		Total      int64            `json:"total"`
		New        int64            `json:"new"`
		InProgress int64            `json:"inProgress"`
		Resolved   int64            `json:"resolved"`
		Dismissed  int64            `json:"dismissed"`
		ByType     map[string]int64 `json:"byType"`
		ByVehicle  map[string]int64 `json:"byVehicle"`
	}

	stats.ByType = make(map[string]int64)
	stats.ByVehicle = make(map[string]int64)

	database.DB.Model(&models.Alert{}).Count(&stats.Total)
	database.DB.Model(&models.Alert{}).Where("status = ?", models.AlertNew).Count(&stats.New)
	database.DB.Model(&models.Alert{}).Where("status = ?", models.AlertInProgress).Count(&stats.InProgress)
	database.DB.Model(&models.Alert{}).Where("status = ?", models.AlertResolved).Count(&stats.Resolved)
	database.DB.Model(&models.Alert{}).Where("status = ?", models.AlertDismissed).Count(&stats.Dismissed)

	var typeCounts []struct {
		Type  string
		Count int64
	}
	database.DB.Model(&models.Alert{}).
		Select("type, COUNT(*) as count").
		Group("type").
		Scan(&typeCounts)

	for _, tc := range typeCounts {
		stats.ByType[tc.Type] = tc.Count
	}

	var vehicleCounts []struct {
		VehicleID int64
		Count     int64
	}
	database.DB.Model(&models.Alert{}).
		Select("vehicle_id, COUNT(*) as count").
		Group("vehicle_id").
		Scan(&vehicleCounts)

	for _, vc := range vehicleCounts {
		stats.ByVehicle[strconv.FormatInt(vc.VehicleID, 10)] = vc.Count
	}

	c.JSON(http.StatusOK, stats)
}
