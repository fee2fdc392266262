package handlers

import (
	"net/http"

	"github.com/fleetguard/backend/database"
	"github.com/fleetguard/backend/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetDetectionSettings handles GET /api/settings/detection
func GetDetectionSettings(c *gin.Context) {
	var settings models.DetectionSettings
	if err := database.DB.First(&settings).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			settings = models.DetectionSettings{ID: 1}
			if err := database.DB.Create(&settings).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create settings"})
				return
			}
			// Re-read so column defaults populate the struct
			database.DB.First(&settings)
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
			return
		}
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateDetectionSettings handles PUT /api/settings/detection - Tune thresholds
func UpdateDetectionSettings(c *gin.Context) {
	var req struct {
		OverconsumptionPct   *float64 `json:"overconsumptionPct"`
		OdometerGapPct       *float64 `json:"odometerGapPct"`
		OdometerCheckEnabled *bool    `json:"odometerCheckEnabled"`
		MissingFuelLiters    *float64 `json:"missingFuelLiters"`
		PhotoTimeWindowHours *float64 `json:"photoTimeWindowHours"`
		PhotoDistanceKm      *float64 `json:"photoDistanceKm"`
		ImmobilizationHours  *float64 `json:"immobilizationHours"`
		RollingWindowDays    *int     `json:"rollingWindowDays"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updates := make(map[string]interface{})
	if req.OverconsumptionPct != nil {
		if *req.OverconsumptionPct <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "overconsumptionPct must be positive"})
			return
		}
		updates["overconsumption_pct"] = *req.OverconsumptionPct
	}
	if req.OdometerGapPct != nil {
		if *req.OdometerGapPct <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "odometerGapPct must be positive"})
			return
		}
		updates["odometer_gap_pct"] = *req.OdometerGapPct
	}
	if req.OdometerCheckEnabled != nil {
		updates["odometer_check_enabled"] = *req.OdometerCheckEnabled
	}
	if req.MissingFuelLiters != nil {
		if *req.MissingFuelLiters <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missingFuelLiters must be positive"})
			return
		}
		updates["missing_fuel_liters"] = *req.MissingFuelLiters
	}
	if req.PhotoTimeWindowHours != nil {
		if *req.PhotoTimeWindowHours <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "photoTimeWindowHours must be positive"})
			return
		}
		updates["photo_time_window_hours"] = *req.PhotoTimeWindowHours
	}
	if req.PhotoDistanceKm != nil {
		if *req.PhotoDistanceKm <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "photoDistanceKm must be positive"})
			return
		}
		updates["photo_distance_km"] = *req.PhotoDistanceKm
	}
	if req.ImmobilizationHours != nil {
		if *req.ImmobilizationHours <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "immobilizationHours must be positive"})
			return
		}
		updates["immobilization_hours"] = *req.ImmobilizationHours
	}
	if req.RollingWindowDays != nil {
		if *req.RollingWindowDays <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rollingWindowDays must be positive"})
			return
		}
		updates["rolling_window_days"] = *req.RollingWindowDays
	}

	// Single-row table, id fixed at 1
	var settings models.DetectionSettings
	if err := database.DB.First(&settings).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			settings = models.DetectionSettings{ID: 1}
			if err := database.DB.Create(&settings).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create settings"})
				return
			}
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
			return
		}
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&settings).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
			return
		}
	}

	database.DB.First(&settings)
	c.JSON(http.StatusOK, settings)
}
