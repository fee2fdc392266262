package handlers

import (
	"net/http"
	"strconv"

	"github.com/fleetguard/backend/database"
	"github.com/fleetguard/backend/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PostDriver handles POST /api/drivers - Register a driver
func PostDriver(c *gin.Context) {
	var req struct {
		FullName      string  `json:"fullName" binding:"required"`
		LicenseNumber *string `json:"licenseNumber"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	driver := models.Driver{
		FullName:      req.FullName,
		LicenseNumber: req.LicenseNumber,
		IsActive:      true,
	}

	if err := database.DB.Create(&driver).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create driver"})
		return
	}

	c.JSON(http.StatusCreated, driver)
}

// GetDrivers handles GET /api/drivers - List drivers
func GetDrivers(c *gin.Context) {
	query := database.DB.Model(&models.Driver{})

	if name := c.Query("name"); name != "" {
		query = query.Where("full_name ILIKE ?", "%"+name+"%")
	}
	if active := c.Query("active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	var drivers []models.Driver
	if err := query.Order("full_name ASC").Find(&drivers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch drivers"})
		return
	}

	c.JSON(http.StatusOK, drivers)
}

// GetDriver handles GET /api/drivers/:id - Get single driver
func GetDriver(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver ID"})
		return
	}

	var driver models.Driver
	if err := database.DB.First(&driver, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch driver"})
		return
	}

	c.JSON(http.StatusOK, driver)
}

// UpdateDriver handles PATCH /api/drivers/:id - Update driver information
func UpdateDriver(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver ID"})
		return
	}

	var req struct {
		FullName      *string `json:"fullName"`
		LicenseNumber *string `json:"licenseNumber"`
		IsActive      *bool   `json:"isActive"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updates := make(map[string]interface{})
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.LicenseNumber != nil {
		updates["license_number"] = *req.LicenseNumber
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := database.DB.Model(&models.Driver{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update driver"})
		return
	}

	var driver models.Driver
	if err := database.DB.First(&driver, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
		return
	}
	c.JSON(http.StatusOK, driver)
}
