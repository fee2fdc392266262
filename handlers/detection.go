package handlers

import (
	"log"
	"net/http"

	"github.com/fleetguard/backend/services"
	"github.com/gin-gonic/gin"
)

var detectionRunner *services.DetectionRunner

// SetDetectionRunner sets the runner for the handlers
func SetDetectionRunner(runner *services.DetectionRunner) {
	detectionRunner = runner
}

// RunDetection handles POST /api/detection/run - Trigger a detection pass
func RunDetection(c *gin.Context) {
	if detectionRunner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Detection runner not initialized"})
		return
	}

	result, err := detectionRunner.RunOnce()
	if err != nil {
		log.Printf("⚠️ Detection pass failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Detection pass failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDetectionStatus handles GET /api/detection/status - Last pass summary
func GetDetectionStatus(c *gin.Context) {
	if detectionRunner == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}

	last := detectionRunner.LastRun()
	if last == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": true, "lastRun": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"enabled": true, "lastRun": last})
}
