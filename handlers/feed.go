package handlers

import (
	"log"
	"net/http"

	"github.com/fleetguard/backend/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var (
	alertHub *services.AlertHub
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return true // Allow all origins for now
		},
	}
)

// SetAlertHub sets the alert hub for the handlers
func SetAlertHub(hub *services.AlertHub) {
	alertHub = hub
}

// HandleAlertWebSocket handles WebSocket connections for live alerts
func HandleAlertWebSocket(c *gin.Context) {
	if alertHub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Alert hub not initialized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("⚠️ WebSocket upgrade failed: %v", err)
		return
	}

	// Get user ID from context (if authenticated)
	userID := c.GetString("userID")
	if userID == "" {
		userID = "anonymous"
	}

	client := services.NewAlertClient(alertHub, conn, userID, c.ClientIP())

	alertHub.Register(client)

	// Start goroutines for reading and writing
	go client.WritePump()
	go client.ReadPump()
}

// GetAlertHubStats returns alert hub statistics
func GetAlertHubStats(c *gin.Context) {
	if alertHub == nil {
		c.JSON(http.StatusOK, gin.H{
			"enabled": false,
		})
		return
	}

	stats := alertHub.Stats()
	c.JSON(http.StatusOK, gin.H{
		"enabled":        true,
		"clients":        stats.Clients,
		"subscriptions":  stats.Subscriptions,
		"activeChannels": stats.ActiveChannels,
	})
}
