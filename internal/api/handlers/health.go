package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jdillenkofer/proteus/internal/sim"
	"github.com/jdillenkofer/proteus/internal/ws"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthCheck returns server health status
func HealthCheck(m *sim.Manager, hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "proteus-api",
			"version": version,
			"uptime":  time.Since(startTime).String(),
			"balls":   m.BallCount(),
			"viewers": hub.ClientCount(),
		})
	}
}
