package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jdillenkofer/proteus/internal/ws"
)

// HandleSimWebSocket upgrades the connection and streams frames to the viewer.
func HandleSimWebSocket(hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub.HandleConnection(c.Writer, c.Request)
	}
}
