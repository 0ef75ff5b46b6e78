package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jdillenkofer/proteus/internal/api/handlers"
	"github.com/jdillenkofer/proteus/internal/config"
	"github.com/jdillenkofer/proteus/internal/middleware"
	"github.com/jdillenkofer/proteus/internal/sim"
	"github.com/jdillenkofer/proteus/internal/store"
	"github.com/jdillenkofer/proteus/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, m *sim.Manager, hub *ws.Hub, st *store.Store, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(m, hub))
		v1.POST("/auth/login", handlers.Login(cfg))

		simGroup := v1.Group("/sim")
		{
			simGroup.GET("/state", handlers.GetState(m))
			simGroup.GET("/ws", handlers.HandleSimWebSocket(hub))

			// Mutating operations require an admin JWT.
			admin := simGroup.Group("", middleware.RequireAdmin(cfg))
			{
				admin.POST("/snapshot", handlers.SaveSnapshot(m, st))
				admin.GET("/snapshots", handlers.ListSnapshots(st))
				admin.POST("/restore", handlers.RestoreSnapshot(m, st))
				admin.POST("/reset", handlers.ResetSim(m, st))
			}
		}
	}
}
