package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/session-catalog/internal/metrics"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Snapshots, cfg.Event, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Snapshots != nil {
		snaps := NewSnapshotsController(cfg.Snapshots, cfg.Event)
		router.GET("/api/snapshots", snaps.List)
		router.GET("/api/snapshots/latest", snaps.Latest)
		router.GET("/api/snapshots/:id/sessions", snaps.Sessions)
	}

	if cfg.Refresh != nil {
		refresh := NewRefreshController(cfg.Refresh, cfg.Tasks, cfg.Progress)
		router.POST("/api/refresh", refresh.Trigger)
		router.GET("/api/refresh/status", refresh.Status)
		router.GET("/api/tasks/:id", refresh.TaskStatus)
	}

	return router
}
