package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/session-catalog/internal/database"
	"github.com/mrlokans/session-catalog/internal/database/snapshots"
)

type HealthResponse struct {
	Status       string            `json:"status"`
	Time         string            `json:"time"`
	Version      string            `json:"version,omitempty"`
	Checks       map[string]string `json:"checks"`
	LastSnapshot *time.Time        `json:"last_snapshot,omitempty"`
}

type HealthController struct {
	db        *database.Database
	snapshots SnapshotStore
	event     string
	version   string
}

func NewHealthController(db *database.Database, store SnapshotStore, event, version string) *HealthController {
	return &HealthController{
		db:        db,
		snapshots: store,
		event:     event,
		version:   version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	health := HealthResponse{
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	// A missing snapshot is reported but does not make the service unhealthy.
	if h.snapshots != nil && status == "healthy" {
		snap, err := h.snapshots.Latest(h.event, "")
		switch {
		case errors.Is(err, snapshots.ErrNotFound):
			checks["snapshots"] = "none yet"
		case err != nil:
			checks["snapshots"] = "error: " + err.Error()
		default:
			checks["snapshots"] = "ok"
			taken := snap.TakenAt
			health.LastSnapshot = &taken
		}
	}

	health.Status = status
	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
