package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"gorm.io/gorm"
)

// RefreshController triggers capacity refreshes and reports on them.
type RefreshController struct {
	trigger  RefreshTrigger
	tasks    TaskStatusReader
	progress ProgressReader
}

func NewRefreshController(trigger RefreshTrigger, tasks TaskStatusReader, progress ProgressReader) *RefreshController {
	return &RefreshController{trigger: trigger, tasks: tasks, progress: progress}
}

// Trigger handles POST /api/refresh
func (rc *RefreshController) Trigger(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	taskID, err := rc.trigger.RunNow(ctx)
	if err != nil {
		respondInternalError(c, err, "enqueue refresh")
		return
	}
	if taskID == "" {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "a refresh is already running", Code: "refresh_running"})
		return
	}
	respondAccepted(c, "refresh enqueued", gin.H{"task_id": taskID})
}

// Status handles GET /api/refresh/status
func (rc *RefreshController) Status(c *gin.Context) {
	if rc.progress == nil {
		respondNotFound(c, "refresh progress")
		return
	}
	progress, err := rc.progress.GetSyncProgress()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "refresh progress")
		return
	}
	if err != nil {
		respondInternalError(c, err, "refresh progress")
		return
	}
	c.JSON(http.StatusOK, progress)
}

// TaskStatus handles GET /api/tasks/:id
func (rc *RefreshController) TaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}
	if rc.tasks == nil {
		respondNotFound(c, "task")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := rc.tasks.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
