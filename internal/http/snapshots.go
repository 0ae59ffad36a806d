package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/session-catalog/internal/database/snapshots"
	"github.com/mrlokans/session-catalog/internal/entities"
	"github.com/mrlokans/session-catalog/internal/exporters"
)

const (
	defaultSnapshotLimit = 20
	maxSnapshotLimit     = 200
)

// SnapshotsController serves stored capacity snapshots.
type SnapshotsController struct {
	store SnapshotStore
	event string
}

func NewSnapshotsController(store SnapshotStore, event string) *SnapshotsController {
	return &SnapshotsController{store: store, event: event}
}

// SessionView is a stored session plus its derived availability.
type SessionView struct {
	entities.SessionRecord
	PercentAvailable *int                     `json:"percent_available,omitempty"`
	Status           exporters.CapacityStatus `json:"status"`
}

func newSessionView(rec entities.SessionRecord) SessionView {
	view := SessionView{SessionRecord: rec, Status: exporters.StatusUnknown}
	if rec.Capacity != nil && rec.SeatsRemaining != nil && *rec.Capacity > 0 {
		percent := *rec.SeatsRemaining * 100 / *rec.Capacity
		view.PercentAvailable = &percent
		view.Status = exporters.ClassifyAvailability(percent)
	}
	return view
}

type SnapshotSessionsResponse struct {
	Snapshot *entities.Snapshot `json:"snapshot"`
	Full     int                `json:"full"`
	Sessions []SessionView      `json:"sessions"`
}

// List handles GET /api/snapshots
func (sc *SnapshotsController) List(c *gin.Context) {
	limit, ok := parseLimit(c, defaultSnapshotLimit, maxSnapshotLimit)
	if !ok {
		return
	}
	snaps, err := sc.store.List(limit)
	if err != nil {
		respondInternalError(c, err, "list snapshots")
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": snaps})
}

// Latest handles GET /api/snapshots/latest?event=&filter=
func (sc *SnapshotsController) Latest(c *gin.Context) {
	event := c.DefaultQuery("event", sc.event)
	snap, err := sc.store.Latest(event, c.Query("filter"))
	if errors.Is(err, snapshots.ErrNotFound) {
		respondNotFound(c, "snapshot")
		return
	}
	if err != nil {
		respondInternalError(c, err, "latest snapshot")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"snapshot": snap,
		"age":      time.Since(snap.TakenAt).Round(time.Second).String(),
	})
}

// Sessions handles GET /api/snapshots/:id/sessions
func (sc *SnapshotsController) Sessions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	snap, err := sc.store.GetByID(id)
	if errors.Is(err, snapshots.ErrNotFound) {
		respondNotFound(c, "snapshot")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get snapshot")
		return
	}

	records, err := sc.store.Sessions(id)
	if err != nil {
		respondInternalError(c, err, "snapshot sessions")
		return
	}

	resp := SnapshotSessionsResponse{Snapshot: snap, Sessions: make([]SessionView, 0, len(records))}
	for _, rec := range records {
		view := newSessionView(rec)
		if view.Status == exporters.StatusFull {
			resp.Full++
		}
		resp.Sessions = append(resp.Sessions, view)
	}
	c.JSON(http.StatusOK, resp)
}
