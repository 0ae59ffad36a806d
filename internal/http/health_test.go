package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/session-catalog/internal/database"
	"github.com/mrlokans/session-catalog/internal/entities"
)

func setupHealthTestDB(t *testing.T) *database.Database {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "health.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func getHealth(t *testing.T, controller *HealthController) (int, HealthResponse) {
	t.Helper()
	router := gin.New()
	router.GET("/health", controller.Status)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return w.Code, response
}

func TestHealthController_Status(t *testing.T) {
	t.Run("returns healthy when database is connected", func(t *testing.T) {
		db := setupHealthTestDB(t)

		code, response := getHealth(t, NewHealthController(db, nil, "", "1.0.0"))

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "1.0.0", response.Version)
		assert.Equal(t, "ok", response.Checks["database"])
		assert.Contains(t, response.Time, "T")
	})

	t.Run("reports not configured when database is nil", func(t *testing.T) {
		gin.SetMode(gin.TestMode)

		code, response := getHealth(t, NewHealthController(nil, nil, "", "1.0.0"))

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "not configured", response.Checks["database"])
	})

	t.Run("returns unhealthy when database connection is closed", func(t *testing.T) {
		db := setupHealthTestDB(t)
		db.Close()

		code, response := getHealth(t, NewHealthController(db, nil, "", "1.0.0"))

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unhealthy", response.Status)
		assert.Contains(t, response.Checks["database"], "error")
	})

	t.Run("reports missing snapshots without failing", func(t *testing.T) {
		db := setupHealthTestDB(t)

		code, response := getHealth(t, NewHealthController(db, &fakeSnapshotStore{}, "amsterdam-2024", ""))

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "none yet", response.Checks["snapshots"])
		assert.Nil(t, response.LastSnapshot)
	})

	t.Run("includes the last snapshot time", func(t *testing.T) {
		db := setupHealthTestDB(t)
		taken := time.Date(2024, 2, 6, 9, 0, 0, 0, time.UTC)
		store := &fakeSnapshotStore{snapshots: []entities.Snapshot{{ID: 1, Event: "amsterdam-2024", TakenAt: taken}}}

		_, response := getHealth(t, NewHealthController(db, store, "amsterdam-2024", ""))

		assert.Equal(t, "ok", response.Checks["snapshots"])
		require.NotNil(t, response.LastSnapshot)
		assert.True(t, taken.Equal(*response.LastSnapshot))
	})
}
