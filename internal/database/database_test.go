package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/session-catalog/internal/entities"
)

func TestNewDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Ping())

	for _, model := range []any{&entities.Snapshot{}, &entities.SessionRecord{}, &entities.SyncProgress{}} {
		assert.True(t, db.DB.Migrator().HasTable(model))
	}
}

func TestNewDatabase_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.DB.Create(&entities.Snapshot{RunID: "run-1", Event: "e"}).Error)
	require.NoError(t, db.Close())

	db, err = NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int64
	require.NoError(t, db.DB.Model(&entities.Snapshot{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
