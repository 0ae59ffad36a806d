package importers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/session-catalog/internal/entities"
)

func TestLearningMapsFromCatalog(t *testing.T) {
	var attrs []entities.RawItem
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id": "sessiontype", "values": [{"id": "BRK"}]},
		{"id": "learningmap", "values": [
			{"id": "Security \u200e ", "child": {"values": [
				{"id": "lm-1", "name": "Zero\u200b Trust"},
				{"id": "lm-2", "name": "SASE/SSE"}
			]}},
			{"id": "Data Center", "child": {"values": [
				{"id": "lm-3", "name": "ACI"},
				{"name": "no id"}
			]}},
			{"id": "Empty"}
		]}
	]`), &attrs))

	maps, err := LearningMapsFromCatalog(attrs)
	require.NoError(t, err)

	assert.Equal(t, []entities.LearningMap{
		{Category: "Security ", Name: "Zero Trust", ID: "lm-1"},
		{Category: "Security ", Name: "SASE/SSE", ID: "lm-2"},
		{Category: "Data Center", Name: "ACI", ID: "lm-3"},
	}, maps)
}

func TestLearningMapsFromCatalog_Missing(t *testing.T) {
	_, err := LearningMapsFromCatalog([]entities.RawItem{{"id": "sessiontype"}})
	assert.ErrorIs(t, err, ErrNoLearningMaps)
}
