package importers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/session-catalog/internal/entities"
	"github.com/mrlokans/session-catalog/internal/exporters"
	"github.com/mrlokans/session-catalog/internal/rainfocus"
)

type mockSource struct {
	items   []entities.RawItem
	err     error
	filters rainfocus.Filters
}

func (m *mockSource) SearchAll(_ context.Context, filters rainfocus.Filters) ([]entities.RawItem, error) {
	m.filters = filters
	return m.items, m.err
}

type mockExporter struct {
	exported    []entities.Session
	returnError error
}

func (m *mockExporter) Export(sessions []entities.Session) (exporters.ExportResult, error) {
	m.exported = sessions
	if m.returnError != nil {
		return exporters.ExportResult{}, m.returnError
	}
	return exporters.ExportResult{SessionsProcessed: len(sessions)}, nil
}

func TestPipeline_Run_CollectsRejections(t *testing.T) {
	source := &mockSource{items: []entities.RawItem{
		{"type": "Breakout", "title": "One", "code": "BRK-1001"},
		{"type": "Breakout", "title": "No level", "code": "BRK-7001"},
		{"type": "Breakout", "title": "No code"},
		{"type": "Breakout", "title": "Two", "code": "BRK-2002"},
	}}
	exporter := &mockExporter{}
	pipeline := NewPipeline(source, NewNormalizer(time.Hour), exporter)

	filters := rainfocus.Filters{rainfocus.FilterSessionType: "BRK"}
	result, err := pipeline.Run(context.Background(), filters)

	require.NoError(t, err)
	assert.Equal(t, filters, source.filters)
	assert.Equal(t, 4, result.Fetched)
	require.Len(t, result.Sessions, 2)
	assert.Equal(t, "BRK-1001", result.Sessions[0].ID)
	assert.Equal(t, "BRK-2002", result.Sessions[1].ID)

	require.Len(t, result.Rejected, 2)
	assert.Equal(t, "BRK-7001", result.Rejected[0].Code)
	var classErr *ClassificationError
	assert.True(t, errors.As(result.Rejected[0].Err, &classErr))
	assert.Equal(t, "item #2", result.Rejected[1].Code)
	var malformed *MalformedRecordError
	assert.True(t, errors.As(result.Rejected[1].Err, &malformed))

	assert.Len(t, exporter.exported, 2)
	assert.Equal(t, 2, result.Export.SessionsProcessed)
}

func TestPipeline_Run_FetchError(t *testing.T) {
	fetchErr := &rainfocus.TransientFetchError{From: 50, StatusCode: 502}
	exporter := &mockExporter{}
	pipeline := NewPipeline(&mockSource{err: fetchErr}, NewNormalizer(0), exporter)

	_, err := pipeline.Run(context.Background(), nil)

	require.Error(t, err)
	var target *rainfocus.TransientFetchError
	assert.True(t, errors.As(err, &target))
	assert.Nil(t, exporter.exported)
}

func TestPipeline_Run_ExportError(t *testing.T) {
	source := &mockSource{items: []entities.RawItem{{"type": "Breakout", "title": "One", "code": "BRK-1001"}}}
	exportErr := errors.New("disk full")
	pipeline := NewPipeline(source, NewNormalizer(0), &mockExporter{returnError: exportErr})

	result, err := pipeline.Run(context.Background(), nil)

	assert.ErrorIs(t, err, exportErr)
	assert.Len(t, result.Sessions, 1)
}

func TestPipeline_Run_WithoutExporter(t *testing.T) {
	source := &mockSource{items: []entities.RawItem{{"type": "Breakout", "title": "One", "code": "BRK-1001"}}}
	result, err := NewPipeline(source, NewNormalizer(0), nil).Run(context.Background(), nil)

	require.NoError(t, err)
	assert.Len(t, result.Sessions, 1)
	assert.Zero(t, result.Export.SessionsProcessed)
}

func TestPipeline_Run_EmptyInput(t *testing.T) {
	exporter := &mockExporter{}
	result, err := NewPipeline(&mockSource{}, NewNormalizer(0), exporter).Run(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, result.Sessions)
	assert.Empty(t, result.Rejected)
	assert.Nil(t, exporter.exported, "nothing to export")
}
