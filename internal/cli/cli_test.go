package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/session-catalog/internal/entities"
	"github.com/mrlokans/session-catalog/internal/rainfocus"
)

func session(code, sessionType string) map[string]any {
	return map[string]any{
		"code":  code,
		"title": "Session " + code,
		"type":  sessionType,
		"times": []map[string]any{{
			"utcStartTime":   "2024/02/06 09:00:00",
			"utcEndTime":     "2024/02/06 10:00:00",
			"capacity":       100,
			"seatsRemaining": 0,
			"room":           "Hall 7",
		}},
	}
}

// catalogServer answers catalogue, learning map and session type searches
// with a single page each.
func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")

		if r.PostForm.Get(rainfocus.FilterCatalogDisplay) == "list" {
			json.NewEncoder(w).Encode(map[string]any{
				"responseCode": "0",
				"attributes": []map[string]any{{
					"id": "learningmap",
					"values": []map[string]any{{
						"id": "Security ",
						"child": map[string]any{"values": []map[string]any{
							{"id": "lm-1", "name": "Zero Trust"},
							{"id": "lm-2", "name": "Empty Map"},
						}},
					}},
				}},
			})
			return
		}

		items := []map[string]any{}
		switch {
		case r.PostForm.Get(rainfocus.FilterLearningMap) == "lm-1":
			items = append(items, session("BRKSEC-2001", "Breakout"), session("LABSEC-1001", "Walk-in Lab"))
		case r.PostForm.Get(rainfocus.FilterLearningMap) != "":
		case r.PostForm.Get(rainfocus.FilterSessionType) == "BRK":
			items = append(items, session("BRK-1001", "Breakout"), map[string]any{"code": "BRK-9999"})
		case r.PostForm.Get(rainfocus.FilterSessionType) == "":
			items = append(items, session("BRK-1001", "Breakout"), session("TECSEC-3001", "Technical Seminar"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"responseCode": "0",
			"total":        len(items),
			"from":         0,
			"size":         len(items),
			"items":        items,
		})
	}))
}

func writeCredentials(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"rfapiprofileid":"test-profile"}`), 0o600))
	return path
}

func TestExportSessionsCommand_ParseFlags(t *testing.T) {
	cmd := NewExportSessionsCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-session-type", "BRK", "-event", "las-vegas-2023", "-kafka-brokers", "a:1,b:2"}))

	assert.Equal(t, rainfocus.Filters{rainfocus.FilterSessionType: "BRK"}, cmd.Filters())
	assert.Equal(t, "las-vegas-2023", cmd.Event)
	assert.Equal(t, []string{"a:1", "b:2"}, splitCSV(cmd.KafkaBrokers))
	assert.False(t, cmd.Elastic)
}

func TestExportSessionsCommand_AllFiltersByDefault(t *testing.T) {
	cmd := NewExportSessionsCommand()
	require.NoError(t, cmd.ParseFlags(nil))
	assert.Equal(t, "all", cmd.Filters().String())
}

func TestExportSessionsCommand_Run(t *testing.T) {
	server := catalogServer(t)
	defer server.Close()

	out := filepath.Join(t.TempDir(), "sessions.xlsx")
	dbPath := filepath.Join(t.TempDir(), "snapshots.db")

	cmd := NewExportSessionsCommand()
	cmd.cfg.Rainfocus.SearchURL = server.URL
	require.NoError(t, cmd.ParseFlags([]string{"-credentials", writeCredentials(t), "-output", out, "-snapshot", "-db", dbPath}))

	require.NoError(t, cmd.Run())
	assert.FileExists(t, out)
	assert.FileExists(t, dbPath)
}

func TestExportSessionsCommand_DryRunWritesNothing(t *testing.T) {
	server := catalogServer(t)
	defer server.Close()

	out := filepath.Join(t.TempDir(), "sessions.xlsx")
	cmd := NewExportSessionsCommand()
	cmd.cfg.Rainfocus.SearchURL = server.URL
	require.NoError(t, cmd.ParseFlags([]string{"-credentials", writeCredentials(t), "-output", out, "-dry-run"}))

	require.NoError(t, cmd.Run())
	assert.NoFileExists(t, out)
}

func TestExportSessionsCommand_ElasticUnreachable(t *testing.T) {
	server := catalogServer(t)
	defer server.Close()
	elastic := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer elastic.Close()

	out := filepath.Join(t.TempDir(), "sessions.xlsx")
	cmd := NewExportSessionsCommand()
	cmd.cfg.Rainfocus.SearchURL = server.URL
	require.NoError(t, cmd.ParseFlags([]string{
		"-credentials", writeCredentials(t), "-output", out,
		"-elastic", "-elastic-addresses", elastic.URL,
	}))

	err := cmd.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "elasticsearch")
	assert.NoFileExists(t, out, "nothing is fetched or written when the cluster is down")
}

func TestExportSessionsCommand_UnknownEvent(t *testing.T) {
	cmd := NewExportSessionsCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-credentials", writeCredentials(t), "-event", "nowhere-1999"}))

	err := cmd.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amsterdam-2024", "lists known events")
}

func TestExportSessionsCommand_MissingCredentials(t *testing.T) {
	t.Setenv("RAINFOCUS_API_PROFILE_ID", "")
	cmd := NewExportSessionsCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-credentials", filepath.Join(t.TempDir(), "absent.json")}))

	assert.ErrorIs(t, cmd.Run(), rainfocus.ErrMissingProfileID)
}

func TestLearningMapsCommand_Run(t *testing.T) {
	server := catalogServer(t)
	defer server.Close()

	dir := t.TempDir()
	cmd := NewLearningMapsCommand()
	cmd.cfg.Rainfocus.SearchURL = server.URL
	require.NoError(t, cmd.ParseFlags([]string{"-credentials", writeCredentials(t), "-output", dir}))

	require.NoError(t, cmd.Run())
	assert.FileExists(t, filepath.Join(dir, "Security", "Zero Trust.png"))
	assert.NoFileExists(t, filepath.Join(dir, "Security", "Empty Map.png"), "maps without sessions are not rendered")
}

func TestLearningMapsCommand_ListOnly(t *testing.T) {
	server := catalogServer(t)
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "maps")
	cmd := NewLearningMapsCommand()
	cmd.cfg.Rainfocus.SearchURL = server.URL
	require.NoError(t, cmd.ParseFlags([]string{"-credentials", writeCredentials(t), "-output", dir, "-list"}))

	require.NoError(t, cmd.Run())
	assert.NoDirExists(t, dir)
}

func TestSelectMaps(t *testing.T) {
	maps := []entities.LearningMap{
		{Category: "Security", Name: "Zero Trust", ID: "1"},
		{Category: "Networking", Name: "SD-WAN", ID: "2"},
	}

	assert.Len(t, selectMaps(maps, ""), 2)
	assert.Equal(t, []entities.LearningMap{maps[0]}, selectMaps(maps, "security"))
	assert.Empty(t, selectMaps(maps, "Cloud"))
}

func TestOpenSessionsCommand_Run(t *testing.T) {
	server := catalogServer(t)
	defer server.Close()

	dir := t.TempDir()
	cmd := NewOpenSessionsCommand()
	cmd.cfg.Rainfocus.SearchURL = server.URL
	require.NoError(t, cmd.ParseFlags([]string{"-credentials", writeCredentials(t), "-output", dir, "-types", "BRK"}))

	require.NoError(t, cmd.Run())
	assert.FileExists(t, filepath.Join(dir, "open_BRK.xlsx"))
	assert.NoFileExists(t, filepath.Join(dir, "open_Technical_seminar.xlsx"))
}

func TestOpenSessionsCommand_NoSessionsWritesNoReport(t *testing.T) {
	server := catalogServer(t)
	defer server.Close()

	dir := t.TempDir()
	cmd := NewOpenSessionsCommand()
	cmd.cfg.Rainfocus.SearchURL = server.URL
	require.NoError(t, cmd.ParseFlags([]string{"-credentials", writeCredentials(t), "-output", dir, "-types", "LTR"}))

	require.NoError(t, cmd.Run())
	assert.NoFileExists(t, filepath.Join(dir, "open_LTR.xlsx"))
}

func TestOpenSessionsCommand_ReportPath(t *testing.T) {
	cmd := NewOpenSessionsCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-output", "reports"}))

	assert.Equal(t, filepath.Join("reports", "open_Technical_seminar.xlsx"), cmd.ReportPath("Technical_seminar"))
	assert.Equal(t, filepath.Join("reports", "open_a-b.xlsx"), cmd.ReportPath("a/b"))
}
