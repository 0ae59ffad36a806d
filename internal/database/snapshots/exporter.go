package snapshots

import (
	"log"
	"time"

	"github.com/mrlokans/session-catalog/internal/entities"
	"github.com/mrlokans/session-catalog/internal/exporters"
)

// Exporter stores every export as a new snapshot.
type Exporter struct {
	repo   *Repository
	event  string
	filter string
	now    func() time.Time
}

func NewExporter(repo *Repository, event, filter string) *Exporter {
	return &Exporter{repo: repo, event: event, filter: filter, now: time.Now}
}

func (e *Exporter) Export(sessions []entities.Session) (exporters.ExportResult, error) {
	snap, err := e.repo.Save(Run{
		Event:    e.event,
		Filter:   e.filter,
		Sessions: sessions,
		TakenAt:  e.now(),
	})
	if err != nil {
		return exporters.ExportResult{SessionsFailed: len(sessions)}, err
	}
	log.Printf("[SNAPSHOT] Stored run %s with %d sessions", snap.RunID, snap.SessionCount)
	return exporters.ExportResult{SessionsProcessed: snap.SessionCount}, nil
}

var _ exporters.SessionExporter = (*Exporter)(nil)
