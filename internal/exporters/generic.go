package exporters

import "github.com/mrlokans/session-catalog/internal/entities"

type SessionExporter interface {
	Export(sessions []entities.Session) (ExportResult, error)
}

type ExportResult struct {
	SessionsProcessed int      `json:"sessions_processed"`
	SessionsSkipped   int      `json:"sessions_skipped"`
	SessionsFailed    int      `json:"sessions_failed"`
	Files             []string `json:"files,omitempty"`
}

// Merge adds other's counts and files to r.
func (r *ExportResult) Merge(other ExportResult) {
	r.SessionsProcessed += other.SessionsProcessed
	r.SessionsSkipped += other.SessionsSkipped
	r.SessionsFailed += other.SessionsFailed
	r.Files = append(r.Files, other.Files...)
}

// Multi fans one export out to several exporters in order. The first error
// stops the chain.
type Multi []SessionExporter

func (m Multi) Export(sessions []entities.Session) (ExportResult, error) {
	var total ExportResult
	for _, e := range m {
		res, err := e.Export(sessions)
		total.Merge(res)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

var _ SessionExporter = Multi(nil)
