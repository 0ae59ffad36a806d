package importers

import (
	"context"
	"fmt"
	"log"

	"github.com/mrlokans/session-catalog/internal/entities"
	"github.com/mrlokans/session-catalog/internal/exporters"
	"github.com/mrlokans/session-catalog/internal/metrics"
	"github.com/mrlokans/session-catalog/internal/rainfocus"
)

// Source yields every raw item matching the filters.
// *rainfocus.Client is the production implementation.
type Source interface {
	SearchAll(ctx context.Context, filters rainfocus.Filters) ([]entities.RawItem, error)
}

// Exporter consumes normalized sessions.
type Exporter interface {
	Export(sessions []entities.Session) (exporters.ExportResult, error)
}

// Rejection is one raw item the normalizer refused.
type Rejection struct {
	Code string
	Err  error
}

type Result struct {
	Filters  rainfocus.Filters
	Fetched  int
	Sessions []entities.Session
	Rejected []Rejection
	Export   exporters.ExportResult
}

// Pipeline handles one filter value: fetch → normalize → export.
type Pipeline struct {
	source     Source
	normalizer *Normalizer
	exporter   Exporter
}

// NewPipeline creates a pipeline. A nil exporter skips the export step.
func NewPipeline(source Source, normalizer *Normalizer, exporter Exporter) *Pipeline {
	return &Pipeline{source: source, normalizer: normalizer, exporter: exporter}
}

// Run fetches all items for filters. A fetch or export error is returned;
// rejected records are collected in the result and never abort the run.
func (p *Pipeline) Run(ctx context.Context, filters rainfocus.Filters) (Result, error) {
	result := Result{Filters: filters}

	items, err := p.source.SearchAll(ctx, filters)
	if err != nil {
		return result, fmt.Errorf("fetch %s: %w", filters, err)
	}
	result.Fetched = len(items)
	result.Sessions, result.Rejected = p.normalizer.NormalizeAll(items)

	log.Printf("[PIPELINE] %s: %d fetched, %d normalized, %d rejected",
		filters, result.Fetched, len(result.Sessions), len(result.Rejected))

	if p.exporter == nil || len(result.Sessions) == 0 {
		return result, nil
	}

	result.Export, err = p.exporter.Export(result.Sessions)
	if err != nil {
		return result, fmt.Errorf("export %s: %w", filters, err)
	}
	return result, nil
}

// NormalizeAll normalizes items in order, logging each rejection with its
// code.
func (n *Normalizer) NormalizeAll(items []entities.RawItem) ([]entities.Session, []Rejection) {
	sessions := make([]entities.Session, 0, len(items))
	var rejected []Rejection

	for i, item := range items {
		session, err := n.Normalize(item)
		if err != nil {
			code, _ := item["code"].(string)
			if code == "" {
				code = fmt.Sprintf("item #%d", i)
			}
			log.Printf("[PIPELINE] Rejected %s: %v", code, err)
			metrics.Records.WithLabelValues("rejected").Inc()
			rejected = append(rejected, Rejection{Code: code, Err: err})
			continue
		}
		metrics.Records.WithLabelValues("normalized").Inc()
		sessions = append(sessions, session)
	}
	return sessions, rejected
}

var _ Source = (*rainfocus.Client)(nil)
