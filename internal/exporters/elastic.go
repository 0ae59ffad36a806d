package exporters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/mrlokans/session-catalog/internal/entities"
)

const defaultExportTimeout = 2 * time.Minute

// ElasticIndexer writes one document per session, keyed by session code,
// so re-running an export overwrites instead of duplicating.
type ElasticIndexer struct {
	es      *elasticsearch.Client
	index   string
	event   string
	Timeout time.Duration
	now     func() time.Time
}

func NewElasticIndexer(addresses []string, index, event string) (*ElasticIndexer, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return &ElasticIndexer{
		es:      es,
		index:   index,
		event:   event,
		Timeout: defaultExportTimeout,
		now:     time.Now,
	}, nil
}

// EnsureIndex creates the index with SessionIndexMapping if it is missing.
func (i *ElasticIndexer) EnsureIndex(ctx context.Context) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{i.index}}.Do(ctx, i.es)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	exists.Body.Close()

	switch exists.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("check index failed: %s", exists.Status())
	}

	res, err := esapi.IndicesCreateRequest{
		Index: i.index,
		Body:  strings.NewReader(SessionIndexMapping),
	}.Do(ctx, i.es)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("create index failed: %s", strings.TrimSpace(string(body)))
	}
	log.Printf("[ELASTIC] Created index %s", i.index)
	return nil
}

func (i *ElasticIndexer) indexSession(ctx context.Context, doc SessionDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(payload),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, i.es)
	if err != nil {
		return fmt.Errorf("index doc: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index doc failed: %s", strings.TrimSpace(string(body)))
	}
	return nil
}

// ExportContext indexes every session. Individual failures are counted; an
// error is returned only when the index cannot be prepared or no document
// could be written.
func (i *ElasticIndexer) ExportContext(ctx context.Context, sessions []entities.Session) (ExportResult, error) {
	if err := i.EnsureIndex(ctx); err != nil {
		return ExportResult{}, err
	}

	result := ExportResult{}
	var lastErr error
	now := i.now()
	for _, s := range sessions {
		if err := i.indexSession(ctx, NewSessionDocument(s, i.event, now)); err != nil {
			log.Printf("[ELASTIC] Failed to index %s: %v", s.ID, err)
			result.SessionsFailed++
			lastErr = err
			continue
		}
		result.SessionsProcessed++
	}

	if result.SessionsProcessed == 0 && lastErr != nil {
		return result, fmt.Errorf("no session indexed: %w", lastErr)
	}
	return result, nil
}

func (i *ElasticIndexer) Export(sessions []entities.Session) (ExportResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), i.Timeout)
	defer cancel()
	return i.ExportContext(ctx, sessions)
}

// Ping checks that the cluster answers.
func (i *ElasticIndexer) Ping(ctx context.Context) error {
	res, err := i.es.Ping(i.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.New("elasticsearch ping failed: " + res.Status())
	}
	return nil
}

var _ SessionExporter = (*ElasticIndexer)(nil)
