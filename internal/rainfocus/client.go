package rainfocus

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/session-catalog/internal/entities"
	"github.com/mrlokans/session-catalog/internal/metrics"
)

const (
	DefaultSearchURL = "https://events.rainfocus.com/api/search"
	DefaultReferer   = "https://www.ciscolive.com/"
	DefaultOrigin    = "https://www.ciscolive.com"

	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2
)

// Filter keys understood by the search endpoint.
const (
	FilterSessionType    = "search.sessiontype"
	FilterLearningMap    = "search.learningmap"
	FilterCatalogDisplay = "catalogDisplay"
)

// Filters are extra form fields sent with every page request of a search.
type Filters map[string]string

// String renders filters deterministically, for logs and snapshot keys.
func (f Filters) String() string {
	if len(f) == 0 {
		return "all"
	}
	v := url.Values{}
	for k, val := range f {
		v.Set(k, val)
	}
	return v.Encode()
}

// Credentials identify the caller to the API. AuthToken and WidgetID are
// only required by some catalogue widgets.
type Credentials struct {
	APIProfileID string
	AuthToken    string
	WidgetID     string
}

// Config is passed explicitly to NewClient; zero values take defaults.
type Config struct {
	SearchURL         string
	Referer           string
	Origin            string
	Credentials       Credentials
	Timeout           time.Duration
	MaxRetries        int
	InitialRetryDelay time.Duration
	MaxRetryDelay     time.Duration
}

// Validate checks the settings the API cannot work without.
func (c Config) Validate() error {
	if c.Credentials.APIProfileID == "" {
		return ErrMissingProfileID
	}
	return nil
}

// Client talks to the Rainfocus search endpoint.
type Client struct {
	httpClient *http.Client
	cfg        Config
}

// NewClient creates a new search API client
func NewClient(cfg Config) *Client {
	if cfg.SearchURL == "" {
		cfg.SearchURL = DefaultSearchURL
	}
	if cfg.Referer == "" {
		cfg.Referer = DefaultReferer
	}
	if cfg.Origin == "" {
		cfg.Origin = DefaultOrigin
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.InitialRetryDelay <= 0 {
		cfg.InitialRetryDelay = initialRetryDelay
	}
	if cfg.MaxRetryDelay <= 0 {
		cfg.MaxRetryDelay = maxRetryDelay
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cfg: cfg,
	}
}

// Search fetches the page of results starting at offset from.
func (c *Client) Search(ctx context.Context, filters Filters, from int) (*Page, error) {
	form := url.Values{}
	form.Set("type", "session")
	for k, v := range filters {
		form.Set(k, v)
	}
	form.Set("from", strconv.Itoa(from))

	env, err := c.post(ctx, form, from)
	if err != nil {
		return nil, err
	}
	return env.page()
}

// SearchAll walks every page of a search and returns the items in order.
// The total reported by the first response bounds the walk.
func (c *Client) SearchAll(ctx context.Context, filters Filters) ([]entities.RawItem, error) {
	page, err := c.Search(ctx, filters, 0)
	if err != nil {
		return nil, err
	}

	total := page.Total
	items := append([]entities.RawItem(nil), page.Items...)
	offset := 0

	for {
		step := page.Advance()
		if step <= 0 {
			if offset >= total {
				break
			}
			return nil, fmt.Errorf("%w at offset %d (total %d)", ErrNoProgress, offset, total)
		}
		offset += step
		if offset >= total {
			break
		}

		page, err = c.Search(ctx, filters, offset)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		log.Printf("[RAINFOCUS] %s: fetched %d/%d", filters, offset, total)
	}

	return items, nil
}

// Catalog fetches the attribute catalogue used to build filter values such
// as learning maps.
func (c *Client) Catalog(ctx context.Context) ([]entities.RawItem, error) {
	form := url.Values{}
	form.Set("type", "session")
	form.Set(FilterCatalogDisplay, "list")

	env, err := c.post(ctx, form, 0)
	if err != nil {
		return nil, err
	}
	return env.Attributes, nil
}

func (c *Client) post(ctx context.Context, form url.Values, from int) (*envelope, error) {
	var env *envelope
	var lastErr error

	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			metrics.PageRetries.Inc()
			delay := c.retryDelay(attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		env, lastErr = c.doRequest(ctx, form, from)
		if lastErr == nil {
			return env, nil
		}

		if ctx.Err() != nil || !isRetryableError(lastErr) {
			return nil, lastErr
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, form url.Values, from int) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.SearchURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Origin", c.cfg.Origin)
	req.Header.Set("Referer", c.cfg.Referer)
	req.Header.Set("rfapiprofileid", c.cfg.Credentials.APIProfileID)
	if c.cfg.Credentials.AuthToken != "" {
		req.Header.Set("rfauthtoken", c.cfg.Credentials.AuthToken)
	}
	if c.cfg.Credentials.WidgetID != "" {
		req.Header.Set("rfwidgetid", c.cfg.Credentials.WidgetID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.PageDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PageRequests.WithLabelValues("transport_error").Inc()
		return nil, &TransientFetchError{From: from, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.PageRequests.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &TransientFetchError{
			From:       from,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	env, err := decodeEnvelope(resp.Body)
	if err != nil {
		metrics.PageRequests.WithLabelValues("decode_error").Inc()
		return nil, err
	}
	metrics.PageRequests.WithLabelValues("ok").Inc()
	return env, nil
}

func (c *Client) retryDelay(attempt int) time.Duration {
	delay := c.cfg.InitialRetryDelay
	for i := 1; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > c.cfg.MaxRetryDelay {
		delay = c.cfg.MaxRetryDelay
	}
	return delay
}
