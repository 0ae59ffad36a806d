// Package metrics holds the Prometheus collectors shared by the fetch,
// normalize and task layers. Collectors register with the default registry
// and are served by promhttp in service mode.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "session_catalog"

var (
	PageRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "page_requests_total",
		Help:      "Search API page requests by outcome",
	}, []string{"status"})

	PageRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "page_retries_total",
		Help:      "Search API page requests that were retried",
	})

	PageDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "page_request_duration_seconds",
		Help:      "Latency of single search API page requests",
		Buckets:   prometheus.DefBuckets,
	})

	Records = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_total",
		Help:      "Raw items processed by the normalizer by outcome",
	}, []string{"outcome"})

	Tasks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_total",
		Help:      "Pipeline units executed by outcome",
	}, []string{"outcome"})

	LastSnapshot = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_snapshot_timestamp_seconds",
		Help:      "Unix timestamp of the last stored snapshot",
	}, []string{"event"})
)

func init() {
	prometheus.MustRegister(PageRequests, PageRetries, PageDuration, Records, Tasks, LastSnapshot)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
