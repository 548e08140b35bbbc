// Package metrics exposes the Prometheus metrics of the weather client.
// All metrics are defined in their respective packages (client, cache) and
// registered on Registry through promauto.With; this package exports them.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the Prometheus registerer the weather packages register on.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the source read by Handler and WriteTextfile.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the metrics in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// WriteTextfile writes the current metrics to path in the text format read
// by the node_exporter textfile collector. The write is atomic.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Gatherer); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - weather_cache_hits_total{backend} (Counter): Cache hits by backend (file, redis)
//   - weather_cache_misses_total{backend} (Counter): Cache misses by backend
//   - weather_cache_evictions_total{backend, reason} (Counter): Entries removed as expired, corrupt or orphaned temp files
//   - weather_cache_errors_total{backend, operation} (Counter): Swallowed storage errors
//
// Request Metrics (pkg/client):
//   - weather_requests_total{endpoint, status} (Counter): Provider requests by endpoint and HTTP status
//   - weather_request_duration_seconds{endpoint} (Histogram): Provider request duration
//   - weather_errors_total{kind} (Counter): Failed calls by error kind (timeout, connection, auth, not_found, service, transport)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(weather_cache_hits_total[5m])) /
//   (sum(rate(weather_cache_hits_total[5m])) + sum(rate(weather_cache_misses_total[5m])))
//
//   # Unknown city lookups
//   rate(weather_errors_total{kind="not_found"}[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(weather_request_duration_seconds_bucket[5m]))
