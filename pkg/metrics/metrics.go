// Package metrics exposes the Prometheus registry shared by the CLI.
// All metrics are defined in their respective packages (client, usage,
// batch, cache) via promauto and land in the default registry.
//
// A CLI process is too short-lived to be scraped, so the registry is dumped
// to a file in the text exposition format instead, suitable for the
// node_exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the CLI.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the source of metrics for WriteTextfile.
var Gatherer prometheus.Gatherer = prometheus.DefaultGatherer

// WriteTextfile writes all gathered metrics to path atomically.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Gatherer); err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}
	return nil
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - scrapingbee_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - scrapingbee_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - scrapingbee_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Usage Metrics (pkg/usage):
//   - scrapingbee_plan_max_concurrency (Gauge): Concurrency limit from the last usage probe
//   - scrapingbee_credit_balance (Gauge): Credit balance from the last usage probe
//
// Batch Metrics (pkg/batch):
//   - scrapingbee_batch_items_total{outcome} (Counter): Items by outcome (success, failure)
//   - scrapingbee_batch_inflight_requests (Gauge): Item requests currently in flight
//   - scrapingbee_batch_duration_seconds (Histogram): Wall-clock dispatch duration
//
// Cache Metrics (pkg/cache):
//   - scrapingbee_cache_hits_total (Counter): Cache hits
//   - scrapingbee_cache_misses_total (Counter): Cache misses
//   - scrapingbee_cache_stored_bytes_total (Counter): Bytes written to the cache
//   - scrapingbee_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Batch failure ratio
//   scrapingbee_batch_items_total{outcome="failure"} / ignoring(outcome) sum(scrapingbee_batch_items_total)
//
//   # Rate-limited responses
//   scrapingbee_errors_total{class="rate_limit"}
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(scrapingbee_request_duration_seconds_bucket[5m]))
