package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for batch runs.
var (
	batchItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrapingbee_batch_items_total",
		Help: "Total batch items by outcome (success, failure)",
	}, []string{"outcome"})

	batchInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scrapingbee_batch_inflight_requests",
		Help: "Number of batch item requests currently in flight",
	})

	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scrapingbee_batch_duration_seconds",
		Help:    "Wall-clock duration of batch dispatch in seconds",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})
)

func outcomeLabel(r Result) string {
	if r.Succeeded() {
		return "success"
	}
	return "failure"
}
