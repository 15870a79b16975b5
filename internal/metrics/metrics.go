// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HttpRequestsTotal counts HTTP requests handled by a service.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of http requests handled by the service.",
		},
		[]string{"path", "method", "code"},
	)

	// DocumentsDistributedTotal counts per-document outcomes across all
	// distribution passes, labeled success or failed.
	DocumentsDistributedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_distributed_total",
			Help: "Total number of documents handed to workers, by outcome.",
		},
		[]string{"status"},
	)

	// TopicBroadcastsTotal counts broadcasts published by a processor.
	TopicBroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topic_broadcasts_total",
			Help: "Total number of topic content broadcasts published.",
		},
		[]string{"topic"},
	)
)
