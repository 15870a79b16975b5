// internal/collector/collector.go
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"doc-analytics/internal/domain"
	"doc-analytics/internal/registry"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Collector gathers metrics snapshots from every live topic aggregator and
// merges them into a per-topic view. Aggregators are found through their etcd
// registrations; an unreachable aggregator is skipped, not fatal.
type Collector struct {
	etcd   *clientv3.Client
	client *http.Client
	logger *slog.Logger
	tracer trace.Tracer
}

// NewCollector creates a collector reading aggregator endpoints from etcd.
func NewCollector(etcdClient *clientv3.Client, logger *slog.Logger) *Collector {
	return &Collector{
		etcd: etcdClient,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.With("component", "result-collector"),
		tracer: otel.Tracer("doc-analytics-collector"),
	}
}

// Collect polls each registered aggregator for its snapshot and merges the
// results by topic. Aggregators sharing a topic have their counters summed.
func (c *Collector) Collect(ctx context.Context) (map[string]domain.TopicMetrics, error) {
	ctx, span := c.tracer.Start(ctx, "collector.Collect")
	defer span.End()

	resp, err := c.etcd.Get(ctx, registry.AggregatorPrefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to list aggregators from etcd: %w", err)
	}
	span.SetAttributes(attribute.Int("aggregators", len(resp.Kvs)))

	endpoints := make([]string, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		endpoints = append(endpoints, string(kv.Value))
	}
	return c.collectFrom(ctx, endpoints), nil
}

// collectFrom fetches and merges snapshots from the given endpoints.
func (c *Collector) collectFrom(ctx context.Context, endpoints []string) map[string]domain.TopicMetrics {
	results := make(map[string]domain.TopicMetrics)
	for _, endpoint := range endpoints {
		snapshot, err := c.fetchSnapshot(ctx, endpoint)
		if err != nil {
			c.logger.Warn("failed to fetch aggregator snapshot", "endpoint", endpoint, "error", err)
			continue
		}

		merged, ok := results[snapshot.Topic]
		if !ok {
			merged = domain.TopicMetrics{Topic: snapshot.Topic}
		}
		merged.Add(*snapshot)
		results[snapshot.Topic] = merged
	}

	c.logger.Info("collected results", "topics", len(results))
	return results
}

func (c *Collector) fetchSnapshot(ctx context.Context, endpoint string) (*domain.TopicMetrics, error) {
	url := strings.TrimRight(endpoint, "/") + "/snapshot"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("aggregator returned HTTP %d", resp.StatusCode)
	}

	var snapshot domain.TopicMetrics
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("malformed snapshot: %w", err)
	}
	return &snapshot, nil
}
