// internal/queue/discovery.go
package queue

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"doc-analytics/internal/domain"
	"doc-analytics/internal/registry"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// WorkerDiscovery watches etcd for worker registrations and keeps the queue's
// roster in sync: registered workers are appended, expired leases remove
// every entry with that worker's ID. Manual registration through the control
// API still works alongside it.
type WorkerDiscovery struct {
	client *clientv3.Client
	queue  *WorkerQueue
	logger *slog.Logger
}

// NewWorkerDiscovery creates a new discovery service feeding the queue.
func NewWorkerDiscovery(client *clientv3.Client, queue *WorkerQueue, logger *slog.Logger) *WorkerDiscovery {
	return &WorkerDiscovery{
		client: client,
		queue:  queue,
		logger: logger.With("component", "worker-discovery"),
	}
}

// WatchWorkers starts watching etcd for worker registrations and
// deregistrations. This is a blocking call and should be run in a goroutine.
func (d *WorkerDiscovery) WatchWorkers(ctx context.Context) {
	d.logger.Info("starting to watch for workers")

	// 1. Initial load of all existing workers
	if err := d.loadInitialWorkers(ctx); err != nil {
		d.logger.Error("failed to perform initial worker load", "error", err)
	}

	// 2. Set up a watch for future changes
	watchChan := d.client.Watch(ctx, registry.WorkerPrefix, clientv3.WithPrefix())

	for watchResp := range watchChan {
		for _, event := range watchResp.Events {
			workerID := workerIDFromKey(string(event.Kv.Key))

			switch event.Type {
			case clientv3.EventTypePut:
				endpoint := string(event.Kv.Value)
				d.logger.Info("worker discovered", "id", workerID, "endpoint", endpoint)
				d.queue.RegisterWorker(domain.Worker{ID: workerID, Endpoint: endpoint})
			case clientv3.EventTypeDelete:
				// Lease expired or graceful shutdown.
				d.logger.Info("worker deregistered", "id", workerID)
				d.queue.RemoveWorker(workerID)
			}
		}
	}
	d.logger.Info("stopped watching for workers")
}

func (d *WorkerDiscovery) loadInitialWorkers(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := d.client.Get(ctx, registry.WorkerPrefix, clientv3.WithPrefix())
	if err != nil {
		return err
	}

	for _, kv := range resp.Kvs {
		workerID := workerIDFromKey(string(kv.Key))
		endpoint := string(kv.Value)
		d.logger.Info("found existing worker", "id", workerID, "endpoint", endpoint)
		d.queue.RegisterWorker(domain.Worker{ID: workerID, Endpoint: endpoint})
	}
	return nil
}

func workerIDFromKey(key string) string {
	return strings.TrimPrefix(key, registry.WorkerPrefix)
}
