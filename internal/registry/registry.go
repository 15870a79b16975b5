// internal/registry/registry.go
package registry

import (
	"context"
	"fmt"
	"log/slog"

	clientv3 "go.etcd.io/etcd/client/v3"
)

const (
	// WorkerPrefix is the etcd prefix where document processors register.
	WorkerPrefix = "/analytics/workers/"
	// AggregatorPrefix is the etcd prefix where topic aggregators register.
	// Keys are {prefix}{topic}/{instanceID}, values are snapshot endpoints.
	AggregatorPrefix = "/analytics/aggregators/"
)

// Registry handles lease-based self-registration of a service instance in
// etcd. Workers and aggregators both use it; the queue's discovery and the
// result collector read the corresponding prefixes.
type Registry struct {
	client  *clientv3.Client
	logger  *slog.Logger
	leaseID clientv3.LeaseID
	key     string
	value   string
}

// NewRegistry creates a new registry.
func NewRegistry(client *clientv3.Client, logger *slog.Logger) *Registry {
	return &Registry{
		client: client,
		logger: logger,
	}
}

// Register puts key=value into etcd under a lease with the given TTL and
// starts a keep-alive goroutine for the lease.
func (r *Registry) Register(ctx context.Context, key, value string, ttl int64) error {
	r.key = key
	r.value = value

	// 1. Create a new lease with a TTL.
	leaseResp, err := r.client.Grant(ctx, ttl)
	if err != nil {
		return fmt.Errorf("failed to grant lease: %w", err)
	}
	r.leaseID = leaseResp.ID

	// 2. Put the key-value pair into etcd with the lease.
	_, err = r.client.Put(ctx, r.key, r.value, clientv3.WithLease(r.leaseID))
	if err != nil {
		return fmt.Errorf("failed to put registration key: %w", err)
	}

	// 3. Start a keep-alive goroutine to periodically refresh the lease.
	keepAliveCh, err := r.client.KeepAlive(context.Background(), r.leaseID)
	if err != nil {
		return fmt.Errorf("failed to start keep-alive: %w", err)
	}

	go func() {
		for {
			// This loop consumes the keep-alive responses. If the channel is
			// closed, the lease has been revoked or has expired.
			ka, ok := <-keepAliveCh
			if !ok {
				r.logger.Warn("keep-alive channel closed, registration may have expired", "key", r.key)
				return
			}
			r.logger.Debug("lease keep-alive refreshed", "lease_id", ka.ID, "ttl", ka.TTL)
		}
	}()

	r.logger.Info("registered successfully", "key", r.key, "value", r.value)
	return nil
}

// Deregister removes the registration from etcd.
func (r *Registry) Deregister(ctx context.Context) error {
	r.logger.Info("deregistering", "key", r.key)

	// Revoke the lease, which automatically deletes the associated key.
	if _, err := r.client.Revoke(ctx, r.leaseID); err != nil {
		return fmt.Errorf("failed to revoke lease: %w", err)
	}
	return nil
}
