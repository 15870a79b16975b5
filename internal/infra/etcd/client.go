// Package etcd dials the etcd cluster that backs service coordination: the
// lease registry (processors and aggregators announcing themselves), the
// queue's worker discovery watch, and the result collector's aggregator
// lookup all share a client created here.
package etcd

import (
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// NewClient connects to etcd at the configured endpoints. The timeout bounds
// the initial dial only; per-call deadlines come from request contexts.
func NewClient(endpoints []string, timeout time.Duration) (*clientv3.Client, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: timeout,
	})
	if err != nil {
		return nil, err
	}
	return cli, nil
}
