// internal/queue/queue.go
package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"doc-analytics/internal/domain"
	"doc-analytics/internal/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// WorkerQueue owns the pending document set and the worker roster, and runs
// distribution passes on command. All state is instance state; methods are
// safe for concurrent use.
type WorkerQueue struct {
	mu        sync.Mutex
	documents []domain.Document
	workers   []domain.Worker

	client         domain.ProcessClient
	selector       Selector
	processTimeout time.Duration
	logger         *slog.Logger
	tracer         trace.Tracer
}

// NewWorkerQueue creates a queue that contacts workers through client. A nil
// selector gets the default uniform-random policy.
func NewWorkerQueue(client domain.ProcessClient, selector Selector, processTimeout time.Duration, logger *slog.Logger) *WorkerQueue {
	if selector == nil {
		selector = NewRandomSelector()
	}
	if processTimeout <= 0 {
		processTimeout = 30 * time.Second
	}
	return &WorkerQueue{
		client:         client,
		selector:       selector,
		processTimeout: processTimeout,
		logger:         logger.With("component", "worker-queue"),
		tracer:         otel.Tracer("doc-analytics-queue"),
	}
}

// RegisterDocuments replaces the pending set wholesale. It is not additive:
// re-registering is also the only recovery path for documents that failed in
// a previous pass.
func (q *WorkerQueue) RegisterDocuments(docs []domain.Document) {
	q.mu.Lock()
	q.documents = append([]domain.Document(nil), docs...)
	q.mu.Unlock()

	q.logger.Info("registered documents", "count", len(docs))
}

// RegisterWorker appends a worker to the roster. Duplicate endpoints are
// permitted; no identity check is made.
func (q *WorkerQueue) RegisterWorker(w domain.Worker) {
	q.mu.Lock()
	q.workers = append(q.workers, w)
	count := len(q.workers)
	q.mu.Unlock()

	q.logger.Info("registered worker", "worker_id", w.ID, "endpoint", w.Endpoint, "roster_size", count)
}

// RemoveWorker deletes every roster entry carrying the given ID. Discovery
// calls this when a worker's lease expires.
func (q *WorkerQueue) RemoveWorker(id string) {
	q.mu.Lock()
	kept := q.workers[:0]
	for _, w := range q.workers {
		if w.ID != id {
			kept = append(kept, w)
		}
	}
	removed := len(q.workers) - len(kept)
	q.workers = kept
	q.mu.Unlock()

	if removed > 0 {
		q.logger.Info("removed worker from roster", "worker_id", id, "entries", removed)
	}
}

// Workers returns a snapshot of the roster.
func (q *WorkerQueue) Workers() []domain.Worker {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.Worker(nil), q.workers...)
}

// selectWorker applies the selection policy to the current roster.
func (q *WorkerQueue) selectWorker() (domain.Worker, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.selector.Select(q.workers)
}

// Distribute runs one distribution pass: every pending document is assigned
// to exactly one worker, in registration order, one synchronous call at a
// time. Per-document failures are counted and never abort the pass; the
// document is not requeued. The only pass-level error is
// domain.ErrNoWorkersAvailable, raised up front when documents are pending
// but the roster is empty.
func (q *WorkerQueue) Distribute(ctx context.Context) (*domain.DistributionOutcome, error) {
	ctx, span := q.tracer.Start(ctx, "queue.Distribute")
	defer span.End()

	q.mu.Lock()
	docs := append([]domain.Document(nil), q.documents...)
	rosterSize := len(q.workers)
	q.mu.Unlock()

	if len(docs) == 0 {
		q.logger.Info("no documents to process")
		return &domain.DistributionOutcome{}, nil
	}

	if rosterSize == 0 {
		q.logger.Error("no workers available")
		span.SetAttributes(attribute.Int("documents", len(docs)))
		return nil, domain.ErrNoWorkersAvailable
	}

	q.logger.Info("starting distribution pass", "documents", len(docs), "workers", rosterSize)
	span.SetAttributes(
		attribute.Int("documents", len(docs)),
		attribute.Int("workers", rosterSize),
	)

	outcome := &domain.DistributionOutcome{}

	for i, doc := range docs {
		worker, ok := q.selectWorker()
		if !ok {
			// Roster emptied mid-pass. The remaining documents cannot be
			// assigned; count them as errors and end the pass early.
			remaining := len(docs) - i
			q.logger.Error("roster emptied mid-pass, counting remaining documents as errors", "remaining", remaining)
			outcome.Errors += remaining
			metrics.DocumentsDistributedTotal.WithLabelValues("failed").Add(float64(remaining))
			break
		}

		q.logger.Info("distributing document",
			"index", i+1, "total", len(docs), "document", string(doc), "worker_id", worker.ID)

		if err := q.processOne(ctx, worker, doc); err != nil {
			outcome.Errors++
			metrics.DocumentsDistributedTotal.WithLabelValues("failed").Inc()
			q.logger.Error("failed to process document", "document", string(doc), "worker_id", worker.ID, "error", err)
			continue
		}

		outcome.Processed++
		metrics.DocumentsDistributedTotal.WithLabelValues("success").Inc()
	}

	q.logger.Info("distribution pass completed", "processed", outcome.Processed, "errors", outcome.Errors)
	span.SetAttributes(
		attribute.Int("outcome.processed", outcome.Processed),
		attribute.Int("outcome.errors", outcome.Errors),
	)
	return outcome, nil
}

// processOne sends a single process request with the bounded per-item
// timeout. Worker-reported errors, transport failures and timeouts are all
// the same to the caller: one failed document.
func (q *WorkerQueue) processOne(ctx context.Context, worker domain.Worker, doc domain.Document) error {
	callCtx, cancel := context.WithTimeout(ctx, q.processTimeout)
	defer cancel()

	result, err := q.client.Process(callCtx, worker, doc)
	if err != nil {
		return err
	}

	// Topics are recorded for observability only.
	q.logger.Info("document processed", "document", string(doc), "worker_id", worker.ID, "topics", result.Topics)
	return nil
}
