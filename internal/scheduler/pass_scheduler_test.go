package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"doc-analytics/internal/domain"
	"doc-analytics/internal/queue"
)

type countingClient struct {
	mu    sync.Mutex
	calls int
}

func (c *countingClient) Process(context.Context, domain.Worker, domain.Document) (*domain.ProcessResult, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return &domain.ProcessResult{Status: domain.StatusSuccess}, nil
}

func (c *countingClient) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func newScheduler() (*PassScheduler, *queue.WorkerQueue, *countingClient) {
	logger := slog.New(slog.DiscardHandler)
	client := &countingClient{}
	q := queue.NewWorkerQueue(client, nil, time.Second, logger)
	return NewPassScheduler(q, logger), q, client
}

func TestScheduleRejectsBadExpression(t *testing.T) {
	s, _, _ := newScheduler()
	if err := s.Schedule("not a cron expr"); err == nil {
		t.Error("expected an error for an invalid cron expression")
	}
}

func TestScheduleAcceptsSecondsField(t *testing.T) {
	s, _, _ := newScheduler()
	if err := s.Schedule("*/5 * * * * *"); err != nil {
		t.Errorf("Schedule returned error: %v", err)
	}
}

func TestScheduledPassRuns(t *testing.T) {
	if testing.Short() {
		t.Skip("timing-dependent")
	}

	s, q, client := newScheduler()
	q.RegisterWorker(domain.Worker{ID: "w1", Endpoint: "http://w1"})
	q.RegisterDocuments([]domain.Document{"a.md"})

	if err := s.Schedule("* * * * * *"); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Start(ctx)
	}()

	deadline := time.After(5 * time.Second)
	for client.count() == 0 {
		select {
		case <-deadline:
			cancel()
			t.Fatal("no distribution pass fired within 5s")
		case <-time.After(100 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancellation")
	}
}
