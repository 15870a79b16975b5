// internal/scheduler/pass_scheduler.go
package scheduler

import (
	"context"
	"log/slog"

	"doc-analytics/internal/queue"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// PassScheduler triggers distribution passes on a cron schedule. Each firing
// is one ordinary pass over whatever documents are currently registered;
// failed documents are not carried between firings.
type PassScheduler struct {
	cron   *cron.Cron
	queue  *queue.WorkerQueue
	logger *slog.Logger
	tracer trace.Tracer
}

// NewPassScheduler creates a scheduler driving the given queue.
func NewPassScheduler(q *queue.WorkerQueue, logger *slog.Logger) *PassScheduler {
	return &PassScheduler{
		cron:   cron.New(cron.WithSeconds()),
		queue:  q,
		logger: logger.With("component", "pass-scheduler"),
		tracer: otel.Tracer("doc-analytics-scheduler"),
	}
}

// Schedule registers the distribution trigger under expr.
func (s *PassScheduler) Schedule(expr string) error {
	_, err := s.cron.AddFunc(expr, s.runPass)
	if err != nil {
		s.logger.Error("failed to add distribution schedule", "expr", expr, "error", err)
		return err
	}
	s.logger.Info("scheduled distribution passes", "expr", expr)
	return nil
}

// Start runs the scheduler until ctx is canceled.
func (s *PassScheduler) Start(ctx context.Context) error {
	s.logger.Info("pass scheduler started")
	s.cron.Start()
	<-ctx.Done()
	s.logger.Info("pass scheduler stopping...")
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("pass scheduler stopped")
	return ctx.Err()
}

// runPass is called by the cron library for each firing.
func (s *PassScheduler) runPass() {
	ctx, span := s.tracer.Start(context.Background(), "scheduler.Distribute")
	defer span.End()

	s.logger.Info("triggering scheduled distribution pass")
	outcome, err := s.queue.Distribute(ctx)
	if err != nil {
		// Typically ErrNoWorkersAvailable before any worker registered;
		// the next firing tries again.
		s.logger.Error("scheduled distribution failed", "error", err)
		span.RecordError(err)
		return
	}
	s.logger.Info("scheduled distribution completed", "processed", outcome.Processed, "errors", outcome.Errors)
}
