// internal/processor/processor.go
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"doc-analytics/internal/analytics"
	"doc-analytics/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DocumentProcessor reads a markdown document, splits it into topics and
// broadcasts each (topic, content) pair as it is discovered.
type DocumentProcessor struct {
	resolver  PathResolver
	publisher domain.Publisher
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewDocumentProcessor creates a processor publishing through publisher.
func NewDocumentProcessor(resolver PathResolver, publisher domain.Publisher, logger *slog.Logger) *DocumentProcessor {
	return &DocumentProcessor{
		resolver:  resolver,
		publisher: publisher,
		logger:    logger.With("component", "doc-processor"),
		tracer:    otel.Tracer("doc-analytics-processor"),
	}
}

// Process handles one document: resolve the path, read it, extract topics,
// publish one broadcast per topic. The returned result always carries a
// status; errors are reported to the caller as worker-level failures, not
// returned as Go errors, so the wire response shape stays uniform.
func (p *DocumentProcessor) Process(ctx context.Context, doc domain.Document) *domain.ProcessResult {
	ctx, span := p.tracer.Start(ctx, "processor.Process",
		trace.WithAttributes(attribute.String("document", string(doc))))
	defer span.End()

	p.logger.Info("processing document", "document", string(doc))

	path, err := p.resolver.Resolve(string(doc))
	if err != nil {
		return p.fail(span, fmt.Errorf("resolve %s: %w", string(doc), err))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return p.fail(span, fmt.Errorf("read %s: %w", path, err))
	}
	p.logger.Info("read document", "path", path, "bytes", len(content))

	topics, err := analytics.ExtractTopics(string(content))
	if err != nil {
		return p.fail(span, fmt.Errorf("extract topics from %s: %w", path, err))
	}

	names := make([]string, 0, len(topics))
	for topic, topicContent := range topics {
		p.logger.Info("broadcasting topic", "topic", topic, "chars", len(topicContent))
		if err := p.publisher.Publish(ctx, domain.TopicMessage{Topic: topic, Content: topicContent}); err != nil {
			// A lost broadcast degrades the aggregate, not the document:
			// delivery is at most once and the worker still reports success
			// for the processing itself only if every publish went out.
			return p.fail(span, fmt.Errorf("publish topic %q: %w", topic, err))
		}
		names = append(names, topic)
	}

	span.SetAttributes(attribute.Int("topics", len(names)))
	p.logger.Info("document processed", "document", string(doc), "topics", names)

	return &domain.ProcessResult{Status: domain.StatusSuccess, Topics: names}
}

func (p *DocumentProcessor) fail(span trace.Span, err error) *domain.ProcessResult {
	p.logger.Error("failed to process document", "error", err)
	span.RecordError(err)
	span.SetStatus(codes.Error, "document processing failed")
	return &domain.ProcessResult{Status: domain.StatusError, Message: err.Error()}
}
