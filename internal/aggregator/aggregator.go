// internal/aggregator/aggregator.go
package aggregator

import (
	"context"
	"log/slog"
	"sync"

	"doc-analytics/internal/analytics"
	"doc-analytics/internal/domain"
)

// TopicAggregator maintains running metrics for exactly one topic. It is a
// passive accumulator: counters only grow, there is no reset or finalize.
// The receive loop folds messages under the write lock one at a time, so
// snapshot reads stay prompt under message load.
type TopicAggregator struct {
	topic  string
	logger *slog.Logger

	mu        sync.RWMutex
	lineCount int
	wordCount int
	charCount int
	docCount  int
}

// NewTopicAggregator creates an aggregator for one topic.
func NewTopicAggregator(topic string, logger *slog.Logger) *TopicAggregator {
	return &TopicAggregator{
		topic:  topic,
		logger: logger.With("component", "topic-aggregator", "topic", topic),
	}
}

// Topic returns the topic this aggregator subscribes to.
func (a *TopicAggregator) Topic() string {
	return a.topic
}

// ProcessContent analyzes one content chunk and folds the counts into the
// running totals. DocCount increments exactly once per call, including for
// empty content (which adds zeros to the other three).
func (a *TopicAggregator) ProcessContent(content string) {
	stats := analytics.AnalyzeContent(content)

	a.mu.Lock()
	a.lineCount += stats.LineCount
	a.wordCount += stats.WordCount
	a.charCount += stats.CharCount
	a.docCount++
	lines, words, chars, docs := a.lineCount, a.wordCount, a.charCount, a.docCount
	a.mu.Unlock()

	a.logger.Info("updated metrics", "lines", lines, "words", words, "chars", chars, "docs", docs)
}

// Metrics returns the current snapshot. Read-only, no side effect.
func (a *TopicAggregator) Metrics() domain.TopicMetrics {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return domain.TopicMetrics{
		Topic:     a.topic,
		LineCount: a.lineCount,
		WordCount: a.wordCount,
		CharCount: a.charCount,
		DocCount:  a.docCount,
	}
}

// Run consumes the broadcast stream filtered to this aggregator's topic until
// ctx is canceled. It blocks indefinitely between messages; snapshot reads
// are served independently.
func (a *TopicAggregator) Run(ctx context.Context, sub domain.Subscriber) error {
	a.logger.Info("aggregator started")
	return sub.Consume(ctx, a.topic, func(_ context.Context, msg domain.TopicMessage) error {
		a.ProcessContent(msg.Content)
		return nil
	})
}
