// Package bus is the in-process broadcast bus: one producer, arbitrarily many
// independent per-topic subscribers. It backs the CLI's local mode and tests;
// cross-process deployments use the Kafka implementation instead.
package bus

import (
	"context"
	"sync"

	"doc-analytics/internal/domain"
)

type subscriber struct {
	topic string
	ch    chan domain.TopicMessage
}

// Bus fans broadcasts out to subscribers with exact-match topic filtering.
// Publishing never blocks: a subscriber whose buffer is full misses the
// message (at-most-once, gaps over backpressure). Late subscribers do not
// see earlier messages.
type Bus struct {
	mu     sync.Mutex
	subs   map[uint64]*subscriber
	nextID uint64
	buffer int
}

// New creates a bus whose subscriber channels buffer up to buffer messages.
func New(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 16
	}
	return &Bus{
		subs:   make(map[uint64]*subscriber),
		buffer: buffer,
	}
}

// Publish delivers msg to every subscriber of exactly msg.Topic.
func (b *Bus) Publish(_ context.Context, msg domain.TopicMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		if sub.topic != msg.Topic {
			continue
		}
		// Never block the publisher: a slow subscriber sees a gap.
		select {
		case sub.ch <- msg:
		default:
		}
	}
	return nil
}

// Close is a no-op for the in-process bus; subscriptions end with their
// Consume contexts.
func (b *Bus) Close() error { return nil }

// Subscribe registers a new subscription for topic and returns its channel
// and a cancel function. Cancel must be called to release the subscription.
func (b *Bus) Subscribe(topic string) (<-chan domain.TopicMessage, func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	sub := &subscriber{topic: topic, ch: make(chan domain.TopicMessage, b.buffer)}
	b.subs[id] = sub
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if s, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(s.ch)
		}
		b.mu.Unlock()
	}
	return sub.ch, cancel
}

// Consume implements domain.Subscriber: it delivers matching messages to
// handler until ctx is canceled.
func (b *Bus) Consume(ctx context.Context, topic string, handler domain.MessageHandler) error {
	ch, cancel := b.Subscribe(topic)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			_ = handler(ctx, msg)
		}
	}
}
