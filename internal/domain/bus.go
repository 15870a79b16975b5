package domain

import "context"

// TopicMessage is one broadcast: two independent UTF-8 segments, the topic
// name and a contiguous substring of one document. The topic segment carries
// no length prefix of its own, so transports must frame the two segments
// separately (Kafka: key and value).
type TopicMessage struct {
	Topic   string
	Content string
}

// Publisher is the producing side of the broadcast bus. One publish per topic
// per document, issued as soon as extraction finishes. Publish must never
// block on slow consumers.
type Publisher interface {
	Publish(ctx context.Context, msg TopicMessage) error
	Close() error
}

// MessageHandler folds one received broadcast. A handler error is logged by
// the subscriber, not redelivered: delivery is at most once.
type MessageHandler func(ctx context.Context, msg TopicMessage) error

// Subscriber is the consuming side of the bus. Consume blocks, delivering
// only messages whose topic exactly matches the subscription, in publish
// order per publisher, until ctx is canceled. Messages published before
// Consume started are not replayed.
type Subscriber interface {
	Consume(ctx context.Context, topic string, handler MessageHandler) error
	Close() error
}
