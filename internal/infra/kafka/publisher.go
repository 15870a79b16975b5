// internal/infra/kafka/publisher.go
package kafka

import (
	"context"
	"errors"
	"fmt"

	"doc-analytics/internal/domain"
	"doc-analytics/internal/metrics"

	"github.com/IBM/sarama"
)

// Publisher broadcasts topic content over Kafka. All broadcasts share one
// physical Kafka topic; the message key carries the analytics topic segment
// and the value carries the content segment, the two parts of the wire
// contract. Keying also pins each topic to one partition, which preserves
// publish order per topic per producer.
type Publisher struct {
	topic string
	sp    sarama.SyncProducer
}

// NewPublisher creates a synchronous Kafka publisher.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	if topic == "" {
		return nil, errors.New("broadcast topic empty")
	}
	if len(brokers) == 0 {
		return nil, errors.New("no brokers")
	}

	cfg := sarama.NewConfig()

	// Reliability-oriented defaults
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 10

	// SyncProducer must have Return.Successes=true
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true

	cfg.Version = sarama.V2_1_0_0

	sp, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &Publisher{topic: topic, sp: sp}, nil
}

// Publish sends one two-segment broadcast and waits for the broker ACK.
func (p *Publisher) Publish(ctx context.Context, msg domain.TopicMessage) error {
	// SyncProducer doesn't accept a context directly; check before sending.
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	kmsg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(msg.Topic),
		Value: sarama.StringEncoder(msg.Content),
	}

	if _, _, err := p.sp.SendMessage(kmsg); err != nil {
		return fmt.Errorf("kafka publish failed: %w", err)
	}
	metrics.TopicBroadcastsTotal.WithLabelValues(msg.Topic).Inc()
	return nil
}

func (p *Publisher) Close() error {
	if p.sp != nil {
		return p.sp.Close()
	}
	return nil
}
