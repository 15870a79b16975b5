// internal/infra/kafka/subscriber.go
package kafka

import (
	"context"
	"log/slog"
	"time"

	"doc-analytics/internal/domain"

	"github.com/IBM/sarama"
)

// Subscriber consumes the shared broadcast topic through its own consumer
// group, so every aggregator sees the full stream independently, and filters
// by exact key match before handing messages to the handler. Joining with
// OffsetNewest means no replay of messages published before subscription.
type Subscriber struct {
	group  sarama.ConsumerGroup
	topic  string
	logger *slog.Logger
}

// NewSubscriber creates a consumer-group subscriber. groupID must be unique
// per aggregator instance so the stream fans out instead of being shared.
func NewSubscriber(brokers []string, groupID, topic string, logger *slog.Logger) (*Subscriber, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRange
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	cfg.Consumer.Return.Errors = true

	cg, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	return &Subscriber{
		group:  cg,
		topic:  topic,
		logger: logger.With("component", "kafka-subscriber"),
	}, nil
}

// Consume blocks, delivering broadcasts whose key matches filterTopic to
// handler until ctx is canceled. Sarama requires re-entering Consume after
// every rebalance.
func (s *Subscriber) Consume(ctx context.Context, filterTopic string, handler domain.MessageHandler) error {
	h := &groupHandler{
		filter:  filterTopic,
		handler: handler,
		logger:  s.logger,
	}

	for {
		if err := s.group.Consume(ctx, []string{s.topic}, h); err != nil {
			s.logger.Error("consume error", "error", err)
			time.Sleep(300 * time.Millisecond)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (s *Subscriber) Close() error { return s.group.Close() }

// groupHandler implements sarama.ConsumerGroupHandler.
type groupHandler struct {
	filter  string
	handler domain.MessageHandler
	logger  *slog.Logger
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		topic := string(msg.Key)
		if topic == h.filter {
			m := domain.TopicMessage{Topic: topic, Content: string(msg.Value)}
			if err := h.handler(sess.Context(), m); err != nil {
				// At-most-once: log and move on, no redelivery.
				h.logger.Error("handler error", "topic", topic, "error", err)
			}
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}
