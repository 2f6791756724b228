package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/finbank/lending-core/internal/domain/event"
	"github.com/finbank/lending-core/pkg/kafka"
)

// KafkaEventPublisher implements port.EventPublisher by writing events to
// Kafka, keyed by aggregate ID so consumers see each aggregate's events in
// order.
type KafkaEventPublisher struct {
	producer *kafka.Producer
	topic    string
	logger   *slog.Logger
}

// NewKafkaEventPublisher creates a publisher targeting the given topic.
func NewKafkaEventPublisher(producer *kafka.Producer, topic string, logger *slog.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish serialises and sends domain events.
func (p *KafkaEventPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(events))
	for _, evt := range events {
		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", evt.EventType(), err)
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(evt.AggregateID()),
			Value: payload,
		})

		p.logger.Debug("publishing domain event",
			"event_type", evt.EventType(),
			"aggregate_id", evt.AggregateID(),
			"topic", p.topic,
		)
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	return nil
}
