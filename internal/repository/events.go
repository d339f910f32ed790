package repository

import (
	"context"
	"fmt"

	"ZScout/internal/domain/models"
	drepo "ZScout/internal/domain/repository"
	"ZScout/pkg/kafka"
)

// KafkaPublisher emits per-symbol outcome events and run summaries to a
// Kafka topic. Events are keyed by symbol so consumers see outcomes for a
// given symbol in order.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaPublisher wraps a producer with the outcome topic.
func NewKafkaPublisher(producer *kafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// PublishOutcome sends one symbol outcome event.
func (p *KafkaPublisher) PublishOutcome(ctx context.Context, ev *models.OutcomeEvent) error {
	if ev == nil || ev.Symbol == "" {
		return fmt.Errorf("publish outcome: empty event")
	}
	return p.producer.Publish(ctx, p.topic, []byte(ev.Symbol), ev)
}

// PublishSummary sends the end-of-run summary under a fixed key.
func (p *KafkaPublisher) PublishSummary(ctx context.Context, summary *models.RunSummary) error {
	if summary == nil {
		return fmt.Errorf("publish summary: empty summary")
	}
	return p.producer.Publish(ctx, p.topic, []byte("run-summary"), summary)
}

// Close closes the underlying producer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

var _ drepo.EventPublisher = (*KafkaPublisher)(nil)

// NopPublisher satisfies EventPublisher when event publishing is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishOutcome(context.Context, *models.OutcomeEvent) error { return nil }
func (NopPublisher) PublishSummary(context.Context, *models.RunSummary) error   { return nil }
func (NopPublisher) Close() error                                               { return nil }

var _ drepo.EventPublisher = NopPublisher{}
