package repository

import (
	"context"

	"ModelVault/internal/domain/models"
	"ModelVault/pkg/kafka"
)

// KafkaAlertPublisher publishes cost alerts to a Kafka topic. Messages are
// keyed by date so re-checks of the same day land on the same partition.
type KafkaAlertPublisher struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaAlertPublisher wraps an existing producer.
func NewKafkaAlertPublisher(producer *kafka.Producer, topic string) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

// Publish sends the alert as JSON.
func (p *KafkaAlertPublisher) Publish(ctx context.Context, alert *models.CostAlert) error {
	return p.producer.Publish(ctx, p.topic, []byte(alert.Date), alert)
}

// Close closes the underlying producer.
func (p *KafkaAlertPublisher) Close() error {
	return p.producer.Close()
}
