package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	claimsDomain "github.com/allisson/claims/internal/claims/domain"
	"github.com/allisson/claims/internal/outbox/domain"
)

// RecordProducer is the subset of *kgo.Client used to publish notifications.
type RecordProducer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaEventProcessor publishes claim notifications to a Kafka topic. Records are keyed
// by the hex claim so all notifications of one claim land on the same partition in order.
type KafkaEventProcessor struct {
	producer RecordProducer
	topic    string
}

// NewKafkaEventProcessor creates a new KafkaEventProcessor
func NewKafkaEventProcessor(producer RecordProducer, topic string) *KafkaEventProcessor {
	return &KafkaEventProcessor{
		producer: producer,
		topic:    topic,
	}
}

// Process publishes the event and waits for the broker acknowledgement.
func (p *KafkaEventProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	notification, err := claimsDomain.UnmarshalNotification([]byte(event.Payload))
	if err != nil {
		return fmt.Errorf("failed to decode notification: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(notification.Claim.Hex()),
		Value: []byte(event.Payload),
		Headers: []kgo.RecordHeader{
			{Key: "event_id", Value: []byte(event.ID.String())},
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	if err := p.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// kafkaDeliveryTimeout bounds how long a record may wait for broker acknowledgement.
const kafkaDeliveryTimeout = 30 * time.Second

// NewKafkaClient creates a franz-go client for the given seed brokers.
func NewKafkaClient(brokers []string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.RecordDeliveryTimeout(kafkaDeliveryTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return client, nil
}

// EnsureTopic creates topic with the broker default partitioning if it does not exist.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)

	resp, err := adm.CreateTopic(ctx, -1, -1, nil, topic)
	if err != nil {
		return fmt.Errorf("failed to create topic %q: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("failed to create topic %q: %w", topic, resp.Err)
	}
	return nil
}
