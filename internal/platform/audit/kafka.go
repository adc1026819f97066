package audit

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Sink delivers outbox entries downstream.
type Sink interface {
	Publish(ctx context.Context, entry Entry) error
	Close()
}

// Kafka publishes outbox entries to one topic, keyed by event id so
// replays land on the same partition.
type Kafka struct {
	client *kgo.Client
	topic  string
}

// NewKafka connects a producer and ensures the topic exists.
func NewKafka(ctx context.Context, brokers []string, topic string) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerLinger(0),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}
	return &Kafka{client: client, topic: topic}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	existing, err := adm.ListTopics(ctx, topic)
	if err != nil {
		return fmt.Errorf("list topics: %w", err)
	}
	if existing.Has(topic) {
		return nil
	}
	if _, err := adm.CreateTopic(ctx, 1, 1, nil, topic); err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	return nil
}

var _ Sink = (*Kafka)(nil)

func (k *Kafka) Publish(ctx context.Context, entry Entry) error {
	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(entry.ID),
		Value: entry.Payload,
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce %s: %w", entry.ID, err)
	}
	return nil
}

func (k *Kafka) Close() {
	k.client.Close()
}
