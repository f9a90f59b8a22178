// Package kafka publishes stored audit entries to a Kafka topic for downstream
// compliance consumers. Records are keyed by the subject hash so one subject's
// entries stay ordered within a partition.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "naijacare/pkg/platform/audit"
)

// DefaultTopic receives audit entries when no topic is configured.
const DefaultTopic = "naijacare.audit"

// DefaultPublishTimeout bounds one Publish call.
const DefaultPublishTimeout = 2 * time.Second

// recordDeliveryTimeout fails buffered records the client could not deliver.
const recordDeliveryTimeout = 10 * time.Second

// Producer is the subset of *kgo.Client the sink needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Sink implements audit.Sink.
type Sink struct {
	producer Producer
	topic    string
	timeout  time.Duration
}

// Option configures the Sink.
type Option func(*Sink)

// WithPublishTimeout overrides DefaultPublishTimeout. Non-positive values are ignored.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *Sink) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New returns a sink that writes to topic through producer.
func New(producer Producer, topic string, opts ...Option) *Sink {
	if topic == "" {
		topic = DefaultTopic
	}
	s := &Sink{producer: producer, topic: topic, timeout: DefaultPublishTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewClient builds a franz-go client for the given seed brokers.
func NewClient(brokers []string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.RecordDeliveryTimeout(recordDeliveryTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

// Publish produces entry as JSON and waits at most the publish timeout for
// the broker to acknowledge it.
func (s *Sink) Publish(ctx context.Context, entry audit.Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(entry.SubjectIDHash),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "decision", Value: []byte(entry.Decision)},
		},
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit entry: %w", err)
	}
	return nil
}
