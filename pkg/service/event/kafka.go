package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer used by Kafka
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes connection events as JSON records keyed by team ID, so
// events of one workspace stay ordered within a partition
type Kafka struct {
	writer MessageWriter
	topic  string
}

// NewKafka creates a publisher writing to topic on the given brokers
func NewKafka(brokers []string, topic string) *Kafka {
	return NewKafkaWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}, topic)
}

// NewKafkaWithWriter creates a publisher on an existing writer
func NewKafkaWithWriter(w MessageWriter, topic string) *Kafka {
	return &Kafka{writer: w, topic: topic}
}

// Publish implements interfaces.EventPublisher
func (k *Kafka) Publish(ctx context.Context, event *model.ConnectionEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal connection event", goerr.V("event_id", event.ID))
	}

	key := string(event.TeamID)
	if key == "" {
		key = event.ID.String()
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "operation", Value: []byte(event.Operation)},
			{Key: "status", Value: []byte(event.To)},
		},
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return goerr.Wrap(err, "failed to write connection event",
			goerr.V("topic", k.topic),
			goerr.V("event_id", event.ID))
	}
	return nil
}

// Close flushes and closes the writer
func (k *Kafka) Close() error {
	if err := k.writer.Close(); err != nil {
		return goerr.Wrap(err, "failed to close kafka writer", goerr.V("topic", k.topic))
	}
	return nil
}
