package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Processed is emitted after a watched image has been written.
type Processed struct {
	ID          uuid.UUID `json:"id"`
	RunID       string    `json:"run_id"`
	Path        string    `json:"path"`
	Output      string    `json:"output"`
	Modified    time.Time `json:"modified"`
	Steps       []string  `json:"steps"`
	ProcessedAt time.Time `json:"processed_at"`
}

// messageWriter is the subset of *kafka.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher sends Processed events to a Kafka topic.
type Publisher struct {
	w     messageWriter
	topic string
}

// NewPublisher creates a Publisher writing to topic on the given brokers.
func NewPublisher(brokers []string, topic string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
	return &Publisher{w: w, topic: topic}
}

// Publish serializes ev to JSON and sends it keyed by the source path, so
// events for one file stay ordered within a partition.
func (p *Publisher) Publish(ctx context.Context, ev Processed) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.Path),
		Value: data,
		Time:  ev.ProcessedAt,
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send event to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}
