// Package kafka publishes committed status events to a Kafka topic. Events
// are keyed by partition key so a batch or shipment always lands on the same
// partition and consumers see its changes in commit order.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
)

// Writer is the subset of *kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Config captures the broker settings.
type Config struct {
	Brokers []string
	Topic   string
}

// Message is the wire payload of one status event.
type Message struct {
	Subject      string    `json:"subject"`
	TrackingCode string    `json:"tracking_code"`
	BatchCode    string    `json:"batch_code,omitempty"`
	From         string    `json:"from,omitempty"`
	To           string    `json:"to"`
	Notes        string    `json:"notes"`
	Actor        string    `json:"actor"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type Publisher struct {
	writer Writer
	log    zerolog.Logger
}

// NewPublisher builds a publisher writing to cfg.Topic with hash balancing.
func NewPublisher(cfg Config, log zerolog.Logger) *Publisher {
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}, log)
}

// NewPublisherWithWriter is used by tests to inject a fake writer.
func NewPublisherWithWriter(w Writer, log zerolog.Logger) *Publisher {
	return &Publisher{writer: w, log: log}
}

// Publish writes one event. It blocks until the broker acknowledges.
func (p *Publisher) Publish(ctx context.Context, e domain.StatusEvent) error {
	value, err := json.Marshal(Message{
		Subject:      string(e.Subject),
		TrackingCode: e.TrackingCode,
		BatchCode:    e.BatchCode,
		From:         e.From,
		To:           e.To,
		Notes:        e.Notes,
		Actor:        e.Actor,
		OccurredAt:   e.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("kafka publish: marshal: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(e.PartitionKey()),
		Value: value,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "subject", Value: []byte(e.Subject)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}

	p.log.Debug().
		Str("tracking", e.TrackingCode).
		Str("status", e.To).
		Msg("status event published")
	return nil
}

// Close flushes and shuts down the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
