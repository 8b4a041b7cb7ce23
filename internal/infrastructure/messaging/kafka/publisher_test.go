package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	skafka "github.com/segmentio/kafka-go"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
)

// fakeWriter records messages written.
type fakeWriter struct {
	msgs   []skafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...skafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublish_KeyedByBatch(t *testing.T) {
	fw := &fakeWriter{}
	p := NewPublisherWithWriter(fw, zerolog.Nop())
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), domain.StatusEvent{
		Subject:      domain.SubjectItem,
		TrackingCode: "99M-0123456789",
		BatchCode:    "BULK-ABCDEF012345",
		From:         "NOT_PICKED_UP",
		To:           "PICKED_UP",
		Actor:        "driver-7",
		OccurredAt:   at,
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if len(fw.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fw.msgs))
	}
	msg := fw.msgs[0]
	if string(msg.Key) != "BULK-ABCDEF012345" {
		t.Errorf("items must be keyed by their batch, got %q", msg.Key)
	}

	var body Message
	if err := json.Unmarshal(msg.Value, &body); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if body.To != "PICKED_UP" || body.Subject != "item" || !body.OccurredAt.Equal(at) {
		t.Errorf("unexpected payload %+v", body)
	}
}

func TestPublish_WriterError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("leader not available")}
	p := NewPublisherWithWriter(fw, zerolog.Nop())

	if err := p.Publish(context.Background(), domain.StatusEvent{TrackingCode: "99M-X"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestClose(t *testing.T) {
	fw := &fakeWriter{}
	if err := NewPublisherWithWriter(fw, zerolog.Nop()).Close(); err != nil || !fw.closed {
		t.Fatalf("expected writer to be closed, err=%v", err)
	}
}
