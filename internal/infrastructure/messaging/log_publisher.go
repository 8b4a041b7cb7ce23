// Package messaging holds event publishers that need no broker.
package messaging

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
)

// LogPublisher writes status events to the log. It is used when no Kafka
// brokers are configured.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, e domain.StatusEvent) error {
	p.log.Info().
		Str("subject", string(e.Subject)).
		Str("tracking", e.TrackingCode).
		Str("batch", e.BatchCode).
		Str("from", e.From).
		Str("to", e.To).
		Str("actor", e.Actor).
		Time("occurred_at", e.OccurredAt).
		Msg("status event")
	return nil
}
