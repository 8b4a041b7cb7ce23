package ports

import (
	"context"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
)

// EventPublisher delivers a committed status event to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.StatusEvent) error
}

// EventSink accepts committed status events for asynchronous delivery.
type EventSink interface {
	Enqueue(events ...domain.StatusEvent)
}
