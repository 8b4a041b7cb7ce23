package ports

import (
	"context"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
)

// ShipmentRepository persists single shipments.
type ShipmentRepository interface {
	// Create stores the shipment, registers its tracking code and persists its
	// pending status events atomically.
	Create(ctx context.Context, s *domain.Shipment) error
	// FindByTrackingCode loads a shipment with its status history.
	// When ownerID is non-empty the lookup is scoped to that owner.
	FindByTrackingCode(ctx context.Context, code, ownerID string) (*domain.Shipment, error)
	// Update applies fn under a per-shipment lock and persists the status and
	// pending events atomically.
	Update(ctx context.Context, code string, fn func(s *domain.Shipment) error) (*domain.Shipment, error)
}
