package ports

import (
	"context"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
)

// TrackingIndex resolves a parcel tracking code to the record that owns it,
// whether a single shipment or a batch item, in one lookup.
type TrackingIndex interface {
	Resolve(ctx context.Context, code string) (domain.TrackingRef, error)
}
