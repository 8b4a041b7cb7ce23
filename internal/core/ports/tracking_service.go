package ports

import (
	"context"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
)

// TrackingService reads and advances parcels by tracking code regardless of
// whether they were booked singly or in a batch.
type TrackingService interface {
	Lookup(ctx context.Context, p domain.Principal, code string) (*domain.TrackedParcel, error)
	UpdateStatus(ctx context.Context, p domain.Principal, code, status string) (*domain.TrackedParcel, error)
}
