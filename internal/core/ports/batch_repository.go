package ports

import (
	"context"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
)

// ListBatchesFilter carries the query parameters for listing batches.
type ListBatchesFilter struct {
	OwnerID string // empty = no filter (staff); non-empty = scoped to merchant
	Status  string // optional
	Page    int    // 1-based
	Limit   int
}

// BatchRepository persists batches together with their item ledgers.
type BatchRepository interface {
	// Create stores a new batch header before any row is priced.
	Create(ctx context.Context, b *domain.ShipmentBatch) error

	// Finalize stores the item ledger, rejection list, totals, status and
	// pending status events of an ingested batch in one atomic write. The
	// tracking codes of the items become resolvable at the same time.
	Finalize(ctx context.Context, b *domain.ShipmentBatch) error

	// FindByTrackingCode loads a batch with its items ordered by row number.
	// When ownerID is non-empty the lookup is scoped to that owner.
	FindByTrackingCode(ctx context.Context, code, ownerID string) (*domain.ShipmentBatch, error)

	// FindItem loads one item with its status history and the header of its batch.
	FindItem(ctx context.Context, itemCode string) (*domain.ShipmentBatch, *domain.ShipmentItem, error)

	// List returns a page of batch headers (no items) and the total count.
	List(ctx context.Context, filter ListBatchesFilter) ([]*domain.ShipmentBatch, int64, error)

	// Update serializes on the batch identity. It loads the batch with its
	// items, applies fn and persists item states, totals, status, payment
	// fields and the pending status events in one transaction. Nothing is
	// written when fn returns an error.
	Update(ctx context.Context, code, ownerID string, fn func(b *domain.ShipmentBatch) error) (*domain.ShipmentBatch, error)

	// Delete removes the batch, its items, their history and tracking codes.
	Delete(ctx context.Context, code, ownerID string) error
}
