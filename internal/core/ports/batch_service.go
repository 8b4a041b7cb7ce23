package ports

import (
	"context"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
)

// Table is a parsed tabular upload: lower-cased header columns and data rows
// in input order.
type Table struct {
	Columns []string
	Rows    []domain.RawRow
}

// IngestBatchInput carries one bulk upload.
type IngestBatchInput struct {
	Principal     domain.Principal
	Table         Table
	DeliverySpeed string
	Pickup        domain.PickupDetails
}

// BatchIngestor turns a tabular upload into a priced batch.
type BatchIngestor interface {
	Ingest(ctx context.Context, in IngestBatchInput) (*domain.ShipmentBatch, error)
}

// ListBatchesInput carries the parameters of the list endpoint.
type ListBatchesInput struct {
	Principal domain.Principal
	Status    string
	Page      int
	Limit     int
}

// ListBatchesResult is one page of batch headers.
type ListBatchesResult struct {
	Items      []*domain.ShipmentBatch
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// UpdateStatusInput is a fulfillment update for a batch. An empty
// TrackingCodes applies it to every item already in fulfillment.
type UpdateStatusInput struct {
	Principal     domain.Principal
	Status        string
	TrackingCodes []string
}

// BatchService queries and manages ingested batches.
type BatchService interface {
	Get(ctx context.Context, p domain.Principal, code string) (*domain.ShipmentBatch, error)
	List(ctx context.Context, in ListBatchesInput) (*ListBatchesResult, error)
	UpdateStatus(ctx context.Context, code string, in UpdateStatusInput) (*domain.ShipmentBatch, domain.StatusUpdate, error)
	Cancel(ctx context.Context, p domain.Principal, code string) (*domain.ShipmentBatch, error)
	Delete(ctx context.Context, p domain.Principal, code string) error
}
