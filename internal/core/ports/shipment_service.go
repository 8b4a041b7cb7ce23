package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
	"github.com/99minutos/bulk-shipping/internal/core/pricing"
)

// QuoteInput carries the parameters of a single-parcel quote.
type QuoteInput struct {
	PickupAddress   string
	DeliveryAddress string
	WeightClass     string
	DeliverySpeed   string
	Addons          []string
}

// QuoteResult is a binding single-parcel price.
type QuoteResult struct {
	PickupAddress     string // normalized
	DeliveryAddress   string // normalized
	WeightClass       domain.WeightClass
	DeliverySpeed     pricing.SpeedTier
	DistanceKm        decimal.Decimal
	Addons            []pricing.Addon
	Fees              domain.FeeBreakdown
	Currency          string
	EstimatedDelivery string
}

// CreateShipmentInput books one parcel outside of a batch.
type CreateShipmentInput struct {
	Principal          domain.Principal
	Quote              QuoteInput
	PickupContactName  string
	PickupContactPhone string
	ReceiverName       string
	ReceiverPhone      string
	PostalCode         string
}

// ShipmentService quotes and books single shipments.
type ShipmentService interface {
	Quote(ctx context.Context, in QuoteInput) (*QuoteResult, error)
	CreateShipment(ctx context.Context, in CreateShipmentInput) (*domain.Shipment, *QuoteResult, error)
	GetShipment(ctx context.Context, p domain.Principal, code string) (*domain.Shipment, error)
	PricingInfo() pricing.Info
}
