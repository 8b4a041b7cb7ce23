package ports

import (
	"context"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
)

// ConfirmPaymentInput is the data a payment event contributes.
type ConfirmPaymentInput struct {
	Principal domain.Principal
	Method    string
	Reference string // optional
}

// PaymentSummary is the payment view of a batch.
type PaymentSummary struct {
	BatchCode     string
	Method        string
	Status        string
	Reference     string
	AmountDue     domain.FeeBreakdown
	Totals        domain.FeeBreakdown
	ValidItems    int
	Payable       bool
	BatchStatus   domain.BatchStatus
	ItemsReleased int
}

// PaymentReconciler applies external payment confirmations to batches.
type PaymentReconciler interface {
	Confirm(ctx context.Context, code string, in ConfirmPaymentInput) (*PaymentSummary, error)
	Status(ctx context.Context, p domain.Principal, code string) (*PaymentSummary, error)
}
