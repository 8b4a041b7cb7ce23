package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/bulk-shipping/internal/api/metrics"
	"github.com/99minutos/bulk-shipping/internal/core/domain"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
)

// PaymentReconciler applies confirmations coming from an external payment
// processor. The processor itself is not called from here.
type PaymentReconciler struct {
	repo    ports.BatchRepository
	events  ports.EventSink
	methods map[string]struct{}
	logger  zerolog.Logger
	now     func() time.Time
}

// NewPaymentReconciler accepts confirmations for the given payment methods only.
func NewPaymentReconciler(repo ports.BatchRepository, events ports.EventSink, methods []string, logger zerolog.Logger) *PaymentReconciler {
	allowed := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			allowed[m] = struct{}{}
		}
	}
	return &PaymentReconciler{
		repo:    repo,
		events:  events,
		methods: allowed,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Confirm marks a batch paid and releases its valid items to fulfillment.
// A second confirmation fails with ErrAlreadyPaid and changes nothing.
func (s *PaymentReconciler) Confirm(ctx context.Context, code string, in ports.ConfirmPaymentInput) (*ports.PaymentSummary, error) {
	method := strings.ToLower(strings.TrimSpace(in.Method))
	if _, ok := s.methods[method]; !ok {
		metrics.PaymentsTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("confirm payment: %w: %q", domain.ErrUnsupportedPaymentMethod, in.Method)
	}

	var released int
	b, err := s.repo.Update(ctx, code, in.Principal.Scope(), func(b *domain.ShipmentBatch) error {
		if !in.Principal.CanManage(b.OwnerID) {
			return domain.ErrForbidden
		}
		n, err := b.ConfirmPayment(method, strings.TrimSpace(in.Reference), in.Principal.Actor(), s.now())
		released = n
		return err
	})
	if err != nil {
		metrics.PaymentsTotal.WithLabelValues(paymentOutcome(err)).Inc()
		return nil, fmt.Errorf("confirm payment: %w", err)
	}
	s.events.Enqueue(b.DrainEvents()...)
	metrics.PaymentsTotal.WithLabelValues("confirmed").Inc()

	s.logger.Info().
		Str("batch", code).
		Str("method", method).
		Str("reference", b.PaymentReference).
		Int("released", released).
		Str("amount", b.Totals.TotalFee.StringFixed(2)).
		Msg("payment confirmed")

	sum := summarize(b)
	sum.ItemsReleased = released
	return sum, nil
}

// Status returns the payment view of a batch.
func (s *PaymentReconciler) Status(ctx context.Context, p domain.Principal, code string) (*ports.PaymentSummary, error) {
	b, err := s.repo.FindByTrackingCode(ctx, code, p.Scope())
	if err != nil {
		return nil, fmt.Errorf("payment status: %w", err)
	}
	if !p.CanView(b.OwnerID) {
		return nil, fmt.Errorf("payment status: %w", domain.ErrBatchNotFound)
	}
	return summarize(b), nil
}

func summarize(b *domain.ShipmentBatch) *ports.PaymentSummary {
	return &ports.PaymentSummary{
		BatchCode:   b.TrackingCode,
		Method:      b.PaymentMethod,
		Status:      b.PaymentStatus,
		Reference:   b.PaymentReference,
		AmountDue:   b.AmountDue(),
		Totals:      b.Totals,
		ValidItems:  b.ValidShipments,
		Payable:     !b.IsPaid() && b.Status != domain.BatchCancelled && b.ValidShipments > 0,
		BatchStatus: b.Status,
	}
}

func paymentOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyPaid):
		return "already_paid"
	case errors.Is(err, domain.ErrNoPriceableItems):
		return "no_priceable_items"
	default:
		return "rejected"
	}
}
