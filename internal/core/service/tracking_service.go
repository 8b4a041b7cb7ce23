package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/bulk-shipping/internal/api/metrics"
	"github.com/99minutos/bulk-shipping/internal/core/domain"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
)

// TrackingService resolves parcel codes to either a single shipment or a
// batch item and moves them through fulfillment.
type TrackingService struct {
	index     ports.TrackingIndex
	batches   ports.BatchRepository
	shipments ports.ShipmentRepository
	events    ports.EventSink
	logger    zerolog.Logger
	now       func() time.Time
}

func NewTrackingService(
	index ports.TrackingIndex,
	batches ports.BatchRepository,
	shipments ports.ShipmentRepository,
	events ports.EventSink,
	logger zerolog.Logger,
) *TrackingService {
	return &TrackingService{
		index:     index,
		batches:   batches,
		shipments: shipments,
		events:    events,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Lookup returns the parcel behind a tracking code. Parcels the caller may
// not see are reported as not found.
func (s *TrackingService) Lookup(ctx context.Context, p domain.Principal, code string) (*domain.TrackedParcel, error) {
	parcel, err := s.load(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("track parcel: %w", err)
	}
	if !p.CanView(parcel.OwnerID()) {
		return nil, fmt.Errorf("track parcel: %w", domain.ErrTrackingCodeNotFound)
	}
	return parcel, nil
}

// UpdateStatus moves one parcel forward. Batch items are updated through
// their batch so the batch status is re-derived in the same write.
func (s *TrackingService) UpdateStatus(ctx context.Context, p domain.Principal, code, status string) (*domain.TrackedParcel, error) {
	if !p.CanDispatch() {
		return nil, fmt.Errorf("update parcel status: %w", domain.ErrForbidden)
	}
	target, err := domain.ParseFulfillmentStatus(status)
	if err != nil {
		return nil, fmt.Errorf("update parcel status: %w", err)
	}

	ref, err := s.index.Resolve(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("update parcel status: %w", err)
	}

	switch ref.Kind {
	case domain.KindBatchItem:
		b, err := s.batches.Update(ctx, ref.BatchCode, "", func(b *domain.ShipmentBatch) error {
			_, err := b.UpdateItemStatuses(target, []string{code}, p.Actor(), s.now())
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("update parcel status: %w", err)
		}
		s.events.Enqueue(b.DrainEvents()...)
	case domain.KindSingleShipment:
		sh, err := s.shipments.Update(ctx, code, func(sh *domain.Shipment) error {
			_, err := sh.UpdateStatus(target, p.Actor(), s.now())
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("update parcel status: %w", err)
		}
		s.events.Enqueue(sh.DrainEvents()...)
	default:
		return nil, fmt.Errorf("update parcel status: %w", domain.ErrTrackingCodeNotFound)
	}

	metrics.StatusUpdatesTotal.WithLabelValues(string(subjectOf(ref.Kind)), string(target)).Inc()
	s.logger.Info().
		Str("tracking", code).
		Str("kind", string(ref.Kind)).
		Str("status", string(target)).
		Str("actor", p.Actor()).
		Msg("parcel status updated")

	// Reload so the response carries the full history.
	parcel, err := s.load(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("update parcel status: %w", err)
	}
	return parcel, nil
}

func (s *TrackingService) load(ctx context.Context, code string) (*domain.TrackedParcel, error) {
	ref, err := s.index.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}

	switch ref.Kind {
	case domain.KindBatchItem:
		b, it, err := s.batches.FindItem(ctx, code)
		if err != nil {
			return nil, err
		}
		return &domain.TrackedParcel{Kind: ref.Kind, Batch: b, Item: it}, nil
	case domain.KindSingleShipment:
		sh, err := s.shipments.FindByTrackingCode(ctx, code, "")
		if err != nil {
			return nil, err
		}
		return &domain.TrackedParcel{Kind: ref.Kind, Shipment: sh}, nil
	}
	return nil, domain.ErrTrackingCodeNotFound
}

func subjectOf(kind domain.ParcelKind) domain.EventSubject {
	if kind == domain.KindBatchItem {
		return domain.SubjectItem
	}
	return domain.SubjectShipment
}
