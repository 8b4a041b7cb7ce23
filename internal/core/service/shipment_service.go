package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/bulk-shipping/internal/api/metrics"
	"github.com/99minutos/bulk-shipping/internal/core/domain"
	"github.com/99minutos/bulk-shipping/internal/core/location"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
	"github.com/99minutos/bulk-shipping/internal/core/pricing"
)

type ShipmentService struct {
	repo     ports.ShipmentRepository
	locator  *location.Validator
	pricer   *pricing.Engine
	distance distanceLookup
	events   ports.EventSink
	logger   zerolog.Logger
	now      func() time.Time
}

func NewShipmentService(
	repo ports.ShipmentRepository,
	locator *location.Validator,
	pricer *pricing.Engine,
	provider ports.DistanceProvider,
	distanceTimeout time.Duration,
	events ports.EventSink,
	logger zerolog.Logger,
) *ShipmentService {
	return &ShipmentService{
		repo:     repo,
		locator:  locator,
		pricer:   pricer,
		distance: distanceLookup{provider: provider, timeout: distanceTimeout},
		events:   events,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Quote prices one parcel at single-shipment rates.
func (s *ShipmentService) Quote(ctx context.Context, in ports.QuoteInput) (*ports.QuoteResult, error) {
	pickup, err := s.locator.Validate(in.PickupAddress)
	if err != nil {
		return nil, withPrefix(err, "Pickup location error: ")
	}
	delivery, err := s.locator.Validate(in.DeliveryAddress)
	if err != nil {
		return nil, withPrefix(err, "Delivery location error: ")
	}
	weight, err := domain.ParseWeightClass(in.WeightClass)
	if err != nil {
		return nil, err
	}

	km, err := s.distance.km(ctx, pickup, delivery)
	if err != nil {
		return nil, err
	}

	speed := pricing.ParseSpeedTier(in.DeliverySpeed)
	q := s.pricer.Price(km, weight, speed, in.Addons, pricing.ModeSingle)
	metrics.QuotesTotal.WithLabelValues(string(speed)).Inc()

	return &ports.QuoteResult{
		PickupAddress:     pickup,
		DeliveryAddress:   delivery,
		WeightClass:       weight,
		DeliverySpeed:     speed,
		DistanceKm:        q.DistanceKm,
		Addons:            q.Addons,
		Fees:              q.Fees,
		Currency:          s.pricer.Currency(),
		EstimatedDelivery: s.pricer.DeliveryWindow(speed),
	}, nil
}

// CreateShipment re-prices the parcel and books it. The shipment goes
// straight to NOT_PICKED_UP.
func (s *ShipmentService) CreateShipment(ctx context.Context, in ports.CreateShipmentInput) (*domain.Shipment, *ports.QuoteResult, error) {
	q, err := s.Quote(ctx, in.Quote)
	if err != nil {
		return nil, nil, err
	}

	sh := domain.NewShipment(in.Principal.OwnerID(), s.now())
	sh.Pickup = domain.PickupDetails{
		Address:      q.PickupAddress,
		ContactName:  strings.TrimSpace(in.PickupContactName),
		ContactPhone: strings.TrimSpace(in.PickupContactPhone),
	}
	sh.ReceiverName = strings.TrimSpace(in.ReceiverName)
	sh.ReceiverPhone = strings.TrimSpace(in.ReceiverPhone)
	sh.DeliveryAddress = q.DeliveryAddress
	sh.PostalCode = strings.TrimSpace(in.PostalCode)
	sh.WeightClass = q.WeightClass
	sh.DeliverySpeed = string(q.DeliverySpeed)
	sh.DistanceKm = q.DistanceKm
	sh.Fees = q.Fees
	for _, a := range q.Addons {
		sh.Addons = append(sh.Addons, string(a))
	}

	if err := s.repo.Create(ctx, sh); err != nil {
		s.logger.Error().Err(err).Msg("failed to create shipment")
		return nil, nil, fmt.Errorf("create shipment: %w", err)
	}
	s.events.Enqueue(sh.DrainEvents()...)
	metrics.ShipmentsCreatedTotal.WithLabelValues(sh.DeliverySpeed).Inc()

	s.logger.Info().
		Str("tracking", sh.TrackingCode).
		Str("owner", sh.OwnerID).
		Str("total_fee", sh.Fees.TotalFee.StringFixed(2)).
		Msg("shipment created")

	return sh, q, nil
}

// GetShipment loads a single shipment. Merchants only see their own.
func (s *ShipmentService) GetShipment(ctx context.Context, p domain.Principal, code string) (*domain.Shipment, error) {
	sh, err := s.repo.FindByTrackingCode(ctx, code, p.Scope())
	if err != nil {
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	if !p.CanView(sh.OwnerID) {
		return nil, fmt.Errorf("get shipment: %w", domain.ErrShipmentNotFound)
	}
	return sh, nil
}

func (s *ShipmentService) PricingInfo() pricing.Info {
	return s.pricer.Info()
}
