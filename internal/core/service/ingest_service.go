package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/bulk-shipping/internal/api/metrics"
	"github.com/99minutos/bulk-shipping/internal/core/domain"
	"github.com/99minutos/bulk-shipping/internal/core/location"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
	"github.com/99minutos/bulk-shipping/internal/core/pricing"
)

// IngestConfig tunes the row pipeline.
type IngestConfig struct {
	Workers         int           // concurrent rows in flight
	DistanceTimeout time.Duration // per-row distance lookup bound
	DefaultPickup   string        // used when an upload carries no pickup address
}

// Ingestor turns a parsed upload into a priced, persisted batch.
type Ingestor struct {
	repo          ports.BatchRepository
	locator       *location.Validator
	pricer        *pricing.Engine
	distance      distanceLookup
	events        ports.EventSink
	workers       int
	defaultPickup string
	logger        zerolog.Logger
	now           func() time.Time
}

func NewIngestor(
	repo ports.BatchRepository,
	locator *location.Validator,
	pricer *pricing.Engine,
	provider ports.DistanceProvider,
	events ports.EventSink,
	cfg IngestConfig,
	logger zerolog.Logger,
) *Ingestor {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Ingestor{
		repo:          repo,
		locator:       locator,
		pricer:        pricer,
		distance:      distanceLookup{provider: provider, timeout: cfg.DistanceTimeout},
		events:        events,
		workers:       workers,
		defaultPickup: cfg.DefaultPickup,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Ingest validates the upload as a whole, prices every row independently and
// stores the batch. Row failures never abort the run; they become rejections.
func (s *Ingestor) Ingest(ctx context.Context, in ports.IngestBatchInput) (*domain.ShipmentBatch, error) {
	start := time.Now()

	// 1. Structural check: every required column must be present.
	if missing := missingColumns(in.Table.Columns); len(missing) > 0 {
		metrics.BatchesRejectedTotal.WithLabelValues("malformed_input").Inc()
		return nil, domain.Reject(domain.ErrMalformedInput, fmt.Sprintf("CSV must contain these columns: %s (missing: %s)",
			strings.Join(domain.RequiredColumns(), ", "),
			strings.Join(missing, ", ")))
	}

	// 2. Bulk pricing needs a minimum number of rows.
	if n := len(in.Table.Rows); n < domain.MinBatchRows {
		metrics.BatchesRejectedTotal.WithLabelValues("batch_too_small").Inc()
		return nil, domain.Reject(domain.ErrBatchTooSmall,
			fmt.Sprintf("Bulk shipments require at least %d items. Your file contains %d items.", domain.MinBatchRows, n))
	}

	// 3. The pickup origin is shared by every row, so it is checked once.
	pickup, err := s.resolvePickup(in.Pickup)
	if err != nil {
		metrics.BatchesRejectedTotal.WithLabelValues("pickup_location").Inc()
		return nil, err
	}

	// 4. Open the batch in PROCESSING.
	speed := pricing.ParseSpeedTier(in.DeliverySpeed)
	batch := domain.NewBatch(in.Principal.OwnerID(), string(speed), pickup, len(in.Table.Rows), s.now())
	if err := s.repo.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("ingest batch: create: %w", err)
	}

	// The batch exists from here on: finish it even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	// 5. Price rows concurrently, keeping input order.
	items := s.priceRows(ctx, in.Table.Rows, pickup.Address, speed)

	// 6. Aggregate and persist atomically.
	batch.FinishIngestion(items, s.now())
	if err := s.repo.Finalize(ctx, batch); err != nil {
		s.logger.Error().Err(err).Str("batch", batch.TrackingCode).Msg("failed to finalize batch")
		// Drop the PROCESSING header so no empty batch is left behind.
		if derr := s.repo.Delete(ctx, batch.TrackingCode, ""); derr != nil {
			s.logger.Error().Err(derr).Str("batch", batch.TrackingCode).Msg("failed to remove unfinished batch")
		}
		return nil, fmt.Errorf("ingest batch: finalize: %w", err)
	}
	s.events.Enqueue(batch.DrainEvents()...)

	metrics.BatchesIngestedTotal.WithLabelValues(string(batch.Status)).Inc()
	metrics.IngestDuration.WithLabelValues(string(batch.Status)).Observe(time.Since(start).Seconds())

	s.logger.Info().
		Str("batch", batch.TrackingCode).
		Str("owner", batch.OwnerID).
		Str("status", string(batch.Status)).
		Int("rows", batch.TotalShipments).
		Int("valid", batch.ValidShipments).
		Int("invalid", batch.InvalidShipments).
		Str("total_fee", batch.Totals.TotalFee.StringFixed(2)).
		Dur("took", time.Since(start)).
		Msg("batch ingested")

	return batch, nil
}

func (s *Ingestor) resolvePickup(in domain.PickupDetails) (domain.PickupDetails, error) {
	addr := strings.TrimSpace(in.Address)
	if addr == "" {
		addr = s.defaultPickup
	}
	normalized, err := s.locator.Validate(addr)
	if err != nil {
		return in, domain.Reject(domain.ErrOutOfServiceArea, "Pickup location error: "+err.Error())
	}
	return domain.PickupDetails{
		Address:      normalized,
		ContactName:  strings.TrimSpace(in.ContactName),
		ContactPhone: strings.TrimSpace(in.ContactPhone),
	}, nil
}

func (s *Ingestor) priceRows(ctx context.Context, rows []domain.RawRow, origin string, speed pricing.SpeedTier) []*domain.ShipmentItem {
	items := make([]*domain.ShipmentItem, len(rows))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			items[i] = s.priceRow(ctx, i+1, row, origin, speed)
			return nil
		})
	}
	_ = g.Wait()

	for _, it := range items {
		outcome := "valid"
		if !it.Valid {
			outcome = it.RejectionCode
		}
		metrics.RowsProcessedTotal.WithLabelValues(outcome).Inc()
	}
	return items
}

// priceRow never fails: every problem is recorded on the returned item.
func (s *Ingestor) priceRow(ctx context.Context, rowNumber int, row domain.RawRow, origin string, speed pricing.SpeedTier) *domain.ShipmentItem {
	item := domain.NewItem(rowNumber, row, s.now())

	if missing := row.MissingFields(); len(missing) > 0 {
		item.Reject(domain.Reject(domain.ErrMissingField, "Missing required fields: "+strings.Join(missing, ", ")))
		return item
	}

	weight, err := domain.ParseWeightClass(row.Field(domain.ColumnPackageSize))
	if err != nil {
		item.Reject(err)
		return item
	}

	address, err := s.locator.Validate(row.Field(domain.ColumnAddress))
	if err != nil {
		item.Reject(err)
		return item
	}

	km, err := s.distance.km(ctx, origin, address)
	if err != nil {
		s.logger.Debug().Err(err).Int("row", rowNumber).Msg("distance lookup failed")
		item.Reject(err)
		return item
	}

	q := s.pricer.Price(km, weight, speed, nil, pricing.ModeBulk)
	item.Accept(address, weight, q.DistanceKm, q.Fees)
	return item
}

func missingColumns(columns []string) []string {
	have := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		have[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}
	var missing []string
	for _, req := range domain.RequiredColumns() {
		if _, ok := have[req]; !ok {
			missing = append(missing, req)
		}
	}
	return missing
}
