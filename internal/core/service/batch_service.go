package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/bulk-shipping/internal/api/metrics"
	"github.com/99minutos/bulk-shipping/internal/core/domain"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type BatchService struct {
	repo   ports.BatchRepository
	events ports.EventSink
	logger zerolog.Logger
	now    func() time.Time
}

func NewBatchService(repo ports.BatchRepository, events ports.EventSink, logger zerolog.Logger) *BatchService {
	return &BatchService{
		repo:   repo,
		events: events,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Get returns a batch with its items. Merchants only see their own batches.
func (s *BatchService) Get(ctx context.Context, p domain.Principal, code string) (*domain.ShipmentBatch, error) {
	b, err := s.repo.FindByTrackingCode(ctx, code, p.Scope())
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}
	if !p.CanView(b.OwnerID) {
		return nil, fmt.Errorf("get batch: %w", domain.ErrBatchNotFound)
	}
	return b, nil
}

// List returns one page of batch headers, newest first.
func (s *BatchService) List(ctx context.Context, in ports.ListBatchesInput) (*ports.ListBatchesResult, error) {
	page, limit := normalizePage(in.Page, in.Limit)

	items, total, err := s.repo.List(ctx, ports.ListBatchesFilter{
		OwnerID: in.Principal.Scope(),
		Status:  strings.ToUpper(strings.TrimSpace(in.Status)),
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}

	return &ports.ListBatchesResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// UpdateStatus fans a fulfillment status out to the batch items and
// re-derives the batch status in the same write.
func (s *BatchService) UpdateStatus(ctx context.Context, code string, in ports.UpdateStatusInput) (*domain.ShipmentBatch, domain.StatusUpdate, error) {
	if !in.Principal.CanDispatch() {
		return nil, domain.StatusUpdate{}, fmt.Errorf("update batch status: %w", domain.ErrForbidden)
	}
	target, err := domain.ParseFulfillmentStatus(in.Status)
	if err != nil {
		return nil, domain.StatusUpdate{}, fmt.Errorf("update batch status: %w", err)
	}

	var res domain.StatusUpdate
	b, err := s.repo.Update(ctx, code, "", func(b *domain.ShipmentBatch) error {
		r, err := b.UpdateItemStatuses(target, in.TrackingCodes, in.Principal.Actor(), s.now())
		res = r
		return err
	})
	if err != nil {
		return nil, domain.StatusUpdate{}, fmt.Errorf("update batch status: %w", err)
	}
	s.events.Enqueue(b.DrainEvents()...)
	metrics.StatusUpdatesTotal.WithLabelValues(string(domain.SubjectItem), string(target)).Add(float64(res.Updated))

	s.logger.Info().
		Str("batch", code).
		Str("target", string(target)).
		Int("updated", res.Updated).
		Int("skipped", res.Skipped).
		Str("batch_status", string(b.Status)).
		Str("actor", in.Principal.Actor()).
		Msg("batch status updated")

	return b, res, nil
}

// Cancel stops a batch before any item has been picked up.
func (s *BatchService) Cancel(ctx context.Context, p domain.Principal, code string) (*domain.ShipmentBatch, error) {
	b, err := s.repo.Update(ctx, code, p.Scope(), func(b *domain.ShipmentBatch) error {
		if !p.CanManage(b.OwnerID) {
			return domain.ErrForbidden
		}
		return b.Cancel(p.Actor(), s.now())
	})
	if err != nil {
		return nil, fmt.Errorf("cancel batch: %w", err)
	}
	s.events.Enqueue(b.DrainEvents()...)

	s.logger.Info().Str("batch", code).Str("actor", p.Actor()).Msg("batch cancelled")
	return b, nil
}

// Delete removes a batch together with its items and history.
func (s *BatchService) Delete(ctx context.Context, p domain.Principal, code string) error {
	b, err := s.repo.FindByTrackingCode(ctx, code, p.Scope())
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	if !p.CanManage(b.OwnerID) {
		return fmt.Errorf("delete batch: %w", domain.ErrForbidden)
	}
	if err := s.repo.Delete(ctx, code, p.Scope()); err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}

	s.logger.Info().Str("batch", code).Str("actor", p.Actor()).Msg("batch deleted")
	return nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}
