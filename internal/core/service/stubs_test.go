package service

import (
	"context"
	"sync"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

func cloneBatch(b *domain.ShipmentBatch) *domain.ShipmentBatch {
	clone := *b
	clone.Items = make([]*domain.ShipmentItem, len(b.Items))
	for i, it := range b.Items {
		c := *it
		c.History = append([]domain.StatusChange(nil), it.History...)
		clone.Items[i] = &c
	}
	clone.History = append([]domain.StatusChange(nil), b.History...)
	clone.Rejections = append([]domain.RowRejection(nil), b.Rejections...)
	clone.DrainEvents()
	return &clone
}

type stubBatchRepo struct {
	mu          sync.Mutex
	byCode      map[string]*domain.ShipmentBatch
	events      []domain.StatusEvent // persisted alongside writes
	finalized   int
	createErr   error
	finalizeErr error
}

func newStubBatchRepo() *stubBatchRepo {
	return &stubBatchRepo{byCode: make(map[string]*domain.ShipmentBatch)}
}

func (r *stubBatchRepo) put(b *domain.ShipmentBatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byCode[b.TrackingCode] = cloneBatch(b)
}

func (r *stubBatchRepo) Create(_ context.Context, b *domain.ShipmentBatch) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.put(b)
	return nil
}

func (r *stubBatchRepo) Finalize(_ context.Context, b *domain.ShipmentBatch) error {
	if r.finalizeErr != nil {
		return r.finalizeErr
	}
	r.mu.Lock()
	r.events = append(r.events, b.PendingEvents()...)
	r.finalized++
	r.mu.Unlock()
	r.put(b)
	return nil
}

func (r *stubBatchRepo) FindByTrackingCode(_ context.Context, code, ownerID string) (*domain.ShipmentBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byCode[code]
	if !ok || (ownerID != "" && b.OwnerID != ownerID) {
		return nil, domain.ErrBatchNotFound
	}
	return cloneBatch(b), nil
}

func (r *stubBatchRepo) FindItem(_ context.Context, itemCode string) (*domain.ShipmentBatch, *domain.ShipmentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.byCode {
		if it := b.Item(itemCode); it != nil {
			clone := cloneBatch(b)
			return clone, clone.Item(itemCode), nil
		}
	}
	return nil, nil, domain.ErrItemNotFound
}

func (r *stubBatchRepo) List(_ context.Context, f ports.ListBatchesFilter) ([]*domain.ShipmentBatch, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ShipmentBatch
	for _, b := range r.byCode {
		if f.OwnerID != "" && b.OwnerID != f.OwnerID {
			continue
		}
		if f.Status != "" && string(b.Status) != f.Status {
			continue
		}
		out = append(out, cloneBatch(b))
	}
	return out, int64(len(out)), nil
}

// Update mirrors the transactional contract: nothing is stored when fn fails.
func (r *stubBatchRepo) Update(_ context.Context, code, ownerID string, fn func(b *domain.ShipmentBatch) error) (*domain.ShipmentBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byCode[code]
	if !ok || (ownerID != "" && stored.OwnerID != ownerID) {
		return nil, domain.ErrBatchNotFound
	}
	working := cloneBatch(stored)
	if err := fn(working); err != nil {
		return nil, err
	}
	r.events = append(r.events, working.PendingEvents()...)
	r.byCode[code] = cloneBatch(working)
	return working, nil
}

func (r *stubBatchRepo) Delete(_ context.Context, code, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byCode[code]
	if !ok || (ownerID != "" && b.OwnerID != ownerID) {
		return domain.ErrBatchNotFound
	}
	delete(r.byCode, code)
	return nil
}

type stubShipmentRepo struct {
	byCode    map[string]*domain.Shipment
	createErr error
}

func newStubShipmentRepo() *stubShipmentRepo {
	return &stubShipmentRepo{byCode: make(map[string]*domain.Shipment)}
}

func cloneShipment(s *domain.Shipment) *domain.Shipment {
	clone := *s
	clone.History = append([]domain.StatusChange(nil), s.History...)
	clone.DrainEvents()
	return &clone
}

func (r *stubShipmentRepo) Create(_ context.Context, s *domain.Shipment) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.byCode[s.TrackingCode] = cloneShipment(s)
	return nil
}

func (r *stubShipmentRepo) FindByTrackingCode(_ context.Context, code, ownerID string) (*domain.Shipment, error) {
	s, ok := r.byCode[code]
	if !ok || (ownerID != "" && s.OwnerID != ownerID) {
		return nil, domain.ErrShipmentNotFound
	}
	return cloneShipment(s), nil
}

func (r *stubShipmentRepo) Update(_ context.Context, code string, fn func(s *domain.Shipment) error) (*domain.Shipment, error) {
	s, ok := r.byCode[code]
	if !ok {
		return nil, domain.ErrShipmentNotFound
	}
	working := cloneShipment(s)
	if err := fn(working); err != nil {
		return nil, err
	}
	r.byCode[code] = cloneShipment(working)
	return working, nil
}

// stubIndex resolves codes against the two stub repositories.
type stubIndex struct {
	batches   *stubBatchRepo
	shipments *stubShipmentRepo
}

func (x stubIndex) Resolve(ctx context.Context, code string) (domain.TrackingRef, error) {
	if _, ok := x.shipments.byCode[code]; ok {
		return domain.TrackingRef{Code: code, Kind: domain.KindSingleShipment}, nil
	}
	if b, _, err := x.batches.FindItem(ctx, code); err == nil {
		return domain.TrackingRef{Code: code, Kind: domain.KindBatchItem, BatchCode: b.TrackingCode}, nil
	}
	return domain.TrackingRef{}, domain.ErrTrackingCodeNotFound
}

// ---------------------------------------------------------------------------
// Distance and event stubs
// ---------------------------------------------------------------------------

type stubDistance struct {
	fn func(ctx context.Context, origin, destination string) (float64, error)
}

func (d stubDistance) Distance(ctx context.Context, origin, destination string) (float64, error) {
	return d.fn(ctx, origin, destination)
}

func fixedDistance(km float64) stubDistance {
	return stubDistance{fn: func(context.Context, string, string) (float64, error) { return km, nil }}
}

type stubSink struct {
	mu     sync.Mutex
	events []domain.StatusEvent
}

func (s *stubSink) Enqueue(events ...domain.StatusEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
}

func (s *stubSink) count(subject domain.EventSubject) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e.Subject == subject {
			n++
		}
	}
	return n
}
