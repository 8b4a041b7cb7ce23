package sqldb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
)

const (
	defaultTimeout = 10 * time.Second
	insertChunk    = 200
)

type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

var _ ports.BatchRepository = (*BatchRepository)(nil)

// Create inserts the batch header.
func (r *BatchRepository) Create(ctx context.Context, b *domain.ShipmentBatch) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.db.WithContext(ctx).Create(toBatchModel(b)).Error
}

// Finalize writes the item ledger, its tracking codes, the batch totals and
// the pending events in one transaction.
func (r *BatchRepository) Finalize(ctx context.Context, b *domain.ShipmentBatch) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		header, err := lockBatch(tx, b.TrackingCode, "")
		if err != nil {
			return err
		}

		if len(b.Items) > 0 {
			items := make([]itemModel, 0, len(b.Items))
			codes := make([]trackingCodeModel, 0, len(b.Items))
			for _, it := range b.Items {
				items = append(items, toItemModel(header.ID, it))
				codes = append(codes, trackingCodeModel{
					Code:      it.TrackingCode,
					Kind:      string(domain.KindBatchItem),
					BatchCode: b.TrackingCode,
					CreatedAt: it.CreatedAt,
				})
			}
			if err := tx.CreateInBatches(&items, insertChunk).Error; err != nil {
				return fmt.Errorf("insert items: %w", err)
			}
			if err := tx.CreateInBatches(&codes, insertChunk).Error; err != nil {
				return fmt.Errorf("insert tracking codes: %w", err)
			}
		}

		if err := tx.Model(&batchModel{}).Where("id = ?", header.ID).Updates(batchColumns(b)).Error; err != nil {
			return fmt.Errorf("update batch: %w", err)
		}
		return insertEvents(tx, b.PendingEvents())
	})
}

// FindByTrackingCode loads a batch with its items and both status histories.
func (r *BatchRepository) FindByTrackingCode(ctx context.Context, code, ownerID string) (*domain.ShipmentBatch, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var header batchModel
	q := r.db.WithContext(ctx).Where("tracking_code = ?", code)
	if ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}
	if err := q.First(&header).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBatchNotFound
		}
		return nil, err
	}

	b, _, err := loadBatch(r.db.WithContext(ctx), &header)
	return b, err
}

// FindItem loads one item with its history and the header of its batch.
func (r *BatchRepository) FindItem(ctx context.Context, itemCode string) (*domain.ShipmentBatch, *domain.ShipmentItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	db := r.db.WithContext(ctx)

	var item itemModel
	if err := db.Where("tracking_code = ?", itemCode).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.ErrItemNotFound
		}
		return nil, nil, err
	}
	var header batchModel
	if err := db.First(&header, item.BatchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.ErrItemNotFound
		}
		return nil, nil, err
	}

	var events []eventModel
	err := db.Where("tracking_code = ? AND subject = ?", itemCode, string(domain.SubjectItem)).
		Order("occurred_at, id").Find(&events).Error
	if err != nil {
		return nil, nil, err
	}

	it := toItemDomain(&item)
	for _, e := range events {
		it.History = append(it.History, toStatusChange(e))
	}
	return toBatchDomain(&header), it, nil
}

// List returns a page of batch headers, newest first.
func (r *BatchRepository) List(ctx context.Context, f ports.ListBatchesFilter) ([]*domain.ShipmentBatch, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := r.db.WithContext(ctx).Model(&batchModel{})
	if f.OwnerID != "" {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []batchModel
	offset := (f.Page - 1) * f.Limit
	if offset < 0 {
		offset = 0
	}
	if err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(f.Limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*domain.ShipmentBatch, 0, len(rows))
	for i := range rows {
		out = append(out, toBatchDomain(&rows[i]))
	}
	return out, total, nil
}

// Update locks the batch row for the duration of fn. Only items whose status
// changed are written back.
func (r *BatchRepository) Update(ctx context.Context, code, ownerID string, fn func(b *domain.ShipmentBatch) error) (*domain.ShipmentBatch, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var out *domain.ShipmentBatch
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		header, err := lockBatch(tx, code, ownerID)
		if err != nil {
			return err
		}
		b, itemIDs, err := loadBatch(tx, header)
		if err != nil {
			return err
		}

		before := make(map[string]domain.ItemStatus, len(b.Items))
		for _, it := range b.Items {
			before[it.TrackingCode] = it.Status
		}

		if err := fn(b); err != nil {
			return err
		}

		for _, it := range b.Items {
			if before[it.TrackingCode] == it.Status {
				continue
			}
			err := tx.Model(&itemModel{}).Where("id = ?", itemIDs[it.TrackingCode]).
				Updates(map[string]interface{}{"status": string(it.Status), "updated_at": it.UpdatedAt}).Error
			if err != nil {
				return fmt.Errorf("update item %s: %w", it.TrackingCode, err)
			}
		}
		if err := tx.Model(&batchModel{}).Where("id = ?", header.ID).Updates(batchColumns(b)).Error; err != nil {
			return fmt.Errorf("update batch: %w", err)
		}
		if err := insertEvents(tx, b.PendingEvents()); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the batch with its items, history and tracking codes.
func (r *BatchRepository) Delete(ctx context.Context, code, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		header, err := lockBatch(tx, code, ownerID)
		if err != nil {
			return err
		}
		if err := tx.Where("batch_code = ?", code).Delete(&eventModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("batch_code = ?", code).Delete(&trackingCodeModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("batch_id = ?", header.ID).Delete(&itemModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&batchModel{}, header.ID).Error
	})
}

func lockBatch(tx *gorm.DB, code, ownerID string) (*batchModel, error) {
	var header batchModel
	q := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("tracking_code = ?", code)
	if ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}
	if err := q.First(&header).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBatchNotFound
		}
		return nil, err
	}
	return &header, nil
}

// loadBatch hydrates a header with its items, ordered by row number, and the
// status histories rebuilt from the event table. It also returns the row id
// of every item keyed by tracking code.
func loadBatch(db *gorm.DB, header *batchModel) (*domain.ShipmentBatch, map[string]uint, error) {
	var items []itemModel
	if err := db.Where("batch_id = ?", header.ID).Order("row_number").Find(&items).Error; err != nil {
		return nil, nil, err
	}
	var events []eventModel
	if err := db.Where("batch_code = ?", header.TrackingCode).Order("occurred_at, id").Find(&events).Error; err != nil {
		return nil, nil, err
	}

	b := toBatchDomain(header)
	ids := make(map[string]uint, len(items))
	byCode := make(map[string]*domain.ShipmentItem, len(items))
	for i := range items {
		it := toItemDomain(&items[i])
		ids[it.TrackingCode] = items[i].ID
		byCode[it.TrackingCode] = it
		b.Items = append(b.Items, it)
	}
	for _, e := range events {
		switch domain.EventSubject(e.Subject) {
		case domain.SubjectBatch:
			b.History = append(b.History, toStatusChange(e))
		case domain.SubjectItem:
			if it, ok := byCode[e.TrackingCode]; ok {
				it.History = append(it.History, toStatusChange(e))
			}
		}
	}
	return b, ids, nil
}

func insertEvents(tx *gorm.DB, events []domain.StatusEvent) error {
	if len(events) == 0 {
		return nil
	}
	rows := toEventModels(events)
	if err := tx.CreateInBatches(&rows, insertChunk).Error; err != nil {
		return fmt.Errorf("insert status events: %w", err)
	}
	return nil
}
