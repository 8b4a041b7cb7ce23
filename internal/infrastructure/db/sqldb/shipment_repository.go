package sqldb

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
)

type ShipmentRepository struct {
	db *gorm.DB
}

func NewShipmentRepository(db *gorm.DB) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

var _ ports.ShipmentRepository = (*ShipmentRepository)(nil)

// Create inserts the shipment, its tracking code and its initial events.
func (r *ShipmentRepository) Create(ctx context.Context, s *domain.Shipment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(toShipmentModel(s)).Error; err != nil {
			return fmt.Errorf("insert shipment: %w", err)
		}
		code := trackingCodeModel{Code: s.TrackingCode, Kind: string(domain.KindSingleShipment), CreatedAt: s.CreatedAt}
		if err := tx.Create(&code).Error; err != nil {
			return fmt.Errorf("insert tracking code: %w", err)
		}
		return insertEvents(tx, s.PendingEvents())
	})
}

// FindByTrackingCode loads a shipment with its status history.
func (r *ShipmentRepository) FindByTrackingCode(ctx context.Context, code, ownerID string) (*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	db := r.db.WithContext(ctx)

	var m shipmentModel
	q := db.Where("tracking_code = ?", code)
	if ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}
	if err := q.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, err
	}
	return loadShipment(db, &m)
}

// Update locks the shipment row while fn runs.
func (r *ShipmentRepository) Update(ctx context.Context, code string, fn func(s *domain.Shipment) error) (*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var out *domain.Shipment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m shipmentModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("tracking_code = ?", code).First(&m).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrShipmentNotFound
			}
			return err
		}
		s, err := loadShipment(tx, &m)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		err = tx.Model(&shipmentModel{}).Where("id = ?", m.ID).
			Updates(map[string]interface{}{"status": string(s.Status), "updated_at": s.UpdatedAt}).Error
		if err != nil {
			return fmt.Errorf("update shipment: %w", err)
		}
		if err := insertEvents(tx, s.PendingEvents()); err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func loadShipment(db *gorm.DB, m *shipmentModel) (*domain.Shipment, error) {
	var events []eventModel
	err := db.Where("tracking_code = ? AND subject = ?", m.TrackingCode, string(domain.SubjectShipment)).
		Order("occurred_at, id").Find(&events).Error
	if err != nil {
		return nil, err
	}
	s := toShipmentDomain(m)
	for _, e := range events {
		s.History = append(s.History, toStatusChange(e))
	}
	return s, nil
}
