package sqldb

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
)

// TrackingIndex resolves parcel codes through the tracking_codes table, which
// is written in the same transaction as the record it points to.
type TrackingIndex struct {
	db *gorm.DB
}

func NewTrackingIndex(db *gorm.DB) *TrackingIndex {
	return &TrackingIndex{db: db}
}

var _ ports.TrackingIndex = (*TrackingIndex)(nil)

func (x *TrackingIndex) Resolve(ctx context.Context, code string) (domain.TrackingRef, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m trackingCodeModel
	if err := x.db.WithContext(ctx).Where("code = ?", code).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.TrackingRef{}, domain.ErrTrackingCodeNotFound
		}
		return domain.TrackingRef{}, err
	}
	return domain.TrackingRef{Code: m.Code, Kind: domain.ParcelKind(m.Kind), BatchCode: m.BatchCode}, nil
}
