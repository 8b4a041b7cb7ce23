package domain

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

const (
	BatchCodePrefix  = "BULK-"
	ParcelCodePrefix = "99M-"
)

// NewBatchCode returns a batch tracking code in the format BULK-XXXXXXXXXXXX.
func NewBatchCode() string {
	return BatchCodePrefix + hexToken(12)
}

// NewParcelCode returns an item or shipment tracking code in the format 99M-XXXXXXXXXX.
func NewParcelCode() string {
	return ParcelCodePrefix + hexToken(10)
}

func hexToken(n int) string {
	id := uuid.New()
	return strings.ToUpper(hex.EncodeToString(id[:]))[:n]
}

// ParcelKind tags which record a parcel tracking code belongs to.
type ParcelKind string

const (
	KindSingleShipment ParcelKind = "single_shipment"
	KindBatchItem      ParcelKind = "batch_item"
)

// TrackingRef is the resolved owner of a parcel tracking code.
type TrackingRef struct {
	Code      string
	Kind      ParcelKind
	BatchCode string // set for batch items
}

// TrackedParcel is the tagged variant returned by a tracking lookup. Exactly
// one of Shipment or Item is set, according to Kind.
type TrackedParcel struct {
	Kind     ParcelKind
	Shipment *Shipment
	Batch    *ShipmentBatch
	Item     *ShipmentItem
}

func (p *TrackedParcel) TrackingCode() string {
	if p.Kind == KindBatchItem {
		return p.Item.TrackingCode
	}
	return p.Shipment.TrackingCode
}

func (p *TrackedParcel) Status() ItemStatus {
	if p.Kind == KindBatchItem {
		return p.Item.Status
	}
	return p.Shipment.Status
}

func (p *TrackedParcel) OwnerID() string {
	if p.Kind == KindBatchItem {
		return p.Batch.OwnerID
	}
	return p.Shipment.OwnerID
}
