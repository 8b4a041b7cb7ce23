package sqldb

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type batchModel struct {
	ID                 uint            `gorm:"primaryKey"`
	TrackingCode       string          `gorm:"size:32;uniqueIndex;not null"`
	OwnerID            string          `gorm:"size:64;index"`
	Status             string          `gorm:"size:32;index;not null"`
	DeliverySpeed      string          `gorm:"size:16;not null"`
	PickupAddress      string          `gorm:"size:255"`
	PickupContactName  string          `gorm:"size:128"`
	PickupContactPhone string          `gorm:"size:32"`
	TotalShipments     int             `gorm:"not null;default:0"`
	ValidShipments     int             `gorm:"not null;default:0"`
	InvalidShipments   int             `gorm:"not null;default:0"`
	BaseFee            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DistanceFee        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SpeedFee           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	AddonsFee          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalFee           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaymentMethod      string          `gorm:"size:32"`
	PaymentStatus      string          `gorm:"size:16;not null"`
	PaymentReference   string          `gorm:"size:128"`
	Rejections         rejectionList   `gorm:"type:text"`
	CreatedAt          time.Time       `gorm:"index"`
	UpdatedAt          time.Time
}

func (batchModel) TableName() string { return "shipment_batches" }

type itemModel struct {
	ID              uint            `gorm:"primaryKey"`
	BatchID         uint            `gorm:"index;not null"`
	TrackingCode    string          `gorm:"size:32;uniqueIndex;not null"`
	RowNumber       int             `gorm:"not null"`
	ReceiverName    string          `gorm:"size:128"`
	PhoneNumber     string          `gorm:"size:32"`
	DeliveryAddress string          `gorm:"size:255"`
	PostalCode      string          `gorm:"size:16"`
	WeightClass     string          `gorm:"size:16"`
	Valid           bool            `gorm:"not null;default:false"`
	RejectionCode   string          `gorm:"size:32"`
	RejectionReason string          `gorm:"type:text"`
	DistanceKm      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	BaseFee         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DistanceFee     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SpeedFee        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	AddonsFee       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalFee        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Status          string          `gorm:"size:32;index;not null"`
	Raw             rawRow          `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (itemModel) TableName() string { return "shipment_items" }

type shipmentModel struct {
	ID                 uint            `gorm:"primaryKey"`
	TrackingCode       string          `gorm:"size:32;uniqueIndex;not null"`
	OwnerID            string          `gorm:"size:64;index"`
	PickupAddress      string          `gorm:"size:255"`
	PickupContactName  string          `gorm:"size:128"`
	PickupContactPhone string          `gorm:"size:32"`
	ReceiverName       string          `gorm:"size:128"`
	ReceiverPhone      string          `gorm:"size:32"`
	DeliveryAddress    string          `gorm:"size:255"`
	PostalCode         string          `gorm:"size:16"`
	WeightClass        string          `gorm:"size:16"`
	DeliverySpeed      string          `gorm:"size:16"`
	Addons             stringList      `gorm:"type:text"`
	DistanceKm         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	BaseFee            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DistanceFee        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SpeedFee           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	AddonsFee          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalFee           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Status             string          `gorm:"size:32;index;not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (shipmentModel) TableName() string { return "shipments" }

// eventModel is the status history of every record and the outbox of
// committed status events.
type eventModel struct {
	ID           uint      `gorm:"primaryKey"`
	Subject      string    `gorm:"size:16;not null"`
	TrackingCode string    `gorm:"size:32;index;not null"`
	BatchCode    string    `gorm:"size:32;index"`
	FromStatus   string    `gorm:"size:32"`
	ToStatus     string    `gorm:"size:32;not null"`
	Notes        string    `gorm:"type:text"`
	Actor        string    `gorm:"size:64"`
	OccurredAt   time.Time `gorm:"not null"`
}

func (eventModel) TableName() string { return "status_events" }

// trackingCodeModel resolves a parcel code to its owner in one lookup.
type trackingCodeModel struct {
	Code      string `gorm:"primaryKey;size:32"`
	Kind      string `gorm:"size:16;not null"`
	BatchCode string `gorm:"size:32;index"`
	CreatedAt time.Time
}

func (trackingCodeModel) TableName() string { return "tracking_codes" }

// ── JSON column types ─────────────────────────────────────────────────────────

type rejection struct {
	Row    int               `json:"row"`
	Code   string            `json:"code"`
	Reason string            `json:"reason"`
	Data   map[string]string `json:"data"`
}

type rejectionList []rejection

func (l rejectionList) Value() (driver.Value, error) { return jsonValue(l) }
func (l *rejectionList) Scan(value interface{}) error { return jsonScan(value, l) }

type rawRow map[string]string

func (r rawRow) Value() (driver.Value, error) { return jsonValue(r) }
func (r *rawRow) Scan(value interface{}) error { return jsonScan(value, r) }

type stringList []string

func (s stringList) Value() (driver.Value, error) { return jsonValue(s) }
func (s *stringList) Scan(value interface{}) error { return jsonScan(value, s) }

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(value interface{}, dst interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported JSON column type %T", value)
	}
}
