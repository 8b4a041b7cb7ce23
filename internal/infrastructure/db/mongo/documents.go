package mongo

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
)

// Money amounts are stored as Decimal128 so aggregations stay exact.

type feesDoc struct {
	BaseFee     primitive.Decimal128 `bson:"base_fee"`
	DistanceFee primitive.Decimal128 `bson:"distance_fee"`
	SpeedFee    primitive.Decimal128 `bson:"speed_fee"`
	AddonsFee   primitive.Decimal128 `bson:"addons_fee"`
	TotalFee    primitive.Decimal128 `bson:"total_fee"`
}

type historyDoc struct {
	Status    string    `bson:"status"`
	Notes     string    `bson:"notes"`
	Actor     string    `bson:"actor"`
	Timestamp time.Time `bson:"timestamp"`
}

type pickupDoc struct {
	Address      string `bson:"address"`
	ContactName  string `bson:"contact_name,omitempty"`
	ContactPhone string `bson:"contact_phone,omitempty"`
}

type rejectionDoc struct {
	Row    int               `bson:"row"`
	Code   string            `bson:"code"`
	Reason string            `bson:"reason"`
	Data   map[string]string `bson:"data"`
}

type itemDoc struct {
	TrackingCode    string               `bson:"tracking_code"`
	RowNumber       int                  `bson:"row_number"`
	ReceiverName    string               `bson:"receiver_name"`
	PhoneNumber     string               `bson:"phone_number"`
	DeliveryAddress string               `bson:"delivery_address"`
	PostalCode      string               `bson:"postal_code"`
	WeightClass     string               `bson:"weight_class"`
	Valid           bool                 `bson:"valid"`
	RejectionCode   string               `bson:"rejection_code,omitempty"`
	RejectionReason string               `bson:"rejection_reason,omitempty"`
	DistanceKm      primitive.Decimal128 `bson:"distance_km"`
	Fees            feesDoc              `bson:"fees"`
	Status          string               `bson:"status"`
	History         []historyDoc         `bson:"status_history"`
	Raw             map[string]string    `bson:"raw"`
	CreatedAt       time.Time            `bson:"created_at"`
	UpdatedAt       time.Time            `bson:"updated_at"`
}

type batchDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	TrackingCode     string             `bson:"tracking_code"`
	OwnerID          string             `bson:"owner_id"`
	Status           string             `bson:"status"`
	DeliverySpeed    string             `bson:"delivery_speed"`
	Pickup           pickupDoc          `bson:"pickup"`
	TotalShipments   int                `bson:"total_shipments"`
	ValidShipments   int                `bson:"valid_shipments"`
	InvalidShipments int                `bson:"invalid_shipments"`
	Totals           feesDoc            `bson:"totals"`
	PaymentMethod    string             `bson:"payment_method,omitempty"`
	PaymentStatus    string             `bson:"payment_status"`
	PaymentReference string             `bson:"payment_reference,omitempty"`
	Rejections       []rejectionDoc     `bson:"rejections"`
	Items            []itemDoc          `bson:"items"`
	History          []historyDoc       `bson:"status_history"`
	Version          int64              `bson:"version"`
	CreatedAt        time.Time          `bson:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at"`
}

type shipmentDoc struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty"`
	TrackingCode    string               `bson:"tracking_code"`
	OwnerID         string               `bson:"owner_id"`
	Pickup          pickupDoc            `bson:"pickup"`
	ReceiverName    string               `bson:"receiver_name"`
	ReceiverPhone   string               `bson:"receiver_phone"`
	DeliveryAddress string               `bson:"delivery_address"`
	PostalCode      string               `bson:"postal_code"`
	WeightClass     string               `bson:"weight_class"`
	DeliverySpeed   string               `bson:"delivery_speed"`
	Addons          []string             `bson:"addons"`
	DistanceKm      primitive.Decimal128 `bson:"distance_km"`
	Fees            feesDoc              `bson:"fees"`
	Status          string               `bson:"status"`
	History         []historyDoc         `bson:"status_history"`
	Version         int64                `bson:"version"`
	CreatedAt       time.Time            `bson:"created_at"`
	UpdatedAt       time.Time            `bson:"updated_at"`
}

// eventDoc is the audit copy of a committed status event.
type eventDoc struct {
	Subject      string    `bson:"subject"`
	TrackingCode string    `bson:"tracking_code"`
	BatchCode    string    `bson:"batch_code,omitempty"`
	From         string    `bson:"from,omitempty"`
	To           string    `bson:"to"`
	Notes        string    `bson:"notes"`
	Actor        string    `bson:"actor"`
	OccurredAt   time.Time `bson:"occurred_at"`
}

func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func toFeesDoc(f domain.FeeBreakdown) feesDoc {
	return feesDoc{
		BaseFee:     toDecimal128(f.BaseFee),
		DistanceFee: toDecimal128(f.DistanceFee),
		SpeedFee:    toDecimal128(f.SpeedFee),
		AddonsFee:   toDecimal128(f.AddonsFee),
		TotalFee:    toDecimal128(f.TotalFee),
	}
}

func (f feesDoc) toDomain() domain.FeeBreakdown {
	return domain.FeeBreakdown{
		BaseFee:     fromDecimal128(f.BaseFee),
		DistanceFee: fromDecimal128(f.DistanceFee),
		SpeedFee:    fromDecimal128(f.SpeedFee),
		AddonsFee:   fromDecimal128(f.AddonsFee),
		TotalFee:    fromDecimal128(f.TotalFee),
	}
}

func toHistoryDocs(in []domain.StatusChange) []historyDoc {
	out := make([]historyDoc, 0, len(in))
	for _, h := range in {
		out = append(out, historyDoc{Status: h.Status, Notes: h.Notes, Actor: h.Actor, Timestamp: h.Timestamp.UTC()})
	}
	return out
}

func fromHistoryDocs(in []historyDoc) []domain.StatusChange {
	out := make([]domain.StatusChange, 0, len(in))
	for _, h := range in {
		out = append(out, domain.StatusChange{Status: h.Status, Notes: h.Notes, Actor: h.Actor, Timestamp: h.Timestamp})
	}
	return out
}

func toBatchDoc(b *domain.ShipmentBatch) *batchDoc {
	d := &batchDoc{
		TrackingCode:     b.TrackingCode,
		OwnerID:          b.OwnerID,
		Status:           string(b.Status),
		DeliverySpeed:    b.DeliverySpeed,
		Pickup:           pickupDoc(b.Pickup),
		TotalShipments:   b.TotalShipments,
		ValidShipments:   b.ValidShipments,
		InvalidShipments: b.InvalidShipments,
		Totals:           toFeesDoc(b.Totals),
		PaymentMethod:    b.PaymentMethod,
		PaymentStatus:    b.PaymentStatus,
		PaymentReference: b.PaymentReference,
		Rejections:       make([]rejectionDoc, 0, len(b.Rejections)),
		Items:            make([]itemDoc, 0, len(b.Items)),
		History:          toHistoryDocs(b.History),
		CreatedAt:        b.CreatedAt.UTC(),
		UpdatedAt:        b.UpdatedAt.UTC(),
	}
	for _, r := range b.Rejections {
		d.Rejections = append(d.Rejections, rejectionDoc{Row: r.Row, Code: r.Code, Reason: r.Reason, Data: r.Data})
	}
	for _, it := range b.Items {
		d.Items = append(d.Items, itemDoc{
			TrackingCode:    it.TrackingCode,
			RowNumber:       it.RowNumber,
			ReceiverName:    it.ReceiverName,
			PhoneNumber:     it.PhoneNumber,
			DeliveryAddress: it.DeliveryAddress,
			PostalCode:      it.PostalCode,
			WeightClass:     string(it.WeightClass),
			Valid:           it.Valid,
			RejectionCode:   it.RejectionCode,
			RejectionReason: it.RejectionReason,
			DistanceKm:      toDecimal128(it.DistanceKm),
			Fees:            toFeesDoc(it.Fees),
			Status:          string(it.Status),
			History:         toHistoryDocs(it.History),
			Raw:             it.Raw,
			CreatedAt:       it.CreatedAt.UTC(),
			UpdatedAt:       it.UpdatedAt.UTC(),
		})
	}
	return d
}

func (d *batchDoc) toDomain() *domain.ShipmentBatch {
	b := &domain.ShipmentBatch{
		TrackingCode:     d.TrackingCode,
		OwnerID:          d.OwnerID,
		Status:           domain.BatchStatus(d.Status),
		DeliverySpeed:    d.DeliverySpeed,
		Pickup:           domain.PickupDetails(d.Pickup),
		TotalShipments:   d.TotalShipments,
		ValidShipments:   d.ValidShipments,
		InvalidShipments: d.InvalidShipments,
		Totals:           d.Totals.toDomain(),
		PaymentMethod:    d.PaymentMethod,
		PaymentStatus:    d.PaymentStatus,
		PaymentReference: d.PaymentReference,
		History:          fromHistoryDocs(d.History),
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
	for _, r := range d.Rejections {
		b.Rejections = append(b.Rejections, domain.RowRejection{Row: r.Row, Code: r.Code, Reason: r.Reason, Data: r.Data})
	}
	for i := range d.Items {
		b.Items = append(b.Items, d.Items[i].toDomain())
	}
	return b
}

func (d *itemDoc) toDomain() *domain.ShipmentItem {
	return &domain.ShipmentItem{
		TrackingCode:    d.TrackingCode,
		RowNumber:       d.RowNumber,
		ReceiverName:    d.ReceiverName,
		PhoneNumber:     d.PhoneNumber,
		DeliveryAddress: d.DeliveryAddress,
		PostalCode:      d.PostalCode,
		WeightClass:     domain.WeightClass(d.WeightClass),
		Valid:           d.Valid,
		RejectionCode:   d.RejectionCode,
		RejectionReason: d.RejectionReason,
		DistanceKm:      fromDecimal128(d.DistanceKm),
		Fees:            d.Fees.toDomain(),
		Status:          domain.ItemStatus(d.Status),
		History:         fromHistoryDocs(d.History),
		Raw:             d.Raw,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func toShipmentDoc(s *domain.Shipment) *shipmentDoc {
	return &shipmentDoc{
		TrackingCode:    s.TrackingCode,
		OwnerID:         s.OwnerID,
		Pickup:          pickupDoc(s.Pickup),
		ReceiverName:    s.ReceiverName,
		ReceiverPhone:   s.ReceiverPhone,
		DeliveryAddress: s.DeliveryAddress,
		PostalCode:      s.PostalCode,
		WeightClass:     string(s.WeightClass),
		DeliverySpeed:   s.DeliverySpeed,
		Addons:          s.Addons,
		DistanceKm:      toDecimal128(s.DistanceKm),
		Fees:            toFeesDoc(s.Fees),
		Status:          string(s.Status),
		History:         toHistoryDocs(s.History),
		CreatedAt:       s.CreatedAt.UTC(),
		UpdatedAt:       s.UpdatedAt.UTC(),
	}
}

func (d *shipmentDoc) toDomain() *domain.Shipment {
	return &domain.Shipment{
		TrackingCode:    d.TrackingCode,
		OwnerID:         d.OwnerID,
		Pickup:          domain.PickupDetails(d.Pickup),
		ReceiverName:    d.ReceiverName,
		ReceiverPhone:   d.ReceiverPhone,
		DeliveryAddress: d.DeliveryAddress,
		PostalCode:      d.PostalCode,
		WeightClass:     domain.WeightClass(d.WeightClass),
		DeliverySpeed:   d.DeliverySpeed,
		Addons:          d.Addons,
		DistanceKm:      fromDecimal128(d.DistanceKm),
		Fees:            d.Fees.toDomain(),
		Status:          domain.ItemStatus(d.Status),
		History:         fromHistoryDocs(d.History),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func toEventDocs(events []domain.StatusEvent) []interface{} {
	out := make([]interface{}, 0, len(events))
	for _, e := range events {
		out = append(out, eventDoc{
			Subject:      string(e.Subject),
			TrackingCode: e.TrackingCode,
			BatchCode:    e.BatchCode,
			From:         e.From,
			To:           e.To,
			Notes:        e.Notes,
			Actor:        e.Actor,
			OccurredAt:   e.OccurredAt.UTC(),
		})
	}
	return out
}
