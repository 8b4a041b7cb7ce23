package sqldb

import (
	"github.com/99minutos/bulk-shipping/internal/core/domain"
)

func toBatchModel(b *domain.ShipmentBatch) *batchModel {
	return &batchModel{
		TrackingCode:       b.TrackingCode,
		OwnerID:            b.OwnerID,
		Status:             string(b.Status),
		DeliverySpeed:      b.DeliverySpeed,
		PickupAddress:      b.Pickup.Address,
		PickupContactName:  b.Pickup.ContactName,
		PickupContactPhone: b.Pickup.ContactPhone,
		TotalShipments:     b.TotalShipments,
		ValidShipments:     b.ValidShipments,
		InvalidShipments:   b.InvalidShipments,
		BaseFee:            b.Totals.BaseFee,
		DistanceFee:        b.Totals.DistanceFee,
		SpeedFee:           b.Totals.SpeedFee,
		AddonsFee:          b.Totals.AddonsFee,
		TotalFee:           b.Totals.TotalFee,
		PaymentMethod:      b.PaymentMethod,
		PaymentStatus:      b.PaymentStatus,
		PaymentReference:   b.PaymentReference,
		Rejections:         toRejectionList(b.Rejections),
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

// batchColumns is the mutable part of a batch row.
func batchColumns(b *domain.ShipmentBatch) map[string]interface{} {
	return map[string]interface{}{
		"status":            string(b.Status),
		"total_shipments":   b.TotalShipments,
		"valid_shipments":   b.ValidShipments,
		"invalid_shipments": b.InvalidShipments,
		"base_fee":          b.Totals.BaseFee,
		"distance_fee":      b.Totals.DistanceFee,
		"speed_fee":         b.Totals.SpeedFee,
		"addons_fee":        b.Totals.AddonsFee,
		"total_fee":         b.Totals.TotalFee,
		"payment_method":    b.PaymentMethod,
		"payment_status":    b.PaymentStatus,
		"payment_reference": b.PaymentReference,
		"rejections":        toRejectionList(b.Rejections),
		"updated_at":        b.UpdatedAt,
	}
}

func toBatchDomain(m *batchModel) *domain.ShipmentBatch {
	b := &domain.ShipmentBatch{
		TrackingCode:  m.TrackingCode,
		OwnerID:       m.OwnerID,
		Status:        domain.BatchStatus(m.Status),
		DeliverySpeed: m.DeliverySpeed,
		Pickup: domain.PickupDetails{
			Address:      m.PickupAddress,
			ContactName:  m.PickupContactName,
			ContactPhone: m.PickupContactPhone,
		},
		TotalShipments:   m.TotalShipments,
		ValidShipments:   m.ValidShipments,
		InvalidShipments: m.InvalidShipments,
		Totals: domain.FeeBreakdown{
			BaseFee:     m.BaseFee,
			DistanceFee: m.DistanceFee,
			SpeedFee:    m.SpeedFee,
			AddonsFee:   m.AddonsFee,
			TotalFee:    m.TotalFee,
		},
		PaymentMethod:    m.PaymentMethod,
		PaymentStatus:    m.PaymentStatus,
		PaymentReference: m.PaymentReference,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	for _, r := range m.Rejections {
		b.Rejections = append(b.Rejections, domain.RowRejection{
			Row: r.Row, Code: r.Code, Reason: r.Reason, Data: domain.RawRow(r.Data),
		})
	}
	return b
}

func toRejectionList(in []domain.RowRejection) rejectionList {
	out := make(rejectionList, 0, len(in))
	for _, r := range in {
		out = append(out, rejection{Row: r.Row, Code: r.Code, Reason: r.Reason, Data: r.Data})
	}
	return out
}

func toItemModel(batchID uint, it *domain.ShipmentItem) itemModel {
	return itemModel{
		BatchID:         batchID,
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
		DistanceKm:      it.DistanceKm,
		BaseFee:         it.Fees.BaseFee,
		DistanceFee:     it.Fees.DistanceFee,
		SpeedFee:        it.Fees.SpeedFee,
		AddonsFee:       it.Fees.AddonsFee,
		TotalFee:        it.Fees.TotalFee,
		Status:          string(it.Status),
		Raw:             rawRow(it.Raw),
		CreatedAt:       it.CreatedAt,
		UpdatedAt:       it.UpdatedAt,
	}
}

func toItemDomain(m *itemModel) *domain.ShipmentItem {
	return &domain.ShipmentItem{
		TrackingCode:    m.TrackingCode,
		RowNumber:       m.RowNumber,
		ReceiverName:    m.ReceiverName,
		PhoneNumber:     m.PhoneNumber,
		DeliveryAddress: m.DeliveryAddress,
		PostalCode:      m.PostalCode,
		WeightClass:     domain.WeightClass(m.WeightClass),
		Valid:           m.Valid,
		RejectionCode:   m.RejectionCode,
		RejectionReason: m.RejectionReason,
		DistanceKm:      m.DistanceKm,
		Fees: domain.FeeBreakdown{
			BaseFee:     m.BaseFee,
			DistanceFee: m.DistanceFee,
			SpeedFee:    m.SpeedFee,
			AddonsFee:   m.AddonsFee,
			TotalFee:    m.TotalFee,
		},
		Status:    domain.ItemStatus(m.Status),
		Raw:       domain.RawRow(m.Raw),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toShipmentModel(s *domain.Shipment) *shipmentModel {
	return &shipmentModel{
		TrackingCode:       s.TrackingCode,
		OwnerID:            s.OwnerID,
		PickupAddress:      s.Pickup.Address,
		PickupContactName:  s.Pickup.ContactName,
		PickupContactPhone: s.Pickup.ContactPhone,
		ReceiverName:       s.ReceiverName,
		ReceiverPhone:      s.ReceiverPhone,
		DeliveryAddress:    s.DeliveryAddress,
		PostalCode:         s.PostalCode,
		WeightClass:        string(s.WeightClass),
		DeliverySpeed:      s.DeliverySpeed,
		Addons:             stringList(s.Addons),
		DistanceKm:         s.DistanceKm,
		BaseFee:            s.Fees.BaseFee,
		DistanceFee:        s.Fees.DistanceFee,
		SpeedFee:           s.Fees.SpeedFee,
		AddonsFee:          s.Fees.AddonsFee,
		TotalFee:           s.Fees.TotalFee,
		Status:             string(s.Status),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func toShipmentDomain(m *shipmentModel) *domain.Shipment {
	return &domain.Shipment{
		TrackingCode: m.TrackingCode,
		OwnerID:      m.OwnerID,
		Pickup: domain.PickupDetails{
			Address:      m.PickupAddress,
			ContactName:  m.PickupContactName,
			ContactPhone: m.PickupContactPhone,
		},
		ReceiverName:    m.ReceiverName,
		ReceiverPhone:   m.ReceiverPhone,
		DeliveryAddress: m.DeliveryAddress,
		PostalCode:      m.PostalCode,
		WeightClass:     domain.WeightClass(m.WeightClass),
		DeliverySpeed:   m.DeliverySpeed,
		Addons:          []string(m.Addons),
		DistanceKm:      m.DistanceKm,
		Fees: domain.FeeBreakdown{
			BaseFee:     m.BaseFee,
			DistanceFee: m.DistanceFee,
			SpeedFee:    m.SpeedFee,
			AddonsFee:   m.AddonsFee,
			TotalFee:    m.TotalFee,
		},
		Status:    domain.ItemStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toEventModels(events []domain.StatusEvent) []eventModel {
	out := make([]eventModel, 0, len(events))
	for _, e := range events {
		out = append(out, eventModel{
			Subject:      string(e.Subject),
			TrackingCode: e.TrackingCode,
			BatchCode:    e.BatchCode,
			FromStatus:   e.From,
			ToStatus:     e.To,
			Notes:        e.Notes,
			Actor:        e.Actor,
			OccurredAt:   e.OccurredAt,
		})
	}
	return out
}

func toStatusChange(m eventModel) domain.StatusChange {
	return domain.StatusChange{Status: m.ToStatus, Notes: m.Notes, Actor: m.Actor, Timestamp: m.OccurredAt}
}
