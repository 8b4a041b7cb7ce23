package handler

import (
	"github.com/99minutos/bulk-shipping/internal/core/domain"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
)

func toFeesResponse(f domain.FeeBreakdown) feesResponse {
	return feesResponse{
		BaseFee:     f.BaseFee.StringFixed(2),
		DistanceFee: f.DistanceFee.StringFixed(2),
		SpeedFee:    f.SpeedFee.StringFixed(2),
		AddonsFee:   f.AddonsFee.StringFixed(2),
		TotalFee:    f.TotalFee.StringFixed(2),
	}
}

func toHistoryResponse(in []domain.StatusChange) []statusHistoryItemResponse {
	out := make([]statusHistoryItemResponse, 0, len(in))
	for _, h := range in {
		out = append(out, statusHistoryItemResponse{Status: h.Status, Notes: h.Notes, Actor: h.Actor, Timestamp: h.Timestamp})
	}
	return out
}

func toPickupResponse(p domain.PickupDetails) pickupResponse {
	return pickupResponse{Address: p.Address, ContactName: p.ContactName, ContactPhone: p.ContactPhone}
}

func toBatchSummaryResponse(b *domain.ShipmentBatch) batchSummaryResponse {
	return batchSummaryResponse{
		TrackingCode:     b.TrackingCode,
		Status:           string(b.Status),
		DeliverySpeed:    b.DeliverySpeed,
		Pickup:           toPickupResponse(b.Pickup),
		TotalShipments:   b.TotalShipments,
		ValidShipments:   b.ValidShipments,
		InvalidShipments: b.InvalidShipments,
		Totals:           toFeesResponse(b.Totals),
		Payment: paymentInfoResponse{
			Method:    b.PaymentMethod,
			Status:    b.PaymentStatus,
			Reference: b.PaymentReference,
		},
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
		Links: links{
			Self:    "/v1/batches/" + b.TrackingCode,
			Payment: "/v1/batches/" + b.TrackingCode + "/payment",
		},
	}
}

func toBatchResponse(b *domain.ShipmentBatch) batchResponse {
	resp := batchResponse{
		batchSummaryResponse: toBatchSummaryResponse(b),
		Rejections:           make([]rejectionResponse, 0, len(b.Rejections)),
		Items:                make([]batchItemResponse, 0, len(b.Items)),
		StatusHistory:        toHistoryResponse(b.History),
	}
	for _, r := range b.Rejections {
		resp.Rejections = append(resp.Rejections, rejectionResponse{Row: r.Row, Code: r.Code, Reason: r.Reason, Data: r.Data})
	}
	for _, it := range b.Items {
		resp.Items = append(resp.Items, toBatchItemResponse(it))
	}
	return resp
}

func toBatchItemResponse(it *domain.ShipmentItem) batchItemResponse {
	return batchItemResponse{
		TrackingCode:    it.TrackingCode,
		RowNumber:       it.RowNumber,
		ReceiverName:    it.ReceiverName,
		PhoneNumber:     it.PhoneNumber,
		DeliveryAddress: it.DeliveryAddress,
		PostalCode:      it.PostalCode,
		WeightClass:     string(it.WeightClass),
		Valid:           it.Valid,
		RejectionReason: it.RejectionReason,
		DistanceKm:      it.DistanceKm.StringFixed(2),
		Fees:            toFeesResponse(it.Fees),
		Status:          string(it.Status),
		StatusHistory:   toHistoryResponse(it.History),
	}
}

func toListBatchesResponse(res *ports.ListBatchesResult) listBatchesResponse {
	out := listBatchesResponse{
		Items:      make([]batchSummaryResponse, 0, len(res.Items)),
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
	}
	for _, b := range res.Items {
		out.Items = append(out.Items, toBatchSummaryResponse(b))
	}
	return out
}
