package handler

import (
	"github.com/99minutos/bulk-shipping/internal/core/domain"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
	"github.com/99minutos/bulk-shipping/internal/core/pricing"
)

func toQuoteInput(r quoteRequest) ports.QuoteInput {
	return ports.QuoteInput{
		PickupAddress:   r.PickupAddress,
		DeliveryAddress: r.DeliveryAddress,
		WeightClass:     r.WeightClass,
		DeliverySpeed:   r.DeliverySpeed,
		Addons:          r.Addons,
	}
}

func toQuoteResponse(q *ports.QuoteResult) quoteResponse {
	addons := make([]string, 0, len(q.Addons))
	for _, a := range q.Addons {
		addons = append(addons, string(a))
	}
	return quoteResponse{
		PickupAddress:     q.PickupAddress,
		DeliveryAddress:   q.DeliveryAddress,
		WeightClass:       string(q.WeightClass),
		DeliverySpeed:     string(q.DeliverySpeed),
		DistanceKm:        q.DistanceKm.StringFixed(2),
		Addons:            addons,
		Fees:              toFeesResponse(q.Fees),
		Currency:          q.Currency,
		EstimatedDelivery: q.EstimatedDelivery,
	}
}

func toShipmentResponse(s *domain.Shipment) shipmentResponse {
	addons := s.Addons
	if addons == nil {
		addons = []string{}
	}
	return shipmentResponse{
		TrackingCode:    s.TrackingCode,
		Status:          string(s.Status),
		Pickup:          toPickupResponse(s.Pickup),
		ReceiverName:    s.ReceiverName,
		ReceiverPhone:   s.ReceiverPhone,
		DeliveryAddress: s.DeliveryAddress,
		PostalCode:      s.PostalCode,
		WeightClass:     string(s.WeightClass),
		DeliverySpeed:   s.DeliverySpeed,
		Addons:          addons,
		DistanceKm:      s.DistanceKm.StringFixed(2),
		Fees:            toFeesResponse(s.Fees),
		StatusHistory:   toHistoryResponse(s.History),
		CreatedAt:       s.CreatedAt,
		Links: links{
			Self:     "/v1/shipments/" + s.TrackingCode,
			Tracking: "/v1/tracking/" + s.TrackingCode,
		},
	}
}

func toPricingResponse(info pricing.Info) pricingResponse {
	resp := pricingResponse{
		Currency:        info.Currency,
		WeightClasses:   make([]string, 0, len(info.WeightClasses)),
		BaseFees:        make(map[string]map[string]string, len(info.BaseFees)),
		FreeDistanceKm:  info.FreeDistanceKm.String(),
		PerKmRate:       info.PerKmRate.StringFixed(2),
		SpeedFees:       make(map[string]string, len(info.SpeedFees)),
		AddonFees:       make(map[string]string, len(info.AddonFees)),
		DeliveryWindows: make(map[string]string, len(info.DeliveryWindows)),
	}
	for _, w := range info.WeightClasses {
		resp.WeightClasses = append(resp.WeightClasses, string(w))
	}
	for mode, fees := range info.BaseFees {
		resp.BaseFees[string(mode)] = map[string]string{
			"small":  fees.Small.StringFixed(2),
			"medium": fees.Medium.StringFixed(2),
			"large":  fees.Large.StringFixed(2),
		}
	}
	for tier, fee := range info.SpeedFees {
		resp.SpeedFees[string(tier)] = fee.StringFixed(2)
	}
	for addon, fee := range info.AddonFees {
		resp.AddonFees[string(addon)] = fee.StringFixed(2)
	}
	for tier, window := range info.DeliveryWindows {
		resp.DeliveryWindows[string(tier)] = window
	}
	return resp
}
