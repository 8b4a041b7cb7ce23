package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
)

// TrackingHandler serves parcel lookups for both single shipments and batch items.
type TrackingHandler struct {
	service ports.TrackingService
}

func NewTrackingHandler(service ports.TrackingService) *TrackingHandler {
	return &TrackingHandler{service: service}
}

type updateTrackingStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type trackingResponse struct {
	TrackingCode    string                      `json:"tracking_code"`
	Kind            string                      `json:"kind"`
	BatchCode       string                      `json:"batch_code,omitempty"`
	Status          string                      `json:"status"`
	ReceiverName    string                      `json:"receiver_name"`
	DeliveryAddress string                      `json:"delivery_address"`
	WeightClass     string                      `json:"weight_class"`
	DeliverySpeed   string                      `json:"delivery_speed"`
	Pickup          pickupResponse              `json:"pickup"`
	Fees            feesResponse                `json:"fees"`
	StatusHistory   []statusHistoryItemResponse `json:"status_history"`
	UpdatedAt       time.Time                   `json:"updated_at"`
	Links           links                       `json:"_links"`
}

func toTrackingResponse(p *domain.TrackedParcel) trackingResponse {
	if p.Kind == domain.KindBatchItem {
		it, b := p.Item, p.Batch
		return trackingResponse{
			TrackingCode:    it.TrackingCode,
			Kind:            string(p.Kind),
			BatchCode:       b.TrackingCode,
			Status:          string(it.Status),
			ReceiverName:    it.ReceiverName,
			DeliveryAddress: it.DeliveryAddress,
			WeightClass:     string(it.WeightClass),
			DeliverySpeed:   b.DeliverySpeed,
			Pickup:          toPickupResponse(b.Pickup),
			Fees:            toFeesResponse(it.Fees),
			StatusHistory:   toHistoryResponse(it.History),
			UpdatedAt:       it.UpdatedAt,
			Links:           links{Self: "/v1/tracking/" + it.TrackingCode, Tracking: "/v1/batches/" + b.TrackingCode},
		}
	}
	s := p.Shipment
	return trackingResponse{
		TrackingCode:    s.TrackingCode,
		Kind:            string(p.Kind),
		Status:          string(s.Status),
		ReceiverName:    s.ReceiverName,
		DeliveryAddress: s.DeliveryAddress,
		WeightClass:     string(s.WeightClass),
		DeliverySpeed:   s.DeliverySpeed,
		Pickup:          toPickupResponse(s.Pickup),
		Fees:            toFeesResponse(s.Fees),
		StatusHistory:   toHistoryResponse(s.History),
		UpdatedAt:       s.UpdatedAt,
		Links:           links{Self: "/v1/tracking/" + s.TrackingCode, Tracking: "/v1/shipments/" + s.TrackingCode},
	}
}

// Lookup handles GET /v1/tracking/:code.
//
// @Summary      Track a parcel
// @Description  Resolves single shipments and batch items through the same code space.
// @Tags         tracking
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string  true  "Parcel tracking code (e.g. 99M-1A2B3C4D5E)"
// @Success      200   {object}  trackingResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/tracking/{code} [get]
func (h *TrackingHandler) Lookup(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	parcel, err := h.service.Lookup(c.Request().Context(), p, c.Param("code"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTrackingResponse(parcel))
}

// UpdateStatus handles PATCH /v1/tracking/:code/status.
//
// @Summary      Move one parcel through fulfillment
// @Tags         tracking
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string                       true  "Parcel tracking code"
// @Param        body  body      updateTrackingStatusRequest  true  "Target status"
// @Success      200   {object}  trackingResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/tracking/{code}/status [patch]
func (h *TrackingHandler) UpdateStatus(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req updateTrackingStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	parcel, err := h.service.UpdateStatus(c.Request().Context(), p, c.Param("code"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTrackingResponse(parcel))
}
