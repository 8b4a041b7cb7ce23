package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/bulk-shipping/internal/core/ports"
)

// ShipmentHandler handles HTTP requests for single shipments, quotes and the tariff.
type ShipmentHandler struct {
	service ports.ShipmentService
}

func NewShipmentHandler(service ports.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{service: service}
}

// Quote handles POST /v1/quotes.
//
// @Summary      Price a single parcel
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      quoteRequest  true  "Addresses, weight class, speed and add-ons"
// @Success      200   {object}  quoteResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/quotes [post]
func (h *ShipmentHandler) Quote(c echo.Context) error {
	var req quoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	q, err := h.service.Quote(c.Request().Context(), toQuoteInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toQuoteResponse(q))
}

// Pricing handles GET /v1/pricing.
//
// @Summary      Get the published tariff
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  pricingResponse
// @Router       /v1/pricing [get]
func (h *ShipmentHandler) Pricing(c echo.Context) error {
	return c.JSON(http.StatusOK, toPricingResponse(h.service.PricingInfo()))
}

// Create handles POST /v1/shipments.
//
// @Summary      Book a single shipment
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createShipmentRequest  true  "Shipment details"
// @Success      201   {object}  createShipmentResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/shipments [post]
func (h *ShipmentHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req createShipmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sh, q, err := h.service.CreateShipment(c.Request().Context(), ports.CreateShipmentInput{
		Principal:          p,
		Quote:              toQuoteInput(req.quoteRequest),
		PickupContactName:  req.PickupContactName,
		PickupContactPhone: req.PickupContactPhone,
		ReceiverName:       req.ReceiverName,
		ReceiverPhone:      req.ReceiverPhone,
		PostalCode:         req.PostalCode,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createShipmentResponse{
		Shipment: toShipmentResponse(sh),
		Quote:    toQuoteResponse(q),
	})
}

// Get handles GET /v1/shipments/:code.
//
// @Summary      Get a single shipment
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string  true  "Tracking code (e.g. 99M-1A2B3C4D5E)"
// @Success      200   {object}  shipmentResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/shipments/{code} [get]
func (h *ShipmentHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	sh, err := h.service.GetShipment(c.Request().Context(), p, c.Param("code"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toShipmentResponse(sh))
}
