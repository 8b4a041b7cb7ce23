package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/bulk-shipping/internal/core/ports"
)

// PaymentHandler applies payment confirmations to batches.
type PaymentHandler struct {
	reconciler ports.PaymentReconciler
}

func NewPaymentHandler(reconciler ports.PaymentReconciler) *PaymentHandler {
	return &PaymentHandler{reconciler: reconciler}
}

type confirmPaymentRequest struct {
	PaymentMethod    string `json:"payment_method"    validate:"required"`
	PaymentReference string `json:"payment_reference" validate:"max=128"`
}

type paymentResponse struct {
	BatchCode     string       `json:"batch_code"`
	BatchStatus   string       `json:"batch_status"`
	Method        string       `json:"payment_method,omitempty"`
	Status        string       `json:"payment_status"`
	Reference     string       `json:"payment_reference,omitempty"`
	AmountDue     feesResponse `json:"amount_due"`
	Totals        feesResponse `json:"totals"`
	ValidItems    int          `json:"valid_items"`
	Payable       bool         `json:"payable"`
	ItemsReleased int          `json:"items_released,omitempty"`
}

func toPaymentResponse(s *ports.PaymentSummary) paymentResponse {
	return paymentResponse{
		BatchCode:     s.BatchCode,
		BatchStatus:   string(s.BatchStatus),
		Method:        s.Method,
		Status:        s.Status,
		Reference:     s.Reference,
		AmountDue:     toFeesResponse(s.AmountDue),
		Totals:        toFeesResponse(s.Totals),
		ValidItems:    s.ValidItems,
		Payable:       s.Payable,
		ItemsReleased: s.ItemsReleased,
	}
}

// Confirm handles POST /v1/batches/:code/payment.
//
// @Summary      Confirm an external payment for a batch
// @Description  Marks the batch PAID and releases every valid item to NOT_PICKED_UP.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string                 true  "Batch tracking code"
// @Param        body  body      confirmPaymentRequest  true  "Payment method and optional gateway reference"
// @Success      200   {object}  paymentResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/batches/{code}/payment [post]
func (h *PaymentHandler) Confirm(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req confirmPaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	summary, err := h.reconciler.Confirm(c.Request().Context(), c.Param("code"), ports.ConfirmPaymentInput{
		Principal: p,
		Method:    req.PaymentMethod,
		Reference: req.PaymentReference,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPaymentResponse(summary))
}

// Status handles GET /v1/batches/:code/payment.
//
// @Summary      Get the payment status of a batch
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string  true  "Batch tracking code"
// @Success      200   {object}  paymentResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/batches/{code}/payment [get]
func (h *PaymentHandler) Status(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	summary, err := h.reconciler.Status(c.Request().Context(), p, c.Param("code"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPaymentResponse(summary))
}
