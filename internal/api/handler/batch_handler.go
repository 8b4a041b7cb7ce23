package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
	"github.com/99minutos/bulk-shipping/internal/infrastructure/csvtable"
)

const uploadField = "file"

// BatchHandler handles HTTP requests for bulk batches.
type BatchHandler struct {
	ingestor       ports.BatchIngestor
	service        ports.BatchService
	maxUploadBytes int64
}

func NewBatchHandler(ingestor ports.BatchIngestor, service ports.BatchService, maxUploadBytes int64) *BatchHandler {
	return &BatchHandler{ingestor: ingestor, service: service, maxUploadBytes: maxUploadBytes}
}

// Upload handles POST /v1/batches.
//
// @Summary      Upload a CSV of shipments for bulk pricing
// @Description  Every row is validated and priced independently. Rejected rows are reported alongside the accepted ones.
// @Tags         batches
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file                  formData  file    true   "CSV with receiver_name, phone_number, address, postal_code, package_size"
// @Param        delivery_speed        formData  string  false  "standard, express or instant"
// @Param        pickup_address        formData  string  false  "Pickup address (defaults to the depot)"
// @Param        pickup_contact_name   formData  string  false  "Pickup contact name"
// @Param        pickup_contact_phone  formData  string  false  "Pickup contact phone"
// @Success      201  {object}  batchResponse
// @Failure      400  {object}  errorResponse
// @Failure      413  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/batches [post]
func (h *BatchHandler) Upload(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	if h.maxUploadBytes > 0 {
		c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, h.maxUploadBytes)
	}
	fh, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file exceeds the %d byte upload limit", h.maxUploadBytes))
		}
		return echo.NewHTTPError(http.StatusBadRequest, "a CSV file is required in the 'file' field")
	}
	if ext := strings.ToLower(filepath.Ext(fh.Filename)); ext != ".csv" {
		return fmt.Errorf("%w: only CSV files are supported, got %q", domain.ErrMalformedInput, fh.Filename)
	}

	form := uploadBatchForm{
		DeliverySpeed:      strings.ToLower(strings.TrimSpace(c.FormValue("delivery_speed"))),
		PickupAddress:      c.FormValue("pickup_address"),
		PickupContactName:  c.FormValue("pickup_contact_name"),
		PickupContactPhone: c.FormValue("pickup_contact_phone"),
	}
	if err := c.Validate(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	table, err := csvtable.Read(f)
	if err != nil {
		return err
	}

	batch, err := h.ingestor.Ingest(c.Request().Context(), ports.IngestBatchInput{
		Principal:     p,
		Table:         table,
		DeliverySpeed: form.DeliverySpeed,
		Pickup: domain.PickupDetails{
			Address:      form.PickupAddress,
			ContactName:  form.PickupContactName,
			ContactPhone: form.PickupContactPhone,
		},
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toBatchResponse(batch))
}

// List handles GET /v1/batches.
//
// @Summary      List batches
// @Tags         batches
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by batch status"
// @Param        page    query     int     false  "Page number (1-based)"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {object}  listBatchesResponse
// @Router       /v1/batches [get]
func (h *BatchHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var q listBatchesQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	res, err := h.service.List(c.Request().Context(), ports.ListBatchesInput{
		Principal: p,
		Status:    strings.ToUpper(strings.TrimSpace(q.Status)),
		Page:      q.Page,
		Limit:     q.Limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListBatchesResponse(res))
}

// Template handles GET /v1/batches/template.
//
// @Summary      Download the CSV upload template
// @Tags         batches
// @Produce      text/csv
// @Security     BearerAuth
// @Success      200
// @Router       /v1/batches/template [get]
func (h *BatchHandler) Template(c echo.Context) error {
	var buf bytes.Buffer
	if err := csvtable.WriteTemplate(&buf); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", csvtable.TemplateFilename))
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

// Get handles GET /v1/batches/:code.
//
// @Summary      Get a batch with its items and rejections
// @Tags         batches
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string  true  "Batch tracking code (e.g. BULK-1A2B3C4D5E6F)"
// @Success      200   {object}  batchResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/batches/{code} [get]
func (h *BatchHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	b, err := h.service.Get(c.Request().Context(), p, c.Param("code"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBatchResponse(b))
}

// UpdateStatus handles PATCH /v1/batches/:code/status.
//
// @Summary      Move batch items through fulfillment
// @Description  Without tracking_codes every item already in fulfillment is moved forward.
// @Tags         batches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string                    true  "Batch tracking code"
// @Param        body  body      updateBatchStatusRequest  true  "Target status and optional item codes"
// @Success      200   {object}  updateBatchStatusResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/batches/{code}/status [patch]
func (h *BatchHandler) UpdateStatus(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req updateBatchStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	b, res, err := h.service.UpdateStatus(c.Request().Context(), c.Param("code"), ports.UpdateStatusInput{
		Principal:     p,
		Status:        req.Status,
		TrackingCodes: req.TrackingCodes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updateBatchStatusResponse{
		Updated: res.Updated,
		Skipped: res.Skipped,
		Batch:   toBatchResponse(b),
	})
}

// Cancel handles POST /v1/batches/:code/cancel.
//
// @Summary      Cancel a batch before pickup
// @Tags         batches
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string  true  "Batch tracking code"
// @Success      200   {object}  batchSummaryResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/batches/{code}/cancel [post]
func (h *BatchHandler) Cancel(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	b, err := h.service.Cancel(c.Request().Context(), p, c.Param("code"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBatchSummaryResponse(b))
}

// Delete handles DELETE /v1/batches/:code.
//
// @Summary      Delete a batch and its items
// @Tags         batches
// @Security     BearerAuth
// @Param        code  path  string  true  "Batch tracking code"
// @Success      204
// @Failure      404   {object}  errorResponse
// @Router       /v1/batches/{code} [delete]
func (h *BatchHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), p, c.Param("code")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
