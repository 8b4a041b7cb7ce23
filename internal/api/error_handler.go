package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

// errorMapping ties a sentinel to its status code. Order matters: the first
// match wins.
var errorMapping = []struct {
	sentinel error
	status   int
}{
	{domain.ErrMalformedInput, http.StatusBadRequest},
	{domain.ErrBatchTooSmall, http.StatusBadRequest},

	{domain.ErrMissingField, http.StatusUnprocessableEntity},
	{domain.ErrInvalidWeightClass, http.StatusUnprocessableEntity},
	{domain.ErrOutOfServiceArea, http.StatusUnprocessableEntity},
	{domain.ErrInvalidStatusValue, http.StatusUnprocessableEntity},
	{domain.ErrUnsupportedPaymentMethod, http.StatusUnprocessableEntity},
	{domain.ErrDistanceLookupFailed, http.StatusBadGateway},

	{domain.ErrBatchNotFound, http.StatusNotFound},
	{domain.ErrItemNotFound, http.StatusNotFound},
	{domain.ErrShipmentNotFound, http.StatusNotFound},
	{domain.ErrTrackingCodeNotFound, http.StatusNotFound},

	{domain.ErrForbidden, http.StatusForbidden},

	{domain.ErrAlreadyPaid, http.StatusConflict},
	{domain.ErrNoPriceableItems, http.StatusConflict},
	{domain.ErrInvalidTransition, http.StatusConflict},
	{domain.ErrItemNotDispatched, http.StatusConflict},
	{domain.ErrBatchNotCancellable, http.StatusConflict},
	{domain.ErrBatchCancelled, http.StatusConflict},
	{domain.ErrConcurrentUpdate, http.StatusConflict},
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors map to fixed HTTP codes.
	for _, m := range errorMapping {
		if errors.Is(err, m.sentinel) {
			return m.status, err.Error()
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
