package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"batch too small", domain.Reject(domain.ErrBatchTooSmall, "Bulk shipments require at least 10 items. Your file contains 3 items."),
			http.StatusBadRequest, "Bulk shipments require at least 10 items. Your file contains 3 items."},
		{"pickup", domain.Reject(domain.ErrOutOfServiceArea, "Pickup location error: Edmonton is outside the service area"),
			http.StatusUnprocessableEntity, "Pickup location error: Edmonton is outside the service area"},
		{"distance", domain.Reject(domain.ErrDistanceLookupFailed, "Distance lookup timed out after 10s"),
			http.StatusBadGateway, "Distance lookup timed out after 10s"},
		{"not found", domain.ErrBatchNotFound, http.StatusNotFound, "batch not found"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"already paid", fmt.Errorf("%w: BULK-1", domain.ErrAlreadyPaid), http.StatusConflict, "batch already paid: BULK-1"},
		{"wrapped conflict", fmt.Errorf("confirm payment: %w", domain.ErrConcurrentUpdate), http.StatusConflict, "confirm payment: concurrent update, retry later"},
		{"echo", echo.NewHTTPError(http.StatusUnauthorized, "invalid token"), http.StatusUnauthorized, "invalid token"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "internal server error"},
	}

	handler := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			handler(tc.err, c)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error != tc.msg {
				t.Errorf("expected message %q, got %q", tc.msg, body.Error)
			}
		})
	}
}
