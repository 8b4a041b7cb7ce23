package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
)

func TestRBAC(t *testing.T) {
	dispatchers := RBAC(domain.RoleAdmin, domain.RoleCourier)

	tests := []struct {
		name    string
		role    any
		allowed bool
	}{
		{"admin", domain.RoleAdmin, true},
		{"courier", domain.RoleCourier, true},
		{"merchant", domain.RoleMerchant, false},
		{"no role", nil, false},
		{"role of wrong type", 42, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodPatch, "/v1/tracking/99M-1/status", nil), httptest.NewRecorder())
			if tt.role != nil {
				c.Set(KeyRole, tt.role)
			}

			called := false
			err := dispatchers(func(c echo.Context) error {
				called = true
				return nil
			})(c)

			if called != tt.allowed {
				t.Fatalf("next called = %v, want %v", called, tt.allowed)
			}
			if tt.allowed {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var he *echo.HTTPError
			if !errors.As(err, &he) || he.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %v", err)
			}
		})
	}
}
