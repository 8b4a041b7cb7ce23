package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/bulk-shipping/internal/api/middleware"
	"github.com/99minutos/bulk-shipping/internal/core/domain"
)

// principal returns the caller injected by the Auth middleware. A missing
// principal means the route was mounted without authentication.
func principal(c echo.Context) (domain.Principal, error) {
	p, ok := c.Get(middleware.KeyPrincipal).(domain.Principal)
	if !ok || p.Role == "" {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}

// bindAndValidate decodes the request body into req and runs the validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
