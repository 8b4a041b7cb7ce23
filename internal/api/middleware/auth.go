package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
)

// Context keys set by Auth.
const (
	KeyUsername  = "username"
	KeyRole      = "role"
	KeyClientID  = "client_id"
	KeyPrincipal = "principal"
)

// Claims is the token payload issued by the identity service.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	ClientID string `json:"client_id"`
	jwt.RegisteredClaims
}

// Auth validates the HS256 bearer token and injects the caller into context.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := &Claims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if claims.Role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing role")
			}
			if claims.Role == domain.RoleMerchant && claims.ClientID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing client identity")
			}

			c.Set(KeyUsername, claims.Username)
			c.Set(KeyRole, claims.Role)
			c.Set(KeyClientID, claims.ClientID)
			c.Set(KeyPrincipal, domain.Principal{
				Username: claims.Username,
				Role:     claims.Role,
				ClientID: claims.ClientID,
			})

			return next(c)
		}
	}
}
