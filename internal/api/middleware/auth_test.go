package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
)

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runAuth(t *testing.T, header string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth("secret")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, c, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte("secret"), jwt.MapClaims{
		"username":  "alice",
		"role":      "merchant",
		"client_id": "client_1",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	rec, c, called := runAuth(t, "Bearer "+token)
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected next to run with 200, got %d", rec.Code)
	}
	if c.Get(KeyRole) != "merchant" || c.Get(KeyClientID) != "client_1" {
		t.Fatalf("claims not set: role=%v client=%v", c.Get(KeyRole), c.Get(KeyClientID))
	}
	p, ok := c.Get(KeyPrincipal).(domain.Principal)
	if !ok || p.Username != "alice" || p.Scope() != "client_1" {
		t.Fatalf("unexpected principal %+v", c.Get(KeyPrincipal))
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	expired := signToken(t, jwt.SigningMethodHS256, []byte("secret"), jwt.MapClaims{
		"username": "alice", "role": "admin", "exp": time.Now().Add(-time.Minute).Unix(),
	})
	wrongKey := signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"role": "admin"})
	noClient := signToken(t, jwt.SigningMethodHS256, []byte("secret"), jwt.MapClaims{"role": "merchant"})
	noRole := signToken(t, jwt.SigningMethodHS256, []byte("secret"), jwt.MapClaims{"username": "bob"})

	cases := map[string]string{
		"missing header":      "",
		"wrong scheme":        "Token abc",
		"garbage token":       "Bearer not-a-token",
		"expired":             "Bearer " + expired,
		"wrong key":           "Bearer " + wrongKey,
		"merchant w/o client": "Bearer " + noClient,
		"no role":             "Bearer " + noRole,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec, _, called := runAuth(t, header)
			if called {
				t.Fatalf("next should not run")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}
