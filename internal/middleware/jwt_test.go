package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/utils"
)

const testSecret = "unit-test-secret"

// newProtectedEcho wires JWTAuth in front of a handler that echoes
// the context identity, mirroring how protected routes are mounted.
func newProtectedEcho() *echo.Echo {
	e := echo.New()
	g := e.Group("/v1")
	g.Use(JWTAuth(testSecret))
	g.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"user_id": c.Get("user_id"),
			"role":    c.Get("role"),
		})
	})
	return e
}

func doMe(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth_ValidToken(t *testing.T) {
	e := newProtectedEcho()
	at, err := utils.NewAccessToken(testSecret, 7, "CUSTOMER", 60)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rec := doMe(e, "Bearer "+at.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	rec := doMe(newProtectedEcho(), "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestJWTAuth_MalformedToken(t *testing.T) {
	rec := doMe(newProtectedEcho(), "Bearer not-a-jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	// Negative ttl puts exp in the past.
	at, err := utils.NewAccessToken(testSecret, 7, "CUSTOMER", -1)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec := doMe(newProtectedEcho(), "Bearer "+at.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for expired token, got %d", rec.Code)
	}
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("some-other-secret", 7, "CUSTOMER", 60)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec := doMe(newProtectedEcho(), "Bearer "+at.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for foreign signature, got %d", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	g := e.Group("/v1")
	g.Use(JWTAuth(testSecret))
	g.Use(RequireRole("OWNER"))
	g.POST("/restaurants", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	})

	owner, err := utils.NewAccessToken(testSecret, 1, "OWNER", 60)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	customer, err := utils.NewAccessToken(testSecret, 2, "CUSTOMER", 60)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/restaurants", nil)
	req.Header.Set("Authorization", "Bearer "+owner.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Errorf("owner: expected 201, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/restaurants", nil)
	req.Header.Set("Authorization", "Bearer "+customer.Token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("customer: expected 403, got %d", rec.Code)
	}
}
