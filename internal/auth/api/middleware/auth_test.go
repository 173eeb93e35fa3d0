package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/readshelf/library-system/internal/token"
)

func TestAuth_ValidToken(t *testing.T) {
	e := echo.New()
	issuer := token.NewIssuer("secret", time.Minute, time.Hour)
	pair, err := issuer.IssuePair(42)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Access)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(token.NewVerifier("secret"))(func(c echo.Context) error {
		called = true
		if id, _ := c.Get("user_id").(int64); id != 42 {
			t.Fatalf("user_id not set, got %v", c.Get("user_id"))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth(token.NewVerifier("secret"))(func(c echo.Context) error {
		t.Fatalf("next should not be called")
		return nil
	})

	err := handler(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuth_RefreshTokenRejected(t *testing.T) {
	e := echo.New()
	issuer := token.NewIssuer("secret", time.Minute, time.Hour)
	pair, _ := issuer.IssuePair(42)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Refresh)
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth(token.NewVerifier("secret"))(func(c echo.Context) error {
		t.Fatalf("next should not be called")
		return nil
	})

	err := handler(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for refresh token, got %v", err)
	}
}

func TestAuth_GarbageToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth(token.NewVerifier("secret"))(func(c echo.Context) error {
		t.Fatalf("next should not be called")
		return nil
	})

	err := handler(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
