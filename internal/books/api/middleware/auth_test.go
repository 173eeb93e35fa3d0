package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/readshelf/library-system/internal/books/core/domain"
)

type stubResolver struct {
	principal *domain.Principal
	err       error
	calls     int
}

func (s *stubResolver) Resolve(_ context.Context, _ string) (*domain.Principal, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.principal, nil
}

func (s *stubResolver) FetchUser(_ context.Context, _ int64, _ string) (*domain.UserInfo, error) {
	return nil, domain.ErrUserNotFound
}

func invoke(t *testing.T, resolver *stubResolver, header string) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/books/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	next := func(c echo.Context) error { return nil }
	return c, Auth(resolver)(next)(c)
}

func TestAuthInjectsPrincipalAndRawToken(t *testing.T) {
	resolver := &stubResolver{principal: &domain.Principal{ID: 42, Username: "gala", Authenticated: true}}

	c, err := invoke(t, resolver, "Bearer some-token")
	if err != nil {
		t.Fatalf("middleware error: %v", err)
	}

	p, ok := c.Get("principal").(*domain.Principal)
	if !ok || p.ID != 42 {
		t.Errorf("principal = %#v", c.Get("principal"))
	}
	if raw, _ := c.Get("raw_token").(string); raw != "some-token" {
		t.Errorf("raw_token = %q", raw)
	}
}

func TestAuthMissingHeader(t *testing.T) {
	resolver := &stubResolver{}

	_, err := invoke(t, resolver, "")
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Errorf("err = %v, want 401", err)
	}
	if resolver.calls != 0 {
		t.Errorf("resolver consulted %d times for a missing header", resolver.calls)
	}
}

func TestAuthMalformedHeader(t *testing.T) {
	resolver := &stubResolver{}

	_, err := invoke(t, resolver, "Token abc")
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Errorf("err = %v, want 401", err)
	}
}

func TestAuthPropagatesResolverError(t *testing.T) {
	resolver := &stubResolver{err: domain.ErrUpstreamTimeout}

	_, err := invoke(t, resolver, "Bearer some-token")
	if !errors.Is(err, domain.ErrUpstreamTimeout) {
		t.Errorf("err = %v, want ErrUpstreamTimeout", err)
	}
}
