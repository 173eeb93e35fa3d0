package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/readshelf/library-system/internal/books/core/domain"
)

// ctxPrincipal extracts the principal injected by the Auth middleware.
// Presence proves the middleware ran; a handler reached without it is a
// wiring bug and fails closed with 401.
func ctxPrincipal(c echo.Context) (*domain.Principal, error) {
	p, ok := c.Get("principal").(*domain.Principal)
	if !ok || p == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}

// ctxRawToken extracts the bearer string the middleware stored, used when
// forwarding the caller's credential to the auth service.
func ctxRawToken(c echo.Context) (string, error) {
	raw, ok := c.Get("raw_token").(string)
	if !ok || raw == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return raw, nil
}
