package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/readshelf/library-system/internal/books/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps identity
// resolution and book errors to deterministic status codes. A valid token
// whose subject no longer exists upstream renders the same 401 as a bad
// token, so a caller cannot distinguish the two; the log line keeps them
// apart for operators.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var statusErr *domain.UpstreamStatusError
	switch {
	case errors.Is(err, domain.ErrInvalidCredential),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusUnauthorized, "invalid or expired credentials"
	case errors.Is(err, domain.ErrUpstreamTimeout),
		errors.Is(err, domain.ErrUpstreamUnavailable):
		log.Error().Err(err).Str("path", c.Path()).Msg("identity resolution unavailable")
		return http.StatusServiceUnavailable, "authentication service unavailable"
	case errors.As(err, &statusErr):
		log.Error().Int("upstream_status", statusErr.Status).Str("path", c.Path()).Msg("identity resolution failed")
		return http.StatusServiceUnavailable, "authentication service unavailable"
	case errors.Is(err, domain.ErrBookNotFound):
		return http.StatusNotFound, "book not found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
