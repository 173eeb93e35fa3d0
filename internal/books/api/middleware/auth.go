package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/readshelf/library-system/internal/books/core/ports"
)

// Auth resolves the bearer credential through the identity resolver and
// injects the resulting principal and the raw token into the echo context.
// Every books route requires authentication, so a missing or malformed header
// fails here without reaching the resolver.
func Auth(resolver ports.IdentityResolver) echo.MiddlewareFunc {
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

			principal, err := resolver.Resolve(c.Request().Context(), parts[1])
			if err != nil {
				return err
			}

			c.Set("principal", principal)
			c.Set("raw_token", parts[1])
			return next(c)
		}
	}
}
