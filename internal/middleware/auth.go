package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"salon-booking-api/internal/auth"
)

// Context keys set by Auth for downstream handlers.
const (
	UserIDKey = "uid"
	AdminKey  = "admin"
)

// Auth validates the Bearer token and stashes the caller identity on the
// echo context. Routes registered outside the group using it stay open.
func Auth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := ""
			if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
				raw = strings.TrimPrefix(h, "Bearer ")
			}
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
			}

			claims, err := auth.ParseToken(raw, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(UserIDKey, claims.UserID)
			c.Set(AdminKey, claims.Admin)
			return next(c)
		}
	}
}

// UserID returns the authenticated user id, or "" on open routes.
func UserID(c echo.Context) string {
	if v, ok := c.Get(UserIDKey).(string); ok {
		return v
	}
	return ""
}

func IsAdmin(c echo.Context) bool {
	v, _ := c.Get(AdminKey).(bool)
	return v
}
