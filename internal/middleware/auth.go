package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"club-commerce-backend/internal/apperr"
	"club-commerce-backend/internal/service"
)

// AdminEmailKey is the echo context key carrying the authenticated admin
// identity.
const AdminEmailKey = "admin_email"

// RequireAdmin gates a route group behind a valid bearer token. Invalid or
// missing tokens fail before any domain logic runs.
func RequireAdmin(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return apperr.Auth("missing bearer token")
			}

			email, err := auth.VerifyToken(token)
			if err != nil {
				return err
			}

			c.Set(AdminEmailKey, email)
			return next(c)
		}
	}
}
