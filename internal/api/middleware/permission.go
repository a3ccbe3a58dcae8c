package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/provnet/isp-admin/internal/core/domain"
)

// Permission enforces permission-tag access control. Administrators pass
// every check; other users need the required tag in their permission set.
func Permission(required domain.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isAdmin, _ := c.Get("is_admin").(bool); isAdmin {
				return next(c)
			}
			perms, _ := c.Get("permissions").([]string)
			for _, p := range perms {
				if p == string(required) {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
