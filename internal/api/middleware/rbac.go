package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/articlehub/content-service/internal/core/domain"
)

// RBAC enforces role-based access control: the authenticated user must hold
// at least one of the given roles. It must run after Auth.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	var allowed domain.RoleSet
	for _, r := range allowedRoles {
		allowed |= domain.RoleSet(r)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok || user.Roles&allowed == 0 {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
