package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/articlehub/content-service/internal/api/middleware"
	"github.com/articlehub/content-service/internal/core/domain"
)

// currentUser returns the user injected by the Auth middleware. Its absence
// means the route was mounted without Auth, which is reported as an
// unauthenticated request rather than a panic.
func currentUser(c echo.Context) (*domain.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	return user, nil
}
