package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/articlehub/content-service/internal/api/metrics"
	"github.com/articlehub/content-service/internal/api/session"
	"github.com/articlehub/content-service/internal/core/domain"
)

const currentUserKey = "current_user"

// CurrentUserResolver maps an access token to the active user it was issued to.
type CurrentUserResolver interface {
	ResolveCurrentUser(ctx context.Context, accessToken string) (*domain.User, error)
}

// Auth validates the access token (cookie or bearer header) and injects the
// resolved user into the context. Failures surface as token errors, which
// the HTTP error handler renders as 401.
func Auth(resolver CurrentUserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := session.AccessToken(c.Request())
			if !ok {
				return domain.ErrTokenInvalid
			}

			user, err := resolver.ResolveCurrentUser(c.Request().Context(), token)
			metrics.ObserveToken(domain.TokenAccess, err)
			if err != nil {
				return err
			}

			SetCurrentUser(c, user)
			return next(c)
		}
	}
}

// SetCurrentUser stores the authenticated user on the request context.
func SetCurrentUser(c echo.Context, user *domain.User) {
	c.Set(currentUserKey, user)
}

// CurrentUser returns the user stored by Auth.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(currentUserKey).(*domain.User)
	return user, ok && user != nil
}
