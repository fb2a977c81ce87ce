// Package session carries tokens between the service and HTTP clients:
// http-only cookies on the way out, cookie or bearer header on the way in.
package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/articlehub/content-service/internal/core/domain"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

type Config struct {
	Secure bool
	Domain string
}

// Transport writes and clears the token cookies.
type Transport struct {
	cfg Config
	now func() time.Time
}

func NewTransport(cfg Config) *Transport {
	return &Transport{cfg: cfg, now: time.Now}
}

// SetPair stores both tokens as cookies that expire together with the tokens.
func (t *Transport) SetPair(c echo.Context, pair *domain.TokenPair) {
	now := t.now()
	c.SetCookie(t.cookie(AccessCookie, pair.AccessToken, pair.AccessExpiresAt.Sub(now)))
	c.SetCookie(t.cookie(RefreshCookie, pair.RefreshToken, pair.RefreshExpiresAt.Sub(now)))
}

// Clear expires both token cookies on the client.
func (t *Transport) Clear(c echo.Context) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		ck := t.cookie(name, "", 0)
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
		c.SetCookie(ck)
	}
}

func (t *Transport) cookie(name, value string, ttl time.Duration) *http.Cookie {
	maxAge := int(ttl / time.Second)
	if maxAge < 1 {
		maxAge = 1
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   t.cfg.Domain,
		MaxAge:   maxAge,
		Secure:   t.cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// AccessToken returns the access token from the access_token cookie, or
// from an "Authorization: Bearer" header when the cookie is absent.
func AccessToken(r *http.Request) (string, bool) {
	return fromCookieOrBearer(r, AccessCookie)
}

// RefreshToken returns the refresh token from the refresh_token cookie, or
// from an "Authorization: Bearer" header when the cookie is absent.
func RefreshToken(r *http.Request) (string, bool) {
	return fromCookieOrBearer(r, RefreshCookie)
}

func fromCookieOrBearer(r *http.Request, name string) (string, bool) {
	if ck, err := r.Cookie(name); err == nil && ck.Value != "" {
		return ck.Value, true
	}
	return bearer(r.Header.Get(echo.HeaderAuthorization))
}

func bearer(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
