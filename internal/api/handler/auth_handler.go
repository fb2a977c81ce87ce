package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/articlehub/content-service/internal/api/metrics"
	"github.com/articlehub/content-service/internal/api/session"
	"github.com/articlehub/content-service/internal/core/domain"
	"github.com/articlehub/content-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	session     *session.Transport
}

func NewAuthHandler(authService ports.AuthService, transport *session.Transport) *AuthHandler {
	return &AuthHandler{authService: authService, session: transport}
}

// loginForm follows the OAuth2 password flow: the email goes in "username".
type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func newTokenResponse(pair *domain.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	}
}

// Login authenticates a user and issues an access/refresh token pair.
//
// @Summary      Login
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Account email"
// @Param        password  formData  string  true  "Password"
// @Success      200       {object}  tokenResponse
// @Failure      400       {object}  map[string]string
// @Failure      401       {object}  map[string]string
// @Failure      429       {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pair, err := h.authService.Login(c.Request().Context(), form.Username, form.Password)
	if err != nil {
		return err
	}

	h.session.SetPair(c, pair)
	return c.JSON(http.StatusOK, newTokenResponse(pair))
}

// Refresh rotates a refresh token into a new token pair.
//
// @Summary      Refresh tokens
// @Tags         auth
// @Produce      json
// @Param        refresh_token  header    string  false  "Bearer refresh token when the cookie is not sent"
// @Success      200            {object}  tokenResponse
// @Failure      401            {object}  map[string]string
// @Router       /refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	token, ok := session.RefreshToken(c.Request())
	if !ok {
		return domain.ErrTokenInvalid
	}

	pair, err := h.authService.Refresh(c.Request().Context(), token)
	metrics.ObserveToken(domain.TokenRefresh, err)
	if err != nil {
		return err
	}

	h.session.SetPair(c, pair)
	return c.JSON(http.StatusOK, newTokenResponse(pair))
}

// Logout clears the token cookies.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	h.authService.Logout(c.Request().Context(), user)
	h.session.Clear(c)
	return c.JSON(http.StatusOK, map[string]string{"detail": "logged out"})
}

// Me returns the authenticated user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  map[string]string
// @Router       /users/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
