package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/articlehub/content-service/internal/core/ports"
)

// UserHandler serves account management and admin privilege endpoints.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /user [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Get returns an active user by id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        user_id  query     int  true  "User ID"
// @Success      200      {object}  domain.User
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Router       /user [get]
func (h *UserHandler) Get(c echo.Context) error {
	var id int64
	if err := echo.QueryParamsBinder(c).MustInt64("user_id", &id).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id must be an integer")
	}

	user, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile changes the caller's username and/or email.
//
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /user [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), actor, ports.UpdateProfileInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Delete deactivates a user account.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        target_user_id  query     int  true  "User to delete"
// @Success      200             {object}  deleteUserResponse
// @Failure      401             {object}  map[string]string
// @Failure      403             {object}  map[string]string
// @Failure      404             {object}  map[string]string
// @Failure      406             {object}  map[string]string
// @Router       /user [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	target, err := targetUserID(c)
	if err != nil {
		return err
	}

	deleted, err := h.service.Delete(c.Request().Context(), actor, target)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleteUserResponse{DeletedUserID: deleted})
}

// PromoteToAdmin grants the ADMIN role.
//
// @Summary      Grant admin privilege
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        target_user_id  query     int  true  "User to promote"
// @Success      200             {object}  domain.User
// @Failure      400             {object}  map[string]string
// @Failure      403             {object}  map[string]string
// @Failure      404             {object}  map[string]string
// @Failure      409             {object}  map[string]string
// @Router       /admin_privilege [put]
func (h *UserHandler) PromoteToAdmin(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	target, err := targetUserID(c)
	if err != nil {
		return err
	}

	user, err := h.service.PromoteToAdmin(c.Request().Context(), actor, target)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// RevokeAdmin removes the ADMIN role.
//
// @Summary      Revoke admin privilege
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        target_user_id  query     int  true  "User to demote"
// @Success      200             {object}  domain.User
// @Failure      400             {object}  map[string]string
// @Failure      403             {object}  map[string]string
// @Failure      404             {object}  map[string]string
// @Failure      409             {object}  map[string]string
// @Router       /admin_privilege [delete]
func (h *UserHandler) RevokeAdmin(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	target, err := targetUserID(c)
	if err != nil {
		return err
	}

	user, err := h.service.RevokeAdmin(c.Request().Context(), actor, target)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func targetUserID(c echo.Context) (int64, error) {
	var id int64
	if err := echo.QueryParamsBinder(c).MustInt64("target_user_id", &id).BindError(); err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "target_user_id must be an integer")
	}
	return id, nil
}
