package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pbhm215/everyday-pda/store"
)

// CreateUser registers a user with their preferences.
//
// POST /api/v1/users
func (s *APIV1Service) CreateUser(c echo.Context) error {
	user := &store.User{}
	if err := c.Bind(user); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed user payload")
	}
	if user.Username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username is required")
	}

	created, err := s.Store.CreateUser(c.Request().Context(), user)
	if err != nil {
		if errors.Is(err, store.ErrUserAlreadyExists) {
			return echo.NewHTTPError(http.StatusConflict, "username already taken")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create user")
	}
	return c.JSON(http.StatusCreated, created)
}

// GetUser returns a user and their stored preferences.
//
// GET /api/v1/users/:username
func (s *APIV1Service) GetUser(c echo.Context) error {
	user, err := s.Store.GetUser(c.Request().Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get user")
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser applies a partial preference update. Absent fields stay
// untouched.
//
// PATCH /api/v1/users/:username
func (s *APIV1Service) UpdateUser(c echo.Context) error {
	update := &store.UpdateUser{}
	if err := c.Bind(update); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed update payload")
	}

	user, err := s.Store.UpdateUser(c.Request().Context(), c.Param("username"), update)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update user")
	}
	return c.JSON(http.StatusOK, user)
}

// ListUsernames returns all registered usernames.
//
// GET /api/v1/users
func (s *APIV1Service) ListUsernames(c echo.Context) error {
	usernames, err := s.Store.ListUsernames(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list users")
	}
	if usernames == nil {
		usernames = []string{}
	}
	return c.JSON(http.StatusOK, usernames)
}
