package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/doctorsportal/appointments-system/internal/api/metrics"
	"github.com/doctorsportal/appointments-system/internal/core/domain"
	"github.com/doctorsportal/appointments-system/internal/core/ports"
)

// grantDeniedMessage is returned verbatim to any caller not allowed to grant admin.
const grantDeniedMessage = "You do not have permission to make an Admin."

// UserHandler handles HTTP requests for user records and role grants.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type adminStatusResponse struct {
	Admin bool `json:"admin"`
}

type registerResponse struct {
	InsertedID string `json:"insertedId"`
	Email      string `json:"email"`
}

type profileResponse struct {
	Email string `json:"email"`
}

type grantAdminRequest struct {
	Email string `json:"email"`
}

type grantAdminResponse struct {
	Granted bool   `json:"granted"`
	Email   string `json:"email"`
}

// IsAdmin handles GET /users/:email.
//
// @Summary      Check whether an email belongs to an admin
// @Tags         users
// @Produce      json
// @Param        email  path      string  true  "User email"
// @Success      200    {object}  adminStatusResponse
// @Failure      500    {object}  messageResponse
// @Router       /users/{email} [get]
func (h *UserHandler) IsAdmin(c echo.Context) error {
	admin, err := h.service.IsAdmin(c.Request().Context(), c.Param("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminStatusResponse{Admin: admin})
}

// Register handles POST /users. Any "role" in the payload is ignored.
//
// @Summary      Register a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      map[string]any  true  "User profile, must include email"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  messageResponse
// @Failure      409   {object}  messageResponse
// @Router       /users [post]
func (h *UserHandler) Register(c echo.Context) error {
	payload, err := bindProfile(c)
	if err != nil {
		return err
	}

	user, err := h.service.Register(c.Request().Context(), profileEmail(payload), payload)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, registerResponse{InsertedID: user.ID, Email: user.Email})
}

// SaveProfile handles PUT /users, the upsert used after third-party sign-in.
//
// @Summary      Create or update a user profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      map[string]any  true  "User profile, must include email"
// @Success      200   {object}  profileResponse
// @Failure      400   {object}  messageResponse
// @Router       /users [put]
func (h *UserHandler) SaveProfile(c echo.Context) error {
	payload, err := bindProfile(c)
	if err != nil {
		return err
	}

	email := profileEmail(payload)
	if err := h.service.SaveProfile(c.Request().Context(), email, payload); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{Email: domain.NormalizeEmail(email)})
}

// GrantAdmin handles PUT /users/admin.
//
// The body is read leniently so that an unauthorized caller always gets the
// same 403, whatever it sent.
//
// @Summary      Grant the admin role to an existing user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      grantAdminRequest  true  "Target user"
// @Success      200   {object}  grantAdminResponse
// @Failure      400   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /users/admin [put]
func (h *UserHandler) GrantAdmin(c echo.Context) error {
	var req grantAdminRequest
	_ = (&echo.DefaultBinder{}).BindBody(c, &req)

	res, err := h.service.GrantAdmin(c.Request().Context(), principal(c), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPermissionDenied):
			metrics.PrivilegedDecisionsTotal.WithLabelValues("grant_admin", "denied").Inc()
			metrics.RoleGrantsTotal.WithLabelValues("denied").Inc()
			return c.JSON(http.StatusForbidden, messageResponse{Message: grantDeniedMessage})
		case errors.Is(err, domain.ErrUserNotFound):
			metrics.RoleGrantsTotal.WithLabelValues("not_found").Inc()
		case errors.Is(err, domain.ErrInvalidEmail):
			metrics.RoleGrantsTotal.WithLabelValues("invalid").Inc()
		default:
			metrics.RoleGrantsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.PrivilegedDecisionsTotal.WithLabelValues("grant_admin", "allowed").Inc()
	metrics.RoleGrantsTotal.WithLabelValues("granted").Inc()
	return c.JSON(http.StatusOK, grantAdminResponse{Granted: true, Email: res.Email})
}

// bindProfile decodes a free-form JSON object from the request body.
func bindProfile(c echo.Context) (map[string]any, error) {
	payload := map[string]any{}
	if err := (&echo.DefaultBinder{}).BindBody(c, &payload); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return payload, nil
}

func profileEmail(payload map[string]any) string {
	email, _ := payload["email"].(string)
	return strings.TrimSpace(email)
}
