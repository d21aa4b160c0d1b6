package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/doctorsportal/appointments-system/internal/api/middleware"
	"github.com/doctorsportal/appointments-system/internal/core/domain"
)

// principal returns the verified caller, or nil for anonymous requests.
// Handlers pass it through untouched; the authorizer decides what nil means.
func principal(c echo.Context) *domain.Principal {
	return middleware.PrincipalFrom(c)
}

// messageResponse is the body of plain acknowledgements and fixed refusals.
type messageResponse struct {
	Message string `json:"message"`
}
