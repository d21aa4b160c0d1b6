package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/doctorsportal/appointments-system/internal/api/metrics"
	"github.com/doctorsportal/appointments-system/internal/core/domain"
	"github.com/doctorsportal/appointments-system/internal/core/ports"
)

// RequireAdmin admits only callers the authorizer allows. It must run after
// Authenticate. operation labels the decision metric.
func RequireAdmin(authorizer ports.AdminAuthorizer, operation string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := authorizer.Authorize(c.Request().Context(), PrincipalFrom(c))
			switch {
			case err == nil:
				metrics.PrivilegedDecisionsTotal.WithLabelValues(operation, "allowed").Inc()
				return next(c)
			case errors.Is(err, domain.ErrPermissionDenied):
				metrics.PrivilegedDecisionsTotal.WithLabelValues(operation, "denied").Inc()
				return c.JSON(http.StatusForbidden, map[string]string{"message": "forbidden access"})
			default:
				metrics.PrivilegedDecisionsTotal.WithLabelValues(operation, "error").Inc()
				return err
			}
		}
	}
}
