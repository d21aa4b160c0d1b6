package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/doctorsportal/appointments-system/internal/api/metrics"
	"github.com/doctorsportal/appointments-system/internal/core/domain"
	"github.com/doctorsportal/appointments-system/internal/core/ports"
)

// principalKey is the echo context key holding the verified caller.
const principalKey = "principal"

// ResolvePrincipal extracts the bearer token from an Authorization header
// value and verifies it. A missing or malformed header yields
// domain.ErrCredentialAbsent; verifier failures are returned unchanged.
func ResolvePrincipal(ctx context.Context, verifier ports.IdentityVerifier, header string) (*domain.Principal, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return nil, domain.ErrCredentialAbsent
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrCredentialAbsent
	}
	return verifier.Verify(ctx, token)
}

// Authenticate attaches the verified principal to the request when the
// bearer token checks out. It never rejects: a request without a valid
// token continues anonymously and any route that needs a principal decides
// for itself.
func Authenticate(verifier ports.IdentityVerifier, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			p, err := ResolvePrincipal(req.Context(), verifier, req.Header.Get(echo.HeaderAuthorization))
			switch {
			case err == nil:
				metrics.AuthResolutionsTotal.WithLabelValues("resolved").Inc()
				c.Set(principalKey, p)
			case errors.Is(err, domain.ErrCredentialAbsent):
				metrics.AuthResolutionsTotal.WithLabelValues("absent").Inc()
			case errors.Is(err, domain.ErrVerifierUnavailable):
				metrics.AuthResolutionsTotal.WithLabelValues("unavailable").Inc()
				log.Warn().Err(err).Str("path", c.Path()).Msg("identity verifier unavailable")
			default:
				metrics.AuthResolutionsTotal.WithLabelValues("invalid").Inc()
				log.Debug().Err(err).Str("path", c.Path()).Msg("bearer token rejected")
			}
			return next(c)
		}
	}
}

// PrincipalFrom returns the caller attached by Authenticate, or nil.
func PrincipalFrom(c echo.Context) *domain.Principal {
	p, _ := c.Get(principalKey).(*domain.Principal)
	return p
}
