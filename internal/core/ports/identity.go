package ports

import (
	"context"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
)

// IdentityVerifier turns a bearer token into a verified principal.
// Errors wrap domain.ErrCredentialInvalid or domain.ErrVerifierUnavailable.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Principal, error)
}
