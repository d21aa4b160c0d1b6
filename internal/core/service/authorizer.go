package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
	"github.com/doctorsportal/appointments-system/internal/core/ports"
)

// Authorizer decides whether a resolved principal may perform a privileged
// operation. Every role check in the system goes through it.
type Authorizer struct {
	users ports.UserRepository
	log   zerolog.Logger
}

func NewAuthorizer(users ports.UserRepository, log zerolog.Logger) *Authorizer {
	return &Authorizer{users: users, log: log}
}

// Authorize allows the request only when the requester's own user record
// carries the admin role and the provider has verified the requester's
// email. Store failures other than "not found" are returned as-is so they
// surface as server errors, not denials.
func (a *Authorizer) Authorize(ctx context.Context, requester *domain.Principal) error {
	if requester == nil || requester.Email == "" {
		return domain.ErrPermissionDenied
	}
	if !requester.EmailVerified {
		a.log.Debug().Str("requester", requester.Email).Msg("requester email not verified")
		return domain.ErrPermissionDenied
	}

	account, err := a.users.FindByEmail(ctx, domain.NormalizeEmail(requester.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			a.log.Debug().Str("requester", requester.Email).Msg("requester has no user record")
			return domain.ErrPermissionDenied
		}
		return fmt.Errorf("authorize: %w", err)
	}

	if !account.IsAdmin() {
		a.log.Debug().Str("requester", requester.Email).Str("role", string(account.Role)).Msg("requester is not an admin")
		return domain.ErrPermissionDenied
	}
	return nil
}

// AuthorizeOwner allows the owner of ownerEmail without a store lookup and
// defers everyone else to Authorize.
func (a *Authorizer) AuthorizeOwner(ctx context.Context, requester *domain.Principal, ownerEmail string) error {
	if requester.Is(ownerEmail) {
		return nil
	}
	return a.Authorize(ctx, requester)
}
