package ports

import (
	"context"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
)

// AdminAuthorizer is the single admission point for privileged operations.
// A nil error means allowed; denial is reported as domain.ErrPermissionDenied.
type AdminAuthorizer interface {
	Authorize(ctx context.Context, requester *domain.Principal) error
	// AuthorizeOwner allows the owner of ownerEmail, otherwise falls back to Authorize.
	AuthorizeOwner(ctx context.Context, requester *domain.Principal, ownerEmail string) error
}

// GrantResult describes a completed role grant.
type GrantResult struct {
	Email string
	Role  domain.Role
}

// UserService groups the user-facing operations.
type UserService interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
	Register(ctx context.Context, email string, profile map[string]any) (*domain.User, error)
	SaveProfile(ctx context.Context, email string, profile map[string]any) error
	GrantAdmin(ctx context.Context, requester *domain.Principal, targetEmail string) (*GrantResult, error)
}
