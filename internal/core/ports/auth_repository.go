package ports

import (
	"context"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
)

// UserRepository is the authorization store: user records keyed by email.
type UserRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no record exists.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create inserts a new record; a duplicate email yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// UpsertByEmail inserts the record if absent, otherwise merges profile
	// fields into it, in a single atomic store operation. Role is never touched.
	UpsertByEmail(ctx context.Context, email string, profile map[string]any) error
	// SetRole overwrites the role of an existing record. It reports whether a
	// record matched; a missing record is a no-op, not an error.
	SetRole(ctx context.Context, email string, role domain.Role) (bool, error)
}

// RoleAuditRepository persists role-change audit entries.
type RoleAuditRepository interface {
	InsertRoleChange(ctx context.Context, change *domain.RoleChange) error
}
