package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
	"github.com/doctorsportal/appointments-system/internal/core/ports"
)

// reservedProfileKeys are stored fields a client payload may not set.
var reservedProfileKeys = map[string]struct{}{
	"_id":        {},
	"id":         {},
	"email":      {},
	"role":       {},
	"created_at": {},
	"updated_at": {},
}

// UserService implements user registration, profile upsert, admin lookup
// and the admin grant workflow.
type UserService struct {
	users      ports.UserRepository
	audit      ports.RoleAuditRepository
	authorizer ports.AdminAuthorizer
	logger     zerolog.Logger
	now        func() time.Time
}

func NewUserService(users ports.UserRepository, audit ports.RoleAuditRepository, authorizer ports.AdminAuthorizer, logger zerolog.Logger) *UserService {
	return &UserService{
		users:      users,
		audit:      audit,
		authorizer: authorizer,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// IsAdmin reports whether email belongs to an admin. An unknown email is
// simply not an admin.
func (s *UserService) IsAdmin(ctx context.Context, email string) (bool, error) {
	user, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("is admin: %w", err)
	}
	return user.IsAdmin(), nil
}

// Register creates a user record from a sign-up payload.
func (s *UserService) Register(ctx context.Context, email string, profile map[string]any) (*domain.User, error) {
	email, err := validEmail(email)
	if err != nil {
		return nil, err
	}
	clean, err := sanitizeProfile(profile)
	if err != nil {
		return nil, err
	}

	now := s.now()
	created, err := s.users.Create(ctx, &domain.User{
		Email:     email,
		Role:      domain.RoleUser,
		Profile:   clean,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", email).Msg("user registered")
	return created, nil
}

// SaveProfile upserts profile fields for email, as used by third-party sign-in.
func (s *UserService) SaveProfile(ctx context.Context, email string, profile map[string]any) error {
	email, err := validEmail(email)
	if err != nil {
		return err
	}
	clean, err := sanitizeProfile(profile)
	if err != nil {
		return err
	}
	if err := s.users.UpsertByEmail(ctx, email, clean); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// GrantAdmin promotes targetEmail to admin on behalf of requester.
// A denied request returns before any store write. Granting an existing
// admin again succeeds and leaves the record unchanged.
func (s *UserService) GrantAdmin(ctx context.Context, requester *domain.Principal, targetEmail string) (*ports.GrantResult, error) {
	if err := s.authorizer.Authorize(ctx, requester); err != nil {
		return nil, err
	}

	target, err := validEmail(targetEmail)
	if err != nil {
		return nil, err
	}

	matched, err := s.users.SetRole(ctx, target, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("grant admin: %w", err)
	}
	if !matched {
		return nil, domain.ErrUserNotFound
	}

	change := &domain.RoleChange{
		TargetEmail: target,
		GrantedBy:   domain.NormalizeEmail(requester.Email),
		Role:        domain.RoleAdmin,
		ChangedAt:   s.now(),
	}
	if err := s.audit.InsertRoleChange(ctx, change); err != nil {
		s.logger.Warn().Err(err).Str("target", target).Msg("failed to record role change")
	}

	s.logger.Info().Str("target", target).Str("granted_by", change.GrantedBy).Msg("admin role granted")
	return &ports.GrantResult{Email: target, Role: domain.RoleAdmin}, nil
}

func validEmail(raw string) (string, error) {
	email := domain.NormalizeEmail(raw)
	if email == "" {
		return "", domain.ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.ErrInvalidEmail
	}
	return email, nil
}

// sanitizeProfile drops reserved keys and rejects keys the document store
// would interpret as operators or paths.
func sanitizeProfile(profile map[string]any) (map[string]any, error) {
	clean := make(map[string]any, len(profile))
	for k, v := range profile {
		if _, reserved := reservedProfileKeys[strings.ToLower(k)]; reserved {
			continue
		}
		if k == "" || strings.HasPrefix(k, "$") || strings.Contains(k, ".") {
			return nil, fmt.Errorf("%w: field %q", domain.ErrInvalidProfile, k)
		}
		clean[k] = v
	}
	return clean, nil
}
