package domain

import (
	"strings"
	"time"
)

// Role is the authorization role stored on a user record.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User models a person known to the portal, keyed by email.
// Profile holds whatever the registration flow sends (e.g. displayName);
// Role is never populated from it.
type User struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Role      Role           `json:"role,omitempty"`
	Profile   map[string]any `json:"profile,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// IsAdmin reports whether the record carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Principal is a verified caller identity. It only ever comes out of an
// IdentityVerifier and is never persisted.
type Principal struct {
	Email         string
	Subject       string
	EmailVerified bool
}

// Is reports whether the principal owns the given email address.
func (p *Principal) Is(email string) bool {
	if p == nil || p.Email == "" {
		return false
	}
	return strings.EqualFold(p.Email, strings.TrimSpace(email))
}

// RoleChange is an audit entry written after a successful role grant.
type RoleChange struct {
	TargetEmail string
	GrantedBy   string
	Role        Role
	ChangedAt   time.Time
}

// NormalizeEmail lower-cases and trims an address so lookups are stable.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
