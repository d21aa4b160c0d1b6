package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
	"github.com/doctorsportal/appointments-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory user store
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	findErr error

	writes int // Create, UpsertByEmail and SetRole calls that reached the store
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.Email] = cloneUser(u)
	}
	return r
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.Profile != nil {
		clone.Profile = make(map[string]any, len(u.Profile))
		for k, v := range u.Profile {
			clone.Profile[k] = v
		}
	}
	return &clone
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	stored := cloneUser(user)
	stored.ID = "id-" + user.Email
	r.users[user.Email] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) UpsertByEmail(_ context.Context, email string, profile map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	u, ok := r.users[email]
	if !ok {
		u = &domain.User{Email: email, Profile: map[string]any{}}
		r.users[email] = u
	}
	if u.Profile == nil {
		u.Profile = map[string]any{}
	}
	for k, v := range profile {
		u.Profile[k] = v
	}
	return nil
}

func (r *stubUserRepo) SetRole(_ context.Context, email string, role domain.Role) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	u, ok := r.users[email]
	if !ok {
		return false, nil
	}
	u.Role = role
	return true, nil
}

func (r *stubUserRepo) role(email string) domain.Role {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[email]; ok {
		return u.Role
	}
	return ""
}

func (r *stubUserRepo) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

type stubAuditRepo struct {
	mu      sync.Mutex
	changes []*domain.RoleChange
	err     error
}

func (r *stubAuditRepo) InsertRoleChange(_ context.Context, change *domain.RoleChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	clone := *change
	r.changes = append(r.changes, &clone)
	return nil
}

// ---------------------------------------------------------------------------
// In-memory appointment and doctor stores
// ---------------------------------------------------------------------------

type stubAppointmentRepo struct {
	byID      map[string]*domain.Appointment
	createErr error
	seq       int
}

func newStubAppointmentRepo() *stubAppointmentRepo {
	return &stubAppointmentRepo{byID: make(map[string]*domain.Appointment)}
}

func (r *stubAppointmentRepo) Create(_ context.Context, a *domain.Appointment) (string, error) {
	if r.createErr != nil {
		return "", r.createErr
	}
	r.seq++
	clone := *a
	clone.ID = "appt-" + strconv.Itoa(r.seq)
	r.byID[clone.ID] = &clone
	return clone.ID, nil
}

func (r *stubAppointmentRepo) FindByID(_ context.Context, id string) (*domain.Appointment, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAppointmentNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *stubAppointmentRepo) ListByEmailAndDate(_ context.Context, email, date string) ([]*domain.Appointment, error) {
	var out []*domain.Appointment
	for _, a := range r.byID {
		if a.Email == email && a.Date == date {
			clone := *a
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubAppointmentRepo) UpdatePayment(_ context.Context, id string, payment domain.Payment) error {
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAppointmentNotFound
	}
	p := payment
	a.Payment = &p
	return nil
}

type stubDoctorRepo struct {
	doctors []*domain.Doctor
}

func (r *stubDoctorRepo) Create(_ context.Context, d *domain.Doctor) (string, error) {
	clone := *d
	clone.ID = "doc-" + d.Email
	r.doctors = append(r.doctors, &clone)
	return clone.ID, nil
}

func (r *stubDoctorRepo) List(_ context.Context) ([]*domain.Doctor, error) {
	return r.doctors, nil
}

// ---------------------------------------------------------------------------
// Payment collaborators
// ---------------------------------------------------------------------------

type stubGateway struct {
	calls    int
	requests []ports.CreateIntentRequest
	err      error
}

func (g *stubGateway) CreateIntent(_ context.Context, req ports.CreateIntentRequest) (*domain.PaymentIntent, error) {
	g.calls++
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return &domain.PaymentIntent{
		ID:           "pi_test",
		ClientSecret: "pi_test_secret",
		AmountCents:  req.AmountCents,
		Currency:     req.Currency,
	}, nil
}

type stubIntentCache struct {
	intents   map[string]ports.CachedIntent
	lookupErr error
}

func newStubIntentCache() *stubIntentCache {
	return &stubIntentCache{intents: make(map[string]ports.CachedIntent)}
}

func (c *stubIntentCache) Lookup(_ context.Context, key string) (*ports.CachedIntent, bool, error) {
	if c.lookupErr != nil {
		return nil, false, c.lookupErr
	}
	intent, ok := c.intents[key]
	if !ok {
		return nil, false, nil
	}
	return &intent, true, nil
}

func (c *stubIntentCache) Remember(_ context.Context, key string, intent ports.CachedIntent, _ time.Duration) error {
	if _, ok := c.intents[key]; !ok {
		c.intents[key] = intent
	}
	return nil
}

var errStoreDown = errors.New("store unavailable")
