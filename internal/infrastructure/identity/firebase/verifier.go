// Package firebase verifies Firebase Authentication ID tokens.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
)

const (
	// DefaultJWKSURL publishes the keys that sign Firebase ID tokens.
	DefaultJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

	issuerPrefix       = "https://securetoken.google.com/"
	defaultHTTPTimeout = 5 * time.Second
	defaultLeeway      = 30 * time.Second
	maxSubjectLength   = 128
)

// Verifier implements ports.IdentityVerifier for Firebase ID tokens.
type Verifier struct {
	projectID string
	issuer    string
	leeway    time.Duration
	now       func() time.Time
	keys      *keyCache
}

type Option func(*Verifier)

// WithHTTPClient replaces the client used to fetch signing keys.
func WithHTTPClient(client *http.Client) Option {
	return func(v *Verifier) {
		if client != nil {
			v.keys.httpClient = client
		}
	}
}

// WithJWKSURL overrides where signing keys are fetched from.
func WithJWKSURL(url string) Option {
	return func(v *Verifier) {
		if url != "" {
			v.keys.url = url
		}
	}
}

// WithClock sets the time source for token and key expiry.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
			v.keys.now = now
		}
	}
}

func NewVerifier(projectID string, opts ...Option) (*Verifier, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, errors.New("firebase: project id is required")
	}
	v := &Verifier{
		projectID: projectID,
		issuer:    issuerPrefix + projectID,
		leeway:    defaultLeeway,
		now:       time.Now,
		keys:      newKeyCache(DefaultJWKSURL, &http.Client{Timeout: defaultHTTPTimeout}),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

type idTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	AuthTime      int64  `json:"auth_time"`
	jwt.RegisteredClaims
}

// Verify checks signature, issuer, audience and lifetime of an ID token and
// returns the caller it identifies. Key fetch failures wrap
// domain.ErrVerifierUnavailable; everything else wraps domain.ErrCredentialInvalid.
func (v *Verifier) Verify(ctx context.Context, token string) (*domain.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrCredentialAbsent
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	)

	var claims idTokenClaims
	_, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		key, err := v.keys.key(ctx, kid)
		if err != nil {
			if errors.Is(err, errKeyNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", domain.ErrVerifierUnavailable, err)
		}
		return key, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrVerifierUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCredentialInvalid, err)
	}

	if err := v.checkFirebaseClaims(&claims); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCredentialInvalid, err)
	}

	return &domain.Principal{
		Email:         domain.NormalizeEmail(claims.Email),
		Subject:       claims.Subject,
		EmailVerified: claims.EmailVerified,
	}, nil
}

func (v *Verifier) checkFirebaseClaims(c *idTokenClaims) error {
	if c.Subject == "" || len(c.Subject) > maxSubjectLength {
		return errors.New("invalid subject")
	}
	if c.AuthTime > 0 && time.Unix(c.AuthTime, 0).After(v.now().Add(v.leeway)) {
		return errors.New("auth_time in the future")
	}
	if strings.TrimSpace(c.Email) == "" {
		return errors.New("token carries no email")
	}
	return nil
}
