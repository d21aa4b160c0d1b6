package firebase

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
)

const (
	testProject = "doctors-portal-test"
	testJWKSURL = "https://keys.test/jwk"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     header,
	}
}

func buildJWKS(t *testing.T, key *rsa.PublicKey, kid string) string {
	t.Helper()
	payload := map[string]any{
		"keys": []map[string]any{{
			"kty": "RSA",
			"kid": kid,
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}},
	}
	out, err := json.Marshal(payload)
	require.NoError(t, err)
	return string(out)
}

// keyServer serves a JWKS document and counts fetches. Setting fail makes
// it answer 503.
type keyServer struct {
	jwks    string
	fetches atomic.Int32
	fail    atomic.Bool
}

func (s *keyServer) client() *http.Client {
	return &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.String() != testJWKSURL {
			return jsonResponse(http.StatusNotFound, `{}`, nil), nil
		}
		s.fetches.Add(1)
		if s.fail.Load() {
			return jsonResponse(http.StatusServiceUnavailable, `{}`, nil), nil
		}
		return jsonResponse(http.StatusOK, s.jwks, http.Header{"Cache-Control": []string{"public, max-age=600"}}), nil
	})}
}

type fixture struct {
	key      *rsa.PrivateKey
	server   *keyServer
	verifier *Verifier
	now      time.Time
	clock    func() time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	f := &fixture{key: key, now: time.Now().UTC().Truncate(time.Second)}
	f.server = &keyServer{jwks: buildJWKS(t, &key.PublicKey, "kid-1")}
	f.clock = func() time.Time { return f.now }

	f.verifier, err = NewVerifier(testProject,
		WithHTTPClient(f.server.client()),
		WithJWKSURL(testJWKSURL),
		WithClock(func() time.Time { return f.clock() }),
	)
	require.NoError(t, err)
	return f
}

func (f *fixture) claims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":            issuerPrefix + testProject,
		"aud":            testProject,
		"sub":            "uid-123",
		"email":          "Pat@Clinic.test",
		"email_verified": true,
		"auth_time":      f.now.Add(-time.Minute).Unix(),
		"iat":            f.now.Add(-time.Minute).Unix(),
		"exp":            f.now.Add(time.Hour).Unix(),
	}
}

func (f *fixture) sign(t *testing.T, kid string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	signed, err := tok.SignedString(f.key)
	require.NoError(t, err)
	return signed
}

func TestVerifier_ValidToken(t *testing.T) {
	f := newFixture(t)

	p, err := f.verifier.Verify(context.Background(), f.sign(t, "kid-1", f.claims()))
	require.NoError(t, err)
	assert.Equal(t, "pat@clinic.test", p.Email)
	assert.Equal(t, "uid-123", p.Subject)
	assert.True(t, p.EmailVerified)
}

func TestVerifier_RejectsBadTokens(t *testing.T) {
	f := newFixture(t)

	mutate := func(fn func(c jwt.MapClaims)) jwt.MapClaims {
		c := f.claims()
		fn(c)
		return c
	}

	cases := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"wrong audience", f.sign(t, "kid-1", mutate(func(c jwt.MapClaims) { c["aud"] = "other-project" }))},
		{"wrong issuer", f.sign(t, "kid-1", mutate(func(c jwt.MapClaims) { c["iss"] = "https://accounts.example" }))},
		{"expired", f.sign(t, "kid-1", mutate(func(c jwt.MapClaims) { c["exp"] = f.now.Add(-time.Hour).Unix() }))},
		{"missing exp", f.sign(t, "kid-1", mutate(func(c jwt.MapClaims) { delete(c, "exp") }))},
		{"issued in the future", f.sign(t, "kid-1", mutate(func(c jwt.MapClaims) { c["iat"] = f.now.Add(time.Hour).Unix() }))},
		{"missing subject", f.sign(t, "kid-1", mutate(func(c jwt.MapClaims) { delete(c, "sub") }))},
		{"missing email", f.sign(t, "kid-1", mutate(func(c jwt.MapClaims) { delete(c, "email") }))},
		{"unknown kid", f.sign(t, "kid-2", f.claims())},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.verifier.Verify(context.Background(), tc.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrCredentialInvalid)
			assert.NotErrorIs(t, err, domain.ErrVerifierUnavailable)
		})
	}
}

func TestVerifier_RejectsHMACToken(t *testing.T) {
	f := newFixture(t)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, f.claims())
	tok.Header["kid"] = "kid-1"
	signed, err := tok.SignedString([]byte("shared-secret"))
	require.NoError(t, err)

	_, err = f.verifier.Verify(context.Background(), signed)
	assert.ErrorIs(t, err, domain.ErrCredentialInvalid)
}

func TestVerifier_EmptyToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.verifier.Verify(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrCredentialAbsent)
}

func TestVerifier_KeyServerDown(t *testing.T) {
	f := newFixture(t)
	f.server.fail.Store(true)

	_, err := f.verifier.Verify(context.Background(), f.sign(t, "kid-1", f.claims()))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrVerifierUnavailable)
}

func TestVerifier_CachesKeys(t *testing.T) {
	f := newFixture(t)
	token := f.sign(t, "kid-1", f.claims())

	for i := 0; i < 3; i++ {
		_, err := f.verifier.Verify(context.Background(), token)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), f.server.fetches.Load())
}

func TestVerifier_ServesStaleKeysWhenRefreshFails(t *testing.T) {
	f := newFixture(t)
	_, err := f.verifier.Verify(context.Background(), f.sign(t, "kid-1", f.claims()))
	require.NoError(t, err)

	// Past the max-age of 600s but inside the stale window.
	f.now = f.now.Add(20 * time.Minute)
	f.server.fail.Store(true)

	_, err = f.verifier.Verify(context.Background(), f.sign(t, "kid-1", f.claims()))
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.server.fetches.Load())
}

func TestVerifier_ConcurrentVerifyFetchesOnce(t *testing.T) {
	f := newFixture(t)
	token := f.sign(t, "kid-1", f.claims())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.verifier.Verify(context.Background(), token)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, f.server.fetches.Load(), int32(1))
	assert.Less(t, f.server.fetches.Load(), int32(20))
}

func TestNewVerifier_RequiresProject(t *testing.T) {
	_, err := NewVerifier("  ")
	assert.Error(t, err)
}

func TestMaxAge(t *testing.T) {
	assert.Equal(t, 19*time.Second, maxAge("public, max-age=19, must-revalidate"))
	assert.Equal(t, time.Duration(0), maxAge("no-cache"))
	assert.Equal(t, time.Duration(0), maxAge("max-age=abc"))
}
