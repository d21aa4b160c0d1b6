package firebase

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	defaultKeyTTL       = time.Hour
	defaultMaxStale     = 6 * time.Hour
	defaultFetchTimeout = 5 * time.Second

	// minRefreshInterval bounds how often an unknown kid can force a refetch.
	minRefreshInterval = time.Minute
)

var (
	errKeyNotFound = errors.New("signing key not found")
	errNoKeys      = errors.New("jwks contains no usable keys")
)

// keyCache holds the provider's public signing keys keyed by kid. Keys are
// refreshed when their TTL passes; concurrent refreshes collapse into one
// fetch. If a refresh fails, keys up to maxStale old keep being served.
type keyCache struct {
	url        string
	httpClient *http.Client
	ttl        time.Duration
	maxStale   time.Duration
	now        func() time.Time

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
	expiresAt time.Time

	group singleflight.Group
}

type jwksResponse struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func newKeyCache(url string, client *http.Client) *keyCache {
	return &keyCache{
		url:        url,
		httpClient: client,
		ttl:        defaultKeyTTL,
		maxStale:   defaultMaxStale,
		now:        time.Now,
		keys:       map[string]*rsa.PublicKey{},
	}
}

// key returns the public key for kid. errKeyNotFound means the provider does
// not publish kid; any other error means the keys could not be fetched.
func (c *keyCache) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if kid == "" {
		return nil, errKeyNotFound
	}

	now := c.now()
	c.mu.RLock()
	k, ok := c.keys[kid]
	fresh := now.Before(c.expiresAt)
	recent := now.Sub(c.fetchedAt) < minRefreshInterval
	usable := !c.fetchedAt.IsZero() && now.Before(c.fetchedAt.Add(c.ttl+c.maxStale))
	c.mu.RUnlock()

	if ok && fresh {
		return k, nil
	}
	if !ok && fresh && recent {
		return nil, errKeyNotFound
	}

	// Stale, expired or unknown kid: one refresh, shared with concurrent callers.
	if err := c.refresh(ctx); err != nil {
		if ok && usable {
			return k, nil
		}
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if k, ok := c.keys[kid]; ok {
		return k, nil
	}
	return nil, errKeyNotFound
}

func (c *keyCache) refresh(ctx context.Context) error {
	ch := c.group.DoChan("jwks", func() (any, error) {
		// Detached so one caller's cancellation does not fail the others.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultFetchTimeout)
		defer cancel()

		keys, maxAge, err := c.fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		ttl := c.ttl
		if maxAge > 0 {
			ttl = maxAge
		}
		now := c.now()
		c.mu.Lock()
		c.keys = keys
		c.fetchedAt = now
		c.expiresAt = now.Add(ttl)
		c.mu.Unlock()
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *keyCache) fetch(ctx context.Context) (map[string]*rsa.PublicKey, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, 0, fmt.Errorf("fetch jwks: status %d", resp.StatusCode)
	}

	var payload jwksResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, 0, fmt.Errorf("decode jwks: %w", err)
	}
	keys := make(map[string]*rsa.PublicKey, len(payload.Keys))
	for _, k := range payload.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := rsaPublicKey(k)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return nil, 0, errNoKeys
	}
	return keys, maxAge(resp.Header.Get("Cache-Control")), nil
}

// maxAge extracts max-age from a Cache-Control header; zero when absent.
func maxAge(header string) time.Duration {
	for _, directive := range strings.Split(header, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !ok || !strings.EqualFold(name, "max-age") {
			continue
		}
		secs, err := strconv.Atoi(value)
		if err != nil || secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	return 0
}

func rsaPublicKey(k jwk) (*rsa.PublicKey, error) {
	if k.N == "" || k.E == "" {
		return nil, errors.New("missing rsa params")
	}
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}
	e := new(big.Int).SetBytes(eBytes).Int64()
	if e <= 0 || e > int64(^uint32(0)>>1) {
		return nil, errors.New("invalid rsa exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: int(e)}, nil
}
