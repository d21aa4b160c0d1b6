package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/doctorsportal/appointments-system/internal/core/ports"
)

const defaultIntentTTL = 24 * time.Hour

// IntentCache remembers the intent handed out for an idempotency key.
// Key format: payment_intent:<idempotency_key>, value: JSON {amount_cents, client_secret}
type IntentCache struct {
	client *redis.Client
}

// NewIntentCache creates an IntentCache wrapping the given Redis client.
func NewIntentCache(client *redis.Client) *IntentCache {
	return &IntentCache{client: client}
}

// Lookup returns the cached intent for key, if any.
func (c *IntentCache) Lookup(ctx context.Context, key string) (*ports.CachedIntent, bool, error) {
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("intent cache lookup: %w", err)
	}
	var intent ports.CachedIntent
	if err := json.Unmarshal(raw, &intent); err != nil {
		return nil, false, fmt.Errorf("intent cache decode: %w", err)
	}
	return &intent, true, nil
}

// Remember stores intent under key. The first writer wins so two racing
// requests with the same key converge on one secret.
func (c *IntentCache) Remember(ctx context.Context, key string, intent ports.CachedIntent, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultIntentTTL
	}
	raw, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("intent cache encode: %w", err)
	}
	if err := c.client.SetNX(ctx, c.key(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("intent cache remember: %w", err)
	}
	return nil
}

func (c *IntentCache) key(idempotencyKey string) string {
	return "payment_intent:" + idempotencyKey
}
