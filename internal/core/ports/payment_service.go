package ports

import (
	"context"
	"time"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
)

// CreateIntentRequest is what a PaymentGateway needs to open an intent.
type CreateIntentRequest struct {
	AmountCents    int64
	Currency       string
	IdempotencyKey string
}

// PaymentGateway wraps the third-party payment processor.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*domain.PaymentIntent, error)
}

// CachedIntent is what a replay needs: the secret handed out and the amount
// it was opened for.
type CachedIntent struct {
	AmountCents  int64  `json:"amount_cents"`
	ClientSecret string `json:"client_secret"`
}

// IntentCache remembers intents per idempotency key so replays return the
// original intent.
type IntentCache interface {
	Lookup(ctx context.Context, key string) (*CachedIntent, bool, error)
	Remember(ctx context.Context, key string, intent CachedIntent, ttl time.Duration) error
}

// PaymentIntentInput is the DTO passed from the transport layer.
type PaymentIntentInput struct {
	Price          float64
	IdempotencyKey string
}

// PaymentIntentResult is returned to the client.
type PaymentIntentResult struct {
	ClientSecret string
	// Replayed is true when the Idempotency-Key matched an earlier intent.
	Replayed bool
}

type PaymentService interface {
	CreateIntent(ctx context.Context, input PaymentIntentInput) (*PaymentIntentResult, error)
}
