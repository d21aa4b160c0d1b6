// Package payment opens payment intents with the Stripe API.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
	"github.com/doctorsportal/appointments-system/internal/core/ports"
)

// StripeGateway implements ports.PaymentGateway.
type StripeGateway struct {
	intents paymentintent.Client
}

type Option func(*StripeGateway)

// WithBackend points the gateway at a different API backend.
func WithBackend(b stripe.Backend) Option {
	return func(g *StripeGateway) {
		if b != nil {
			g.intents.B = b
		}
	}
}

func NewStripeGateway(secretKey string, opts ...Option) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, errors.New("stripe: secret key is required")
	}
	g := &StripeGateway{intents: paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey}}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// CreateIntent opens a card payment intent. The idempotency key, when set,
// is forwarded so Stripe also deduplicates retries.
func (g *StripeGateway) CreateIntent(ctx context.Context, req ports.CreateIntentRequest) (*domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.AmountCents),
		Currency:           stripe.String(req.Currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := g.intents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return nil, fmt.Errorf("stripe %s (%d): %s", stripeErr.Type, stripeErr.HTTPStatusCode, stripeErr.Msg)
		}
		return nil, fmt.Errorf("stripe: %w", err)
	}

	return &domain.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}
