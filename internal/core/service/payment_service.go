package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/doctorsportal/appointments-system/internal/core/domain"
	"github.com/doctorsportal/appointments-system/internal/core/ports"
)

const (
	defaultCurrency = "usd"
	intentReplayTTL = 24 * time.Hour
)

// PaymentService opens payment intents for booked appointments.
type PaymentService struct {
	gateway  ports.PaymentGateway
	cache    ports.IntentCache
	currency string
	logger   zerolog.Logger
}

func NewPaymentService(gateway ports.PaymentGateway, cache ports.IntentCache, currency string, logger zerolog.Logger) *PaymentService {
	if currency == "" {
		currency = defaultCurrency
	}
	return &PaymentService{gateway: gateway, cache: cache, currency: currency, logger: logger}
}

// CreateIntent opens an intent for price (in major units). When an
// idempotency key is supplied and already seen for the same amount, the
// earlier client secret is returned without calling the processor. A reused
// key with a different amount is rejected.
func (s *PaymentService) CreateIntent(ctx context.Context, input ports.PaymentIntentInput) (*ports.PaymentIntentResult, error) {
	amount, err := toCents(input.Price)
	if err != nil {
		return nil, err
	}

	// 1. Replay check; a cache failure falls through to create.
	if input.IdempotencyKey != "" {
		cached, found, err := s.cache.Lookup(ctx, input.IdempotencyKey)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("idempotency_key", input.IdempotencyKey).Msg("intent cache lookup failed, creating anyway")
		case found && cached.AmountCents != amount:
			s.logger.Warn().
				Str("idempotency_key", input.IdempotencyKey).
				Int64("cached_amount", cached.AmountCents).
				Int64("amount", amount).
				Msg("idempotency key reused with a different amount")
			return nil, domain.ErrIdempotencyConflict
		case found:
			s.logger.Info().Str("idempotency_key", input.IdempotencyKey).Msg("idempotent replay")
			return &ports.PaymentIntentResult{ClientSecret: cached.ClientSecret, Replayed: true}, nil
		}
	}

	// 2. Create with the processor; the key is forwarded so it dedups too.
	intent, err := s.gateway.CreateIntent(ctx, ports.CreateIntentRequest{
		AmountCents:    amount,
		Currency:       s.currency,
		IdempotencyKey: input.IdempotencyKey,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("amount", amount).Msg("failed to create payment intent")
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	// 3. Remember for replays (non-fatal).
	if input.IdempotencyKey != "" {
		if err := s.cache.Remember(ctx, input.IdempotencyKey, ports.CachedIntent{
			AmountCents:  amount,
			ClientSecret: intent.ClientSecret,
		}, intentReplayTTL); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", input.IdempotencyKey).Msg("failed to cache payment intent")
		}
	}

	s.logger.Info().Str("intent_id", intent.ID).Int64("amount", amount).Str("currency", s.currency).Msg("payment intent created")
	return &ports.PaymentIntentResult{ClientSecret: intent.ClientSecret}, nil
}

// toCents converts a price in major units to the processor's minor units.
func toCents(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	cents := int64(math.Round(price * 100))
	if cents < 1 {
		return 0, domain.ErrInvalidAmount
	}
	return cents, nil
}
