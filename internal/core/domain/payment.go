package domain

// PaymentIntent is the subset of a processor-side payment intent the
// client needs to confirm the charge.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	AmountCents  int64
	Currency     string
}
