package domain

import "errors"

// Identity resolution. The auth gate treats all three as "no principal";
// they stay distinct so callers and tests can tell them apart.
var (
	ErrCredentialAbsent    = errors.New("credential absent")
	ErrCredentialInvalid   = errors.New("credential invalid")
	ErrVerifierUnavailable = errors.New("identity verifier unavailable")
)

// Authorization.
var ErrPermissionDenied = errors.New("no permission")

// Users.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUserExists     = errors.New("user already exists")
	ErrInvalidEmail   = errors.New("invalid email")
	ErrInvalidProfile = errors.New("invalid profile")
)

// Booking and payments.
var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrInvalidID           = errors.New("invalid id")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidImage        = errors.New("invalid image")
	ErrIdempotencyConflict = errors.New("idempotency key already used with a different amount")
)
