// Package metrics defines and registers all custom Prometheus metrics for the
// doctors portal API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "portal"

// ── Identity & authorization ──────────────────────────────────────────────────

// AuthResolutionsTotal counts bearer-credential resolutions by the auth gate.
// Label:
//   - result: "resolved", "absent", "invalid" or "unavailable"
var AuthResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "auth_resolutions_total",
		Help:      "Total number of identity resolutions, labelled by outcome.",
	},
	[]string{"result"},
)

// PrivilegedDecisionsTotal counts authorizer decisions on privileged routes.
// Labels:
//   - operation: e.g. "grant_admin", "add_doctor"
//   - decision: "allowed", "denied" or "error"
var PrivilegedDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "privileged_decisions_total",
		Help:      "Total number of authorization decisions for privileged operations.",
	},
	[]string{"operation", "decision"},
)

// RoleGrantsTotal counts admin grant attempts.
// Label:
//   - result: "granted", "denied", "not_found", "invalid" or "error"
var RoleGrantsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "role_grants_total",
		Help:      "Total number of admin role grant requests, by result.",
	},
	[]string{"result"},
)

// ── Booking & payments ────────────────────────────────────────────────────────

// AppointmentsBookedTotal counts newly booked appointments.
var AppointmentsBookedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "appointments_booked_total",
		Help:      "Total number of appointments booked.",
	},
)

// PaymentIntentsTotal counts payment-intent requests.
// Label:
//   - result: "created", "replayed" or "error"
var PaymentIntentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "payment_intents_total",
		Help:      "Total number of payment intents requested, by result.",
	},
	[]string{"result"},
)
