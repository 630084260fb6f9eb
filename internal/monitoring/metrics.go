// Package monitoring exposes the operational counters of the ticketing core.
// Metrics are registered on the default prometheus registry and served on
// /metrics by the router.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Seats issued through checkout, by event",
		},
		[]string{"event_id"},
	)

	checkoutLines = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_lines_total",
			Help: "Cart lines processed by checkout, by outcome",
		},
		[]string{"outcome"},
	)

	checkoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "checkout_duration_seconds",
			Help:    "Wall time of a full checkout call",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
	)

	validationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_validation_attempts_total",
			Help: "Credential validation attempts, by result",
		},
		[]string{"result"},
	)

	ticketsCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_cancelled_total",
			Help: "Tickets voided by their owner",
		},
	)

	ticketsTransferred = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_transferred_total",
			Help: "Tickets reassigned to a new owner",
		},
	)
)

// Checkout line outcomes. The outcome label stays at this fixed vocabulary
// regardless of how many rejection reasons the checkout flow grows.
const (
	OutcomeIssued       = "issued"
	OutcomeInsufficient = "insufficient_inventory"
	OutcomeInvalidLine  = "invalid_cart_line"
	OutcomeFailure      = "failure"
)

// OutcomeForReason folds a per-line rejection reason into the outcome
// vocabulary above.
func OutcomeForReason(reason string) string {
	switch reason {
	case "insufficient_inventory":
		return OutcomeInsufficient
	case "event_not_found", "ticket_type_not_found", "ticket_type_event_mismatch",
		"invalid_quantity", "invalid_price":
		return OutcomeInvalidLine
	default:
		return OutcomeFailure
	}
}

func TicketsIssued(eventID string, seats int) {
	ticketsIssued.WithLabelValues(eventID).Add(float64(seats))
}

func CheckoutLine(outcome string) {
	checkoutLines.WithLabelValues(outcome).Inc()
}

func ObserveCheckoutDuration(d time.Duration) {
	checkoutDuration.Observe(d.Seconds())
}

func ValidationAttempt(result string) {
	validationAttempts.WithLabelValues(result).Inc()
}

func TicketCancelled() {
	ticketsCancelled.Inc()
}

func TicketTransferred() {
	ticketsTransferred.Inc()
}
