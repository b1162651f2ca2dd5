package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	fcfsBooking = "fcfs_booking"

	// Claim metrics
	claimAttemptsTotal = "claim_attempts_total"

	// Outbox metrics
	outboxDeliveriesTotal = "outbox_deliveries_total"

	// Labels
	claimResultLabel    = "result"
	deliveryResultLabel = "result"
)

// Claim attempt results.
const (
	ClaimResultWon      = "won"
	ClaimResultReplayed = "replayed"
	ClaimResultConflict = "conflict"
	ClaimResultNotFound = "not_found"
	ClaimResultError    = "error"
)

// Delivery attempt results.
const (
	DeliveryResultSent    = "sent"
	DeliveryResultRetried = "retried"
	DeliveryResultParked  = "parked"
)

var claimAttemptsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: fcfsBooking,
		Name:      claimAttemptsTotal,
		Help:      "number of claim attempts partitioned by result",
	},
	[]string{claimResultLabel},
)

var outboxDeliveriesTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: fcfsBooking,
		Name:      outboxDeliveriesTotal,
		Help:      "number of outbox delivery attempts partitioned by result",
	},
	[]string{deliveryResultLabel},
)

func IncreaseClaimAttemptsMetric(result string) {
	labels := prometheus.Labels{
		claimResultLabel: result,
	}
	claimAttemptsTotalMetric.With(labels).Inc()
}

func IncreaseOutboxDeliveriesMetric(result string) {
	labels := prometheus.Labels{
		deliveryResultLabel: result,
	}
	outboxDeliveriesTotalMetric.With(labels).Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(claimAttemptsTotalMetric)
	prometheus.MustRegister(outboxDeliveriesTotalMetric)
}
