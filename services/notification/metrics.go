package notification

import (
	"github.com/prometheus/client_golang/prometheus"
)

var deliveryTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "quickbook",
		Subsystem: "notification",
		Name:      "deliveries_total",
		Help:      "Staff notification deliveries by channel and outcome",
	},
	[]string{"channel", "outcome"}, // outcome: delivered, exhausted, rejected
)

var deliveryAttempts = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "quickbook",
		Subsystem: "notification",
		Name:      "delivery_attempts",
		Help:      "Attempts spent per staff notification delivery",
		Buckets:   []float64{1, 2, 3, 4, 5},
	},
	[]string{"channel"},
)

func init() {
	prometheus.MustRegister(deliveryTotal)
	prometheus.MustRegister(deliveryAttempts)
}

func recordDelivery(channel string, r RetryResult) {
	outcome := "delivered"
	switch {
	case r.Success:
	case IsRetryable(r.Err):
		outcome = "exhausted"
	default:
		outcome = "rejected"
	}
	deliveryTotal.WithLabelValues(channel, outcome).Inc()
	deliveryAttempts.WithLabelValues(channel).Observe(float64(r.Attempts))
}
