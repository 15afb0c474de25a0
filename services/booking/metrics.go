package booking

import (
	"strconv"

	"quickbook/models"

	"github.com/prometheus/client_golang/prometheus"
)

var resolutionTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "quickbook",
		Subsystem: "booking",
		Name:      "resolutions_total",
		Help:      "Booking resolutions recorded at click time by handling and failsafe",
	},
	[]string{"handling", "failsafe", "internal_type"},
)

func init() {
	prometheus.MustRegister(resolutionTotal)
}

func recordResolution(bookingType string, res models.BookingResolution) {
	resolutionTotal.WithLabelValues(
		string(res.Handling),
		strconv.FormatBool(res.FailsafeActivated),
		strconv.FormatBool(IsInternalType(bookingType)),
	).Inc()
}
