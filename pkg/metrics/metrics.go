package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RSVPSubmissions records guest RSVP submissions by status (ATTENDING|DECLINED).
	RSVPSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "everafter_rsvp_submissions_total",
			Help: "Total number of RSVP submissions",
		},
		[]string{"status"},
	)

	// GiftClaims counts registry claim attempts and their outcome (claimed|already_claimed).
	GiftClaims = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "everafter_gift_claims_total",
			Help: "Total number of gift claim attempts",
		},
		[]string{"result"},
	)

	// BroadcastsSent counts broadcast deliveries by terminal status (sent|failed).
	BroadcastsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "everafter_broadcasts_total",
			Help: "Total number of broadcast delivery attempts",
		},
		[]string{"status"},
	)

	// SeatingRejections counts seat assignments refused by the capacity check.
	SeatingRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "everafter_seating_rejections_total",
			Help: "Seat assignments rejected because the table was full",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "everafter_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
