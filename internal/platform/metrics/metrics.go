package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	DraftsSaved           prometheus.Counter
	DraftsReset           prometheus.Counter
	OTPCodesSent          *prometheus.CounterVec
	OTPCodesVerified      *prometheus.CounterVec
	VerificationSessions  prometheus.Counter
	VerificationPollTicks prometheus.Counter
	ApplicationsSubmitted prometheus.Counter
	RequestLatency        *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		DraftsSaved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sellerflow_drafts_saved_total",
			Help: "Total number of draft flushes to the draft store",
		}),
		DraftsReset: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sellerflow_drafts_reset_total",
			Help: "Total number of confirmed draft resets",
		}),
		OTPCodesSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sellerflow_otp_codes_sent_total",
			Help: "One-time codes dispatched, by channel",
		}, []string{"channel"}),
		OTPCodesVerified: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sellerflow_otp_codes_verified_total",
			Help: "One-time code verification outcomes, by channel and result",
		}, []string{"channel", "result"}),
		VerificationSessions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sellerflow_verification_sessions_total",
			Help: "Identity verification sessions created",
		}),
		VerificationPollTicks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sellerflow_verification_poll_ticks_total",
			Help: "Status checks issued by the verification poller",
		}),
		ApplicationsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sellerflow_applications_submitted_total",
			Help: "Seller applications submitted for review",
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sellerflow_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
