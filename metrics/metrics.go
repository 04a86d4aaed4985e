package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeservice_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "homeservice_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeservice_bookings_total",
			Help: "Bookings by resulting status and payment method",
		},
		[]string{"status", "payment_method"},
	)

	PaymentConfirmationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeservice_payment_confirmations_total",
			Help: "Bookings moved from pending to confirmed",
		},
		[]string{"payment_method"},
	)

	PaymentFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeservice_payment_failures_total",
			Help: "Gateway failures by stage (initiation, verification)",
		},
		[]string{"stage", "gateway"},
	)

	CouponRedemptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeservice_coupon_redemptions_total",
			Help: "Coupon usage recording attempts by outcome",
		},
		[]string{"outcome"},
	)

	ExpiredBookingsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "homeservice_expired_bookings_total",
			Help: "Online bookings cancelled because payment never completed",
		},
	)

	FeedbackSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeservice_feedback_submissions_total",
			Help: "Feedback writes by kind (created, edited)",
		},
		[]string{"kind"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(status, paymentMethod string) {
	BookingsTotal.WithLabelValues(status, paymentMethod).Inc()
}

func RecordConfirmation(paymentMethod string) {
	PaymentConfirmationsTotal.WithLabelValues(paymentMethod).Inc()
}

func RecordPaymentFailure(stage, gateway string) {
	PaymentFailuresTotal.WithLabelValues(stage, gateway).Inc()
}

func RecordCouponRedemption(outcome string) {
	CouponRedemptionsTotal.WithLabelValues(outcome).Inc()
}

func RecordExpiredBookings(n int64) {
	ExpiredBookingsTotal.Add(float64(n))
}

func RecordFeedback(kind string) {
	FeedbackSubmissionsTotal.WithLabelValues(kind).Inc()
}
