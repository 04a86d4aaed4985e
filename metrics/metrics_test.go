package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("POST", "/api/bookings", "201", 0.2)
	RecordHTTPRequest("POST", "/api/bookings", "201", 0.1)
	RecordHTTPRequest("POST", "/api/bookings", "400", 0.05)

	assert.Equal(t, float64(2), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/bookings", "201")))
	assert.Equal(t, float64(1), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/bookings", "400")))
	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration))
}

func TestRecordConfirmation(t *testing.T) {
	PaymentConfirmationsTotal.Reset()

	RecordConfirmation("online")
	RecordConfirmation("cash")
	RecordConfirmation("online")

	assert.Equal(t, float64(2), testutil.ToFloat64(PaymentConfirmationsTotal.WithLabelValues("online")))
	assert.Equal(t, float64(1), testutil.ToFloat64(PaymentConfirmationsTotal.WithLabelValues("cash")))
}

func TestRecordExpiredBookings(t *testing.T) {
	before := testutil.ToFloat64(ExpiredBookingsTotal)
	RecordExpiredBookings(4)
	RecordExpiredBookings(0)
	assert.Equal(t, before+4, testutil.ToFloat64(ExpiredBookingsTotal))
}

func TestRecordCouponRedemption(t *testing.T) {
	CouponRedemptionsTotal.Reset()

	RecordCouponRedemption("queued")
	RecordCouponRedemption("failed")

	assert.Equal(t, float64(1), testutil.ToFloat64(CouponRedemptionsTotal.WithLabelValues("queued")))
	assert.Equal(t, float64(1), testutil.ToFloat64(CouponRedemptionsTotal.WithLabelValues("failed")))
}
