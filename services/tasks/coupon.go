package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const TypeCouponMarkUsed = "coupon:mark_used"

// CouponUsagePayload identifies one redemption. The booking id makes replays harmless.
type CouponUsagePayload struct {
	Code      string `json:"code"`
	BookingID string `json:"bookingId"`
}

// CouponUsageTaskID dedupes enqueues for the same booking.
func CouponUsageTaskID(bookingID string) string {
	return "coupon:" + bookingID
}

func NewCouponUsageTask(code, bookingID string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(CouponUsagePayload{Code: code, BookingID: bookingID})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode coupon usage payload: %w", err)
	}
	task := asynq.NewTask(TypeCouponMarkUsed, b)
	opts := []asynq.Option{
		asynq.TaskID(CouponUsageTaskID(bookingID)),
		asynq.MaxRetry(10),
		asynq.Queue("default"),
	}
	return task, opts, nil
}

// ParseCouponUsage decodes a task payload.
func ParseCouponUsage(task *asynq.Task) (CouponUsagePayload, error) {
	var p CouponUsagePayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid coupon usage payload: %w", err)
	}
	if p.Code == "" || p.BookingID == "" {
		return p, fmt.Errorf("coupon usage payload missing code or booking id")
	}
	return p, nil
}
