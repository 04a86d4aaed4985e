package cron

import (
	"context"
	"errors"
	"time"

	"homeservice/config"
	"homeservice/database"
	"homeservice/services/tasks"

	"github.com/hibiken/asynq"
	robfig "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ExpirySchedule runs the unpaid-booking sweep.
const ExpirySchedule = "@every 5m"

// CouponMarker records a redemption.
type CouponMarker interface {
	MarkUsed(ctx context.Context, code, bookingID string) error
}

// PendingExpirer cancels bookings whose payment window elapsed.
type PendingExpirer interface {
	ExpireStalePending(ctx context.Context) (int64, error)
}

// RedisOpt is the asynq connection for the queue DB.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// Worker owns the task server and the periodic scheduler.
type Worker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	sched  *robfig.Cron
	logger *zap.Logger
}

func NewWorker(coupons CouponMarker, bookings PendingExpirer, logger *zap.Logger) (*Worker, error) {
	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeCouponMarkUsed, HandleCouponUsage(coupons, logger))

	sched := robfig.New()
	if _, err := sched.AddFunc(ExpirySchedule, ExpirePendingJob(bookings, logger)); err != nil {
		return nil, err
	}

	return &Worker{srv: srv, mux: mux, sched: sched, logger: logger}, nil
}

// Start runs the task server in the background, retrying startup with backoff.
func (w *Worker) Start() {
	w.sched.Start()

	go func() {
		w.logger.Info("Starting task worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := w.srv.Start(w.mux)
			if err == nil {
				return
			}
			w.logger.Error("Task worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				w.logger.Error("Task worker giving up; coupon usage falls back to inline writes")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
}

// Stop waits for the running sweep and in-flight tasks.
func (w *Worker) Stop() {
	<-w.sched.Stop().Done()
	w.srv.Shutdown()
}

func HandleCouponUsage(coupons CouponMarker, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseCouponUsage(task)
		if err != nil {
			logger.Error("Dropping malformed coupon usage task", zap.Error(err))
			return errors.Join(err, asynq.SkipRetry)
		}
		if err := coupons.MarkUsed(ctx, p.Code, p.BookingID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				logger.Error("Coupon for usage task no longer exists", zap.String("code", p.Code), zap.String("bookingID", p.BookingID))
				return errors.Join(err, asynq.SkipRetry)
			}
			logger.Warn("Coupon usage task failed", zap.String("bookingID", p.BookingID), zap.Error(err))
			return err
		}
		return nil
	}
}

func ExpirePendingJob(bookings PendingExpirer, logger *zap.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := bookings.ExpireStalePending(ctx); err != nil {
			logger.Error("Pending booking sweep failed", zap.Error(err))
		}
	}
}
