package cron

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"homeservice/database"
	"homeservice/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockCouponMarker struct{ mock.Mock }

func (m *MockCouponMarker) MarkUsed(ctx context.Context, code, bookingID string) error {
	return m.Called(ctx, code, bookingID).Error(0)
}

type MockExpirer struct{ mock.Mock }

func (m *MockExpirer) ExpireStalePending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestHandleCouponUsage(t *testing.T) {
	marker := new(MockCouponMarker)
	marker.On("MarkUsed", mock.Anything, "SAVE10", "b-1").Return(nil)
	handler := HandleCouponUsage(marker, zap.NewNop())

	task, _, err := tasks.NewCouponUsageTask("SAVE10", "b-1")
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), task))
	marker.AssertExpectations(t)
}

func TestHandleCouponUsage_RetryPolicy(t *testing.T) {
	marker := new(MockCouponMarker)
	marker.On("MarkUsed", mock.Anything, "GONE", "b-1").Return(fmt.Errorf("mark: %w", database.ErrNotFound))
	marker.On("MarkUsed", mock.Anything, "FLAKY", "b-2").Return(errors.New("timeout"))
	handler := HandleCouponUsage(marker, zap.NewNop())

	err := handler(context.Background(), asynq.NewTask(tasks.TypeCouponMarkUsed, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	gone, _, _ := tasks.NewCouponUsageTask("GONE", "b-1")
	assert.ErrorIs(t, handler(context.Background(), gone), asynq.SkipRetry)

	flaky, _, _ := tasks.NewCouponUsageTask("FLAKY", "b-2")
	err = handler(context.Background(), flaky)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestExpirePendingJob(t *testing.T) {
	expirer := new(MockExpirer)
	expirer.On("ExpireStalePending", mock.Anything).Return(int64(3), nil).Once()
	expirer.On("ExpireStalePending", mock.Anything).Return(int64(0), errors.New("mongo down")).Once()

	job := ExpirePendingJob(expirer, zap.NewNop())
	job()
	job()
	expirer.AssertNumberOfCalls(t, "ExpireStalePending", 2)
}
