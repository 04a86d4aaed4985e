package coupon

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"homeservice/database"
	"homeservice/models"
	"homeservice/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockCouponRepo struct{ mock.Mock }

func (m *MockCouponRepo) Create(ctx context.Context, c *models.Coupon) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCouponRepo) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Coupon), args.Error(1)
}

func (m *MockCouponRepo) List(ctx context.Context) ([]models.Coupon, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Coupon), args.Error(1)
}

func (m *MockCouponRepo) ListAvailable(ctx context.Context, now time.Time) ([]models.Coupon, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]models.Coupon), args.Error(1)
}

func (m *MockCouponRepo) MarkUsed(ctx context.Context, code, bookingID string) (bool, error) {
	args := m.Called(ctx, code, bookingID)
	return args.Bool(0), args.Error(1)
}

var fixedNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newService(repo *MockCouponRepo) *DefaultCouponService {
	svc := NewCouponService(repo, zap.NewNop())
	svc.Now = func() time.Time { return fixedNow }
	return svc
}

func sampleCoupon() *models.Coupon {
	ceiling := models.MoneyFromInt(80)
	return &models.Coupon{
		Code:            "SAVE10",
		DiscountType:    models.DiscountPercentage,
		Value:           models.MoneyFromInt(10),
		MaxDiscount:     &ceiling,
		MinBookingValue: models.MoneyFromInt(500),
		ExpiryDate:      fixedNow.Add(24 * time.Hour),
		UsageLimit:      100,
		UsedCount:       3,
		IsActive:        true,
	}
}

func assertRule(t *testing.T, err error, code string) {
	t.Helper()
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus())
}

func TestValidate_Success(t *testing.T) {
	repo := new(MockCouponRepo)
	repo.On("GetByCode", mock.Anything, "SAVE10").Return(sampleCoupon(), nil)

	d, err := newService(repo).Validate(context.Background(), " save10 ", models.MoneyFromInt(1000))
	require.NoError(t, err)
	assert.Equal(t, models.DiscountPercentage, d.Type)
	assert.Equal(t, "10", d.Value.String())
	require.NotNil(t, d.MaxDiscount)
	assert.Equal(t, "80", d.MaxDiscount.String())
	repo.AssertExpectations(t)
}

func TestValidate_NotFound(t *testing.T) {
	repo := new(MockCouponRepo)
	repo.On("GetByCode", mock.Anything, "NOPE").Return(nil, fmt.Errorf("wrapped: %w", database.ErrNotFound))

	_, err := newService(repo).Validate(context.Background(), "nope", models.MoneyFromInt(1000))
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
	appErr, _ := utils.AsAppError(err)
	assert.Equal(t, utils.CodeCouponNotFound, appErr.Code)
}

func TestValidate_RuleFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *models.Coupon)
		value  int64
		code   string
	}{
		{"expired", func(c *models.Coupon) { c.ExpiryDate = fixedNow.Add(-time.Minute) }, 1000, utils.CodeCouponExpired},
		{"expires exactly now", func(c *models.Coupon) { c.ExpiryDate = fixedNow }, 1000, utils.CodeCouponExpired},
		{"minimum not met", func(c *models.Coupon) {}, 499, utils.CodeMinimumNotMet},
		{"usage exceeded", func(c *models.Coupon) { c.UsedCount = c.UsageLimit }, 1000, utils.CodeUsageExceeded},
		{"inactive", func(c *models.Coupon) { c.IsActive = false }, 1000, utils.CodeCouponInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sampleCoupon()
			tt.mutate(c)
			repo := new(MockCouponRepo)
			repo.On("GetByCode", mock.Anything, "SAVE10").Return(c, nil)

			_, err := newService(repo).Validate(context.Background(), "SAVE10", models.MoneyFromInt(tt.value))
			assertRule(t, err, tt.code)
		})
	}
}

func TestValidate_UnlimitedUsage(t *testing.T) {
	c := sampleCoupon()
	c.UsageLimit = 0
	c.UsedCount = 10000
	_, err := Check(c, models.MoneyFromInt(600), fixedNow)
	assert.NoError(t, err)
}

func TestMarkUsed_IdempotentRepeat(t *testing.T) {
	repo := new(MockCouponRepo)
	repo.On("MarkUsed", mock.Anything, "SAVE10", "b-1").Return(true, nil).Once()
	repo.On("MarkUsed", mock.Anything, "SAVE10", "b-1").Return(false, nil).Once()
	svc := newService(repo)

	require.NoError(t, svc.MarkUsed(context.Background(), "save10", "b-1"))
	require.NoError(t, svc.MarkUsed(context.Background(), "save10", "b-1"))
	repo.AssertNumberOfCalls(t, "MarkUsed", 2)
}

func TestCreate_Validation(t *testing.T) {
	svc := newService(new(MockCouponRepo))

	_, err := svc.Create(context.Background(), models.CreateCouponRequest{
		Code:         "BIG",
		DiscountType: models.DiscountPercentage,
		Value:        models.MoneyFromInt(150),
		ExpiryDate:   fixedNow.Add(time.Hour),
	})
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "value", appErr.Field)

	_, err = svc.Create(context.Background(), models.CreateCouponRequest{
		Code:         "OLD",
		DiscountType: models.DiscountFixed,
		Value:        models.MoneyFromInt(50),
		ExpiryDate:   fixedNow.Add(-time.Hour),
	})
	appErr, ok = utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "expiryDate", appErr.Field)
}

func TestCreate_Duplicate(t *testing.T) {
	repo := new(MockCouponRepo)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Coupon")).Return(fmt.Errorf("insert: %w", database.ErrDuplicate))

	_, err := newService(repo).Create(context.Background(), models.CreateCouponRequest{
		Code:         "flat50",
		DiscountType: models.DiscountFixed,
		Value:        models.MoneyFromInt(50),
		ExpiryDate:   fixedNow.Add(time.Hour),
	})
	assert.True(t, utils.IsKind(err, utils.KindConflict))
}
