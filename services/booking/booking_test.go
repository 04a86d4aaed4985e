package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"homeservice/database"
	bookingRepo "homeservice/database/repository/booking"
	"homeservice/models"
	"homeservice/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockBookingRepo struct{ mock.Mock }

func (m *MockBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingRepo) GetByPaymentOrder(ctx context.Context, orderID string) (*models.Booking, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingRepo) ListByProvider(ctx context.Context, providerID string) ([]models.Booking, error) {
	args := m.Called(ctx, providerID)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingRepo) AttachPaymentOrder(ctx context.Context, id string, details models.PaymentDetails) (bool, error) {
	args := m.Called(ctx, id, details)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepo) Confirm(ctx context.Context, id string, c bookingRepo.Confirmation) (bool, error) {
	args := m.Called(ctx, id, c)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepo) Transition(ctx context.Context, id string, from, to models.BookingStatus, reason string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, from, to, reason, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepo) AssignProvider(ctx context.Context, id, providerID string) error {
	return m.Called(ctx, id, providerID).Error(0)
}

func (m *MockBookingRepo) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepo) RecordLatePayment(ctx context.Context, id, paymentID string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, paymentID, at)
	return args.Bool(0), args.Error(1)
}

type MockServiceLookup struct{ mock.Mock }

func (m *MockServiceLookup) GetByID(ctx context.Context, id string) (*models.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

type MockUserLookup struct{ mock.Mock }

func (m *MockUserLookup) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockCouponValidator struct{ mock.Mock }

func (m *MockCouponValidator) Validate(ctx context.Context, code string, bookingValue models.Money) (*models.DiscountDescriptor, error) {
	args := m.Called(ctx, code, bookingValue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DiscountDescriptor), args.Error(1)
}

var testNow = time.Date(2025, 3, 10, 11, 20, 0, 0, time.UTC)

type fixture struct {
	repo     *MockBookingRepo
	services *MockServiceLookup
	users    *MockUserLookup
	coupons  *MockCouponValidator
	svc      *DefaultBookingService
}

func newFixture() *fixture {
	f := &fixture{
		repo:     new(MockBookingRepo),
		services: new(MockServiceLookup),
		users:    new(MockUserLookup),
		coupons:  new(MockCouponValidator),
	}
	f.svc = &DefaultBookingService{
		Repo:       f.repo,
		Services:   f.services,
		Users:      f.users,
		Coupons:    f.coupons,
		Logger:     zap.NewNop(),
		Location:   time.UTC,
		PendingTTL: 30 * time.Minute,
		Now:        func() time.Time { return testNow },
	}
	return f
}

var customer = models.Identity{UserID: "cust-1", Role: models.RoleCustomer}

func acRepair() *models.Service {
	return &models.Service{ID: "svc-1", Title: "AC Repair", BasePrice: models.MoneyFromInt(500), DurationMinutes: 60, IsActive: true}
}

func validAddress() *models.Address {
	return &models.Address{Street: "12 MG Road", City: "Pune", State: "MH", PostalCode: "411001"}
}

func validRequest() models.CreateBookingRequest {
	return models.CreateBookingRequest{
		ServiceID:     "svc-1",
		Date:          "2025-03-11",
		TimeSlot:      "10:00",
		Quantity:      2,
		Address:       validAddress(),
		PaymentMethod: models.PaymentOnline,
	}
}

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, utils.KindValidation, appErr.Kind)
	assert.Equal(t, field, appErr.Field)
}

func TestCreate_WithCouponPersistsPendingBooking(t *testing.T) {
	f := newFixture()
	ceiling := models.MoneyFromInt(80)
	f.services.On("GetByID", mock.Anything, "svc-1").Return(acRepair(), nil)
	f.coupons.On("Validate", mock.Anything, "SAVE10", mock.MatchedBy(func(v models.Money) bool {
		return v.Equal(decimal.NewFromInt(1000))
	})).Return(&models.DiscountDescriptor{
		Code: "SAVE10", Type: models.DiscountPercentage, Value: models.MoneyFromInt(10), MaxDiscount: &ceiling,
	}, nil)
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Booking")).Return(nil)

	req := validRequest()
	req.CouponCode = "SAVE10"
	b, err := f.svc.Create(context.Background(), customer, req)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, b.Status)
	assert.Equal(t, models.PaymentPending, b.PaymentStatus)
	assert.True(t, b.Subtotal.Equal(decimal.NewFromInt(1000)))
	assert.True(t, b.Discount.Equal(decimal.NewFromInt(80)))
	assert.True(t, b.Total.Equal(decimal.NewFromInt(920)))
	require.NotNil(t, b.CouponCode)
	assert.Equal(t, "SAVE10", *b.CouponCode)
	require.NotNil(t, b.ExpiresAt)
	assert.Equal(t, testNow.Add(30*time.Minute), *b.ExpiresAt)
	assert.Equal(t, "cust-1", b.CustomerID)
	f.repo.AssertExpectations(t)
}

func TestCreate_CashHasNoExpiry(t *testing.T) {
	f := newFixture()
	f.services.On("GetByID", mock.Anything, "svc-1").Return(acRepair(), nil)
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Booking")).Return(nil)

	req := validRequest()
	req.PaymentMethod = models.PaymentCash
	b, err := f.svc.Create(context.Background(), customer, req)
	require.NoError(t, err)
	assert.Nil(t, b.ExpiresAt)
	assert.Nil(t, b.CouponCode)
	assert.True(t, b.Discount.IsZero())
}

func TestCreate_UsesSavedAddress(t *testing.T) {
	f := newFixture()
	f.services.On("GetByID", mock.Anything, "svc-1").Return(acRepair(), nil)
	f.users.On("GetByID", mock.Anything, "cust-1").Return(&models.User{ID: "cust-1", Address: validAddress()}, nil)
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Booking")).Return(nil)

	req := validRequest()
	req.Address = nil
	req.UseSavedAddress = true
	b, err := f.svc.Create(context.Background(), customer, req)
	require.NoError(t, err)
	assert.Equal(t, "411001", b.Address.PostalCode)
}

func TestCreate_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.CreateBookingRequest)
		field  string
	}{
		{"quantity too high", func(r *models.CreateBookingRequest) { r.Quantity = 11 }, "quantity"},
		{"quantity zero", func(r *models.CreateBookingRequest) { r.Quantity = 0 }, "quantity"},
		{"bad payment method", func(r *models.CreateBookingRequest) { r.PaymentMethod = "card" }, "paymentMethod"},
		{"malformed date", func(r *models.CreateBookingRequest) { r.Date = "11-03-2025" }, "date"},
		{"past date", func(r *models.CreateBookingRequest) { r.Date = "2025-03-09" }, "date"},
		{"slot outside hours", func(r *models.CreateBookingRequest) { r.TimeSlot = "21:00" }, "timeSlot"},
		{"slot already passed today", func(r *models.CreateBookingRequest) {
			r.Date = "2025-03-10"
			r.TimeSlot = "09:00"
		}, "timeSlot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := validRequest()
			tt.mutate(&req)

			_, err := f.svc.Create(context.Background(), customer, req)
			requireField(t, err, tt.field)
			f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreate_RejectsClosingSlotAfterClosing(t *testing.T) {
	f := newFixture()
	f.svc.Now = func() time.Time { return time.Date(2025, 3, 10, 20, 10, 0, 0, time.UTC) }
	req := validRequest()
	req.Date = "2025-03-10"
	req.TimeSlot = "20:00"

	_, err := f.svc.Create(context.Background(), customer, req)
	requireField(t, err, "date")
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreate_AddressFailures(t *testing.T) {
	f := newFixture()
	f.services.On("GetByID", mock.Anything, "svc-1").Return(acRepair(), nil)
	f.users.On("GetByID", mock.Anything, "cust-1").Return(&models.User{ID: "cust-1"}, nil)

	req := validRequest()
	req.Address = nil
	_, err := f.svc.Create(context.Background(), customer, req)
	requireField(t, err, "address")

	req = validRequest()
	req.Address.PostalCode = "41100"
	_, err = f.svc.Create(context.Background(), customer, req)
	requireField(t, err, "address.postalCode")

	req = validRequest()
	req.Address.PostalCode = "41100A"
	_, err = f.svc.Create(context.Background(), customer, req)
	requireField(t, err, "address.postalCode")

	req = validRequest()
	req.Address = nil
	req.UseSavedAddress = true
	_, err = f.svc.Create(context.Background(), customer, req)
	requireField(t, err, "address")
}

func TestCreate_ServiceMissingOrInactive(t *testing.T) {
	f := newFixture()
	f.services.On("GetByID", mock.Anything, "svc-1").Return(nil, fmt.Errorf("lookup: %w", database.ErrNotFound)).Once()

	_, err := f.svc.Create(context.Background(), customer, validRequest())
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	inactive := acRepair()
	inactive.IsActive = false
	f.services.On("GetByID", mock.Anything, "svc-1").Return(inactive, nil).Once()
	_, err = f.svc.Create(context.Background(), customer, validRequest())
	requireField(t, err, "serviceId")
}

func TestCreate_CouponRuleFailurePropagates(t *testing.T) {
	f := newFixture()
	f.services.On("GetByID", mock.Anything, "svc-1").Return(acRepair(), nil)
	f.coupons.On("Validate", mock.Anything, "BIG", mock.Anything).
		Return(nil, utils.NewRuleError(utils.CodeMinimumNotMet, "couponCode", "Minimum not met"))

	req := validRequest()
	req.CouponCode = "BIG"
	_, err := f.svc.Create(context.Background(), customer, req)
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, utils.CodeMinimumNotMet, appErr.Code)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestQuote_RevalidatesCouponForQuantity(t *testing.T) {
	f := newFixture()
	f.services.On("GetByID", mock.Anything, "svc-1").Return(acRepair(), nil)
	f.coupons.On("Validate", mock.Anything, "FLAT100", mock.MatchedBy(func(v models.Money) bool {
		return v.Equal(decimal.NewFromInt(1500))
	})).Return(&models.DiscountDescriptor{Code: "FLAT100", Type: models.DiscountFixed, Value: models.MoneyFromInt(100)}, nil)

	q, err := f.svc.Quote(context.Background(), models.QuoteRequest{ServiceID: "svc-1", Quantity: 3, CouponCode: "FLAT100"})
	require.NoError(t, err)
	assert.Equal(t, "1400", q.Total.String())
	f.coupons.AssertExpectations(t)
}

func TestCancel_RejectsCompletedBooking(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByID", mock.Anything, "b-1").Return(&models.Booking{ID: "b-1", CustomerID: "cust-1", Status: models.StatusCompleted}, nil)

	_, err := f.svc.Cancel(context.Background(), customer, "b-1", "")
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, utils.KindConflict, appErr.Kind)
	assert.Equal(t, "Booking is already completed", appErr.Message)
	f.repo.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancel_PendingByOwner(t *testing.T) {
	f := newFixture()
	pending := &models.Booking{ID: "b-1", CustomerID: "cust-1", Status: models.StatusPending, PaymentMethod: models.PaymentCash}
	cancelled := *pending
	cancelled.Status = models.StatusCancelled
	f.repo.On("GetByID", mock.Anything, "b-1").Return(pending, nil).Once()
	f.repo.On("Transition", mock.Anything, "b-1", models.StatusPending, models.StatusCancelled, "cancelled_by_customer", testNow).Return(true, nil)
	f.repo.On("GetByID", mock.Anything, "b-1").Return(&cancelled, nil).Once()

	b, err := f.svc.Cancel(context.Background(), customer, "b-1", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, b.Status)
}

func TestCancel_LostRaceIsConflict(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByID", mock.Anything, "b-1").Return(&models.Booking{ID: "b-1", CustomerID: "cust-1", Status: models.StatusPending}, nil)
	f.repo.On("Transition", mock.Anything, "b-1", models.StatusPending, models.StatusCancelled, mock.Anything, mock.Anything).Return(false, nil)

	_, err := f.svc.Cancel(context.Background(), customer, "b-1", "")
	assert.True(t, utils.IsKind(err, utils.KindConflict))
}

func TestCancel_OtherCustomerForbidden(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByID", mock.Anything, "b-1").Return(&models.Booking{ID: "b-1", CustomerID: "someone-else", Status: models.StatusPending}, nil)

	_, err := f.svc.Cancel(context.Background(), customer, "b-1", "")
	assert.True(t, utils.IsKind(err, utils.KindForbidden))
}

func TestComplete_OnlyAssignedProvider(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByID", mock.Anything, "b-1").Return(&models.Booking{ID: "b-1", ProviderID: "prov-1", Status: models.StatusConfirmed}, nil)

	_, err := f.svc.Complete(context.Background(), models.Identity{UserID: "prov-2", Role: models.RoleProvider}, "b-1")
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	_, err = f.svc.Complete(context.Background(), customer, "b-1")
	assert.True(t, utils.IsKind(err, utils.KindForbidden))
}

func TestComplete_PendingIsInvalidTransition(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByID", mock.Anything, "b-1").Return(&models.Booking{ID: "b-1", ProviderID: "prov-1", Status: models.StatusPending}, nil)

	_, err := f.svc.Complete(context.Background(), models.Identity{UserID: "prov-1", Role: models.RoleProvider}, "b-1")
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, utils.CodeInvalidTransition, appErr.Code)
}

func TestExpireStalePending(t *testing.T) {
	f := newFixture()
	f.repo.On("ExpirePending", mock.Anything, testNow).Return(int64(2), nil)

	n, err := f.svc.ExpireStalePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByID", mock.Anything, "nope").Return(nil, fmt.Errorf("find: %w", database.ErrNotFound))

	_, err := f.svc.Get(context.Background(), customer, "nope")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestStatusMachine(t *testing.T) {
	assert.True(t, models.StatusPending.CanTransitionTo(models.StatusConfirmed))
	assert.True(t, models.StatusPending.CanTransitionTo(models.StatusCancelled))
	assert.False(t, models.StatusPending.CanTransitionTo(models.StatusCompleted))
	assert.True(t, models.StatusConfirmed.CanTransitionTo(models.StatusCompleted))
	assert.False(t, models.StatusCompleted.CanTransitionTo(models.StatusCancelled))
	assert.True(t, models.StatusCancelled.IsTerminal())
	assert.False(t, models.StatusConfirmed.IsTerminal())

	status, err := models.ParseBookingStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, status)
	_, err = models.ParseBookingStatus("archived")
	assert.Error(t, err)
}
