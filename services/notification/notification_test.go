package notification

import (
	"context"
	"errors"
	"testing"

	"homeservice/models"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockSender struct{ mock.Mock }

func (m *MockSender) Send(ctx context.Context, message *messaging.Message) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

type MockUsers struct{ mock.Mock }

func (m *MockUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestBookingConfirmed_SendsToCustomerDevice(t *testing.T) {
	sender, users := new(MockSender), new(MockUsers)
	users.On("GetByID", mock.Anything, "cust-1").Return(&models.User{ID: "cust-1", Role: models.RoleCustomer, FCMToken: "device-1"}, nil)
	sender.On("Send", mock.Anything, mock.MatchedBy(func(m *messaging.Message) bool {
		return m.Token == "device-1" && m.Data["bookingId"] == "b-1" && m.Data["role"] == "customer"
	})).Return("msg-1", nil)

	svc, err := NewFCMNotificationService(sender, users, zap.NewNop())
	require.NoError(t, err)

	err = svc.BookingConfirmed(context.Background(), &models.Booking{
		ID: "b-1", CustomerID: "cust-1", ServiceTitle: "AC Repair", Date: "2025-03-11", TimeSlot: "10:00",
		PaymentMethod: models.PaymentCash, Total: models.MoneyFromInt(920),
	})
	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestSendUserPushNotification_NoToken(t *testing.T) {
	sender, users := new(MockSender), new(MockUsers)
	users.On("GetByID", mock.Anything, "cust-1").Return(&models.User{ID: "cust-1"}, nil)
	users.On("GetByID", mock.Anything, "ghost").Return(nil, errors.New("not found"))

	svc := &FCMNotificationService{Client: sender, Users: users, Logger: zap.NewNop()}
	assert.Error(t, svc.SendUserPushNotification(context.Background(), "cust-1", "t", "b", nil))
	assert.Error(t, svc.SendUserPushNotification(context.Background(), "ghost", "t", "b", nil))
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestNewFCMNotificationService_RequiresDeps(t *testing.T) {
	_, err := NewFCMNotificationService(nil, new(MockUsers), zap.NewNop())
	assert.Error(t, err)
}
