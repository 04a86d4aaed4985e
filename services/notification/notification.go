package notification

import (
	"context"
	"fmt"

	"homeservice/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// NotificationService sends FCM pushes to account holders.
type NotificationService interface {
	SendUserPushNotification(ctx context.Context, userID, title, body string, data map[string]string) error
	BookingConfirmed(ctx context.Context, b *models.Booking) error
}

// Sender is satisfied by *messaging.Client.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// TokenLookup loads the account holding the device token.
type TokenLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// FCMNotificationService is the production implementation.
type FCMNotificationService struct {
	Client Sender
	Users  TokenLookup
	Logger *zap.Logger
}

func NewFCMNotificationService(client Sender, users TokenLookup, logger *zap.Logger) (*FCMNotificationService, error) {
	if client == nil || users == nil {
		return nil, fmt.Errorf("notification service initialization error: client or user lookup is nil")
	}
	return &FCMNotificationService{Client: client, Users: users, Logger: logger}, nil
}

func (s *FCMNotificationService) SendUserPushNotification(ctx context.Context, userID, title, body string, data map[string]string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("SendUserPushNotification: could not find user %s: %w", userID, err)
	}
	if u.FCMToken == "" {
		return fmt.Errorf("SendUserPushNotification: user %s has no FCM token", userID)
	}
	if data == nil {
		data = map[string]string{}
	}
	if _, ok := data["role"]; !ok {
		data["role"] = string(u.Role)
	}

	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	id, err := s.Client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("SendUserPushNotification: failed to send FCM message: %w", err)
	}
	s.Logger.Debug("Push sent", zap.String("userID", userID), zap.String("messageID", id))
	return nil
}

func (s *FCMNotificationService) BookingConfirmed(ctx context.Context, b *models.Booking) error {
	title := "Booking confirmed"
	body := fmt.Sprintf("%s on %s at %s is confirmed.", b.ServiceTitle, b.Date, b.TimeSlot)
	if b.PaymentMethod == models.PaymentCash {
		body += fmt.Sprintf(" Please keep %s ready for the professional.", b.Total.StringFixed(2))
	}
	return s.SendUserPushNotification(ctx, b.CustomerID, title, body, map[string]string{
		"type":      "booking_confirmed",
		"bookingId": b.ID,
	})
}

// NoopNotifier is used when push credentials are not configured.
type NoopNotifier struct{}

func (NoopNotifier) SendUserPushNotification(context.Context, string, string, string, map[string]string) error {
	return nil
}

func (NoopNotifier) BookingConfirmed(context.Context, *models.Booking) error { return nil }
