package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"homeservice/database"
	bookingRepo "homeservice/database/repository/booking"
	"homeservice/metrics"
	"homeservice/models"
	"homeservice/services/tasks"
	"homeservice/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// PaymentService takes a pending booking to confirmed, online or in cash.
type PaymentService interface {
	InitiateOnline(ctx context.Context, identity models.Identity, bookingID string) (*models.PaymentOrder, error)
	VerifyOnline(ctx context.Context, identity models.Identity, bookingID string, req models.VerifyPaymentRequest) (*models.Booking, error)
	ConfirmCash(ctx context.Context, identity models.Identity, bookingID string) (*models.Booking, error)
	HandleStripeWebhook(ctx context.Context, payload []byte, signatureHeader string) error
}

// CouponRecorder records a redemption against a booking.
type CouponRecorder interface {
	MarkUsed(ctx context.Context, code, bookingID string) error
}

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Notifier pushes a confirmation to the customer.
type Notifier interface {
	BookingConfirmed(ctx context.Context, b *models.Booking) error
}

// DefaultPaymentService is the production implementation.
type DefaultPaymentService struct {
	Bookings bookingRepo.BookingRepository
	Gateway  Gateway
	Coupons  CouponRecorder
	Tasks    TaskEnqueuer
	Notifier Notifier
	Logger   *zap.Logger

	Currency       string
	SupportContact string
	WebhookSecret  string
	Now            func() time.Time
}

func (s *DefaultPaymentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// InitiateOnline opens a gateway order for the booking total. Calling it again
// for an unchanged booking returns the order already stored.
func (s *DefaultPaymentService) InitiateOnline(ctx context.Context, identity models.Identity, bookingID string) (*models.PaymentOrder, error) {
	b, err := s.loadOwned(ctx, identity, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.StatusPending {
		return nil, utils.NewConflictError(utils.CodeInvalidTransition, fmt.Sprintf("Booking is already %s", b.Status))
	}
	if b.PaymentMethod != models.PaymentOnline {
		return nil, utils.NewValidationError("paymentMethod", "This booking is set to be paid in cash")
	}

	amount := b.Total.ToMinorUnits()
	if amount <= 0 {
		return nil, utils.NewValidationError("paymentMethod", "Nothing to pay online for this booking, confirm it as cash")
	}
	if p := b.Payment; p != nil && p.OrderID != "" && p.AmountMinor == amount && p.Gateway == s.Gateway.Name() {
		return s.order(b, *p), nil
	}

	orderID, err := s.Gateway.CreateOrder(ctx, amount, s.Currency, b.ID)
	if err != nil {
		metrics.RecordPaymentFailure("initiation", s.Gateway.Name())
		s.Logger.Error("Payment order creation failed",
			zap.String("bookingID", b.ID), zap.String("gateway", s.Gateway.Name()), zap.Error(err))
		return nil, utils.NewPaymentInitiationError("Could not start the payment, please try again", err)
	}

	details := models.PaymentDetails{
		Gateway:     s.Gateway.Name(),
		OrderID:     orderID,
		AmountMinor: amount,
		Currency:    s.Currency,
	}
	ok, err := s.Bookings.AttachPaymentOrder(ctx, b.ID, details)
	if err != nil {
		return nil, utils.NewInternalError("failed to store payment order", err)
	}
	if !ok {
		return nil, utils.NewConflictError(utils.CodeInvalidTransition, "Booking is no longer awaiting payment")
	}

	s.Logger.Info("Payment order created",
		zap.String("bookingID", b.ID), zap.String("orderID", orderID), zap.Int64("amountMinor", amount))
	return s.order(b, details), nil
}

// VerifyOnline checks the gateway callback and confirms the booking. Any
// doubt leaves the booking pending.
func (s *DefaultPaymentService) VerifyOnline(ctx context.Context, identity models.Identity, bookingID string, req models.VerifyPaymentRequest) (*models.Booking, error) {
	b, err := s.loadOwned(ctx, identity, bookingID)
	if err != nil {
		return nil, err
	}

	if b.Status == models.StatusConfirmed && b.Payment != nil && b.Payment.OrderID == req.OrderID {
		return b, nil
	}
	if b.Status == models.StatusCancelled && b.Payment != nil && b.Payment.OrderID == req.OrderID {
		return nil, s.verifyLate(ctx, b, req)
	}
	if b.Status != models.StatusPending {
		return nil, utils.NewConflictError(utils.CodeInvalidTransition, fmt.Sprintf("Booking is already %s", b.Status))
	}
	if b.Payment == nil || b.Payment.OrderID == "" || b.Payment.OrderID != req.OrderID {
		return nil, s.verificationFailure(b, utils.CodeOrderMismatch, "order id does not match booking", nil)
	}
	if b.Payment.AmountMinor != b.Total.ToMinorUnits() || !strings.EqualFold(b.Payment.Currency, s.Currency) {
		return nil, s.verificationFailure(b, utils.CodeAmountMismatch, "order amount does not match booking total", nil)
	}

	ok, err := s.Gateway.VerifyPayment(ctx, req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		return nil, s.verificationFailure(b, utils.CodeGatewayUnavailable, "gateway lookup failed", err)
	}
	if !ok {
		return nil, s.verificationFailure(b, utils.CodeSignatureMismatch, "payment could not be verified", nil)
	}

	confirmed, err := s.ConfirmPayment(ctx, b, bookingRepo.Confirmation{
		Method:        models.PaymentOnline,
		PaymentStatus: models.PaymentPaid,
		PaymentID:     req.PaymentID,
		At:            s.now(),
	})
	if utils.IsKind(err, utils.KindConflict) {
		// Cancelled between load and confirm; the signature is already verified.
		recorded, lateErr := s.recordLatePayment(ctx, b.ID, req.PaymentID)
		if lateErr != nil {
			return nil, lateErr
		}
		if recorded {
			return nil, s.latePaymentError(b.ID)
		}
	}
	return confirmed, err
}

// verifyLate handles a callback for a booking that was cancelled while the
// customer was paying. A verified payment is recorded for refund; the
// booking is not reinstated because its slot may already be taken.
func (s *DefaultPaymentService) verifyLate(ctx context.Context, b *models.Booking, req models.VerifyPaymentRequest) error {
	if b.PaymentStatus == models.PaymentRefundDue {
		return s.latePaymentError(b.ID)
	}
	ok, err := s.Gateway.VerifyPayment(ctx, req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		return s.verificationFailure(b, utils.CodeGatewayUnavailable, "gateway lookup failed", err)
	}
	if !ok {
		return utils.NewConflictError(utils.CodeInvalidTransition, fmt.Sprintf("Booking is already %s", b.Status))
	}
	if _, err := s.recordLatePayment(ctx, b.ID, req.PaymentID); err != nil {
		return err
	}
	return s.latePaymentError(b.ID)
}

func (s *DefaultPaymentService) recordLatePayment(ctx context.Context, bookingID, paymentID string) (bool, error) {
	recorded, err := s.Bookings.RecordLatePayment(ctx, bookingID, paymentID, s.now())
	if err != nil {
		return false, utils.NewInternalError("failed to record late payment", err)
	}
	if recorded {
		metrics.RecordPaymentFailure("late_payment", s.Gateway.Name())
		s.Logger.Error("Payment captured for cancelled booking, refund due",
			zap.String("bookingID", bookingID), zap.String("paymentID", paymentID))
	}
	return recorded, nil
}

func (s *DefaultPaymentService) latePaymentError(bookingID string) error {
	msg := "Your payment arrived after this booking was cancelled. It has been recorded for a refund."
	if s.SupportContact != "" {
		msg = fmt.Sprintf("%s Contact %s and quote booking %s.", msg, s.SupportContact, bookingID)
	}
	return utils.NewPaymentVerificationError(utils.CodeLatePayment, msg, nil)
}

// ConfirmCash confirms a pending booking to be paid on site.
func (s *DefaultPaymentService) ConfirmCash(ctx context.Context, identity models.Identity, bookingID string) (*models.Booking, error) {
	b, err := s.loadOwned(ctx, identity, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == models.StatusConfirmed {
		return b, nil
	}
	return s.ConfirmPayment(ctx, b, bookingRepo.Confirmation{
		Method:        models.PaymentCash,
		PaymentStatus: models.PaymentPending,
		At:            s.now(),
	})
}

// ConfirmPayment applies pending → confirmed once. A booking that is already
// confirmed comes back unchanged, so retries and duplicate webhooks are safe.
// Side effects run only for the call that made the transition.
func (s *DefaultPaymentService) ConfirmPayment(ctx context.Context, b *models.Booking, c bookingRepo.Confirmation) (*models.Booking, error) {
	applied, err := s.Bookings.Confirm(ctx, b.ID, c)
	if err != nil {
		return nil, utils.NewInternalError("failed to confirm booking", err)
	}
	current, err := s.Bookings.GetByID(ctx, b.ID)
	if err != nil {
		return nil, utils.NewInternalError("failed to reload booking", err)
	}
	if !applied {
		if current.Status == models.StatusConfirmed {
			return current, nil
		}
		return nil, utils.NewConflictError(utils.CodeInvalidTransition, fmt.Sprintf("Booking is %s and cannot be confirmed", current.Status))
	}

	metrics.RecordConfirmation(string(c.Method))
	s.Logger.Info("Booking confirmed",
		zap.String("bookingID", current.ID),
		zap.String("paymentMethod", string(c.Method)),
		zap.String("paymentID", c.PaymentID),
	)

	s.recordCouponUsage(ctx, current)
	if s.Notifier != nil {
		if err := s.Notifier.BookingConfirmed(ctx, current); err != nil {
			s.Logger.Warn("Confirmation push failed", zap.String("bookingID", current.ID), zap.Error(err))
		}
	}
	return current, nil
}

// HandleStripeWebhook confirms the booking behind a succeeded PaymentIntent.
// Deliveries that match nothing are acknowledged and logged.
func (s *DefaultPaymentService) HandleStripeWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	if s.WebhookSecret == "" {
		return utils.NewForbiddenError("Stripe webhooks are not enabled")
	}
	pi, err := ParseSucceededIntent(payload, signatureHeader, s.WebhookSecret)
	if err != nil {
		metrics.RecordPaymentFailure("webhook", "stripe")
		return utils.NewValidationError("Stripe-Signature", "Invalid webhook signature")
	}
	if pi == nil {
		return nil
	}

	b, err := s.Bookings.GetByPaymentOrder(ctx, pi.ID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.Logger.Warn("Webhook for unknown payment intent", zap.String("intentID", pi.ID))
			return nil
		}
		return utils.NewInternalError("failed to load booking for webhook", err)
	}
	if b.Payment == nil || pi.Amount != b.Payment.AmountMinor || pi.Amount != b.Total.ToMinorUnits() {
		metrics.RecordPaymentFailure("verification", "stripe")
		s.Logger.Error("Webhook amount does not match booking",
			zap.String("bookingID", b.ID), zap.String("intentID", pi.ID), zap.Int64("amount", pi.Amount))
		return nil
	}

	_, err = s.ConfirmPayment(ctx, b, bookingRepo.Confirmation{
		Method:        models.PaymentOnline,
		PaymentStatus: models.PaymentPaid,
		PaymentID:     pi.ID,
		At:            s.now(),
	})
	if utils.IsKind(err, utils.KindConflict) {
		recorded, lateErr := s.recordLatePayment(ctx, b.ID, pi.ID)
		if lateErr != nil {
			return lateErr
		}
		if !recorded {
			s.Logger.Warn("Webhook for booking that is no longer pending", zap.String("bookingID", b.ID))
		}
		return nil
	}
	return err
}

// recordCouponUsage queues the redemption. When the queue is unreachable it
// writes directly; the write is idempotent per booking either way.
func (s *DefaultPaymentService) recordCouponUsage(ctx context.Context, b *models.Booking) {
	if b.CouponCode == nil || *b.CouponCode == "" {
		return
	}
	code := *b.CouponCode

	if s.Tasks != nil {
		task, opts, err := tasks.NewCouponUsageTask(code, b.ID)
		if err == nil {
			_, err = s.Tasks.Enqueue(task, opts...)
		}
		if err == nil || errors.Is(err, asynq.ErrTaskIDConflict) {
			metrics.RecordCouponRedemption("queued")
			return
		}
		s.Logger.Warn("Could not queue coupon usage, recording inline",
			zap.String("bookingID", b.ID), zap.String("code", code), zap.Error(err))
	}

	if s.Coupons == nil {
		return
	}
	if err := s.Coupons.MarkUsed(ctx, code, b.ID); err != nil {
		metrics.RecordCouponRedemption("failed")
		s.Logger.Error("Coupon usage not recorded",
			zap.String("bookingID", b.ID), zap.String("code", code), zap.Error(err))
		return
	}
	metrics.RecordCouponRedemption("recorded")
}

func (s *DefaultPaymentService) verificationFailure(b *models.Booking, code, reason string, err error) error {
	metrics.RecordPaymentFailure("verification", s.Gateway.Name())
	s.Logger.Warn("Payment verification failed",
		zap.String("bookingID", b.ID), zap.String("code", code), zap.String("reason", reason), zap.Error(err))

	msg := "We could not verify your payment. Your booking is still pending."
	if s.SupportContact != "" {
		msg = fmt.Sprintf("%s If you were charged, contact %s and quote booking %s.", msg, s.SupportContact, b.ID)
	}
	return utils.NewPaymentVerificationError(code, msg, err)
}

func (s *DefaultPaymentService) loadOwned(ctx context.Context, identity models.Identity, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewNotFoundError("BOOKING_NOT_FOUND", "Booking not found")
		}
		return nil, utils.NewInternalError("failed to load booking", err)
	}
	if !identity.IsAdmin() && b.CustomerID != identity.UserID {
		return nil, utils.NewForbiddenError("You do not have access to this booking")
	}
	return b, nil
}

func (s *DefaultPaymentService) order(b *models.Booking, p models.PaymentDetails) *models.PaymentOrder {
	return &models.PaymentOrder{
		BookingID:   b.ID,
		Gateway:     p.Gateway,
		OrderID:     p.OrderID,
		AmountMinor: p.AmountMinor,
		Currency:    p.Currency,
		Amount:      b.Total.Round2(),
		PublicKey:   s.Gateway.PublicKey(),
	}
}
