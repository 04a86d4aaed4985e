package booking

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
	"homeservice/services/pricing"
	"homeservice/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingService creates bookings and moves them through their lifecycle.
// Payment confirmation lives in the payment service.
type BookingService interface {
	Slots(ctx context.Context, date string) ([]models.TimeSlot, error)
	Quote(ctx context.Context, req models.QuoteRequest) (*models.PriceQuote, error)
	Create(ctx context.Context, identity models.Identity, req models.CreateBookingRequest) (*models.Booking, error)
	Get(ctx context.Context, identity models.Identity, bookingID string) (*models.Booking, error)
	ListMine(ctx context.Context, identity models.Identity) ([]models.Booking, error)
	ListForProvider(ctx context.Context, identity models.Identity, providerID string) ([]models.Booking, error)
	Cancel(ctx context.Context, identity models.Identity, bookingID, reason string) (*models.Booking, error)
	Complete(ctx context.Context, identity models.Identity, bookingID string) (*models.Booking, error)
	AssignProvider(ctx context.Context, identity models.Identity, bookingID, providerID string) (*models.Booking, error)
	ExpireStalePending(ctx context.Context) (int64, error)
}

// ServiceLookup loads catalog entries.
type ServiceLookup interface {
	GetByID(ctx context.Context, id string) (*models.Service, error)
}

// UserLookup loads accounts, for saved addresses.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// CouponValidator checks a code against a booking value.
type CouponValidator interface {
	Validate(ctx context.Context, code string, bookingValue models.Money) (*models.DiscountDescriptor, error)
}

// DefaultBookingService is the production implementation.
type DefaultBookingService struct {
	Repo     bookingRepo.BookingRepository
	Services ServiceLookup
	Users    UserLookup
	Coupons  CouponValidator
	Logger   *zap.Logger

	Location   *time.Location
	PendingTTL time.Duration
	Now        func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultBookingService) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.UTC
}

// Slots returns the bookable start hours for date.
func (s *DefaultBookingService) Slots(ctx context.Context, date string) ([]models.TimeSlot, error) {
	day, err := ParseDate(date, s.location())
	if err != nil {
		return nil, utils.NewValidationError("date", err.Error())
	}
	return GenerateSlots(day, s.now()), nil
}

// Quote prices a service for quantity with an optional coupon, validated against the fresh subtotal.
func (s *DefaultBookingService) Quote(ctx context.Context, req models.QuoteRequest) (*models.PriceQuote, error) {
	if !pricing.ValidQuantity(req.Quantity) {
		return nil, quantityError()
	}
	svc, err := s.loadService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	q, err := s.price(ctx, svc, req.Quantity, req.CouponCode)
	if err != nil {
		return nil, err
	}
	presented := pricing.Present(q)
	return &presented, nil
}

func (s *DefaultBookingService) Create(ctx context.Context, identity models.Identity, req models.CreateBookingRequest) (*models.Booking, error) {
	if identity.Role != models.RoleCustomer && !identity.IsAdmin() {
		return nil, utils.NewForbiddenError("Only customers can place bookings")
	}
	if !pricing.ValidQuantity(req.Quantity) {
		return nil, quantityError()
	}
	if !req.PaymentMethod.IsValid() {
		return nil, utils.NewValidationError("paymentMethod", "paymentMethod must be online or cash")
	}

	now := s.now()
	day, err := ParseDate(req.Date, s.location())
	if err != nil {
		return nil, utils.NewValidationError("date", err.Error())
	}
	slots := GenerateSlots(day, now)
	if len(slots) == 0 {
		return nil, utils.NewValidationError("date", "No time slots are available on this date")
	}
	if !SlotAvailable(slots, req.TimeSlot) {
		return nil, utils.NewValidationError("timeSlot", fmt.Sprintf("Time slot %s is not available on %s", req.TimeSlot, req.Date))
	}

	svc, err := s.loadService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}

	address, err := s.resolveAddress(ctx, identity, req)
	if err != nil {
		return nil, err
	}

	q, err := s.price(ctx, svc, req.Quantity, req.CouponCode)
	if err != nil {
		return nil, err
	}

	b := &models.Booking{
		ID:            uuid.New().String(),
		CustomerID:    identity.UserID,
		ServiceID:     svc.ID,
		ServiceTitle:  svc.Title,
		Date:          day.Format(DateLayout),
		TimeSlot:      req.TimeSlot,
		Quantity:      req.Quantity,
		Address:       *address,
		Notes:         strings.TrimSpace(req.Notes),
		UnitPrice:     q.UnitPrice,
		Subtotal:      q.Subtotal,
		Discount:      q.Discount,
		Total:         q.Total,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: models.PaymentPending,
		Status:        models.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if q.CouponCode != "" {
		code := q.CouponCode
		b.CouponCode = &code
	}
	if req.PaymentMethod == models.PaymentOnline && s.PendingTTL > 0 {
		expires := now.Add(s.PendingTTL)
		b.ExpiresAt = &expires
	}

	if err := s.Repo.Create(ctx, b); err != nil {
		return nil, utils.NewInternalError("failed to save booking", err)
	}
	metrics.RecordBooking(string(b.Status), string(b.PaymentMethod))
	s.Logger.Info("Booking created",
		zap.String("bookingID", b.ID),
		zap.String("customerID", b.CustomerID),
		zap.String("serviceID", b.ServiceID),
		zap.String("total", b.Total.StringFixed(2)),
	)
	return b, nil
}

func (s *DefaultBookingService) Get(ctx context.Context, identity models.Identity, bookingID string) (*models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !CanView(identity, b) {
		return nil, utils.NewForbiddenError("You do not have access to this booking")
	}
	return b, nil
}

func (s *DefaultBookingService) ListMine(ctx context.Context, identity models.Identity) ([]models.Booking, error) {
	if identity.Role == models.RoleProvider {
		return s.ListForProvider(ctx, identity, identity.UserID)
	}
	bookings, err := s.Repo.ListByCustomer(ctx, identity.UserID)
	if err != nil {
		return nil, utils.NewInternalError("failed to list bookings", err)
	}
	return bookings, nil
}

func (s *DefaultBookingService) ListForProvider(ctx context.Context, identity models.Identity, providerID string) ([]models.Booking, error) {
	if !identity.IsAdmin() && identity.UserID != providerID {
		return nil, utils.NewForbiddenError("You can only list your own assignments")
	}
	bookings, err := s.Repo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, utils.NewInternalError("failed to list bookings", err)
	}
	return bookings, nil
}

// Cancel is open to the customer, the assigned provider and admins.
func (s *DefaultBookingService) Cancel(ctx context.Context, identity models.Identity, bookingID, reason string) (*models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !CanView(identity, b) {
		return nil, utils.NewForbiddenError("You do not have access to this booking")
	}
	if reason == "" {
		reason = "cancelled_by_" + string(identity.Role)
	}
	return s.transition(ctx, b, models.StatusCancelled, reason)
}

// Complete is reserved to the assigned provider and admins.
func (s *DefaultBookingService) Complete(ctx context.Context, identity models.Identity, bookingID string) (*models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !identity.IsAdmin() && !(identity.Role == models.RoleProvider && b.ProviderID == identity.UserID) {
		return nil, utils.NewForbiddenError("Only the assigned provider can complete this booking")
	}
	return s.transition(ctx, b, models.StatusCompleted, "")
}

func (s *DefaultBookingService) AssignProvider(ctx context.Context, identity models.Identity, bookingID, providerID string) (*models.Booking, error) {
	if !identity.IsAdmin() {
		return nil, utils.NewForbiddenError("Only admins can assign providers")
	}
	if strings.TrimSpace(providerID) == "" {
		return nil, utils.NewValidationError("providerId", "providerId is required")
	}
	if err := s.Repo.AssignProvider(ctx, bookingID, providerID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewConflictError(utils.CodeInvalidTransition, "Booking is missing or already closed")
		}
		return nil, utils.NewInternalError("failed to assign provider", err)
	}
	return s.load(ctx, bookingID)
}

// ExpireStalePending cancels online bookings whose payment window elapsed.
func (s *DefaultBookingService) ExpireStalePending(ctx context.Context) (int64, error) {
	n, err := s.Repo.ExpirePending(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to expire pending bookings: %w", err)
	}
	if n > 0 {
		metrics.RecordExpiredBookings(n)
		s.Logger.Info("Expired unpaid bookings", zap.Int64("count", n))
	}
	return n, nil
}

func (s *DefaultBookingService) transition(ctx context.Context, b *models.Booking, to models.BookingStatus, reason string) (*models.Booking, error) {
	if b.Status.IsTerminal() {
		return nil, utils.NewConflictError(utils.CodeInvalidTransition, fmt.Sprintf("Booking is already %s", b.Status))
	}
	if !b.Status.CanTransitionTo(to) {
		return nil, utils.NewConflictError(utils.CodeInvalidTransition,
			fmt.Sprintf("Booking is %s and cannot be moved to %s", b.Status, to))
	}
	ok, err := s.Repo.Transition(ctx, b.ID, b.Status, to, reason, s.now())
	if err != nil {
		return nil, utils.NewInternalError("failed to update booking", err)
	}
	if !ok {
		return nil, utils.NewConflictError(utils.CodeInvalidTransition, "Booking was updated by someone else, please refresh")
	}
	metrics.RecordBooking(string(to), string(b.PaymentMethod))
	s.Logger.Info("Booking status changed",
		zap.String("bookingID", b.ID),
		zap.String("from", string(b.Status)),
		zap.String("to", string(to)),
	)
	return s.load(ctx, b.ID)
}

func (s *DefaultBookingService) load(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewNotFoundError("BOOKING_NOT_FOUND", "Booking not found")
		}
		return nil, utils.NewInternalError("failed to load booking", err)
	}
	return b, nil
}

func (s *DefaultBookingService) loadService(ctx context.Context, serviceID string) (*models.Service, error) {
	svc, err := s.Services.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewNotFoundError("SERVICE_NOT_FOUND", "Service not found")
		}
		return nil, utils.NewInternalError("failed to load service", err)
	}
	if !svc.IsActive {
		return nil, utils.NewValidationError("serviceId", "This service is not currently available")
	}
	return svc, nil
}

// price recomputes the quote and re-validates any coupon against it.
func (s *DefaultBookingService) price(ctx context.Context, svc *models.Service, quantity int, couponCode string) (models.PriceQuote, error) {
	subtotal := pricing.Subtotal(svc.BasePrice, quantity)
	var descriptor *models.DiscountDescriptor
	if strings.TrimSpace(couponCode) != "" {
		d, err := s.Coupons.Validate(ctx, couponCode, subtotal)
		if err != nil {
			return models.PriceQuote{}, err
		}
		descriptor = d
	}
	return pricing.Quote(svc.BasePrice, quantity, descriptor), nil
}

func (s *DefaultBookingService) resolveAddress(ctx context.Context, identity models.Identity, req models.CreateBookingRequest) (*models.Address, error) {
	var address *models.Address
	if req.UseSavedAddress {
		u, err := s.Users.GetByID(ctx, identity.UserID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewInternalError("failed to load saved address", err)
		}
		if u == nil || u.Address == nil {
			return nil, utils.NewValidationError("address", "No saved address on file, please enter one")
		}
		address = u.Address
	} else {
		if req.Address == nil {
			return nil, utils.NewValidationError("address", "address is required")
		}
		address = req.Address
	}

	snapshot := NormalizeAddress(*address)
	if err := ValidateAddress(snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// NormalizeAddress trims every field.
func NormalizeAddress(a models.Address) models.Address {
	return models.Address{
		Street:     strings.TrimSpace(a.Street),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Landmark:   strings.TrimSpace(a.Landmark),
	}
}

// ValidateAddress reports the first incomplete field as address.<field>.
func ValidateAddress(a models.Address) error {
	if err := utils.ValidateStruct(a); err != nil {
		if appErr, ok := utils.AsAppError(err); ok && appErr.Field != "" {
			appErr.Message = "address." + appErr.Message
			appErr.Field = "address." + appErr.Field
			return appErr
		}
		return err
	}
	return nil
}

// CanView reports whether identity may read or cancel b.
func CanView(identity models.Identity, b *models.Booking) bool {
	switch {
	case identity.IsAdmin():
		return true
	case identity.Role == models.RoleCustomer:
		return b.CustomerID == identity.UserID
	case identity.Role == models.RoleProvider:
		return b.ProviderID != "" && b.ProviderID == identity.UserID
	default:
		return false
	}
}

func quantityError() error {
	return utils.NewValidationError("quantity",
		fmt.Sprintf("quantity must be between %d and %d", pricing.MinQuantity, pricing.MaxQuantity))
}
