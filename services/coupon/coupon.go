package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"homeservice/database"
	couponRepo "homeservice/database/repository/coupon"
	"homeservice/models"
	"homeservice/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CouponService decides coupon applicability and records redemptions.
type CouponService interface {
	Validate(ctx context.Context, code string, bookingValue models.Money) (*models.DiscountDescriptor, error)
	MarkUsed(ctx context.Context, code, bookingID string) error
	Create(ctx context.Context, req models.CreateCouponRequest) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	ListAvailable(ctx context.Context) ([]models.Coupon, error)
}

// DefaultCouponService is the production implementation.
type DefaultCouponService struct {
	Repo   couponRepo.CouponRepository
	Logger *zap.Logger
	Now    func() time.Time
}

func NewCouponService(repo couponRepo.CouponRepository, logger *zap.Logger) *DefaultCouponService {
	return &DefaultCouponService{Repo: repo, Logger: logger, Now: time.Now}
}

// NormalizeCode canonicalizes user-entered codes.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *DefaultCouponService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Validate checks code against bookingValue, which must be computed from the
// current quantity. Checks run in order: existence, expiry, minimum spend,
// redemption cap.
func (s *DefaultCouponService) Validate(ctx context.Context, code string, bookingValue models.Money) (*models.DiscountDescriptor, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, utils.NewValidationError("couponCode", "Coupon code is required")
	}

	c, err := s.Repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewNotFoundError(utils.CodeCouponNotFound, fmt.Sprintf("Coupon %s does not exist", code))
		}
		return nil, utils.NewInternalError("failed to load coupon", err)
	}

	return Check(c, bookingValue, s.now())
}

// Check applies the coupon rules to an already loaded coupon.
func Check(c *models.Coupon, bookingValue models.Money, now time.Time) (*models.DiscountDescriptor, error) {
	if !c.IsActive {
		return nil, utils.NewRuleError(utils.CodeCouponInactive, "couponCode", "This coupon is no longer active")
	}
	if !now.Before(c.ExpiryDate) {
		return nil, utils.NewRuleError(utils.CodeCouponExpired, "couponCode", "This coupon has expired")
	}
	if bookingValue.LessThan(c.MinBookingValue.Decimal) {
		return nil, utils.NewRuleError(utils.CodeMinimumNotMet, "couponCode",
			fmt.Sprintf("Minimum booking value of %s required for this coupon", c.MinBookingValue.StringFixed(2)))
	}
	if c.Exhausted() {
		return nil, utils.NewRuleError(utils.CodeUsageExceeded, "couponCode", "This coupon has reached its usage limit")
	}
	return c.Descriptor(), nil
}

// MarkUsed counts bookingID against the coupon. Repeating it for the same booking is harmless.
func (s *DefaultCouponService) MarkUsed(ctx context.Context, code, bookingID string) error {
	code = NormalizeCode(code)
	applied, err := s.Repo.MarkUsed(ctx, code, bookingID)
	if err != nil {
		return fmt.Errorf("failed to mark coupon %s used for booking %s: %w", code, bookingID, err)
	}
	if !applied {
		s.Logger.Debug("Coupon usage already recorded", zap.String("code", code), zap.String("bookingID", bookingID))
	}
	return nil
}

func (s *DefaultCouponService) Create(ctx context.Context, req models.CreateCouponRequest) (*models.Coupon, error) {
	code := NormalizeCode(req.Code)
	if code == "" {
		return nil, utils.NewValidationError("code", "code is required")
	}
	if !req.DiscountType.IsValid() {
		return nil, utils.NewValidationError("discountType", "discountType must be percentage or fixed")
	}
	if !req.Value.IsPositive() {
		return nil, utils.NewValidationError("value", "value must be greater than 0")
	}
	if req.DiscountType == models.DiscountPercentage && req.Value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, utils.NewValidationError("value", "percentage value must be at most 100")
	}
	if req.MaxDiscount != nil && req.MaxDiscount.IsNegative() {
		return nil, utils.NewValidationError("maxDiscount", "maxDiscount must not be negative")
	}
	if req.MinBookingValue.IsNegative() {
		return nil, utils.NewValidationError("minBookingValue", "minBookingValue must not be negative")
	}
	if !req.ExpiryDate.After(s.now()) {
		return nil, utils.NewValidationError("expiryDate", "expiryDate must be in the future")
	}

	c := &models.Coupon{
		ID:              uuid.New().String(),
		Code:            code,
		Description:     req.Description,
		DiscountType:    req.DiscountType,
		Value:           req.Value,
		MaxDiscount:     req.MaxDiscount,
		MinBookingValue: req.MinBookingValue,
		ExpiryDate:      req.ExpiryDate,
		UsageLimit:      req.UsageLimit,
		UsedBy:          []string{},
		IsActive:        true,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, utils.NewConflictError("DUPLICATE_COUPON", fmt.Sprintf("Coupon %s already exists", code))
		}
		return nil, utils.NewInternalError("failed to create coupon", err)
	}
	return c, nil
}

func (s *DefaultCouponService) List(ctx context.Context) ([]models.Coupon, error) {
	coupons, err := s.Repo.List(ctx)
	if err != nil {
		return nil, utils.NewInternalError("failed to list coupons", err)
	}
	return coupons, nil
}

func (s *DefaultCouponService) ListAvailable(ctx context.Context) ([]models.Coupon, error) {
	coupons, err := s.Repo.ListAvailable(ctx, s.now())
	if err != nil {
		return nil, utils.NewInternalError("failed to list coupons", err)
	}
	return coupons, nil
}
