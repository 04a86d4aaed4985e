package models

import "time"

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercentage takes a percentage of the subtotal, optionally capped.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed takes a flat amount, never more than the subtotal.
	DiscountFixed DiscountType = "fixed"
)

func (t DiscountType) IsValid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// Coupon is an admin-defined discount code.
type Coupon struct {
	ID              string       `bson:"id" json:"id"`
	Code            string       `bson:"code" json:"code"`
	Description     string       `bson:"description,omitempty" json:"description,omitempty"`
	DiscountType    DiscountType `bson:"discountType" json:"discountType"`
	Value           Money        `bson:"value" json:"value"`
	MaxDiscount     *Money       `bson:"maxDiscount,omitempty" json:"maxDiscount,omitempty"`
	MinBookingValue Money        `bson:"minBookingValue" json:"minBookingValue"`
	ExpiryDate      time.Time    `bson:"expiryDate" json:"expiryDate"`
	UsageLimit      int          `bson:"usageLimit" json:"usageLimit"` // 0 means unlimited
	UsedCount       int          `bson:"usedCount" json:"usedCount"`
	UsedBy          []string     `bson:"usedBy" json:"-"` // booking ids already counted
	IsActive        bool         `bson:"isActive" json:"isActive"`
	CreatedAt       time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// Exhausted reports whether the redemption cap has been reached.
func (c *Coupon) Exhausted() bool {
	return c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit
}

// Descriptor returns the normalized discount rule carried into pricing.
func (c *Coupon) Descriptor() *DiscountDescriptor {
	return &DiscountDescriptor{
		Code:        c.Code,
		Type:        c.DiscountType,
		Value:       c.Value,
		MaxDiscount: c.MaxDiscount,
	}
}

// DiscountDescriptor is what a validated coupon contributes to a price.
type DiscountDescriptor struct {
	Code        string       `json:"code"`
	Type        DiscountType `json:"type"`
	Value       Money        `json:"value"`
	MaxDiscount *Money       `json:"maxDiscount,omitempty"`
}

// CreateCouponRequest is the admin payload for a new coupon.
type CreateCouponRequest struct {
	Code            string       `json:"code" binding:"required,min=3,max=32"`
	Description     string       `json:"description"`
	DiscountType    DiscountType `json:"discountType" binding:"required,oneof=percentage fixed"`
	Value           Money        `json:"value"`
	MaxDiscount     *Money       `json:"maxDiscount"`
	MinBookingValue Money        `json:"minBookingValue"`
	ExpiryDate      time.Time    `json:"expiryDate" binding:"required"`
	UsageLimit      int          `json:"usageLimit" binding:"gte=0"`
}

// ApplyCouponRequest validates a code against a fresh server-side quote.
type ApplyCouponRequest struct {
	Code      string `json:"code" binding:"required"`
	ServiceID string `json:"serviceId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}
