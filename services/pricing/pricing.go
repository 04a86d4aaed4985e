// Package pricing turns a unit price, a quantity and an optional coupon into
// subtotal, discount and total. Everything here is exact decimal arithmetic;
// rounding to the minor unit happens only when a value is presented or sent
// to a payment gateway.
package pricing

import (
	"homeservice/models"

	"github.com/shopspring/decimal"
)

const (
	MinQuantity = 1
	MaxQuantity = 10
)

var hundred = decimal.NewFromInt(100)

// ValidQuantity reports whether q is within the bookable range.
// Callers reject out-of-range values; nothing here clamps them.
func ValidQuantity(q int) bool {
	return q >= MinQuantity && q <= MaxQuantity
}

// Subtotal is unitPrice × quantity.
func Subtotal(unitPrice models.Money, quantity int) models.Money {
	return models.NewMoney(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
}

// Discount computes what the coupon takes off subtotal.
// The result is always within [0, subtotal].
func Discount(subtotal models.Money, coupon *models.DiscountDescriptor) models.Money {
	if coupon == nil || !subtotal.IsPositive() {
		return models.Money{Decimal: decimal.Zero}
	}

	var d decimal.Decimal
	switch coupon.Type {
	case models.DiscountPercentage:
		d = subtotal.Mul(coupon.Value.Decimal).Div(hundred)
		if coupon.MaxDiscount != nil && !coupon.MaxDiscount.IsNegative() {
			d = decimal.Min(d, coupon.MaxDiscount.Decimal)
		}
	case models.DiscountFixed:
		d = coupon.Value.Decimal
	default:
		d = decimal.Zero
	}

	if d.IsNegative() {
		d = decimal.Zero
	}
	return models.NewMoney(decimal.Min(d, subtotal.Decimal))
}

// Total is subtotal − discount, floored at zero.
func Total(subtotal, discount models.Money) models.Money {
	t := subtotal.Sub(discount.Decimal)
	if t.IsNegative() {
		return models.Money{Decimal: decimal.Zero}
	}
	return models.NewMoney(t)
}

// Quote bundles the three computations.
func Quote(unitPrice models.Money, quantity int, coupon *models.DiscountDescriptor) models.PriceQuote {
	subtotal := Subtotal(unitPrice, quantity)
	discount := Discount(subtotal, coupon)
	q := models.PriceQuote{
		UnitPrice: unitPrice,
		Quantity:  quantity,
		Subtotal:  subtotal,
		Discount:  discount,
		Total:     Total(subtotal, discount),
	}
	if coupon != nil {
		q.CouponCode = coupon.Code
	}
	return q
}

// Present rounds every amount of q to the minor unit.
func Present(q models.PriceQuote) models.PriceQuote {
	q.UnitPrice = q.UnitPrice.Round2()
	q.Subtotal = q.Subtotal.Round2()
	q.Discount = q.Discount.Round2()
	q.Total = q.Total.Round2()
	return q
}
