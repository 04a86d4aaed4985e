package models

import "time"

// Booking is a customer's reservation of a service at a date, slot and address.
type Booking struct {
	ID           string  `bson:"id" json:"id"`
	CustomerID   string  `bson:"customerId" json:"customerId"`
	ServiceID    string  `bson:"serviceId" json:"serviceId"`
	ServiceTitle string  `bson:"serviceTitle" json:"serviceTitle"`
	ProviderID   string  `bson:"providerId,omitempty" json:"providerId,omitempty"`
	Date         string  `bson:"date" json:"date"`         // YYYY-MM-DD in the business timezone
	TimeSlot     string  `bson:"timeSlot" json:"timeSlot"` // HH:00
	Quantity     int     `bson:"quantity" json:"quantity"`
	Address      Address `bson:"address" json:"address"`
	Notes        string  `bson:"notes,omitempty" json:"notes,omitempty"`

	CouponCode *string `bson:"couponCode" json:"couponCode"`
	UnitPrice  Money   `bson:"unitPrice" json:"unitPrice"`
	Subtotal   Money   `bson:"subtotal" json:"subtotal"`
	Discount   Money   `bson:"discount" json:"discount"`
	Total      Money   `bson:"total" json:"total"`

	PaymentMethod PaymentMethod   `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus PaymentStatus   `bson:"paymentStatus" json:"paymentStatus"`
	Payment       *PaymentDetails `bson:"payment,omitempty" json:"payment,omitempty"`
	Status        BookingStatus   `bson:"status" json:"status"`

	ExpiresAt    *time.Time `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	ConfirmedAt  *time.Time `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	CompletedAt  *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CancelledAt  *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CancelReason string     `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// PaymentDetails records the gateway order the booking was charged against.
type PaymentDetails struct {
	Gateway     string     `bson:"gateway" json:"gateway"`
	OrderID     string     `bson:"orderId" json:"orderId"`
	AmountMinor int64      `bson:"amountMinor" json:"amountMinor"`
	Currency    string     `bson:"currency" json:"currency"`
	PaymentID   string     `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	PaidAt      *time.Time `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
}

// CreateBookingRequest is the customer payload for a new booking.
type CreateBookingRequest struct {
	ServiceID       string        `json:"serviceId" binding:"required"`
	Date            string        `json:"date" binding:"required"`
	TimeSlot        string        `json:"timeSlot" binding:"required"`
	Quantity        int           `json:"quantity" binding:"required"`
	UseSavedAddress bool          `json:"useSavedAddress"`
	Address         *Address      `json:"address"`
	Notes           string        `json:"notes"`
	CouponCode      string        `json:"couponCode"`
	PaymentMethod   PaymentMethod `json:"paymentMethod" binding:"required"`
}

// QuoteRequest asks for authoritative pricing before a booking is placed.
type QuoteRequest struct {
	ServiceID  string `json:"serviceId" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required"`
	CouponCode string `json:"couponCode"`
}

// PriceQuote is the server's computation of subtotal, discount and total.
type PriceQuote struct {
	UnitPrice  Money  `json:"unitPrice"`
	Quantity   int    `json:"quantity"`
	Subtotal   Money  `json:"subtotal"`
	Discount   Money  `json:"discount"`
	Total      Money  `json:"total"`
	CouponCode string `json:"couponCode,omitempty"`
}

// TimeSlot is one bookable start hour.
type TimeSlot struct {
	Time  string `json:"time"`
	Label string `json:"label"`
}
