package models

import "time"

// Feedback is the single dual rating a customer leaves for a completed booking.
type Feedback struct {
	ID         string `bson:"id" json:"id"`
	BookingID  string `bson:"bookingId" json:"bookingId"`
	CustomerID string `bson:"customerId" json:"customerId"`
	ProviderID string `bson:"providerId" json:"providerId"`
	ServiceID  string `bson:"serviceId" json:"serviceId"`

	ProviderRating  int    `bson:"providerRating" json:"providerRating"`
	ProviderComment string `bson:"providerComment,omitempty" json:"providerComment,omitempty"`
	ServiceRating   int    `bson:"serviceRating" json:"serviceRating"`
	ServiceComment  string `bson:"serviceComment,omitempty" json:"serviceComment,omitempty"`

	IsEdited  bool      `bson:"isEdited" json:"isEdited"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

type SubmitFeedbackRequest struct {
	BookingID       string `json:"bookingId" binding:"required"`
	ProviderRating  int    `json:"providerRating" binding:"required,gte=1,lte=5"`
	ProviderComment string `json:"providerComment" binding:"max=1000"`
	ServiceRating   int    `json:"serviceRating" binding:"required,gte=1,lte=5"`
	ServiceComment  string `json:"serviceComment" binding:"max=1000"`
}

type UpdateFeedbackRequest struct {
	ProviderRating  int    `json:"providerRating" binding:"required,gte=1,lte=5"`
	ProviderComment string `json:"providerComment" binding:"max=1000"`
	ServiceRating   int    `json:"serviceRating" binding:"required,gte=1,lte=5"`
	ServiceComment  string `json:"serviceComment" binding:"max=1000"`
}

// RatingSummary aggregates a set of ratings.
type RatingSummary struct {
	Count     int     `json:"count"`
	Average   float64 `json:"average"`   // rounded to one decimal
	Histogram [5]int  `json:"histogram"` // index 0 holds 1-star counts
}

// MonthlyRating is one bucket of the trailing trend window.
type MonthlyRating struct {
	Month   string  `json:"month"` // YYYY-MM
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// ProviderFeedbackSummary is the provider dashboard view of received feedback.
type ProviderFeedbackSummary struct {
	ProviderID string          `json:"providerId"`
	Provider   RatingSummary   `json:"provider"`
	Service    RatingSummary   `json:"service"`
	Trend      []MonthlyRating `json:"trend"`
	Recent     []Feedback      `json:"recent"`
}
