package models

import "time"

// Service is a bookable catalog entry such as "AC repair".
type Service struct {
	ID              string    `bson:"id" json:"id"`
	Title           string    `bson:"title" json:"title"`
	Description     string    `bson:"description,omitempty" json:"description,omitempty"`
	Category        string    `bson:"category" json:"category"`
	BasePrice       Money     `bson:"basePrice" json:"basePrice"`
	DurationMinutes int       `bson:"durationMinutes" json:"durationMinutes"`
	ImageURL        string    `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	IsActive        bool      `bson:"isActive" json:"isActive"`
	AverageRating   float64   `bson:"averageRating" json:"averageRating"`
	RatingCount     int       `bson:"ratingCount" json:"ratingCount"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ServiceInput is the admin payload for creating or editing a service.
type ServiceInput struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	Category        string `json:"category" binding:"required"`
	BasePrice       Money  `json:"basePrice"`
	DurationMinutes int    `json:"durationMinutes" binding:"required,gte=1"`
	ImageURL        string `json:"imageUrl"`
	IsActive        *bool  `json:"isActive"`
}

// ServiceQuery carries catalog filters explicitly per request.
type ServiceQuery struct {
	Category string `form:"category"`
	Search   string `form:"search"`
	MinPrice *Money `form:"-"`
	MaxPrice *Money `form:"-"`
	Sort     string `form:"sort"`
}

const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortNewest    = "newest"
)
