package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rating bounds for a review.
const (
	RatingMin = 1
	RatingMax = 5
)

// Sort orders accepted when listing a seller's reviews.
const (
	ReviewSortRecent  = "recent"
	ReviewSortHighest = "highest"
	ReviewSortLowest  = "lowest"
)

// Review is a buyer's rating of a seller. OrderID and ProductID are
// optional: an order-linked review passes the eligibility gate and is
// unique per order, while a free-floating review carries neither.
type Review struct {
	ID         string    `json:"id"`
	ReviewerID string    `json:"reviewer_id"`
	SellerID   string    `json:"seller_id"`
	ProductID  *string   `json:"product_id,omitempty"`
	OrderID    *string   `json:"order_id,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ReviewDetail resolves the reviewer and product names for display.
type ReviewDetail struct {
	Review
	ReviewerName string `json:"reviewer_name"`
	ProductName  string `json:"product_name,omitempty"`
}

// RatingSummary is a seller's aggregate rating.
type RatingSummary struct {
	SellerID      string          `json:"seller_id"`
	AverageRating decimal.Decimal `json:"average_rating"`
	TotalReviews  int             `json:"total_reviews"`
}

// IsValidRating checks the inclusive 1..5 rating range.
func IsValidRating(rating int) bool {
	return rating >= RatingMin && rating <= RatingMax
}

// IsValidReviewSort checks the sort parameter for seller review listings.
func IsValidReviewSort(sort string) bool {
	switch sort {
	case ReviewSortRecent, ReviewSortHighest, ReviewSortLowest:
		return true
	}
	return false
}
