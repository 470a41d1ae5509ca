package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Profile is a campus user who can act as buyer and seller. SellerRating
// and TotalReviews are materialized aggregates maintained by the review
// service; they are recomputed in full on every review mutation.
type Profile struct {
	ID           string          `json:"id"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone,omitempty"`
	Campus       string          `json:"campus,omitempty"`
	SellerRating decimal.Decimal `json:"seller_rating"`
	TotalReviews int             `json:"total_reviews"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// FullName joins first and last name, tolerating either being empty.
func (p *Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
