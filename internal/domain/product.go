package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a seller's listing. Stock is nil for listings that do not
// track quantity; such products can always be ordered.
type Product struct {
	ID          string          `json:"id"`
	SellerID    string          `json:"seller_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Condition   string          `json:"condition,omitempty"`
	Category    string          `json:"category,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	Stock       *int            `json:"stock,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// HasStock reports whether the product can cover the requested quantity.
// Untracked stock (nil) always satisfies the request.
func (p *Product) HasStock(quantity int) bool {
	return p.Stock == nil || *p.Stock >= quantity
}
