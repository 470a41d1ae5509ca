package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order status constants.
const (
	OrderStatusPending        = "pending"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusProcessing     = "processing"
	OrderStatusReadyForPickup = "ready_for_pickup"
	OrderStatusCompleted      = "completed"
	OrderStatusCancelled      = "cancelled"
)

// DefaultPickupLocation is used in pickup notifications when the order has
// no pickup location set.
const DefaultPickupLocation = "the designated location"

// Order represents a buyer-seller-product transaction.
type Order struct {
	ID             string          `json:"id"`
	BuyerID        string          `json:"buyer_id"`
	SellerID       string          `json:"seller_id"`
	ProductID      string          `json:"product_id"`
	Quantity       int             `json:"quantity"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Status         string          `json:"status"`
	PaymentMethod  string          `json:"payment_method,omitempty"`
	PickupLocation string          `json:"pickup_location,omitempty"`
	DeliveryNotes  string          `json:"delivery_notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// OrderDetail is the eagerly-assembled projection of an order with its
// product, buyer, and seller fields resolved, plus the review linkage.
type OrderDetail struct {
	OrderID        string          `json:"order_id"`
	Quantity       int             `json:"quantity"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Status         string          `json:"status"`
	PaymentMethod  string          `json:"payment_method,omitempty"`
	PickupLocation string          `json:"pickup_location,omitempty"`
	DeliveryNotes  string          `json:"delivery_notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	ProductID          string          `json:"product_id"`
	ProductName        string          `json:"product_name"`
	ProductDescription string          `json:"product_description,omitempty"`
	ProductPrice       decimal.Decimal `json:"product_price"`
	ProductImage       string          `json:"product_image,omitempty"`
	ProductCondition   string          `json:"product_condition,omitempty"`

	BuyerID    string `json:"buyer_id"`
	BuyerName  string `json:"buyer_name"`
	BuyerEmail string `json:"buyer_email,omitempty"`
	BuyerPhone string `json:"buyer_phone,omitempty"`

	SellerID    string `json:"seller_id"`
	SellerName  string `json:"seller_name"`
	SellerEmail string `json:"seller_email,omitempty"`
	SellerPhone string `json:"seller_phone,omitempty"`

	HasReview bool    `json:"has_review"`
	ReviewID  *string `json:"review_id,omitempty"`
}

// ValidOrderStatuses returns all valid order statuses.
func ValidOrderStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusProcessing,
		OrderStatusReadyForPickup,
		OrderStatusCompleted,
		OrderStatusCancelled,
	}
}

// IsValidOrderStatus checks whether status is one of the fixed enumeration.
// Comparison is case-insensitive.
func IsValidOrderStatus(status string) bool {
	for _, s := range ValidOrderStatuses() {
		if strings.EqualFold(s, status) {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether status admits no further transitions.
func IsTerminalStatus(status string) bool {
	return strings.EqualFold(status, OrderStatusCompleted) || strings.EqualFold(status, OrderStatusCancelled)
}

// AllowedTransitions declares the forward order flow. Cancellation is
// reachable from every non-terminal state.
func AllowedTransitions() map[string][]string {
	return map[string][]string{
		OrderStatusPending:        {OrderStatusConfirmed, OrderStatusCancelled},
		OrderStatusConfirmed:      {OrderStatusProcessing, OrderStatusCancelled},
		OrderStatusProcessing:     {OrderStatusReadyForPickup, OrderStatusCancelled},
		OrderStatusReadyForPickup: {OrderStatusCompleted, OrderStatusCancelled},
		OrderStatusCompleted:      {},
		OrderStatusCancelled:      {},
	}
}

// CanTransitionTo checks the declared transition table. The default
// service behavior does not consult it (any valid status value is
// accepted); strict mode uses it to reject illegal edges.
func (o *Order) CanTransitionTo(target string) bool {
	allowed, ok := AllowedTransitions()[strings.ToLower(o.Status)]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if strings.EqualFold(s, target) {
			return true
		}
	}
	return false
}
