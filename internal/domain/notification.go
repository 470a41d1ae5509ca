package domain

import "time"

// Notification types emitted by the order lifecycle.
const (
	NotificationOrderPlaced    = "ORDER_PLACED"
	NotificationOrderConfirmed = "ORDER_CONFIRMED"
	NotificationOrderReady     = "ORDER_READY"
	NotificationOrderCompleted = "ORDER_COMPLETED"
	NotificationOrderCancelled = "ORDER_CANCELLED"
)

// RelatedTypeOrder tags a notification as pointing at an order.
const RelatedTypeOrder = "ORDER"

// Notification is a persisted in-app message for a profile.
type Notification struct {
	ID          string    `json:"id"`
	ProfileID   string    `json:"profile_id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	RelatedID   *string   `json:"related_id,omitempty"`
	RelatedType string    `json:"related_type,omitempty"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}
