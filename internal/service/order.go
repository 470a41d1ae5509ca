package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cdanpc/CampusMart/internal/domain"
	"github.com/cdanpc/CampusMart/internal/event"
	"github.com/cdanpc/CampusMart/internal/repository"
	apperrors "github.com/cdanpc/CampusMart/pkg/errors"
)

// CancelReasonDefault is used when a cancellation carries no reason.
const CancelReasonDefault = "Order cancelled"

// Notifier dispatches order lifecycle notifications. Implemented by
// NotificationService; dispatch failures never fail the order operation.
type Notifier interface {
	OrderPlaced(ctx context.Context, sellerID, productName, orderID string) error
	OrderConfirmed(ctx context.Context, buyerID, productName, orderID string) error
	OrderReady(ctx context.Context, buyerID, productName, orderID, pickupLocation string) error
	OrderCompleted(ctx context.Context, buyerID, productName, orderID string) error
	OrderCancelled(ctx context.Context, profileID, productName, orderID, reason string) error
}

// OrderService implements the business logic for the order lifecycle.
type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	profiles repository.ProfileRepository
	notifier Notifier
	producer *event.Producer
	logger   *slog.Logger

	// strictTransitions rejects status updates that are not declared in
	// the transition table. Off by default to match the permissive
	// behavior clients already rely on.
	strictTransitions bool
}

// NewOrderService creates a new order service.
func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	profiles repository.ProfileRepository,
	notifier Notifier,
	producer *event.Producer,
	logger *slog.Logger,
	strictTransitions bool,
) *OrderService {
	return &OrderService{
		orders:            orders,
		products:          products,
		profiles:          profiles,
		notifier:          notifier,
		producer:          producer,
		logger:            logger,
		strictTransitions: strictTransitions,
	}
}

// CreateOrderInput holds the parameters for creating an order.
type CreateOrderInput struct {
	BuyerID        string
	SellerID       string
	ProductID      string
	Quantity       int
	TotalAmount    decimal.Decimal
	PaymentMethod  string
	PickupLocation string
	DeliveryNotes  string
}

// CreateOrder validates the buyer, seller, and product, then inserts the
// order and decrements stock atomically. The validation steps run in a
// fixed sequence so clients get stable error shapes: identity checks
// first, then existence, then ownership, then stock.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if input.BuyerID == "" {
		return nil, apperrors.InvalidInput("buyer_id is required")
	}
	if input.SellerID == "" {
		return nil, apperrors.InvalidInput("seller_id is required")
	}
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product_id is required")
	}
	if input.Quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}
	if input.TotalAmount.IsNegative() {
		return nil, apperrors.InvalidInput("total_amount cannot be negative")
	}

	if input.BuyerID == input.SellerID {
		return nil, apperrors.InvalidInput("you cannot buy your own product")
	}

	if _, err := s.profiles.GetByID(ctx, input.BuyerID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("buyer", input.BuyerID)
		}
		return nil, fmt.Errorf("get buyer: %w", err)
	}

	seller, err := s.profiles.GetByID(ctx, input.SellerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("seller", input.SellerID)
		}
		return nil, fmt.Errorf("get seller: %w", err)
	}

	product, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	if product.SellerID != seller.ID {
		return nil, apperrors.InvalidInput("product does not belong to the specified seller")
	}

	if !product.HasStock(input.Quantity) {
		return nil, apperrors.Conflict(fmt.Sprintf("insufficient stock for product %s: available %d, requested %d", product.ID, *product.Stock, input.Quantity))
	}

	totalAmount := input.TotalAmount
	if totalAmount.IsZero() {
		totalAmount = product.Price.Mul(decimal.NewFromInt(int64(input.Quantity)))
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:             uuid.New().String(),
		BuyerID:        input.BuyerID,
		SellerID:       input.SellerID,
		ProductID:      input.ProductID,
		Quantity:       input.Quantity,
		TotalAmount:    totalAmount,
		Status:         domain.OrderStatusPending,
		PaymentMethod:  input.PaymentMethod,
		PickupLocation: input.PickupLocation,
		DeliveryNotes:  input.DeliveryNotes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// The repository re-checks stock under a row lock, so the precheck
	// above can still lose to a concurrent order and fail here.
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.notifier.OrderPlaced(ctx, seller.ID, product.Name, order.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to notify seller of new order",
			slog.String("order_id", order.ID),
			slog.String("seller_id", seller.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("buyer_id", order.BuyerID),
		slog.String("seller_id", order.SellerID),
		slog.String("total_amount", order.TotalAmount.String()),
	)

	return order, nil
}

// GetOrder retrieves an order by its ID.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return order, nil
}

// GetOrderDetail retrieves an order with product, buyer, and seller
// fields resolved.
func (s *OrderService) GetOrderDetail(ctx context.Context, id string) (*domain.OrderDetail, error) {
	detail, err := s.orders.GetDetailByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order detail by id: %w", err)
	}
	return detail, nil
}

// ListOrdersByBuyer returns a buyer's orders, newest first.
func (s *OrderService) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]domain.OrderDetail, error) {
	orders, err := s.orders.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list orders by buyer: %w", err)
	}
	return orders, nil
}

// ListOrdersBySeller returns a seller's orders, newest first.
func (s *OrderService) ListOrdersBySeller(ctx context.Context, sellerID string) ([]domain.OrderDetail, error) {
	orders, err := s.orders.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list orders by seller: %w", err)
	}
	return orders, nil
}

// ListOrdersByProduct returns all orders placed against a product.
func (s *OrderService) ListOrdersByProduct(ctx context.Context, productID string) ([]domain.Order, error) {
	orders, err := s.orders.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list orders by product: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatus sets the order status and dispatches notifications
// driven by the value change, not by the transition edge: setting the
// same status twice is a no-op for notifications.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id, newStatus, reason string) (*domain.Order, error) {
	if !domain.IsValidOrderStatus(newStatus) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status %q, must be one of: %s", newStatus, strings.Join(domain.ValidOrderStatuses(), ", ")))
	}
	newStatus = strings.ToLower(newStatus)

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order for status update: %w", err)
	}

	if s.strictTransitions && !strings.EqualFold(order.Status, newStatus) && !order.CanTransitionTo(newStatus) {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot transition from %q to %q", order.Status, newStatus))
	}

	oldStatus := order.Status

	if err := s.orders.UpdateStatus(ctx, id, newStatus); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if !strings.EqualFold(oldStatus, newStatus) {
		s.dispatchStatusNotifications(ctx, order, newStatus, reason)

		if err := s.producer.PublishOrderStatusChanged(ctx, id, oldStatus, newStatus); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
				slog.String("order_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", id),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
	)

	order.Status = newStatus
	return order, nil
}

// CancelOrder cancels an order with a reason. Stock is not restored; a
// decremented unit stays decremented.
func (s *OrderService) CancelOrder(ctx context.Context, id, reason string) (*domain.Order, error) {
	return s.UpdateOrderStatus(ctx, id, domain.OrderStatusCancelled, reason)
}

// dispatchStatusNotifications sends the notifications a status value
// change implies. Each dispatch is independent: a failure is logged and
// the rest still go out.
func (s *OrderService) dispatchStatusNotifications(ctx context.Context, order *domain.Order, newStatus, reason string) {
	product, err := s.products.GetByID(ctx, order.ProductID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load product for status notification",
			slog.String("order_id", order.ID),
			slog.String("product_id", order.ProductID),
			slog.String("error", err.Error()),
		)
		return
	}

	notify := func(recipient string, fn func() error) {
		if err := fn(); err != nil {
			s.logger.ErrorContext(ctx, "failed to dispatch order status notification",
				slog.String("order_id", order.ID),
				slog.String("status", newStatus),
				slog.String("recipient", recipient),
				slog.String("error", err.Error()),
			)
		}
	}

	switch newStatus {
	case domain.OrderStatusConfirmed:
		notify(order.BuyerID, func() error {
			return s.notifier.OrderConfirmed(ctx, order.BuyerID, product.Name, order.ID)
		})
	case domain.OrderStatusReadyForPickup:
		notify(order.BuyerID, func() error {
			return s.notifier.OrderReady(ctx, order.BuyerID, product.Name, order.ID, order.PickupLocation)
		})
	case domain.OrderStatusCompleted:
		notify(order.BuyerID, func() error {
			return s.notifier.OrderCompleted(ctx, order.BuyerID, product.Name, order.ID)
		})
	case domain.OrderStatusCancelled:
		if reason == "" {
			reason = CancelReasonDefault
		}
		notify(order.BuyerID, func() error {
			return s.notifier.OrderCancelled(ctx, order.BuyerID, product.Name, order.ID, reason)
		})
		notify(order.SellerID, func() error {
			return s.notifier.OrderCancelled(ctx, order.SellerID, product.Name, order.ID, reason)
		})
	}
}
