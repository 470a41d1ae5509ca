package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cdanpc/CampusMart/internal/domain"
	apperrors "github.com/cdanpc/CampusMart/pkg/errors"
)

type orderTestDeps struct {
	orders   *mockOrderRepository
	products *mockProductRepository
	profiles *mockProfileRepository
	notifier *mockNotifier
}

func newTestOrderService(strict bool) (*OrderService, orderTestDeps) {
	deps := orderTestDeps{
		orders:   new(mockOrderRepository),
		products: new(mockProductRepository),
		profiles: new(mockProfileRepository),
		notifier: new(mockNotifier),
	}
	svc := NewOrderService(deps.orders, deps.products, deps.profiles, deps.notifier, newTestProducer(), newTestLogger(), strict)
	return svc, deps
}

func testBuyer() *domain.Profile {
	return &domain.Profile{ID: "buyer-1", FirstName: "Ana", LastName: "Reyes", Email: "ana@campus.edu"}
}

func testSeller() *domain.Profile {
	return &domain.Profile{ID: "seller-1", FirstName: "Ben", LastName: "Cruz", Email: "ben@campus.edu"}
}

func testProduct(stock *int) *domain.Product {
	return &domain.Product{
		ID:       "prod-1",
		SellerID: "seller-1",
		Name:     "Calculus Textbook",
		Price:    decimal.RequireFromString("450.00"),
		Stock:    stock,
	}
}

func TestCreateOrder_Success(t *testing.T) {
	svc, deps := newTestOrderService(false)
	ctx := context.Background()

	deps.profiles.On("GetByID", ctx, "buyer-1").Return(testBuyer(), nil)
	deps.profiles.On("GetByID", ctx, "seller-1").Return(testSeller(), nil)
	deps.products.On("GetByID", ctx, "prod-1").Return(testProduct(intPtr(3)), nil)
	deps.orders.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(nil)
	deps.notifier.On("OrderPlaced", ctx, "seller-1", "Calculus Textbook", mock.AnythingOfType("string")).Return(nil)

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		BuyerID:     "buyer-1",
		SellerID:    "seller-1",
		ProductID:   "prod-1",
		Quantity:    2,
		TotalAmount: decimal.RequireFromString("900.00"),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("900.00")))
	deps.orders.AssertExpectations(t)
	deps.notifier.AssertExpectations(t)
}

func TestCreateOrder_ComputesTotalFromPrice(t *testing.T) {
	svc, deps := newTestOrderService(false)
	ctx := context.Background()

	deps.profiles.On("GetByID", ctx, "buyer-1").Return(testBuyer(), nil)
	deps.profiles.On("GetByID", ctx, "seller-1").Return(testSeller(), nil)
	deps.products.On("GetByID", ctx, "prod-1").Return(testProduct(intPtr(5)), nil)
	deps.orders.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(nil)
	deps.notifier.On("OrderPlaced", ctx, "seller-1", "Calculus Textbook", mock.AnythingOfType("string")).Return(nil)

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		BuyerID:   "buyer-1",
		SellerID:  "seller-1",
		ProductID: "prod-1",
		Quantity:  2,
	})

	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("900.00")))
}

func TestCreateOrder_SelfPurchase(t *testing.T) {
	svc, _ := newTestOrderService(false)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		BuyerID:   "buyer-1",
		SellerID:  "buyer-1",
		ProductID: "prod-1",
		Quantity:  1,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "cannot buy your own product")
}

func TestCreateOrder_MissingIDs(t *testing.T) {
	svc, _ := newTestOrderService(false)
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, CreateOrderInput{SellerID: "s", ProductID: "p", Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.CreateOrder(ctx, CreateOrderInput{BuyerID: "b", ProductID: "p", Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.CreateOrder(ctx, CreateOrderInput{BuyerID: "b", SellerID: "s", Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.CreateOrder(ctx, CreateOrderInput{BuyerID: "b", SellerID: "s", ProductID: "p", Quantity: 0})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateOrder_BuyerNotFound(t *testing.T) {
	svc, deps := newTestOrderService(false)
	ctx := context.Background()

	deps.profiles.On("GetByID", ctx, "ghost").Return(nil, apperrors.NotFound("profile", "ghost"))

	_, err := svc.CreateOrder(ctx, CreateOrderInput{
		BuyerID:   "ghost",
		SellerID:  "seller-1",
		ProductID: "prod-1",
		Quantity:  1,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "buyer")
}

func TestCreateOrder_ProductSellerMismatch(t *testing.T) {
	svc, deps := newTestOrderService(false)
	ctx := context.Background()

	product := testProduct(intPtr(3))
	product.SellerID = "someone-else"

	deps.profiles.On("GetByID", ctx, "buyer-1").Return(testBuyer(), nil)
	deps.profiles.On("GetByID", ctx, "seller-1").Return(testSeller(), nil)
	deps.products.On("GetByID", ctx, "prod-1").Return(product, nil)

	_, err := svc.CreateOrder(ctx, CreateOrderInput{
		BuyerID:   "buyer-1",
		SellerID:  "seller-1",
		ProductID: "prod-1",
		Quantity:  1,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "does not belong to the specified seller")
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	svc, deps := newTestOrderService(false)
	ctx := context.Background()

	deps.profiles.On("GetByID", ctx, "buyer-1").Return(testBuyer(), nil)
	deps.profiles.On("GetByID", ctx, "seller-1").Return(testSeller(), nil)
	deps.products.On("GetByID", ctx, "prod-1").Return(testProduct(intPtr(1)), nil)

	_, err := svc.CreateOrder(ctx, CreateOrderInput{
		BuyerID:   "buyer-1",
		SellerID:  "seller-1",
		ProductID: "prod-1",
		Quantity:  2,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Contains(t, err.Error(), "insufficient stock")
	deps.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateOrder_UntrackedStockAlwaysOrderable(t *testing.T) {
	svc, deps := newTestOrderService(false)
	ctx := context.Background()

	deps.profiles.On("GetByID", ctx, "buyer-1").Return(testBuyer(), nil)
	deps.profiles.On("GetByID", ctx, "seller-1").Return(testSeller(), nil)
	deps.products.On("GetByID", ctx, "prod-1").Return(testProduct(nil), nil)
	deps.orders.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(nil)
	deps.notifier.On("OrderPlaced", ctx, "seller-1", "Calculus Textbook", mock.AnythingOfType("string")).Return(nil)

	_, err := svc.CreateOrder(ctx, CreateOrderInput{
		BuyerID:   "buyer-1",
		SellerID:  "seller-1",
		ProductID: "prod-1",
		Quantity:  100,
	})

	require.NoError(t, err)
}

func TestCreateOrder_NotificationFailureDoesNotFailOrder(t *testing.T) {
	svc, deps := newTestOrderService(false)
	ctx := context.Background()

	deps.profiles.On("GetByID", ctx, "buyer-1").Return(testBuyer(), nil)
	deps.profiles.On("GetByID", ctx, "seller-1").Return(testSeller(), nil)
	deps.products.On("GetByID", ctx, "prod-1").Return(testProduct(intPtr(3)), nil)
	deps.orders.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(nil)
	deps.notifier.On("OrderPlaced", ctx, "seller-1", "Calculus Textbook", mock.AnythingOfType("string")).Return(assert.AnError)

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		BuyerID:   "buyer-1",
		SellerID:  "seller-1",
		ProductID: "prod-1",
		Quantity:  1,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
}

func pendingOrder() *domain.Order {
	return &domain.Order{
		ID:        "order-1",
		BuyerID:   "buyer-1",
		SellerID:  "seller-1",
		ProductID: "prod-1",
		Quantity:  1,
		Status:    domain.OrderStatusPending,
	}
}

func TestUpdateOrderStatus_InvalidStatus(t *testing.T) {
	svc, _ := newTestOrderService(false)

	_, err := svc.UpdateOrderStatus(context.Background(), "order-1", "shipped", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateOrderStatus_ConfirmedNotifiesBuyer(t *testing.T) {
	svc, deps := newTestOrderService(false)
	ctx := context.Background()

	deps.orders.On("GetByID", ctx, "order-1").Return(pendingOrder(), nil)
	deps.orders.On("UpdateStatus", ctx, "order-1", domain.OrderStatusConfirmed).Return(nil)
	deps.products.On("GetByID", ctx, "prod-1").Return(testProduct(intPtr(3)), nil)
	deps.notifier.On("OrderConfirmed", ctx, "buyer-1", "Calculus Textbook", "order-1").Return(nil)

	order, err := svc.UpdateOrderStatus(ctx, "order-1", domain.OrderStatusConfirmed, "")

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
	deps.notifier.AssertExpectations(t)
}

func TestUpdateOrderStatus_SameStatusSkipsNotifications(t *testing.T) {
	svc, deps := newTestOrderService(false)
	ctx := context.Background()

	deps.orders.On("GetByID", ctx, "order-1").Return(pendingOrder(), nil)
	deps.orders.On("UpdateStatus", ctx, "order-1", domain.OrderStatusPending).Return(nil)

	_, err := svc.UpdateOrderStatus(ctx, "order-1", domain.OrderStatusPending, "")

	require.NoError(t, err)
	deps.notifier.AssertNotCalled(t, "OrderConfirmed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	deps.notifier.AssertNotCalled(t, "OrderCancelled", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	deps.products.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUpdateOrderStatus_ReadyPassesPickupLocation(t *testing.T) {
	svc, deps := newTestOrderService(false)
	ctx := context.Background()

	order := pendingOrder()
	order.Status = domain.OrderStatusProcessing
	order.PickupLocation = "Library steps"

	deps.orders.On("GetByID", ctx, "order-1").Return(order, nil)
	deps.orders.On("UpdateStatus", ctx, "order-1", domain.OrderStatusReadyForPickup).Return(nil)
	deps.products.On("GetByID", ctx, "prod-1").Return(testProduct(intPtr(3)), nil)
	deps.notifier.On("OrderReady", ctx, "buyer-1", "Calculus Textbook", "order-1", "Library steps").Return(nil)

	_, err := svc.UpdateOrderStatus(ctx, "order-1", domain.OrderStatusReadyForPickup, "")

	require.NoError(t, err)
	deps.notifier.AssertExpectations(t)
}

func TestUpdateOrderStatus_CancelledNotifiesBothParties(t *testing.T) {
	svc, deps := newTestOrderService(false)
	ctx := context.Background()

	deps.orders.On("GetByID", ctx, "order-1").Return(pendingOrder(), nil)
	deps.orders.On("UpdateStatus", ctx, "order-1", domain.OrderStatusCancelled).Return(nil)
	deps.products.On("GetByID", ctx, "prod-1").Return(testProduct(intPtr(3)), nil)
	deps.notifier.On("OrderCancelled", ctx, "buyer-1", "Calculus Textbook", "order-1", "changed my mind").Return(nil)
	deps.notifier.On("OrderCancelled", ctx, "seller-1", "Calculus Textbook", "order-1", "changed my mind").Return(nil)

	_, err := svc.UpdateOrderStatus(ctx, "order-1", domain.OrderStatusCancelled, "changed my mind")

	require.NoError(t, err)
	deps.notifier.AssertExpectations(t)
}

func TestUpdateOrderStatus_NotificationFailureDoesNotFailUpdate(t *testing.T) {
	svc, deps := newTestOrderService(false)
	ctx := context.Background()

	deps.orders.On("GetByID", ctx, "order-1").Return(pendingOrder(), nil)
	deps.orders.On("UpdateStatus", ctx, "order-1", domain.OrderStatusConfirmed).Return(nil)
	deps.products.On("GetByID", ctx, "prod-1").Return(testProduct(intPtr(3)), nil)
	deps.notifier.On("OrderConfirmed", ctx, "buyer-1", "Calculus Textbook", "order-1").Return(assert.AnError)

	order, err := svc.UpdateOrderStatus(ctx, "order-1", domain.OrderStatusConfirmed, "")

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
}

func TestUpdateOrderStatus_StrictRejectsIllegalTransition(t *testing.T) {
	svc, deps := newTestOrderService(true)
	ctx := context.Background()

	deps.orders.On("GetByID", ctx, "order-1").Return(pendingOrder(), nil)

	_, err := svc.UpdateOrderStatus(ctx, "order-1", domain.OrderStatusCompleted, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	deps.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateOrderStatus_StrictAllowsDeclaredTransition(t *testing.T) {
	svc, deps := newTestOrderService(true)
	ctx := context.Background()

	deps.orders.On("GetByID", ctx, "order-1").Return(pendingOrder(), nil)
	deps.orders.On("UpdateStatus", ctx, "order-1", domain.OrderStatusConfirmed).Return(nil)
	deps.products.On("GetByID", ctx, "prod-1").Return(testProduct(intPtr(3)), nil)
	deps.notifier.On("OrderConfirmed", ctx, "buyer-1", "Calculus Textbook", "order-1").Return(nil)

	_, err := svc.UpdateOrderStatus(ctx, "order-1", domain.OrderStatusConfirmed, "")

	require.NoError(t, err)
}

func TestCancelOrder_DefaultReason(t *testing.T) {
	svc, deps := newTestOrderService(false)
	ctx := context.Background()

	deps.orders.On("GetByID", ctx, "order-1").Return(pendingOrder(), nil)
	deps.orders.On("UpdateStatus", ctx, "order-1", domain.OrderStatusCancelled).Return(nil)
	deps.products.On("GetByID", ctx, "prod-1").Return(testProduct(intPtr(3)), nil)
	deps.notifier.On("OrderCancelled", ctx, "buyer-1", "Calculus Textbook", "order-1", CancelReasonDefault).Return(nil)
	deps.notifier.On("OrderCancelled", ctx, "seller-1", "Calculus Textbook", "order-1", CancelReasonDefault).Return(nil)

	order, err := svc.CancelOrder(ctx, "order-1", "")

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, order.Status)
	deps.notifier.AssertExpectations(t)
}

func TestGetOrder_NotFound(t *testing.T) {
	svc, deps := newTestOrderService(false)
	ctx := context.Background()

	deps.orders.On("GetByID", ctx, "missing").Return(nil, apperrors.NotFound("order", "missing"))

	_, err := svc.GetOrder(ctx, "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
