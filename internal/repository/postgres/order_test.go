package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdanpc/CampusMart/internal/domain"
	apperrors "github.com/cdanpc/CampusMart/pkg/errors"
)

func newOrderTestFixture(t *testing.T) (*OrderRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewOrderRepository(mock)
	return repo, mock
}

func sampleOrder() *domain.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Order{
		ID:             "o-1",
		BuyerID:        "b-1",
		SellerID:       "s-1",
		ProductID:      "p-1",
		Quantity:       2,
		TotalAmount:    decimal.RequireFromString("900.00"),
		Status:         domain.OrderStatusPending,
		PaymentMethod:  "cash",
		PickupLocation: "Main gate",
		DeliveryNotes:  "",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func orderCols() []string {
	return []string{
		"id", "buyer_id", "seller_id", "product_id", "quantity", "total_amount",
		"status", "payment_method", "pickup_location", "delivery_notes",
		"created_at", "updated_at",
	}
}

func orderRow(o *domain.Order) *pgxmock.Rows {
	return pgxmock.NewRows(orderCols()).AddRow(
		o.ID, o.BuyerID, o.SellerID, o.ProductID, o.Quantity, o.TotalAmount,
		o.Status, o.PaymentMethod, o.PickupLocation, o.DeliveryNotes,
		o.CreatedAt, o.UpdatedAt,
	)
}

func expectOrderInsert(mock pgxmock.PgxPoolIface, o *domain.Order) {
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(
			o.ID, o.BuyerID, o.SellerID, o.ProductID, o.Quantity, o.TotalAmount,
			o.Status, o.PaymentMethod, o.PickupLocation, o.DeliveryNotes,
			o.CreatedAt, o.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestOrderRepository_Create_DecrementsTrackedStock(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	o := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT stock FROM products WHERE id = .+ FOR UPDATE").
		WithArgs(o.ProductID).
		WillReturnRows(pgxmock.NewRows([]string{"stock"}).AddRow(intPtr(5)))
	mock.ExpectExec("UPDATE products SET stock = stock -").
		WithArgs(o.Quantity, pgxmock.AnyArg(), o.ProductID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	expectOrderInsert(mock, o)
	mock.ExpectCommit()

	err := repo.Create(context.Background(), o)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_UntrackedStockSkipsDecrement(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	o := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT stock FROM products WHERE id = .+ FOR UPDATE").
		WithArgs(o.ProductID).
		WillReturnRows(pgxmock.NewRows([]string{"stock"}).AddRow((*int)(nil)))
	expectOrderInsert(mock, o)
	mock.ExpectCommit()

	err := repo.Create(context.Background(), o)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_InsufficientStockUnderLock(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	o := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT stock FROM products WHERE id = .+ FOR UPDATE").
		WithArgs(o.ProductID).
		WillReturnRows(pgxmock.NewRows([]string{"stock"}).AddRow(intPtr(1)))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), o)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict), "expected ErrConflict, got: %v", err)
	assert.Contains(t, err.Error(), "insufficient stock")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_ProductMissing(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	o := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT stock FROM products WHERE id = .+ FOR UPDATE").
		WithArgs(o.ProductID).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), o)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "expected ErrNotFound, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_BeginError(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	err := repo.Create(context.Background(), sampleOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// GetByID / UpdateStatus
// ---------------------------------------------------------------------------

func TestOrderRepository_GetByID_Success(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	o := sampleOrder()

	mock.ExpectQuery("SELECT .+ FROM orders WHERE id =").
		WithArgs(o.ID).
		WillReturnRows(orderRow(o))

	got, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, o.Status, got.Status)
	assert.True(t, got.TotalAmount.Equal(o.TotalAmount))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM orders WHERE id =").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "expected ErrNotFound, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_UpdateStatus_Success(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE orders SET status =").
		WithArgs(domain.OrderStatusConfirmed, pgxmock.AnyArg(), "o-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdateStatus(context.Background(), "o-1", domain.OrderStatusConfirmed)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_UpdateStatus_NotFound(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE orders SET status =").
		WithArgs(domain.OrderStatusConfirmed, pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateStatus(context.Background(), "missing", domain.OrderStatusConfirmed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "expected ErrNotFound, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// ListByProduct
// ---------------------------------------------------------------------------

func TestOrderRepository_ListByProduct(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	o := sampleOrder()

	mock.ExpectQuery("SELECT .+ FROM orders WHERE product_id =").
		WithArgs(o.ProductID).
		WillReturnRows(orderRow(o))

	got, err := repo.ListByProduct(context.Background(), o.ProductID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, o.ID, got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func intPtr(i int) *int {
	return &i
}
