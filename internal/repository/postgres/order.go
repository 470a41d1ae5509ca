package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cdanpc/CampusMart/internal/domain"
	"github.com/cdanpc/CampusMart/pkg/database"
	apperrors "github.com/cdanpc/CampusMart/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the order and decrements product stock in one
// transaction. The stock row is locked with FOR UPDATE so two concurrent
// orders for the last unit cannot both commit; the loser fails with a
// conflict and the insert rolls back.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var stock *int
	err = tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1 FOR UPDATE`, o.ProductID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("product", o.ProductID)
		}
		return fmt.Errorf("lock product stock: %w", err)
	}

	if stock != nil {
		if *stock < o.Quantity {
			return apperrors.Conflict(fmt.Sprintf("insufficient stock for product %s: available %d, requested %d", o.ProductID, *stock, o.Quantity))
		}
		_, err = tx.Exec(ctx, `UPDATE products SET stock = stock - $1, updated_at = $2 WHERE id = $3`,
			o.Quantity, time.Now().UTC(), o.ProductID)
		if err != nil {
			return fmt.Errorf("decrement product stock: %w", err)
		}
	}

	query := `
		INSERT INTO orders (id, buyer_id, seller_id, product_id, quantity, total_amount, status, payment_method, pickup_location, delivery_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = tx.Exec(ctx, query,
		o.ID,
		o.BuyerID,
		o.SellerID,
		o.ProductID,
		o.Quantity,
		o.TotalAmount,
		o.Status,
		o.PaymentMethod,
		o.PickupLocation,
		o.DeliveryNotes,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

const orderColumns = `id, buyer_id, seller_id, product_id, quantity, total_amount, status, payment_method, pickup_location, delivery_notes, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID,
		&o.BuyerID,
		&o.SellerID,
		&o.ProductID,
		&o.Quantity,
		&o.TotalAmount,
		&o.Status,
		&o.PaymentMethod,
		&o.PickupLocation,
		&o.DeliveryNotes,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByID retrieves an order by its ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	return o, nil
}

const orderDetailQuery = `
	SELECT
		o.id, o.quantity, o.total_amount, o.status, o.payment_method, o.pickup_location, o.delivery_notes, o.created_at, o.updated_at,
		p.id, p.name, p.description, p.price, p.image_url, p.condition,
		b.id, b.first_name || ' ' || b.last_name, b.email, b.phone,
		s.id, s.first_name || ' ' || s.last_name, s.email, s.phone,
		rv.id
	FROM orders o
	JOIN products p ON p.id = o.product_id
	JOIN profiles b ON b.id = o.buyer_id
	JOIN profiles s ON s.id = o.seller_id
	LEFT JOIN reviews rv ON rv.order_id = o.id`

func scanOrderDetail(row pgx.Row) (*domain.OrderDetail, error) {
	var d domain.OrderDetail
	err := row.Scan(
		&d.OrderID,
		&d.Quantity,
		&d.TotalAmount,
		&d.Status,
		&d.PaymentMethod,
		&d.PickupLocation,
		&d.DeliveryNotes,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.ProductID,
		&d.ProductName,
		&d.ProductDescription,
		&d.ProductPrice,
		&d.ProductImage,
		&d.ProductCondition,
		&d.BuyerID,
		&d.BuyerName,
		&d.BuyerEmail,
		&d.BuyerPhone,
		&d.SellerID,
		&d.SellerName,
		&d.SellerEmail,
		&d.SellerPhone,
		&d.ReviewID,
	)
	if err != nil {
		return nil, err
	}
	d.HasReview = d.ReviewID != nil
	return &d, nil
}

// GetDetailByID retrieves an order with its product, buyer, and seller
// fields resolved in a single query.
func (r *OrderRepository) GetDetailByID(ctx context.Context, id string) (*domain.OrderDetail, error) {
	query := orderDetailQuery + ` WHERE o.id = $1`

	d, err := scanOrderDetail(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("scan order detail: %w", err)
	}

	return d, nil
}

// ListByBuyer returns all of a buyer's orders, newest first.
func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID string) ([]domain.OrderDetail, error) {
	return r.listDetails(ctx, orderDetailQuery+` WHERE o.buyer_id = $1 ORDER BY o.created_at DESC`, buyerID)
}

// ListBySeller returns all of a seller's orders, newest first.
func (r *OrderRepository) ListBySeller(ctx context.Context, sellerID string) ([]domain.OrderDetail, error) {
	return r.listDetails(ctx, orderDetailQuery+` WHERE o.seller_id = $1 ORDER BY o.created_at DESC`, sellerID)
}

func (r *OrderRepository) listDetails(ctx context.Context, query string, arg any) ([]domain.OrderDetail, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	details := make([]domain.OrderDetail, 0)
	for rows.Next() {
		d, err := scanOrderDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order detail row: %w", err)
		}
		details = append(details, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return details, nil
}

// ListByProduct returns all orders placed against a product, newest first.
func (r *OrderRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE product_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list orders by product: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

// UpdateStatus sets the order status unconditionally.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`

	ct, err := r.pool.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}
