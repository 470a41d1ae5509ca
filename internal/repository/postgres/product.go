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

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT id, seller_id, name, description, price, condition, category, image_url, stock, created_at, updated_at
		FROM products
		WHERE id = $1`

	var p domain.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.SellerID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Condition,
		&p.Category,
		&p.ImageURL,
		&p.Stock,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	return &p, nil
}

// UpdateStock sets the tracked stock level for a product.
func (r *ProductRepository) UpdateStock(ctx context.Context, id string, stock int) error {
	query := `UPDATE products SET stock = $1, updated_at = $2 WHERE id = $3`

	ct, err := r.pool.Exec(ctx, query, stock, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}
