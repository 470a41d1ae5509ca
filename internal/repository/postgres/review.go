package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cdanpc/CampusMart/internal/domain"
	"github.com/cdanpc/CampusMart/pkg/database"
	apperrors "github.com/cdanpc/CampusMart/pkg/errors"
)

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations, used to surface duplicate order reviews.
const uniqueViolation = "23505"

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a review. The reviews table carries a unique index on
// order_id, so a concurrent duplicate for the same order fails here even
// when it passed the service-level check.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	query := `
		INSERT INTO reviews (id, reviewer_id, seller_id, product_id, order_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		rv.ID,
		rv.ReviewerID,
		rv.SellerID,
		rv.ProductID,
		rv.OrderID,
		rv.Rating,
		rv.Comment,
		rv.CreatedAt,
		rv.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.AlreadyExists("a review already exists for this order")
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

const reviewColumns = `id, reviewer_id, seller_id, product_id, order_id, rating, comment, created_at, updated_at`

func scanReview(row pgx.Row) (*domain.Review, error) {
	var rv domain.Review
	err := row.Scan(
		&rv.ID,
		&rv.ReviewerID,
		&rv.SellerID,
		&rv.ProductID,
		&rv.OrderID,
		&rv.Rating,
		&rv.Comment,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// GetByID retrieves a review by its ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	rv, err := scanReview(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	return rv, nil
}

// GetByOrderID retrieves the review linked to an order, if any.
func (r *ReviewRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE order_id = $1`

	rv, err := scanReview(r.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review for order", orderID)
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	return rv, nil
}

// ListBySeller returns every review of a seller. The rating recompute
// reads this, so it is not paginated.
func (r *ReviewRepository) ListBySeller(ctx context.Context, sellerID string) ([]domain.Review, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE seller_id = $1 ORDER BY created_at DESC`, sellerID)
}

// ListByReviewer returns every review written by a reviewer, newest first.
func (r *ReviewRepository) ListByReviewer(ctx context.Context, reviewerID string) ([]domain.Review, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE reviewer_id = $1 ORDER BY created_at DESC`, reviewerID)
}

// ListByProduct returns every review linked to a product, newest first.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE product_id = $1 ORDER BY created_at DESC`, productID)
}

func (r *ReviewRepository) list(ctx context.Context, query string, arg any) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, *rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}

// ListDetailedBySeller returns a page of a seller's reviews with reviewer
// and product names resolved, plus the total count via count(*) OVER().
func (r *ReviewRepository) ListDetailedBySeller(ctx context.Context, sellerID string, page, perPage int, sort string) ([]domain.ReviewDetail, int, error) {
	orderBy := "r.created_at DESC"
	switch sort {
	case domain.ReviewSortHighest:
		orderBy = "r.rating DESC, r.created_at DESC"
	case domain.ReviewSortLowest:
		orderBy = "r.rating ASC, r.created_at DESC"
	}

	limit := perPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	query := fmt.Sprintf(`
		SELECT r.id, r.reviewer_id, r.seller_id, r.product_id, r.order_id, r.rating, r.comment, r.created_at, r.updated_at,
			   rp.first_name || ' ' || rp.last_name AS reviewer_name,
			   COALESCE(p.name, '') AS product_name,
			   count(*) OVER() AS total_count
		FROM reviews r
		JOIN profiles rp ON rp.id = r.reviewer_id
		LEFT JOIN products p ON p.id = r.product_id
		WHERE r.seller_id = $1
		ORDER BY %s
		LIMIT $2 OFFSET $3`, orderBy)

	rows, err := r.pool.Query(ctx, query, sellerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list seller reviews: %w", err)
	}
	defer rows.Close()

	var totalCount int
	details := make([]domain.ReviewDetail, 0)

	for rows.Next() {
		var d domain.ReviewDetail
		if err := rows.Scan(
			&d.ID,
			&d.ReviewerID,
			&d.SellerID,
			&d.ProductID,
			&d.OrderID,
			&d.Rating,
			&d.Comment,
			&d.CreatedAt,
			&d.UpdatedAt,
			&d.ReviewerName,
			&d.ProductName,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review detail row: %w", err)
		}
		details = append(details, d)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review detail rows: %w", err)
	}

	return details, totalCount, nil
}

// Update rewrites a review's rating and comment.
func (r *ReviewRepository) Update(ctx context.Context, rv *domain.Review) error {
	query := `UPDATE reviews SET rating = $1, comment = $2, updated_at = $3 WHERE id = $4`

	ct, err := r.pool.Exec(ctx, query, rv.Rating, rv.Comment, time.Now().UTC(), rv.ID)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", rv.ID)
	}

	return nil
}

// Delete removes a review.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}

	return nil
}
