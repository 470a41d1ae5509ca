package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/cdanpc/CampusMart/internal/domain"
	"github.com/cdanpc/CampusMart/pkg/database"
	apperrors "github.com/cdanpc/CampusMart/pkg/errors"
)

// ProfileRepository implements repository.ProfileRepository using PostgreSQL.
type ProfileRepository struct {
	pool database.DBTX
}

// NewProfileRepository creates a new PostgreSQL-backed profile repository.
func NewProfileRepository(pool database.DBTX) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// GetByID retrieves a profile by its ID.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, campus, seller_rating, total_reviews, created_at, updated_at
		FROM profiles
		WHERE id = $1`

	var p domain.Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.Email,
		&p.Phone,
		&p.Campus,
		&p.SellerRating,
		&p.TotalReviews,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("profile", id)
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	return &p, nil
}

// UpdateSellerRating writes the materialized rating aggregate. The values
// come from a full recompute over the seller's reviews, so the write is
// idempotent.
func (r *ProfileRepository) UpdateSellerRating(ctx context.Context, sellerID string, rating decimal.Decimal, totalReviews int) error {
	query := `UPDATE profiles SET seller_rating = $1, total_reviews = $2, updated_at = $3 WHERE id = $4`

	ct, err := r.pool.Exec(ctx, query, rating, totalReviews, time.Now().UTC(), sellerID)
	if err != nil {
		return fmt.Errorf("update seller rating: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("profile", sellerID)
	}

	return nil
}
