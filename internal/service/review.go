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

// ReviewService implements review submission, the eligibility gate for
// order-linked reviews, and the seller rating recompute.
type ReviewService struct {
	reviews  repository.ReviewRepository
	orders   repository.OrderRepository
	profiles repository.ProfileRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviews repository.ReviewRepository,
	orders repository.OrderRepository,
	profiles repository.ProfileRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		orders:   orders,
		profiles: profiles,
		producer: producer,
		logger:   logger,
	}
}

// CreateReviewInput holds the parameters for submitting a review.
type CreateReviewInput struct {
	ReviewerID string
	SellerID   string
	ProductID  *string
	OrderID    *string
	Rating     int
	Comment    string
}

// CreateReview validates eligibility, persists the review, and recomputes
// the seller's rating aggregate. For order-linked reviews the order must
// be completed, not yet reviewed, and the reviewer must be its buyer.
func (s *ReviewService) CreateReview(ctx context.Context, input CreateReviewInput) (*domain.Review, error) {
	if input.ReviewerID == "" {
		return nil, apperrors.InvalidInput("reviewer_id is required")
	}
	if input.SellerID == "" {
		return nil, apperrors.InvalidInput("seller_id is required")
	}
	if !domain.IsValidRating(input.Rating) {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	if _, err := s.profiles.GetByID(ctx, input.ReviewerID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("reviewer", input.ReviewerID)
		}
		return nil, fmt.Errorf("get reviewer: %w", err)
	}

	if _, err := s.profiles.GetByID(ctx, input.SellerID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("seller", input.SellerID)
		}
		return nil, fmt.Errorf("get seller: %w", err)
	}

	if input.OrderID != nil {
		if err := s.checkOrderEligibility(ctx, *input.OrderID, input.ReviewerID, input.SellerID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ID:         uuid.New().String(),
		ReviewerID: input.ReviewerID,
		SellerID:   input.SellerID,
		ProductID:  input.ProductID,
		OrderID:    input.OrderID,
		Rating:     input.Rating,
		Comment:    input.Comment,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// The unique index on order_id backs up the eligibility check, so a
	// concurrent duplicate surfaces here as an already-exists error.
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	if _, err := s.RecomputeSellerRating(ctx, input.SellerID); err != nil {
		return nil, fmt.Errorf("recompute seller rating: %w", err)
	}

	if err := s.producer.PublishReviewCreated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("seller_id", review.SellerID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// checkOrderEligibility runs the gate for order-linked reviews:
// completed status, no prior review, reviewer is the buyer, and the
// review's seller matches the order's seller.
func (s *ReviewService) checkOrderEligibility(ctx context.Context, orderID, reviewerID, sellerID string) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("get order for review: %w", err)
	}

	if !strings.EqualFold(order.Status, domain.OrderStatusCompleted) {
		return apperrors.Conflict(fmt.Sprintf("reviews can only be submitted for completed orders; current status: %s", order.Status))
	}

	if _, err := s.reviews.GetByOrderID(ctx, orderID); err == nil {
		return apperrors.AlreadyExists("a review already exists for this order")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("check existing review: %w", err)
	}

	if order.BuyerID != reviewerID {
		return apperrors.Forbidden("only the buyer of this order can review it")
	}

	if order.SellerID != sellerID {
		return apperrors.InvalidInput("seller does not match the order's seller")
	}

	return nil
}

// RecomputeSellerRating reloads every review of the seller and rewrites
// the materialized aggregate from scratch. The average is rounded half-up
// to two decimal places; a seller with no reviews gets zero for both
// fields. Recomputing is idempotent, so a failed attempt can be retried
// by the next review mutation.
func (s *ReviewService) RecomputeSellerRating(ctx context.Context, sellerID string) (*domain.RatingSummary, error) {
	all, err := s.reviews.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list seller reviews: %w", err)
	}

	average := decimal.Zero
	if len(all) > 0 {
		sum := decimal.Zero
		for _, rv := range all {
			sum = sum.Add(decimal.NewFromInt(int64(rv.Rating)))
		}
		average = sum.Div(decimal.NewFromInt(int64(len(all)))).Round(2)
	}

	if err := s.profiles.UpdateSellerRating(ctx, sellerID, average, len(all)); err != nil {
		return nil, fmt.Errorf("update seller rating: %w", err)
	}

	summary := &domain.RatingSummary{
		SellerID:      sellerID,
		AverageRating: average,
		TotalReviews:  len(all),
	}

	if err := s.producer.PublishSellerRatingUpdated(ctx, summary); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish seller.rating_updated event",
			slog.String("seller_id", sellerID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.DebugContext(ctx, "seller rating recomputed",
		slog.String("seller_id", sellerID),
		slog.String("average_rating", average.String()),
		slog.Int("total_reviews", len(all)),
	)

	return summary, nil
}

// GetReview retrieves a review by its ID.
func (s *ReviewService) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review by id: %w", err)
	}
	return review, nil
}

// ListSellerReviews returns a page of a seller's reviews with reviewer
// and product names resolved.
func (s *ReviewService) ListSellerReviews(ctx context.Context, sellerID string, page, perPage int, sort string) ([]domain.ReviewDetail, int, error) {
	if sort == "" {
		sort = domain.ReviewSortRecent
	}
	if !domain.IsValidReviewSort(sort) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid sort %q, must be one of: recent, highest, lowest", sort))
	}

	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	reviews, total, err := s.reviews.ListDetailedBySeller(ctx, sellerID, page, perPage, sort)
	if err != nil {
		return nil, 0, fmt.Errorf("list seller reviews: %w", err)
	}

	return reviews, total, nil
}

// ListReviewerReviews returns every review written by a reviewer.
func (s *ReviewService) ListReviewerReviews(ctx context.Context, reviewerID string) ([]domain.Review, error) {
	reviews, err := s.reviews.ListByReviewer(ctx, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("list reviews by reviewer: %w", err)
	}
	return reviews, nil
}

// ListProductReviews returns every review linked to a product.
func (s *ReviewService) ListProductReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	reviews, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews by product: %w", err)
	}
	return reviews, nil
}

// GetSellerRatingSummary reads the materialized aggregate from the
// seller's profile.
func (s *ReviewService) GetSellerRatingSummary(ctx context.Context, sellerID string) (*domain.RatingSummary, error) {
	profile, err := s.profiles.GetByID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("seller", sellerID)
		}
		return nil, fmt.Errorf("get seller profile: %w", err)
	}

	return &domain.RatingSummary{
		SellerID:      profile.ID,
		AverageRating: profile.SellerRating,
		TotalReviews:  profile.TotalReviews,
	}, nil
}

// UpdateReview rewrites a review's rating and comment, then recomputes
// the seller's aggregate.
func (s *ReviewService) UpdateReview(ctx context.Context, id string, rating int, comment string) (*domain.Review, error) {
	if !domain.IsValidRating(rating) {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review for update: %w", err)
	}

	review.Rating = rating
	review.Comment = comment
	review.UpdatedAt = time.Now().UTC()

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	if _, err := s.RecomputeSellerRating(ctx, review.SellerID); err != nil {
		return nil, fmt.Errorf("recompute seller rating: %w", err)
	}

	s.logger.InfoContext(ctx, "review updated",
		slog.String("review_id", review.ID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// DeleteReview removes a review and recomputes the seller's aggregate.
func (s *ReviewService) DeleteReview(ctx context.Context, id string) error {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get review for delete: %w", err)
	}

	if err := s.reviews.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if _, err := s.RecomputeSellerRating(ctx, review.SellerID); err != nil {
		return fmt.Errorf("recompute seller rating: %w", err)
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", id),
		slog.String("seller_id", review.SellerID),
	)

	return nil
}
