package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/cdanpc/CampusMart/internal/domain"
	pkgkafka "github.com/cdanpc/CampusMart/pkg/kafka"
)

// Kafka topic constants for marketplace domain events.
const (
	TopicOrderCreated       = "campusmart.order.created"
	TopicOrderStatusChanged = "campusmart.order.status_changed"
	TopicReviewCreated      = "campusmart.review.created"
	TopicSellerRatingSet    = "campusmart.seller.rating_updated"
)

// Aggregate type constants.
const (
	AggregateTypeOrder  = "order"
	AggregateTypeReview = "review"
	AggregateTypeSeller = "seller"
)

// Source identifier for events originating from this service.
const SourceMarketplace = "campusmart"

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	OrderID     string          `json:"order_id"`
	BuyerID     string          `json:"buyer_id"`
	SellerID    string          `json:"seller_id"`
	ProductID   string          `json:"product_id"`
	Quantity    int             `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	OrderID   string `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// ReviewCreatedData is the payload for a review.created event.
type ReviewCreatedData struct {
	ReviewID   string  `json:"review_id"`
	ReviewerID string  `json:"reviewer_id"`
	SellerID   string  `json:"seller_id"`
	OrderID    *string `json:"order_id,omitempty"`
	Rating     int     `json:"rating"`
}

// SellerRatingUpdatedData is the payload for a seller.rating_updated event.
type SellerRatingUpdatedData struct {
	SellerID      string          `json:"seller_id"`
	AverageRating decimal.Decimal `json:"average_rating"`
	TotalReviews  int             `json:"total_reviews"`
}

// Producer publishes marketplace domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderCreated publishes an order.created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	data := OrderCreatedData{
		OrderID:     order.ID,
		BuyerID:     order.BuyerID,
		SellerID:    order.SellerID,
		ProductID:   order.ProductID,
		Quantity:    order.Quantity,
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID, AggregateTypeOrder, SourceMarketplace, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", order.ID),
		slog.String("buyer_id", order.BuyerID),
	)

	return nil
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, orderID, oldStatus, newStatus string) error {
	data := OrderStatusChangedData{
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}

	event, err := pkgkafka.NewEvent(TopicOrderStatusChanged, orderID, AggregateTypeOrder, SourceMarketplace, data)
	if err != nil {
		return fmt.Errorf("create order.status_changed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderStatusChanged, event); err != nil {
		return fmt.Errorf("publish order.status_changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.status_changed event",
		slog.String("order_id", orderID),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
	)

	return nil
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	data := ReviewCreatedData{
		ReviewID:   review.ID,
		ReviewerID: review.ReviewerID,
		SellerID:   review.SellerID,
		OrderID:    review.OrderID,
		Rating:     review.Rating,
	}

	event, err := pkgkafka.NewEvent(TopicReviewCreated, review.ID, AggregateTypeReview, SourceMarketplace, data)
	if err != nil {
		return fmt.Errorf("create review.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewCreated, event); err != nil {
		return fmt.Errorf("publish review.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.created event",
		slog.String("review_id", review.ID),
		slog.String("seller_id", review.SellerID),
	)

	return nil
}

// PublishSellerRatingUpdated publishes a seller.rating_updated event after
// a rating recompute.
func (p *Producer) PublishSellerRatingUpdated(ctx context.Context, summary *domain.RatingSummary) error {
	data := SellerRatingUpdatedData{
		SellerID:      summary.SellerID,
		AverageRating: summary.AverageRating,
		TotalReviews:  summary.TotalReviews,
	}

	event, err := pkgkafka.NewEvent(TopicSellerRatingSet, summary.SellerID, AggregateTypeSeller, SourceMarketplace, data)
	if err != nil {
		return fmt.Errorf("create seller.rating_updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicSellerRatingSet, event); err != nil {
		return fmt.Errorf("publish seller.rating_updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published seller.rating_updated event",
		slog.String("seller_id", summary.SellerID),
	)

	return nil
}
