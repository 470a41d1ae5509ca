// Package repository defines the persistence contracts for the order
// lifecycle and review engine. Implementations live in the postgres
// subpackage; services depend only on these interfaces.
package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/cdanpc/CampusMart/internal/domain"
)

// ProfileRepository reads campus user profiles and maintains the
// materialized seller rating aggregate.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	UpdateSellerRating(ctx context.Context, sellerID string, rating decimal.Decimal, totalReviews int) error
}

// ProductRepository reads product listings. Stock mutations happen inside
// the order creation transaction, not through this interface.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	UpdateStock(ctx context.Context, id string, stock int) error
}

// OrderRepository persists orders. Create inserts the order and, when the
// product tracks stock, decrements it in the same transaction under a row
// lock so concurrent orders cannot oversell.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetDetailByID(ctx context.Context, id string) (*domain.OrderDetail, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.OrderDetail, error)
	ListBySeller(ctx context.Context, sellerID string) ([]domain.OrderDetail, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// ReviewRepository persists reviews. Create surfaces the unique-order
// constraint as an already-exists error so a concurrent duplicate cannot
// slip past the service-level check.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.Review, error)
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Review, error)
	ListDetailedBySeller(ctx context.Context, sellerID string, page, perPage int, sort string) ([]domain.ReviewDetail, int, error)
	ListByReviewer(ctx context.Context, reviewerID string) ([]domain.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, id string) error
}

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	ListByProfile(ctx context.Context, profileID string) ([]domain.Notification, error)
	ListByProfileAndType(ctx context.Context, profileID, notifType string) ([]domain.Notification, error)
	ListUnreadByProfile(ctx context.Context, profileID string) ([]domain.Notification, error)
	CountUnreadByProfile(ctx context.Context, profileID string) (int, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, profileID string) error
	Delete(ctx context.Context, id string) error
	DeleteAllByProfile(ctx context.Context, profileID string) error
}
