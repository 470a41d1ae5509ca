package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cdanpc/CampusMart/internal/domain"
	"github.com/cdanpc/CampusMart/internal/repository"
)

// NotificationService persists in-app notifications and offers typed
// helpers for each order lifecycle event.
type NotificationService struct {
	repo     repository.NotificationRepository
	profiles repository.ProfileRepository
	logger   *slog.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(repo repository.NotificationRepository, profiles repository.ProfileRepository, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		repo:     repo,
		profiles: profiles,
		logger:   logger,
	}
}

// Create validates the recipient and persists a notification.
func (s *NotificationService) Create(ctx context.Context, profileID, typ, title, message string, relatedID *string, relatedType string) (*domain.Notification, error) {
	if _, err := s.profiles.GetByID(ctx, profileID); err != nil {
		return nil, fmt.Errorf("get notification recipient: %w", err)
	}

	n := &domain.Notification{
		ID:          uuid.New().String(),
		ProfileID:   profileID,
		Type:        typ,
		Title:       title,
		Message:     message,
		RelatedID:   relatedID,
		RelatedType: relatedType,
		IsRead:      false,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	s.logger.DebugContext(ctx, "notification created",
		slog.String("notification_id", n.ID),
		slog.String("profile_id", profileID),
		slog.String("type", typ),
	)

	return n, nil
}

// OrderPlaced notifies the seller that a new order was placed.
func (s *NotificationService) OrderPlaced(ctx context.Context, sellerID, productName, orderID string) error {
	_, err := s.Create(ctx, sellerID,
		domain.NotificationOrderPlaced,
		"New Order Received!",
		fmt.Sprintf("You have received a new order for '%s'. Please confirm the order.", productName),
		&orderID, domain.RelatedTypeOrder,
	)
	return err
}

// OrderConfirmed notifies the buyer that the seller confirmed the order.
func (s *NotificationService) OrderConfirmed(ctx context.Context, buyerID, productName, orderID string) error {
	_, err := s.Create(ctx, buyerID,
		domain.NotificationOrderConfirmed,
		"Order Confirmed!",
		fmt.Sprintf("Your order for '%s' has been confirmed by the seller.", productName),
		&orderID, domain.RelatedTypeOrder,
	)
	return err
}

// OrderReady notifies the buyer that the order is ready for pickup.
func (s *NotificationService) OrderReady(ctx context.Context, buyerID, productName, orderID, pickupLocation string) error {
	if pickupLocation == "" {
		pickupLocation = domain.DefaultPickupLocation
	}
	_, err := s.Create(ctx, buyerID,
		domain.NotificationOrderReady,
		"Order Ready for Pickup!",
		fmt.Sprintf("Your order for '%s' is ready for pickup at %s.", productName, pickupLocation),
		&orderID, domain.RelatedTypeOrder,
	)
	return err
}

// OrderCompleted notifies the buyer that the order was completed.
func (s *NotificationService) OrderCompleted(ctx context.Context, buyerID, productName, orderID string) error {
	_, err := s.Create(ctx, buyerID,
		domain.NotificationOrderCompleted,
		"Order Completed!",
		fmt.Sprintf("Your order for '%s' has been completed. Thank you for your purchase!", productName),
		&orderID, domain.RelatedTypeOrder,
	)
	return err
}

// OrderCancelled notifies a party that the order was cancelled.
func (s *NotificationService) OrderCancelled(ctx context.Context, profileID, productName, orderID, reason string) error {
	_, err := s.Create(ctx, profileID,
		domain.NotificationOrderCancelled,
		"Order Cancelled",
		fmt.Sprintf("The order for '%s' has been cancelled. Reason: %s", productName, reason),
		&orderID, domain.RelatedTypeOrder,
	)
	return err
}

// GetNotification retrieves a notification by its ID.
func (s *NotificationService) GetNotification(ctx context.Context, id string) (*domain.Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get notification by id: %w", err)
	}
	return n, nil
}

// ListNotifications returns all of a profile's notifications, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, profileID string) ([]domain.Notification, error) {
	notifications, err := s.repo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// ListNotificationsByType returns a profile's notifications of one type.
func (s *NotificationService) ListNotificationsByType(ctx context.Context, profileID, notifType string) ([]domain.Notification, error) {
	notifications, err := s.repo.ListByProfileAndType(ctx, profileID, notifType)
	if err != nil {
		return nil, fmt.Errorf("list notifications by type: %w", err)
	}
	return notifications, nil
}

// ListUnreadNotifications returns a profile's unread notifications.
func (s *NotificationService) ListUnreadNotifications(ctx context.Context, profileID string) ([]domain.Notification, error) {
	notifications, err := s.repo.ListUnreadByProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list unread notifications: %w", err)
	}
	return notifications, nil
}

// CountUnread returns the number of unread notifications for a profile.
func (s *NotificationService) CountUnread(ctx context.Context, profileID string) (int, error) {
	count, err := s.repo.CountUnreadByProfile(ctx, profileID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead flags a single notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead flags all of a profile's notifications as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, profileID string) error {
	if err := s.repo.MarkAllRead(ctx, profileID); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

// DeleteNotification removes a notification.
func (s *NotificationService) DeleteNotification(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

// DeleteAllNotifications removes every notification of a profile.
func (s *NotificationService) DeleteAllNotifications(ctx context.Context, profileID string) error {
	if err := s.repo.DeleteAllByProfile(ctx, profileID); err != nil {
		return fmt.Errorf("delete all notifications: %w", err)
	}
	return nil
}
