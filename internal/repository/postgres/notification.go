package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cdanpc/CampusMart/internal/domain"
	"github.com/cdanpc/CampusMart/pkg/database"
	apperrors "github.com/cdanpc/CampusMart/pkg/errors"
)

// NotificationRepository implements repository.NotificationRepository
// using PostgreSQL.
type NotificationRepository struct {
	pool database.DBTX
}

// NewNotificationRepository creates a new PostgreSQL-backed notification
// repository.
func NewNotificationRepository(pool database.DBTX) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Create inserts a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, profile_id, type, title, message, related_id, related_type, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		n.ID,
		n.ProfileID,
		n.Type,
		n.Title,
		n.Message,
		n.RelatedID,
		n.RelatedType,
		n.IsRead,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

const notificationColumns = `id, profile_id, type, title, message, related_id, related_type, is_read, created_at`

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(
		&n.ID,
		&n.ProfileID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.RelatedID,
		&n.RelatedType,
		&n.IsRead,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// GetByID retrieves a notification by its ID.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	n, err := scanNotification(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("notification", id)
		}
		return nil, fmt.Errorf("scan notification: %w", err)
	}

	return n, nil
}

// ListByProfile returns all of a profile's notifications, newest first.
func (r *NotificationRepository) ListByProfile(ctx context.Context, profileID string) ([]domain.Notification, error) {
	return r.list(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE profile_id = $1 ORDER BY created_at DESC`, profileID)
}

// ListByProfileAndType returns a profile's notifications of one type,
// newest first.
func (r *NotificationRepository) ListByProfileAndType(ctx context.Context, profileID, notifType string) ([]domain.Notification, error) {
	return r.list(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE profile_id = $1 AND type = $2 ORDER BY created_at DESC`, profileID, notifType)
}

// ListUnreadByProfile returns a profile's unread notifications, newest first.
func (r *NotificationRepository) ListUnreadByProfile(ctx context.Context, profileID string) ([]domain.Notification, error) {
	return r.list(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE profile_id = $1 AND is_read = FALSE ORDER BY created_at DESC`, profileID)
}

func (r *NotificationRepository) list(ctx context.Context, query string, args ...any) ([]domain.Notification, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]domain.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification row: %w", err)
		}
		notifications = append(notifications, *n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notification rows: %w", err)
	}

	return notifications, nil
}

// CountUnreadByProfile returns the number of unread notifications.
func (r *NotificationRepository) CountUnreadByProfile(ctx context.Context, profileID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM notifications WHERE profile_id = $1 AND is_read = FALSE`, profileID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead flags a single notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("notification", id)
	}

	return nil
}

// MarkAllRead flags all of a profile's notifications as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, profileID string) error {
	_, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE profile_id = $1 AND is_read = FALSE`, profileID)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

// Delete removes a notification.
func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("notification", id)
	}

	return nil
}

// DeleteAllByProfile removes every notification belonging to a profile.
func (r *NotificationRepository) DeleteAllByProfile(ctx context.Context, profileID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE profile_id = $1`, profileID)
	if err != nil {
		return fmt.Errorf("delete profile notifications: %w", err)
	}
	return nil
}
