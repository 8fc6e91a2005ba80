package repository

import (
	"context"

	"github.com/iliyamo/venue-booking/internal/model"
)

// NotificationRepo persists in-app notifications.
type NotificationRepo struct{ sqlBase }

// Create inserts a notification.  A zero CreatedAt lets the database
// fill in the current time.
func (r *NotificationRepo) Create(ctx context.Context, n model.Notification) (uint64, error) {
	if n.CreatedAt.IsZero() {
		return r.d.insert(ctx, r.q,
			"INSERT INTO notifications (user_id, message, type) VALUES (?,?,?)",
			n.UserID, n.Message, n.Type)
	}
	return r.d.insert(ctx, r.q,
		"INSERT INTO notifications (user_id, message, type, created_at) VALUES (?,?,?,?)",
		n.UserID, n.Message, n.Type, n.CreatedAt)
}

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Notification, error) {
	rows, err := r.query(ctx,
		`SELECT id, user_id, message, type, is_read, created_at FROM notifications
         WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags one of the user's notifications as read.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	return r.execOne(ctx, "UPDATE notifications SET is_read = TRUE WHERE id = ? AND user_id = ?", id, userID)
}

// MarkAllRead flags every notification of the user as read.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) error {
	_, err := r.exec(ctx, "UPDATE notifications SET is_read = TRUE WHERE user_id = ? AND is_read = FALSE", userID)
	return err
}

// DeleteAll clears the user's notifications.
func (r *NotificationRepo) DeleteAll(ctx context.Context, userID uint64) error {
	_, err := r.exec(ctx, "DELETE FROM notifications WHERE user_id = ?", userID)
	return err
}
