package store

import (
	"context"
	"fmt"

	"github.com/mkovacic/biblio/internal/model"
)

// CreateNotification appends a stock notification for a book. Called only
// from the same transaction that performed the availability change, so a
// qualifying transition produces exactly one row.
func CreateNotification(ctx context.Context, q Querier, bookID int64, title, kind, message string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO book_notifications (book_id, title, kind, message) VALUES (?, ?, ?, ?)`,
		bookID, title, kind, message,
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

// ListNotifications returns notifications, newest first, optionally only
// unread ones.
func ListNotifications(ctx context.Context, q Querier, unreadOnly bool) ([]model.Notification, error) {
	query := `SELECT id, book_id, title, kind, message, is_read, created_at
	          FROM book_notifications`
	if unreadOnly {
		query += ` WHERE is_read = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.BookID, &n.Title, &n.Kind, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead sets a notification's read flag.
func MarkNotificationRead(ctx context.Context, q Querier, id int64) error {
	result, err := q.ExecContext(ctx,
		`UPDATE book_notifications SET is_read = 1 WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("notification %d: %w", id, ErrNotFound)
	}
	return nil
}
