package repo

import (
	"context"
	"fmt"

	"taskflow/internal/domain"
	"taskflow/internal/infra"
	"taskflow/internal/sqlinline"
)

// NotificationRepositoryPG implements domain.NotificationRepository.
type NotificationRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewNotificationRepository creates a notification repository backed by PostgreSQL.
func NewNotificationRepository(sql infra.SQLExecutor) *NotificationRepositoryPG {
	return &NotificationRepositoryPG{sql: sql}
}

// Create inserts an unread notification.
func (r *NotificationRepositoryPG) Create(ctx context.Context, n *domain.Notification) error {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertNotification,
		n.ID,
		n.RecipientID,
		string(n.Type),
		n.Title,
		n.Message,
		string(n.Target.Kind),
		n.Target.ID,
	)
	n.IsRead = false
	return mapErr(row.Scan(&n.CreatedAt))
}

// ListByRecipient returns the recipient's notifications, newest first.
func (r *NotificationRepositoryPG) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]domain.Notification, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListNotifications, recipientID, unreadOnly)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var kind string
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Type, &n.Title, &n.Message, &kind, &n.Target.ID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Target.Kind = domain.TargetKind(kind)
		out = append(out, n)
	}
	return out, rows.Err()
}

// SetRead toggles the read flag of a notification owned by recipientID.
func (r *NotificationRepositoryPG) SetRead(ctx context.Context, id, recipientID string, read bool) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QSetNotificationRead, id, recipientID, read)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of recipientID as read.
func (r *NotificationRepositoryPG) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QMarkAllNotificationsRead, recipientID)
	if err != nil {
		return 0, mapErr(err)
	}
	return int(tag.RowsAffected()), nil
}

// Delete removes a notification owned by recipientID.
func (r *NotificationRepositoryPG) Delete(ctx context.Context, id, recipientID string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteNotification, id, recipientID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountUnread counts unread notifications of recipientID.
func (r *NotificationRepositoryPG) CountUnread(ctx context.Context, recipientID string) (int, error) {
	return count(ctx, r.sql, sqlinline.QCountUnreadNotifications, recipientID)
}
