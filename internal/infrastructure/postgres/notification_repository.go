package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trade-hub/trade-hub/internal/domain/notification"
)

// NotificationRepository implements notification.Repository.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications
		(notification_id, recipient_id, kind, payload, read, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, n.NotificationID, n.RecipientID, n.Kind, n.Payload, n.Read, n.CreatedAt)
	return err
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipient uuid.UUID, unreadOnly bool, limit, offset int) ([]*notification.Notification, error) {
	query := `
		SELECT id, notification_id, recipient_id, kind, payload, read, created_at
		FROM notifications WHERE recipient_id=$1`
	if unreadOnly {
		query += ` AND read=FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, recipient, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var notifications []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID uuid.UUID, recipient uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE notifications SET read=TRUE WHERE notification_id=$1 AND recipient_id=$2`, notificationID, recipient)
	return err
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipient uuid.UUID) (int64, error) {
	row := r.pool.QueryRow(ctx, `SELECT COUNT(1) FROM notifications WHERE recipient_id=$1 AND read=FALSE`, recipient)
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var n notification.Notification
	if err := row.Scan(&n.ID, &n.NotificationID, &n.RecipientID, &n.Kind, &n.Payload, &n.Read, &n.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}
