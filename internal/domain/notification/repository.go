package notification

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for notification persistence.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByRecipient(ctx context.Context, recipient uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, error)
	MarkRead(ctx context.Context, notificationID uuid.UUID, recipient uuid.UUID) error
	CountUnread(ctx context.Context, recipient uuid.UUID) (int64, error)
}
