package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/trade-hub/trade-hub/internal/domain/notification"
)

// Service persists trade events and fans them out over SSE. Delivery is
// fire-and-forget: every failure is logged and swallowed so a notifier outage
// can never fail the negotiation transition that produced the event.
type Service struct {
	notificationRepo notification.Repository
	sseHub           notification.SSEHub
	logger           zerolog.Logger
}

// NewService creates a notification service.
func NewService(notificationRepo notification.Repository, sseHub notification.SSEHub, logger zerolog.Logger) *Service {
	return &Service{
		notificationRepo: notificationRepo,
		sseHub:           sseHub,
		logger:           logger.With().Str("service", "notification").Logger(),
	}
}

// Notify implements notification.Notifier.
func (s *Service) Notify(ctx context.Context, recipient uuid.UUID, kind notification.EventKind, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("failed to marshal notification payload")
		return
	}

	n := &notification.Notification{
		NotificationID: uuid.New(),
		RecipientID:    recipient,
		Kind:           kind,
		Payload:        data,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("failed to persist notification")
	}

	s.sseHub.BroadcastToUser(recipient.String(), notification.NewSSEMessage(string(kind), data))
}

// List returns a party's notifications.
func (s *Service) List(ctx context.Context, recipient uuid.UUID, unreadOnly bool, limit, offset int) ([]*notification.Notification, error) {
	return s.notificationRepo.ListByRecipient(ctx, recipient, unreadOnly, limit, offset)
}

// MarkRead marks one of the party's notifications as read.
func (s *Service) MarkRead(ctx context.Context, notificationID, recipient uuid.UUID) error {
	return s.notificationRepo.MarkRead(ctx, notificationID, recipient)
}

// CountUnread returns the party's unread count.
func (s *Service) CountUnread(ctx context.Context, recipient uuid.UUID) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, recipient)
}
