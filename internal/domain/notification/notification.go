package notification

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies a negotiation transition worth telling the
// counterparty about.
type EventKind string

const (
	EventSwapRequested     EventKind = "swap.requested"
	EventSwapApproved      EventKind = "swap.approved"
	EventSwapDeclined      EventKind = "swap.declined"
	EventSwapCountered     EventKind = "swap.countered"
	EventSwapDelivery      EventKind = "swap.delivery_selected"
	EventSwapAwaiting      EventKind = "swap.awaiting_confirmation"
	EventSwapCompleted     EventKind = "swap.completed"
	EventPurchaseRequested EventKind = "purchase.requested"
	EventPurchaseAccepted  EventKind = "purchase.accepted"
	EventPurchaseDeclined  EventKind = "purchase.declined"
	EventPurchaseCountered EventKind = "purchase.countered"
	EventPurchaseCompleted EventKind = "purchase.completed"
)

var (
	ErrClientNotFound = errors.New("SSE client not found")
	ErrChannelFull    = errors.New("SSE message channel full")
)

// Notification is one delivered trade event, persisted so a party who was
// offline still sees what happened.
type Notification struct {
	ID             int64           `json:"id"`
	NotificationID uuid.UUID       `json:"notificationId"`
	RecipientID    uuid.UUID       `json:"recipientId"`
	Kind           EventKind       `json:"kind"`
	Payload        json.RawMessage `json:"payload"`
	Read           bool            `json:"read"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Notifier delivers a trade event to a party. Fire-and-forget: a failed
// delivery must never fail the transition that produced it.
type Notifier interface {
	Notify(ctx context.Context, recipient uuid.UUID, kind EventKind, payload interface{})
}

// SSEClient represents an active SSE connection.
type SSEClient struct {
	ClientID    string
	UserID      *string
	ConnectedAt time.Time
	MessageChan chan *SSEMessage
}

// NewSSEClient creates a new SSE client.
func NewSSEClient(clientID string, userID *string) *SSEClient {
	return &SSEClient{
		ClientID:    clientID,
		UserID:      userID,
		ConnectedAt: time.Now().UTC(),
		MessageChan: make(chan *SSEMessage, 100),
	}
}

func (c *SSEClient) Close() {
	close(c.MessageChan)
}

// SSEMessage represents a message to be sent via SSE.
type SSEMessage struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewSSEMessage creates a new SSE message.
func NewSSEMessage(event string, data json.RawMessage) *SSEMessage {
	return &SSEMessage{
		ID:        uuid.New().String(),
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// SSEHub fans messages out to connected clients.
type SSEHub interface {
	Register(client *SSEClient)
	Unregister(clientID string)
	GetClientCount() int
	BroadcastToUser(userID string, message *SSEMessage)
	BroadcastToAll(message *SSEMessage)
}
