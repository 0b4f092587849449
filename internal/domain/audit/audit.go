package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EntityType identifies what kind of record an entry is about.
type EntityType string

const (
	EntityTypeSwap     EntityType = "SWAP"
	EntityTypePurchase EntityType = "PURCHASE"
	EntityTypeItem     EntityType = "ITEM"
)

// Action is the transition that was applied.
type Action string

const (
	ActionRequest        Action = "REQUEST"
	ActionApprove        Action = "APPROVE"
	ActionDecline        Action = "DECLINE"
	ActionCounter        Action = "COUNTER"
	ActionAccept         Action = "ACCEPT"
	ActionSelectDelivery Action = "SELECT_DELIVERY"
	ActionConfirm        Action = "CONFIRM_COMPLETION"
	ActionComplete       Action = "COMPLETE"
	ActionRemove         Action = "REMOVE"
)

// Entry is one append-only record of a negotiation transition. History is
// never rewritten; parties only ever add entries.
type Entry struct {
	ID         int64      `json:"id"`
	AuditID    uuid.UUID  `json:"auditId"`
	EntityType EntityType `json:"entityType"`
	EntityID   string     `json:"entityId"`
	Action     Action     `json:"action"`
	Actor      string     `json:"actor"`
	Reason     string     `json:"reason,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Filter narrows audit queries.
type Filter struct {
	EntityType *EntityType
	EntityID   *string
	Action     *Action
	Actor      *string
}

// Repository defines the interface for audit persistence.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, auditID uuid.UUID) (*Entry, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Entry, error)
}
