package purchase

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for purchase persistence.
//
// Update is an optimistic-concurrency write keyed on Version; it returns
// trade.ErrStale when the row moved underneath the caller. CompleteWithItem
// commits the purchase update, the item's sold flag and the seller's
// sold-item counter in one transaction.
type Repository interface {
	Create(ctx context.Context, p *Purchase) error
	GetByID(ctx context.Context, purchaseID uuid.UUID) (*Purchase, error)
	ListByParty(ctx context.Context, party uuid.UUID, limit, offset int) ([]*Purchase, error)
	// HasPending reports whether the buyer already has a pending purchase
	// negotiation on the item.
	HasPending(ctx context.Context, itemID, buyer uuid.UUID) (bool, error)
	Update(ctx context.Context, p *Purchase) error
	CompleteWithItem(ctx context.Context, p *Purchase) error
}
