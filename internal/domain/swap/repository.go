package swap

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for swap persistence.
//
// Update performs an optimistic-concurrency write: it matches the entity's
// Version, increments it on success, and returns trade.ErrStale when another
// writer got there first. UpdateWithItems additionally flips is_swapped on
// the given items inside the same transaction, so the point of no return for
// item availability commits atomically with the status change.
type Repository interface {
	Create(ctx context.Context, s *Swap) error
	GetByID(ctx context.Context, swapID uuid.UUID) (*Swap, error)
	ListByParty(ctx context.Context, party uuid.UUID, limit, offset int) ([]*Swap, error)
	Update(ctx context.Context, s *Swap) error
	UpdateWithItems(ctx context.Context, s *Swap, swappedItemIDs ...uuid.UUID) error
}
