package item

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows item listings.
type Filter struct {
	OwnerID  *uuid.UUID
	Category *string
	// Available filters to items that are neither swapped, sold nor removed.
	Available bool
}

// Repository defines the interface for item persistence.
type Repository interface {
	Create(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, itemID uuid.UUID) (*Item, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Item, error)
	Update(ctx context.Context, it *Item) error
	SetRemoved(ctx context.Context, itemID uuid.UUID, removed bool) error
}
