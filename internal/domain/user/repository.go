package user

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows user listings.
type Filter struct {
	Role   *Role
	Status *Status
}

// Repository defines the interface for user persistence.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*User, error)
	Update(ctx context.Context, u *User) error
	// IncrementSoldCount bumps the seller's completed-sale tally. Callers
	// needing atomicity with other writes go through the purchase
	// repository's completion transaction instead.
	IncrementSoldCount(ctx context.Context, userID uuid.UUID) error
}
