package item

import (
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes the two negotiation kinds an item can be subject of.
type Kind string

const (
	KindSwap     Kind = "SWAP"
	KindPurchase Kind = "PURCHASE"
)

// Item represents a listed item. The negotiation engines reference items but
// never own them; the only mutations they perform are the availability flags
// at exchange finalization.
type Item struct {
	ID          int64     `json:"id"`
	ItemID      uuid.UUID `json:"itemId"`
	OwnerID     uuid.UUID `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	// PriceCents is the listed price in minor currency units.
	PriceCents int64     `json:"priceCents"`
	Category   string    `json:"category"`
	IsSwapped  bool      `json:"isSwapped"`
	IsSold     bool      `json:"isSold"`
	Removed    bool      `json:"removed"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// EligibleFor reports whether the item can be the subject of a NEW
// negotiation of the given kind. An item already swapped cannot enter a new
// swap; an item already sold cannot enter a new purchase; a removed item can
// enter neither.
func (i *Item) EligibleFor(kind Kind) bool {
	if i.Removed {
		return false
	}
	switch kind {
	case KindSwap:
		return !i.IsSwapped
	case KindPurchase:
		return !i.IsSold
	default:
		return false
	}
}

// OwnedBy reports whether the item belongs to the given party.
func (i *Item) OwnedBy(party uuid.UUID) bool {
	return i.OwnerID == party
}
