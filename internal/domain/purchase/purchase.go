package purchase

import (
	"time"

	"github.com/google/uuid"

	"github.com/trade-hub/trade-hub/internal/domain/trade"
)

// Status represents purchase negotiation status.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusCountered Status = "COUNTERED"
	StatusCompleted Status = "COMPLETED"
	StatusDeclined  Status = "DECLINED"
)

// IsTerminal reports whether no further transitions are permitted.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusDeclined
}

// PaymentStatus tracks whether the purchase has been paid.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "UNPAID"
	PaymentPaid   PaymentStatus = "PAID"
)

// Role is a party's relationship to a purchase negotiation, derived from the
// instance's party fields on every call.
type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
)

// Purchase represents one purchase negotiation: a buyer proposing to buy the
// seller's item, possibly through a counter-price round.
type Purchase struct {
	ID         int64     `json:"id"`
	PurchaseID uuid.UUID `json:"purchaseId"`
	ItemID     uuid.UUID `json:"itemId"`
	BuyerID    uuid.UUID `json:"buyerId"`
	SellerID   uuid.UUID `json:"sellerId"`
	Status     Status    `json:"status"`
	// OfferCents is the price on the table: the listing price at request
	// time, replaced by the seller's counter when countered. The listing
	// itself is never repriced by a negotiation.
	OfferCents        int64         `json:"offerCents"`
	CounterPriceCents *int64        `json:"counterPriceCents,omitempty"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`
	PaymentReference  *string       `json:"paymentReference,omitempty"`
	Version           int64         `json:"version"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// New creates a pending purchase negotiation. The seller comes from the
// item's current owner.
func New(buyer, seller, itemID uuid.UUID, offerCents int64) (*Purchase, error) {
	if buyer == seller {
		return nil, trade.ErrInvalidOperand
	}
	now := time.Now().UTC()
	return &Purchase{
		PurchaseID:    uuid.New(),
		ItemID:        itemID,
		BuyerID:       buyer,
		SellerID:      seller,
		Status:        StatusPending,
		OfferCents:    offerCents,
		PaymentStatus: PaymentUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// RoleOf derives the party's role on this instance.
func (p *Purchase) RoleOf(party uuid.UUID) (Role, bool) {
	switch party {
	case p.BuyerID:
		return RoleBuyer, true
	case p.SellerID:
		return RoleSeller, true
	default:
		return "", false
	}
}

// Accept is the seller taking the buyer's offer as-is.
func (p *Purchase) Accept() error {
	if p.Status != StatusPending {
		return trade.ErrInvalidState
	}
	p.Status = StatusAccepted
	return nil
}

// Decline is the seller rejecting the request. Terminal.
func (p *Purchase) Decline() error {
	if p.Status != StatusPending {
		return trade.ErrInvalidState
	}
	p.Status = StatusDeclined
	return nil
}

// Counter records the seller's counter price. The counter replaces the offer
// on the table but never touches the underlying listing price.
func (p *Purchase) Counter(priceCents int64) error {
	if p.Status != StatusPending {
		return trade.ErrInvalidState
	}
	if priceCents <= 0 {
		return trade.ErrInvalidOperand
	}
	p.Status = StatusCountered
	p.CounterPriceCents = &priceCents
	p.OfferCents = priceCents
	return nil
}

// AcceptCounter is the buyer taking the seller's counter price.
func (p *Purchase) AcceptCounter() error {
	if p.Status != StatusCountered {
		return trade.ErrInvalidState
	}
	p.Status = StatusAccepted
	return nil
}

// DeclineCounter is the buyer walking away from the counter price. Terminal.
func (p *Purchase) DeclineCounter() error {
	if p.Status != StatusCountered {
		return trade.ErrInvalidState
	}
	p.Status = StatusDeclined
	return nil
}

// Complete finalizes an accepted purchase after the payment signal succeeded.
// The caller flips the item's sold flag and the seller's counter in the same
// transaction.
func (p *Purchase) Complete(paymentReference string) error {
	if p.Status == StatusCompleted {
		return trade.ErrConflict
	}
	if p.Status != StatusAccepted {
		return trade.ErrInvalidState
	}
	if paymentReference == "" {
		return trade.ErrInvalidOperand
	}
	p.Status = StatusCompleted
	p.PaymentStatus = PaymentPaid
	p.PaymentReference = &paymentReference
	return nil
}
