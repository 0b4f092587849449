package swap

import (
	"time"

	"github.com/google/uuid"

	"github.com/trade-hub/trade-hub/internal/domain/trade"
)

// Status represents swap negotiation status.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusApproved   Status = "APPROVED"
	StatusCountered  Status = "COUNTERED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusDeclined   Status = "DECLINED"
)

// IsTerminal reports whether no further transitions are permitted.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusDeclined
}

// Role is a party's relationship to a negotiation instance. It is always
// re-derived from the instance's party fields, never stored.
type Role string

const (
	RoleRequester Role = "REQUESTER"
	RoleOwner     Role = "OWNER"
)

// Swap represents one swap negotiation between exactly two parties: the
// requester offers one of their items for an item of the owner's.
type Swap struct {
	ID              int64      `json:"id"`
	SwapID          uuid.UUID  `json:"swapId"`
	RequesterID     uuid.UUID  `json:"requesterId"`
	OwnerID         uuid.UUID  `json:"ownerId"`
	RequestedItemID uuid.UUID  `json:"requestedItemId"`
	OfferedItemID   uuid.UUID  `json:"offeredItemId"`
	CounterItemID   *uuid.UUID `json:"counterItemId,omitempty"`
	Status          Status     `json:"status"`
	Delivery        Plan       `json:"delivery"`
	// RequesterConfirmed and OwnerConfirmed are the completion flags,
	// distinct from the delivery confirmation set.
	RequesterConfirmed bool `json:"requesterConfirmed"`
	OwnerConfirmed     bool `json:"ownerConfirmed"`
	Completed          bool `json:"completed"`
	// Version guards optimistic-concurrency writes.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// New creates a pending swap negotiation. The owner comes from the requested
// item's owner field, never from the caller.
func New(requester, owner, requestedItem, offeredItem uuid.UUID) (*Swap, error) {
	if requester == owner {
		return nil, trade.ErrInvalidOperand
	}
	now := time.Now().UTC()
	return &Swap{
		SwapID:          uuid.New(),
		RequesterID:     requester,
		OwnerID:         owner,
		RequestedItemID: requestedItem,
		OfferedItemID:   offeredItem,
		Status:          StatusPending,
		Delivery:        Plan{Method: MethodUndecided},
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// RoleOf derives the party's role on this instance.
func (s *Swap) RoleOf(party uuid.UUID) (Role, bool) {
	switch party {
	case s.RequesterID:
		return RoleRequester, true
	case s.OwnerID:
		return RoleOwner, true
	default:
		return "", false
	}
}

// ExchangedItemID returns the requester-side item that changes hands: the
// counter item once the owner has countered, the original offer otherwise.
func (s *Swap) ExchangedItemID() uuid.UUID {
	if s.CounterItemID != nil {
		return *s.CounterItemID
	}
	return s.OfferedItemID
}

// CanTransitionTo validates a status transition.
func (s *Swap) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusPending:    {StatusApproved, StatusDeclined, StatusCountered},
		StatusCountered:  {StatusApproved, StatusDeclined},
		StatusApproved:   {StatusInProgress, StatusCompleted},
		StatusInProgress: {StatusCompleted},
		StatusCompleted:  {},
		StatusDeclined:   {},
	}
	for _, t := range transitions[s.Status] {
		if t == target {
			return true
		}
	}
	return false
}

// Approve moves a pending negotiation to approved. The caller is responsible
// for flipping the swapped flags on both items in the same transaction.
func (s *Swap) Approve() error {
	if s.Status != StatusPending {
		return trade.ErrInvalidState
	}
	s.Status = StatusApproved
	return nil
}

// Decline moves a pending negotiation to declined. No item mutation.
func (s *Swap) Decline() error {
	if s.Status != StatusPending {
		return trade.ErrInvalidState
	}
	s.Status = StatusDeclined
	return nil
}

// Counter records the owner's alternative: a different requester-owned item
// in place of the original offer. Item ownership is checked by the caller.
func (s *Swap) Counter(counterItem uuid.UUID) error {
	if s.Status != StatusPending {
		return trade.ErrInvalidState
	}
	s.Status = StatusCountered
	s.CounterItemID = &counterItem
	return nil
}

// ApproveCounter is the requester accepting the owner's counter item.
func (s *Swap) ApproveCounter() error {
	if s.Status != StatusCountered {
		return trade.ErrInvalidState
	}
	s.Status = StatusApproved
	return nil
}

// DeclineCounter is the requester rejecting the owner's counter item.
func (s *Swap) DeclineCounter() error {
	if s.Status != StatusCountered {
		return trade.ErrInvalidState
	}
	s.Status = StatusDeclined
	return nil
}

// SelectDelivery applies the delivery reconciliation rule. Only legal while
// the negotiation is approved and nobody has confirmed completion yet.
func (s *Swap) SelectDelivery(actor Role, method Method) error {
	if s.Status != StatusApproved {
		return trade.ErrInvalidState
	}
	return s.Delivery.Select(actor, method)
}

// ConfirmCompletion sets the acting party's completion flag. Both parties must
// already agree on a delivery method. When both flags are set the negotiation
// becomes completed and terminal; a single flag surfaces as IN_PROGRESS.
func (s *Swap) ConfirmCompletion(actor Role) error {
	if s.Status.IsTerminal() {
		return trade.ErrConflict
	}
	if s.Status != StatusApproved && s.Status != StatusInProgress {
		return trade.ErrInvalidState
	}
	if !s.Delivery.ConfirmedByBoth() {
		return trade.ErrInvalidState
	}
	switch actor {
	case RoleRequester:
		if s.RequesterConfirmed {
			return trade.ErrConflict
		}
		s.RequesterConfirmed = true
	case RoleOwner:
		if s.OwnerConfirmed {
			return trade.ErrConflict
		}
		s.OwnerConfirmed = true
	default:
		return trade.ErrForbidden
	}
	if s.RequesterConfirmed && s.OwnerConfirmed {
		s.Status = StatusCompleted
		s.Completed = true
	} else {
		s.Status = StatusInProgress
	}
	return nil
}
