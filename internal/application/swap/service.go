package swap

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appAudit "github.com/trade-hub/trade-hub/internal/application/audit"
	"github.com/trade-hub/trade-hub/internal/domain/audit"
	domainItem "github.com/trade-hub/trade-hub/internal/domain/item"
	"github.com/trade-hub/trade-hub/internal/domain/notification"
	domainSwap "github.com/trade-hub/trade-hub/internal/domain/swap"
	"github.com/trade-hub/trade-hub/internal/domain/trade"
)

// Action is an owner's response to a pending swap request.
type Action string

const (
	ActionApprove Action = "APPROVE"
	ActionDecline Action = "DECLINE"
	ActionCounter Action = "COUNTER"
)

// ItemGate is the availability-gate contract consumed from the item service.
type ItemGate interface {
	Get(ctx context.Context, itemID uuid.UUID) (*domainItem.Item, error)
	Eligible(ctx context.Context, itemID uuid.UUID, kind domainItem.Kind) (*domainItem.Item, error)
}

// staleRetries bounds the re-read-and-reapply loop when an optimistic write
// loses to a concurrent party.
const staleRetries = 3

// Service drives the swap negotiation lifecycle.
type Service struct {
	swapRepo domainSwap.Repository
	gate     ItemGate
	notifier notification.Notifier
	auditSvc *appAudit.Service
	logger   zerolog.Logger
}

// NewService creates a swap service.
func NewService(swapRepo domainSwap.Repository, gate ItemGate, notifier notification.Notifier, auditSvc *appAudit.Service, logger zerolog.Logger) *Service {
	return &Service{
		swapRepo: swapRepo,
		gate:     gate,
		notifier: notifier,
		auditSvc: auditSvc,
		logger:   logger.With().Str("service", "swap").Logger(),
	}
}

// Request opens a swap negotiation: the requester offers one of their items
// for the requested item. The owner is derived from the requested item's
// owner field, never supplied by the caller.
func (s *Service) Request(ctx context.Context, requester, requestedItemID, offeredItemID uuid.UUID) (*domainSwap.Swap, error) {
	requested, err := s.gate.Eligible(ctx, requestedItemID, domainItem.KindSwap)
	if err != nil {
		return nil, err
	}
	offered, err := s.gate.Eligible(ctx, offeredItemID, domainItem.KindSwap)
	if err != nil {
		return nil, err
	}
	if !offered.OwnedBy(requester) {
		return nil, fmt.Errorf("%w: offered item does not belong to the requester", trade.ErrInvalidOperand)
	}
	if requested.OwnedBy(requester) {
		return nil, fmt.Errorf("%w: cannot request a swap against your own item", trade.ErrInvalidOperand)
	}

	sw, err := domainSwap.New(requester, requested.OwnerID, requestedItemID, offeredItemID)
	if err != nil {
		return nil, err
	}
	if err := s.swapRepo.Create(ctx, sw); err != nil {
		return nil, err
	}

	s.audit(ctx, sw, audit.ActionRequest, requester, "swap requested")
	s.notifier.Notify(ctx, sw.OwnerID, notification.EventSwapRequested, sw)
	s.logger.Info().Str("swap_id", sw.SwapID.String()).Msg("swap requested")
	return sw, nil
}

// Get retrieves a swap the party is involved in.
func (s *Service) Get(ctx context.Context, actor, swapID uuid.UUID) (*domainSwap.Swap, error) {
	sw, err := s.load(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if _, ok := sw.RoleOf(actor); !ok {
		return nil, fmt.Errorf("%w: not a party to this swap", trade.ErrForbidden)
	}
	return sw, nil
}

// ListByParty returns the party's negotiations, newest first.
func (s *Service) ListByParty(ctx context.Context, party uuid.UUID, limit, offset int) ([]*domainSwap.Swap, error) {
	return s.swapRepo.ListByParty(ctx, party, limit, offset)
}

// Respond is the owner's answer to a pending request: approve, decline, or
// counter with a different requester-owned item. Approve flips is_swapped on
// both items in the same transaction as the status change.
func (s *Service) Respond(ctx context.Context, actor, swapID uuid.UUID, action Action, counterItemID *uuid.UUID) (*domainSwap.Swap, error) {
	var counterItem *domainItem.Item
	if action == ActionCounter {
		if counterItemID == nil {
			return nil, fmt.Errorf("%w: counter requires a counter item", trade.ErrInvalidOperand)
		}
		it, err := s.gate.Eligible(ctx, *counterItemID, domainItem.KindSwap)
		if err != nil {
			return nil, err
		}
		counterItem = it
	}

	sw, err := s.mutate(ctx, swapID, func(sw *domainSwap.Swap) ([]uuid.UUID, error) {
		role, ok := sw.RoleOf(actor)
		if !ok || role != domainSwap.RoleOwner {
			return nil, fmt.Errorf("%w: only the owner may respond to a swap request", trade.ErrForbidden)
		}
		switch action {
		case ActionApprove:
			if err := sw.Approve(); err != nil {
				return nil, err
			}
			return []uuid.UUID{sw.RequestedItemID, sw.OfferedItemID}, nil
		case ActionDecline:
			return nil, sw.Decline()
		case ActionCounter:
			// The counter item must be the requester's, not the owner's.
			if !counterItem.OwnedBy(sw.RequesterID) {
				return nil, fmt.Errorf("%w: counter item must belong to the requester", trade.ErrInvalidOperand)
			}
			return nil, sw.Counter(counterItem.ItemID)
		default:
			return nil, fmt.Errorf("%w: unknown action %q", trade.ErrInvalidOperand, action)
		}
	})
	if err != nil {
		return sw, err
	}

	switch action {
	case ActionApprove:
		s.audit(ctx, sw, audit.ActionApprove, actor, "swap approved")
		s.notifier.Notify(ctx, sw.RequesterID, notification.EventSwapApproved, sw)
	case ActionDecline:
		s.audit(ctx, sw, audit.ActionDecline, actor, "swap declined")
		s.notifier.Notify(ctx, sw.RequesterID, notification.EventSwapDeclined, sw)
	case ActionCounter:
		s.audit(ctx, sw, audit.ActionCounter, actor, "swap countered")
		s.notifier.Notify(ctx, sw.RequesterID, notification.EventSwapCountered, sw)
	}
	return sw, nil
}

// RespondToCounter is the original requester's answer to the owner's counter
// item. Approve marks the counter item (not the original offer) swapped.
func (s *Service) RespondToCounter(ctx context.Context, actor, swapID uuid.UUID, action Action) (*domainSwap.Swap, error) {
	if action != ActionApprove && action != ActionDecline {
		return nil, fmt.Errorf("%w: action must be APPROVE or DECLINE", trade.ErrInvalidOperand)
	}

	sw, err := s.mutate(ctx, swapID, func(sw *domainSwap.Swap) ([]uuid.UUID, error) {
		role, ok := sw.RoleOf(actor)
		if !ok || role != domainSwap.RoleRequester {
			return nil, fmt.Errorf("%w: only the requester may respond to a counter", trade.ErrForbidden)
		}
		if action == ActionApprove {
			if err := sw.ApproveCounter(); err != nil {
				return nil, err
			}
			return []uuid.UUID{sw.RequestedItemID, sw.ExchangedItemID()}, nil
		}
		return nil, sw.DeclineCounter()
	})
	if err != nil {
		return sw, err
	}

	if action == ActionApprove {
		s.audit(ctx, sw, audit.ActionApprove, actor, "counter approved")
		s.notifier.Notify(ctx, sw.OwnerID, notification.EventSwapApproved, sw)
	} else {
		s.audit(ctx, sw, audit.ActionDecline, actor, "counter declined")
		s.notifier.Notify(ctx, sw.OwnerID, notification.EventSwapDeclined, sw)
	}
	return sw, nil
}

// SelectDelivery applies one party's delivery method selection under the
// reconciliation rule: same method adds a confirmation, a different method
// wins but resets confirmation to the caller alone.
func (s *Service) SelectDelivery(ctx context.Context, actor, swapID uuid.UUID, method domainSwap.Method) (*domainSwap.Swap, error) {
	var counterpart uuid.UUID
	sw, err := s.mutate(ctx, swapID, func(sw *domainSwap.Swap) ([]uuid.UUID, error) {
		role, ok := sw.RoleOf(actor)
		if !ok {
			return nil, fmt.Errorf("%w: not a party to this swap", trade.ErrForbidden)
		}
		counterpart = s.otherParty(sw, actor)
		return nil, sw.SelectDelivery(role, method)
	})
	if err != nil {
		return sw, err
	}

	s.audit(ctx, sw, audit.ActionSelectDelivery, actor, fmt.Sprintf("delivery method %s", method))
	s.notifier.Notify(ctx, counterpart, notification.EventSwapDelivery, sw)
	return sw, nil
}

// ConfirmCompletion records one party's statement that the exchange happened.
// The claimed role is only a cross-check against the derived one; a mismatch
// fails closed. Both confirmations complete the swap; one leaves it
// IN_PROGRESS and tells the other party it is their move.
func (s *Service) ConfirmCompletion(ctx context.Context, actor, swapID uuid.UUID, claimedRole domainSwap.Role) (*domainSwap.Swap, error) {
	var counterpart uuid.UUID
	sw, err := s.mutate(ctx, swapID, func(sw *domainSwap.Swap) ([]uuid.UUID, error) {
		role, ok := sw.RoleOf(actor)
		if !ok {
			return nil, fmt.Errorf("%w: not a party to this swap", trade.ErrForbidden)
		}
		if role != claimedRole {
			return nil, fmt.Errorf("%w: claimed role %s does not match actual role %s", trade.ErrForbidden, claimedRole, role)
		}
		counterpart = s.otherParty(sw, actor)
		return nil, sw.ConfirmCompletion(role)
	})
	if err != nil {
		return sw, err
	}

	s.audit(ctx, sw, audit.ActionConfirm, actor, fmt.Sprintf("completion confirmed, status %s", sw.Status))
	if sw.Completed {
		s.notifier.Notify(ctx, counterpart, notification.EventSwapCompleted, sw)
	} else {
		s.notifier.Notify(ctx, counterpart, notification.EventSwapAwaiting, sw)
	}
	return sw, nil
}

func (s *Service) load(ctx context.Context, swapID uuid.UUID) (*domainSwap.Swap, error) {
	sw, err := s.swapRepo.GetByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if sw == nil {
		return nil, fmt.Errorf("%w: swap %s", trade.ErrNotFound, swapID)
	}
	return sw, nil
}

// mutate runs read → domain transition → conditional write, retrying a
// bounded number of times when the version check loses to a concurrent
// writer. Validation failures return the freshly read instance alongside the
// error so callers can re-render without a second fetch. When the transition
// yields item ids, the swapped flags flip in the same transaction as the
// negotiation update.
func (s *Service) mutate(ctx context.Context, swapID uuid.UUID, apply func(*domainSwap.Swap) ([]uuid.UUID, error)) (*domainSwap.Swap, error) {
	for attempt := 0; ; attempt++ {
		sw, err := s.load(ctx, swapID)
		if err != nil {
			return nil, err
		}
		itemIDs, err := apply(sw)
		if err != nil {
			// Domain transitions validate before mutating, so sw still
			// carries the unchanged current state for the caller.
			return sw, err
		}
		if len(itemIDs) > 0 {
			err = s.swapRepo.UpdateWithItems(ctx, sw, itemIDs...)
		} else {
			err = s.swapRepo.Update(ctx, sw)
		}
		if err == nil {
			return sw, nil
		}
		if !errors.Is(err, trade.ErrStale) {
			return nil, err
		}
		if attempt >= staleRetries {
			return sw, fmt.Errorf("%w: swap %s kept changing underneath this request", trade.ErrConflict, swapID)
		}
		s.logger.Debug().Str("swap_id", swapID.String()).Int("attempt", attempt+1).Msg("stale swap write, retrying")
	}
}

func (s *Service) otherParty(sw *domainSwap.Swap, actor uuid.UUID) uuid.UUID {
	if actor == sw.RequesterID {
		return sw.OwnerID
	}
	return sw.RequesterID
}

func (s *Service) audit(ctx context.Context, sw *domainSwap.Swap, action audit.Action, actor uuid.UUID, reason string) {
	s.auditSvc.Log(ctx, &audit.Entry{
		EntityType: audit.EntityTypeSwap,
		EntityID:   sw.SwapID.String(),
		Action:     action,
		Actor:      actor.String(),
		Reason:     reason,
	})
}
