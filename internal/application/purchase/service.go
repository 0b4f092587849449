package purchase

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
	domainPurchase "github.com/trade-hub/trade-hub/internal/domain/purchase"
	"github.com/trade-hub/trade-hub/internal/domain/trade"
)

// Action is a party's response within a purchase negotiation.
type Action string

const (
	ActionAccept  Action = "ACCEPT"
	ActionDecline Action = "DECLINE"
	ActionCounter Action = "COUNTER"
)

// ItemGate is the availability-gate contract consumed from the item service.
type ItemGate interface {
	Get(ctx context.Context, itemID uuid.UUID) (*domainItem.Item, error)
	Eligible(ctx context.Context, itemID uuid.UUID, kind domainItem.Kind) (*domainItem.Item, error)
}

// PaymentGateway is the external payment-completed signal. Purchase
// completion blocks on its success.
type PaymentGateway interface {
	CompletePurchase(ctx context.Context, purchaseID uuid.UUID, paymentReference string) error
}

const staleRetries = 3

// Service drives the purchase negotiation lifecycle.
type Service struct {
	purchaseRepo domainPurchase.Repository
	gate         ItemGate
	gateway      PaymentGateway
	notifier     notification.Notifier
	auditSvc     *appAudit.Service
	logger       zerolog.Logger
}

// NewService creates a purchase service.
func NewService(purchaseRepo domainPurchase.Repository, gate ItemGate, gateway PaymentGateway, notifier notification.Notifier, auditSvc *appAudit.Service, logger zerolog.Logger) *Service {
	return &Service{
		purchaseRepo: purchaseRepo,
		gate:         gate,
		gateway:      gateway,
		notifier:     notifier,
		auditSvc:     auditSvc,
		logger:       logger.With().Str("service", "purchase").Logger(),
	}
}

// Request opens a purchase negotiation at the item's listed price. The seller
// is derived from the item's current owner. A buyer may hold at most one
// pending negotiation per item.
func (s *Service) Request(ctx context.Context, buyer, itemID uuid.UUID) (*domainPurchase.Purchase, error) {
	it, err := s.gate.Eligible(ctx, itemID, domainItem.KindPurchase)
	if err != nil {
		return nil, err
	}
	if it.OwnedBy(buyer) {
		return nil, fmt.Errorf("%w: cannot buy your own item", trade.ErrInvalidOperand)
	}
	pending, err := s.purchaseRepo.HasPending(ctx, itemID, buyer)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf("%w: a pending purchase request already exists for this item", trade.ErrConflict)
	}

	p, err := domainPurchase.New(buyer, it.OwnerID, itemID, it.PriceCents)
	if err != nil {
		return nil, err
	}
	if err := s.purchaseRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.audit(ctx, p, audit.ActionRequest, buyer, "purchase requested")
	s.notifier.Notify(ctx, p.SellerID, notification.EventPurchaseRequested, p)
	s.logger.Info().Str("purchase_id", p.PurchaseID.String()).Msg("purchase requested")
	return p, nil
}

// Get retrieves a purchase the party is involved in.
func (s *Service) Get(ctx context.Context, actor, purchaseID uuid.UUID) (*domainPurchase.Purchase, error) {
	p, err := s.load(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if _, ok := p.RoleOf(actor); !ok {
		return nil, fmt.Errorf("%w: not a party to this purchase", trade.ErrForbidden)
	}
	return p, nil
}

// ListByParty returns the party's negotiations, newest first.
func (s *Service) ListByParty(ctx context.Context, party uuid.UUID, limit, offset int) ([]*domainPurchase.Purchase, error) {
	return s.purchaseRepo.ListByParty(ctx, party, limit, offset)
}

// Respond is the seller's answer to a pending request: accept, decline, or
// counter with a different price. A counter replaces the offer on the table
// but never reprices the listing.
func (s *Service) Respond(ctx context.Context, actor, purchaseID uuid.UUID, action Action, counterPriceCents *int64) (*domainPurchase.Purchase, error) {
	p, err := s.mutate(ctx, purchaseID, func(p *domainPurchase.Purchase) error {
		role, ok := p.RoleOf(actor)
		if !ok || role != domainPurchase.RoleSeller {
			return fmt.Errorf("%w: only the seller may respond to a purchase request", trade.ErrForbidden)
		}
		switch action {
		case ActionAccept:
			return p.Accept()
		case ActionDecline:
			return p.Decline()
		case ActionCounter:
			if counterPriceCents == nil {
				return fmt.Errorf("%w: counter requires a price", trade.ErrInvalidOperand)
			}
			return p.Counter(*counterPriceCents)
		default:
			return fmt.Errorf("%w: unknown action %q", trade.ErrInvalidOperand, action)
		}
	})
	if err != nil {
		return p, err
	}

	switch action {
	case ActionAccept:
		s.audit(ctx, p, audit.ActionAccept, actor, "purchase accepted")
		s.notifier.Notify(ctx, p.BuyerID, notification.EventPurchaseAccepted, p)
	case ActionDecline:
		s.audit(ctx, p, audit.ActionDecline, actor, "purchase declined")
		s.notifier.Notify(ctx, p.BuyerID, notification.EventPurchaseDeclined, p)
	case ActionCounter:
		s.audit(ctx, p, audit.ActionCounter, actor, "purchase countered")
		s.notifier.Notify(ctx, p.BuyerID, notification.EventPurchaseCountered, p)
	}
	return p, nil
}

// RespondToCounter is the buyer's answer to the seller's counter price.
func (s *Service) RespondToCounter(ctx context.Context, actor, purchaseID uuid.UUID, action Action) (*domainPurchase.Purchase, error) {
	if action != ActionAccept && action != ActionDecline {
		return nil, fmt.Errorf("%w: action must be ACCEPT or DECLINE", trade.ErrInvalidOperand)
	}

	p, err := s.mutate(ctx, purchaseID, func(p *domainPurchase.Purchase) error {
		role, ok := p.RoleOf(actor)
		if !ok || role != domainPurchase.RoleBuyer {
			return fmt.Errorf("%w: only the buyer may respond to a counter", trade.ErrForbidden)
		}
		if action == ActionAccept {
			return p.AcceptCounter()
		}
		return p.DeclineCounter()
	})
	if err != nil {
		return p, err
	}

	if action == ActionAccept {
		s.audit(ctx, p, audit.ActionAccept, actor, "counter price accepted")
		s.notifier.Notify(ctx, p.SellerID, notification.EventPurchaseAccepted, p)
	} else {
		s.audit(ctx, p, audit.ActionDecline, actor, "counter price declined")
		s.notifier.Notify(ctx, p.SellerID, notification.EventPurchaseDeclined, p)
	}
	return p, nil
}

// Complete settles an accepted purchase. The payment gateway must confirm the
// payment first; a gateway failure aborts with nothing persisted. On success
// the negotiation, the item's sold flag and the seller's sold-item counter
// commit in one transaction.
func (s *Service) Complete(ctx context.Context, actor, purchaseID uuid.UUID, paymentReference string) (*domainPurchase.Purchase, error) {
	p, err := s.load(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	role, ok := p.RoleOf(actor)
	if !ok || role != domainPurchase.RoleBuyer {
		return p, fmt.Errorf("%w: only the buyer may complete a purchase", trade.ErrForbidden)
	}
	if p.Status == domainPurchase.StatusCompleted {
		return p, fmt.Errorf("%w: purchase already completed", trade.ErrConflict)
	}
	if p.Status != domainPurchase.StatusAccepted {
		return p, fmt.Errorf("%w: purchase must be accepted before completion", trade.ErrInvalidState)
	}
	if paymentReference == "" {
		return p, fmt.Errorf("%w: payment reference is required", trade.ErrInvalidOperand)
	}

	// The payment signal fires exactly once, before the state write; a
	// stale retry below re-applies the transition without re-charging.
	if err := s.gateway.CompletePurchase(ctx, purchaseID, paymentReference); err != nil {
		return p, fmt.Errorf("%w: payment gateway: %v", trade.ErrDependencyFailure, err)
	}

	p, err = s.mutateComplete(ctx, purchaseID, func(p *domainPurchase.Purchase) error {
		if role, ok := p.RoleOf(actor); !ok || role != domainPurchase.RoleBuyer {
			return fmt.Errorf("%w: only the buyer may complete a purchase", trade.ErrForbidden)
		}
		return p.Complete(paymentReference)
	})
	if err != nil {
		return p, err
	}

	s.audit(ctx, p, audit.ActionComplete, actor, "purchase completed and paid")
	s.notifier.Notify(ctx, p.SellerID, notification.EventPurchaseCompleted, p)
	s.logger.Info().Str("purchase_id", p.PurchaseID.String()).Msg("purchase completed")
	return p, nil
}

func (s *Service) load(ctx context.Context, purchaseID uuid.UUID) (*domainPurchase.Purchase, error) {
	p, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: purchase %s", trade.ErrNotFound, purchaseID)
	}
	return p, nil
}

func (s *Service) mutate(ctx context.Context, purchaseID uuid.UUID, apply func(*domainPurchase.Purchase) error) (*domainPurchase.Purchase, error) {
	return s.mutateWith(ctx, purchaseID, apply, s.purchaseRepo.Update)
}

func (s *Service) mutateComplete(ctx context.Context, purchaseID uuid.UUID, apply func(*domainPurchase.Purchase) error) (*domainPurchase.Purchase, error) {
	return s.mutateWith(ctx, purchaseID, apply, s.purchaseRepo.CompleteWithItem)
}

// mutateWith runs read → domain transition → conditional write with a
// bounded retry on optimistic-concurrency misses. Validation failures return
// the unchanged current state alongside the error.
func (s *Service) mutateWith(ctx context.Context, purchaseID uuid.UUID, apply func(*domainPurchase.Purchase) error, persist func(context.Context, *domainPurchase.Purchase) error) (*domainPurchase.Purchase, error) {
	for attempt := 0; ; attempt++ {
		p, err := s.load(ctx, purchaseID)
		if err != nil {
			return nil, err
		}
		if err := apply(p); err != nil {
			return p, err
		}
		err = persist(ctx, p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, trade.ErrStale) {
			return nil, err
		}
		if attempt >= staleRetries {
			return p, fmt.Errorf("%w: purchase %s kept changing underneath this request", trade.ErrConflict, purchaseID)
		}
		s.logger.Debug().Str("purchase_id", purchaseID.String()).Int("attempt", attempt+1).Msg("stale purchase write, retrying")
	}
}

func (s *Service) audit(ctx context.Context, p *domainPurchase.Purchase, action audit.Action, actor uuid.UUID, reason string) {
	s.auditSvc.Log(ctx, &audit.Entry{
		EntityType: audit.EntityTypePurchase,
		EntityID:   p.PurchaseID.String(),
		Action:     action,
		Actor:      actor.String(),
		Reason:     reason,
	})
}
