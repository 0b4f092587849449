package item

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	domainItem "github.com/trade-hub/trade-hub/internal/domain/item"
	"github.com/trade-hub/trade-hub/internal/domain/trade"
)

// Service owns item listings and the availability gate consumed by both
// negotiation engines.
type Service struct {
	itemRepo domainItem.Repository
	policy   *Policy
	logger   zerolog.Logger
}

// NewService creates an item service.
func NewService(itemRepo domainItem.Repository, policy *Policy, logger zerolog.Logger) *Service {
	return &Service{
		itemRepo: itemRepo,
		policy:   policy,
		logger:   logger.With().Str("service", "item").Logger(),
	}
}

// Create lists a new item for the owner.
func (s *Service) Create(ctx context.Context, owner uuid.UUID, title, description, category string, priceCents int64) (*domainItem.Item, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", trade.ErrInvalidOperand)
	}
	if priceCents < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", trade.ErrInvalidOperand)
	}
	it := &domainItem.Item{
		ItemID:      uuid.New(),
		OwnerID:     owner,
		Title:       title,
		Description: strings.TrimSpace(description),
		Category:    strings.TrimSpace(category),
		PriceCents:  priceCents,
	}
	allowed, rule, err := s.policy.Allows(it)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", trade.ErrInvalidOperand, err)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: listing rejected by policy rule %q", trade.ErrInvalidOperand, rule)
	}
	if err := s.itemRepo.Create(ctx, it); err != nil {
		return nil, err
	}
	s.logger.Info().Str("item_id", it.ItemID.String()).Str("owner_id", owner.String()).Msg("item listed")
	return it, nil
}

// Get retrieves an item by id.
func (s *Service) Get(ctx context.Context, itemID uuid.UUID) (*domainItem.Item, error) {
	it, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, fmt.Errorf("%w: item %s", trade.ErrNotFound, itemID)
	}
	return it, nil
}

// List returns items matching the filter.
func (s *Service) List(ctx context.Context, filter domainItem.Filter, limit, offset int) ([]*domainItem.Item, error) {
	return s.itemRepo.List(ctx, filter, limit, offset)
}

// Remove administratively delists an item. Only the owner or an admin may do
// this; removal makes the item ineligible for any new negotiation.
func (s *Service) Remove(ctx context.Context, itemID, actor uuid.UUID, isAdmin bool) error {
	it, err := s.Get(ctx, itemID)
	if err != nil {
		return err
	}
	if !isAdmin && !it.OwnedBy(actor) {
		return fmt.Errorf("%w: only the owner or an admin may remove an item", trade.ErrForbidden)
	}
	return s.itemRepo.SetRemoved(ctx, itemID, true)
}

// Eligible resolves the item and answers the availability-gate question for a
// NEW negotiation of the given kind. Missing items are NotFound; removed or
// policy-failing items are InvalidOperand; items whose corresponding exchange
// flag is already set are Conflict.
func (s *Service) Eligible(ctx context.Context, itemID uuid.UUID, kind domainItem.Kind) (*domainItem.Item, error) {
	it, err := s.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if kind == domainItem.KindSwap && it.IsSwapped {
		return nil, fmt.Errorf("%w: item %s already swapped", trade.ErrConflict, itemID)
	}
	if kind == domainItem.KindPurchase && it.IsSold {
		return nil, fmt.Errorf("%w: item %s already sold", trade.ErrConflict, itemID)
	}
	if it.Removed {
		return nil, fmt.Errorf("%w: item %s has been removed", trade.ErrInvalidOperand, itemID)
	}
	allowed, rule, err := s.policy.Allows(it)
	if err != nil {
		s.logger.Warn().Err(err).Str("item_id", itemID.String()).Msg("listing policy evaluation failed")
		return nil, fmt.Errorf("%w: item %s fails listing policy", trade.ErrInvalidOperand, itemID)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: item %s fails listing policy rule %q", trade.ErrInvalidOperand, itemID, rule)
	}
	return it, nil
}
