package item

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainItem "github.com/trade-hub/trade-hub/internal/domain/item"
	itemMocks "github.com/trade-hub/trade-hub/internal/domain/item/mocks"
	"github.com/trade-hub/trade-hub/internal/domain/trade"
)

func newTestService(t *testing.T, rules []string) (*Service, *itemMocks.MockRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := itemMocks.NewMockRepository(ctrl)
	policy, err := NewPolicy(rules)
	require.NoError(t, err)
	return NewService(repo, policy, zerolog.Nop()), repo
}

func TestCreate(t *testing.T) {
	svc, repo := newTestService(t, nil)
	ctx := context.Background()
	owner := uuid.New()

	repo.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, it *domainItem.Item) error {
			assert.Equal(t, owner, it.OwnerID)
			assert.Equal(t, "Road bike", it.Title)
			assert.False(t, it.IsSwapped)
			assert.False(t, it.IsSold)
			return nil
		})

	it, err := svc.Create(ctx, owner, "Road bike", "barely used", "sports", 45000)
	require.NoError(t, err)
	require.NotNil(t, it)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), "  ", "", "misc", 100)
	assert.ErrorIs(t, err, trade.ErrInvalidOperand)

	_, err = svc.Create(ctx, uuid.New(), "Bike", "", "misc", -1)
	assert.ErrorIs(t, err, trade.ErrInvalidOperand)
}

func TestCreateRejectedByPolicy(t *testing.T) {
	svc, _ := newTestService(t, []string{"price <= 100000"})
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), "Yacht", "", "boats", 99900000)
	assert.ErrorIs(t, err, trade.ErrInvalidOperand)
}

func TestGetNotFound(t *testing.T) {
	svc, repo := newTestService(t, nil)
	ctx := context.Background()
	id := uuid.New()

	repo.EXPECT().GetByID(ctx, id).Return(nil, nil)

	_, err := svc.Get(ctx, id)
	assert.ErrorIs(t, err, trade.ErrNotFound)
}

func TestEligible(t *testing.T) {
	owner := uuid.New()
	base := func() *domainItem.Item {
		return &domainItem.Item{ItemID: uuid.New(), OwnerID: owner, Title: "Bike", Category: "sports", PriceCents: 45000}
	}

	tests := []struct {
		name    string
		kind    domainItem.Kind
		mutate  func(*domainItem.Item)
		wantErr error
	}{
		{"available for swap", domainItem.KindSwap, func(*domainItem.Item) {}, nil},
		{"available for purchase", domainItem.KindPurchase, func(*domainItem.Item) {}, nil},
		{"already swapped", domainItem.KindSwap, func(it *domainItem.Item) { it.IsSwapped = true }, trade.ErrConflict},
		{"already sold", domainItem.KindPurchase, func(it *domainItem.Item) { it.IsSold = true }, trade.ErrConflict},
		{"sold item still swappable", domainItem.KindSwap, func(it *domainItem.Item) { it.IsSold = true }, nil},
		{"removed", domainItem.KindSwap, func(it *domainItem.Item) { it.Removed = true }, trade.ErrInvalidOperand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService(t, nil)
			ctx := context.Background()
			it := base()
			tt.mutate(it)
			repo.EXPECT().GetByID(ctx, it.ItemID).Return(it, nil)

			got, err := svc.Eligible(ctx, it.ItemID, tt.kind)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, it, got)
			}
		})
	}
}

func TestEligibleMissingItem(t *testing.T) {
	svc, repo := newTestService(t, nil)
	ctx := context.Background()
	id := uuid.New()

	repo.EXPECT().GetByID(ctx, id).Return(nil, nil)

	_, err := svc.Eligible(ctx, id, domainItem.KindSwap)
	assert.ErrorIs(t, err, trade.ErrNotFound)
}

func TestEligiblePolicyRule(t *testing.T) {
	svc, repo := newTestService(t, []string{"category != 'weapons'"})
	ctx := context.Background()
	it := &domainItem.Item{ItemID: uuid.New(), OwnerID: uuid.New(), Title: "Sword", Category: "weapons", PriceCents: 100}

	repo.EXPECT().GetByID(ctx, it.ItemID).Return(it, nil)

	_, err := svc.Eligible(ctx, it.ItemID, domainItem.KindSwap)
	assert.ErrorIs(t, err, trade.ErrInvalidOperand)
}

func TestRemove(t *testing.T) {
	svc, repo := newTestService(t, nil)
	ctx := context.Background()
	owner := uuid.New()
	it := &domainItem.Item{ItemID: uuid.New(), OwnerID: owner, Title: "Bike"}

	t.Run("owner", func(t *testing.T) {
		repo.EXPECT().GetByID(ctx, it.ItemID).Return(it, nil)
		repo.EXPECT().SetRemoved(ctx, it.ItemID, true).Return(nil)
		require.NoError(t, svc.Remove(ctx, it.ItemID, owner, false))
	})

	t.Run("stranger", func(t *testing.T) {
		repo.EXPECT().GetByID(ctx, it.ItemID).Return(it, nil)
		err := svc.Remove(ctx, it.ItemID, uuid.New(), false)
		assert.ErrorIs(t, err, trade.ErrForbidden)
	})

	t.Run("admin", func(t *testing.T) {
		repo.EXPECT().GetByID(ctx, it.ItemID).Return(it, nil)
		repo.EXPECT().SetRemoved(ctx, it.ItemID, true).Return(nil)
		require.NoError(t, svc.Remove(ctx, it.ItemID, uuid.New(), true))
	})
}
