package purchase

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trade-hub/trade-hub/internal/domain/trade"
)

func newTestPurchase(t *testing.T) *Purchase {
	t.Helper()
	p, err := New(uuid.New(), uuid.New(), uuid.New(), 2500)
	require.NoError(t, err)
	return p
}

func TestNew(t *testing.T) {
	p := newTestPurchase(t)
	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, PaymentUnpaid, p.PaymentStatus)
	assert.Equal(t, int64(2500), p.OfferCents)
	assert.Nil(t, p.CounterPriceCents)
}

func TestNewSelfPurchaseRejected(t *testing.T) {
	party := uuid.New()
	_, err := New(party, party, uuid.New(), 100)
	assert.ErrorIs(t, err, trade.ErrInvalidOperand)
}

func TestRoleOf(t *testing.T) {
	p := newTestPurchase(t)

	role, ok := p.RoleOf(p.BuyerID)
	require.True(t, ok)
	assert.Equal(t, RoleBuyer, role)

	role, ok = p.RoleOf(p.SellerID)
	require.True(t, ok)
	assert.Equal(t, RoleSeller, role)

	_, ok = p.RoleOf(uuid.New())
	assert.False(t, ok)
}

func TestAccept(t *testing.T) {
	p := newTestPurchase(t)
	require.NoError(t, p.Accept())
	assert.Equal(t, StatusAccepted, p.Status)

	assert.ErrorIs(t, p.Accept(), trade.ErrInvalidState)
}

func TestDecline(t *testing.T) {
	p := newTestPurchase(t)
	require.NoError(t, p.Decline())
	assert.Equal(t, StatusDeclined, p.Status)
	assert.True(t, p.Status.IsTerminal())
}

func TestCounter(t *testing.T) {
	p := newTestPurchase(t)
	require.NoError(t, p.Counter(3000))
	assert.Equal(t, StatusCountered, p.Status)
	require.NotNil(t, p.CounterPriceCents)
	assert.Equal(t, int64(3000), *p.CounterPriceCents)
	assert.Equal(t, int64(3000), p.OfferCents)
}

func TestCounterNonPositivePrice(t *testing.T) {
	tests := []struct {
		name  string
		price int64
	}{
		{"zero", 0},
		{"negative", -500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPurchase(t)
			assert.ErrorIs(t, p.Counter(tt.price), trade.ErrInvalidOperand)
			assert.Equal(t, StatusPending, p.Status)
		})
	}
}

func TestAcceptCounter(t *testing.T) {
	p := newTestPurchase(t)
	assert.ErrorIs(t, p.AcceptCounter(), trade.ErrInvalidState)

	require.NoError(t, p.Counter(3000))
	require.NoError(t, p.AcceptCounter())
	assert.Equal(t, StatusAccepted, p.Status)
}

func TestDeclineCounter(t *testing.T) {
	p := newTestPurchase(t)
	require.NoError(t, p.Counter(3000))
	require.NoError(t, p.DeclineCounter())
	assert.Equal(t, StatusDeclined, p.Status)
}

func TestComplete(t *testing.T) {
	p := newTestPurchase(t)
	require.NoError(t, p.Accept())
	require.NoError(t, p.Complete("pay_123"))

	assert.Equal(t, StatusCompleted, p.Status)
	assert.Equal(t, PaymentPaid, p.PaymentStatus)
	require.NotNil(t, p.PaymentReference)
	assert.Equal(t, "pay_123", *p.PaymentReference)
}

func TestCompleteRequiresAccepted(t *testing.T) {
	p := newTestPurchase(t)
	assert.ErrorIs(t, p.Complete("pay_123"), trade.ErrInvalidState)

	require.NoError(t, p.Counter(3000))
	assert.ErrorIs(t, p.Complete("pay_123"), trade.ErrInvalidState)
}

func TestCompleteTwice(t *testing.T) {
	p := newTestPurchase(t)
	require.NoError(t, p.Accept())
	require.NoError(t, p.Complete("pay_123"))

	assert.ErrorIs(t, p.Complete("pay_456"), trade.ErrConflict)
	assert.Equal(t, "pay_123", *p.PaymentReference)
}

func TestCompleteEmptyReference(t *testing.T) {
	p := newTestPurchase(t)
	require.NoError(t, p.Accept())
	assert.ErrorIs(t, p.Complete(""), trade.ErrInvalidOperand)
	assert.Equal(t, PaymentUnpaid, p.PaymentStatus)
}

func TestCompletedImpliesPaid(t *testing.T) {
	p := newTestPurchase(t)
	require.NoError(t, p.Accept())
	require.NoError(t, p.Complete("pay_123"))
	if p.Status == StatusCompleted {
		assert.Equal(t, PaymentPaid, p.PaymentStatus)
	}
}
