package swap

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trade-hub/trade-hub/internal/domain/trade"
)

func newTestSwap(t *testing.T) *Swap {
	t.Helper()
	s, err := New(uuid.New(), uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	requester := uuid.New()
	owner := uuid.New()
	s, err := New(requester, owner, uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, s.Status)
	assert.Equal(t, MethodUndecided, s.Delivery.Method)
	assert.False(t, s.RequesterConfirmed)
	assert.False(t, s.OwnerConfirmed)
	assert.False(t, s.Completed)
}

func TestNewSamePartyRejected(t *testing.T) {
	party := uuid.New()
	_, err := New(party, party, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, trade.ErrInvalidOperand)
}

func TestRoleOf(t *testing.T) {
	s := newTestSwap(t)

	role, ok := s.RoleOf(s.RequesterID)
	require.True(t, ok)
	assert.Equal(t, RoleRequester, role)

	role, ok = s.RoleOf(s.OwnerID)
	require.True(t, ok)
	assert.Equal(t, RoleOwner, role)

	_, ok = s.RoleOf(uuid.New())
	assert.False(t, ok)
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusDeclined, true},
		{StatusPending, StatusCountered, true},
		{StatusPending, StatusCompleted, false},
		{StatusCountered, StatusApproved, true},
		{StatusCountered, StatusDeclined, true},
		{StatusCountered, StatusCountered, false},
		{StatusApproved, StatusInProgress, true},
		{StatusApproved, StatusCompleted, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusApproved, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusDeclined, StatusApproved, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			s := newTestSwap(t)
			s.Status = tt.from
			assert.Equal(t, tt.allowed, s.CanTransitionTo(tt.to))
		})
	}
}

func TestApprove(t *testing.T) {
	s := newTestSwap(t)
	require.NoError(t, s.Approve())
	assert.Equal(t, StatusApproved, s.Status)

	assert.ErrorIs(t, s.Approve(), trade.ErrInvalidState)
}

func TestDecline(t *testing.T) {
	s := newTestSwap(t)
	require.NoError(t, s.Decline())
	assert.Equal(t, StatusDeclined, s.Status)
	assert.True(t, s.Status.IsTerminal())
}

func TestCounterOnlyFromPending(t *testing.T) {
	s := newTestSwap(t)
	counterItem := uuid.New()
	require.NoError(t, s.Counter(counterItem))
	assert.Equal(t, StatusCountered, s.Status)
	require.NotNil(t, s.CounterItemID)
	assert.Equal(t, counterItem, *s.CounterItemID)
	assert.Equal(t, counterItem, s.ExchangedItemID())

	assert.ErrorIs(t, s.Counter(uuid.New()), trade.ErrInvalidState)
}

func TestExchangedItemIDWithoutCounter(t *testing.T) {
	s := newTestSwap(t)
	assert.Equal(t, s.OfferedItemID, s.ExchangedItemID())
}

func TestApproveCounter(t *testing.T) {
	s := newTestSwap(t)
	assert.ErrorIs(t, s.ApproveCounter(), trade.ErrInvalidState)

	require.NoError(t, s.Counter(uuid.New()))
	require.NoError(t, s.ApproveCounter())
	assert.Equal(t, StatusApproved, s.Status)
}

func TestDeclineCounter(t *testing.T) {
	s := newTestSwap(t)
	require.NoError(t, s.Counter(uuid.New()))
	require.NoError(t, s.DeclineCounter())
	assert.Equal(t, StatusDeclined, s.Status)
}

func approvedWithDelivery(t *testing.T) *Swap {
	t.Helper()
	s := newTestSwap(t)
	require.NoError(t, s.Approve())
	require.NoError(t, s.SelectDelivery(RoleRequester, MethodSelf))
	require.NoError(t, s.SelectDelivery(RoleOwner, MethodSelf))
	return s
}

func TestConfirmCompletionBothParties(t *testing.T) {
	s := approvedWithDelivery(t)

	require.NoError(t, s.ConfirmCompletion(RoleRequester))
	assert.Equal(t, StatusInProgress, s.Status)
	assert.True(t, s.RequesterConfirmed)
	assert.False(t, s.OwnerConfirmed)
	assert.False(t, s.Completed)

	require.NoError(t, s.ConfirmCompletion(RoleOwner))
	assert.Equal(t, StatusCompleted, s.Status)
	assert.True(t, s.OwnerConfirmed)
	assert.True(t, s.Completed)
}

func TestConfirmCompletionSameRoleTwice(t *testing.T) {
	s := approvedWithDelivery(t)
	require.NoError(t, s.ConfirmCompletion(RoleOwner))

	err := s.ConfirmCompletion(RoleOwner)
	assert.ErrorIs(t, err, trade.ErrConflict)
	assert.True(t, s.OwnerConfirmed)
	assert.Equal(t, StatusInProgress, s.Status)
}

func TestConfirmCompletionAfterCompleted(t *testing.T) {
	s := approvedWithDelivery(t)
	require.NoError(t, s.ConfirmCompletion(RoleRequester))
	require.NoError(t, s.ConfirmCompletion(RoleOwner))

	assert.ErrorIs(t, s.ConfirmCompletion(RoleRequester), trade.ErrConflict)
	assert.Equal(t, StatusCompleted, s.Status)
	assert.True(t, s.Completed)
}

func TestConfirmCompletionRequiresDeliveryConsensus(t *testing.T) {
	s := newTestSwap(t)
	require.NoError(t, s.Approve())

	// No method selected at all.
	assert.ErrorIs(t, s.ConfirmCompletion(RoleOwner), trade.ErrInvalidState)

	// Only one party confirmed the method.
	require.NoError(t, s.SelectDelivery(RoleOwner, MethodPlatform))
	assert.ErrorIs(t, s.ConfirmCompletion(RoleOwner), trade.ErrInvalidState)
}

func TestConfirmCompletionFromPending(t *testing.T) {
	s := newTestSwap(t)
	assert.ErrorIs(t, s.ConfirmCompletion(RoleRequester), trade.ErrInvalidState)
}

func TestSelectDeliveryOnlyWhileApproved(t *testing.T) {
	s := newTestSwap(t)
	assert.ErrorIs(t, s.SelectDelivery(RoleRequester, MethodSelf), trade.ErrInvalidState)

	s = approvedWithDelivery(t)
	require.NoError(t, s.ConfirmCompletion(RoleRequester))
	assert.ErrorIs(t, s.SelectDelivery(RoleOwner, MethodPlatform), trade.ErrInvalidState)
}

func TestCompletedSwapInvariant(t *testing.T) {
	s := approvedWithDelivery(t)
	require.NoError(t, s.ConfirmCompletion(RoleRequester))
	require.NoError(t, s.ConfirmCompletion(RoleOwner))

	assert.True(t, s.RequesterConfirmed && s.OwnerConfirmed)
	assert.True(t, s.Delivery.ConfirmedByBoth())
	assert.True(t, s.Status.IsTerminal())
}
