package purchase

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appAudit "github.com/trade-hub/trade-hub/internal/application/audit"
	auditMocks "github.com/trade-hub/trade-hub/internal/domain/audit/mocks"
	domainItem "github.com/trade-hub/trade-hub/internal/domain/item"
	"github.com/trade-hub/trade-hub/internal/domain/notification"
	domainPurchase "github.com/trade-hub/trade-hub/internal/domain/purchase"
	"github.com/trade-hub/trade-hub/internal/domain/trade"
)

// fakePurchaseRepo is an in-memory purchase.Repository with version-CAS
// semantics, so retry paths behave like the real store.
type fakePurchaseRepo struct {
	mu          sync.Mutex
	purchases   map[uuid.UUID]*domainPurchase.Purchase
	soldItems   map[uuid.UUID]bool
	staleBudget int
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{
		purchases: make(map[uuid.UUID]*domainPurchase.Purchase),
		soldItems: make(map[uuid.UUID]bool),
	}
}

func copyPurchase(p *domainPurchase.Purchase) *domainPurchase.Purchase {
	c := *p
	if p.CounterPriceCents != nil {
		v := *p.CounterPriceCents
		c.CounterPriceCents = &v
	}
	if p.PaymentReference != nil {
		v := *p.PaymentReference
		c.PaymentReference = &v
	}
	return &c
}

func (r *fakePurchaseRepo) Create(_ context.Context, p *domainPurchase.Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purchases[p.PurchaseID] = copyPurchase(p)
	return nil
}

func (r *fakePurchaseRepo) GetByID(_ context.Context, purchaseID uuid.UUID) (*domainPurchase.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.purchases[purchaseID]
	if !ok {
		return nil, nil
	}
	return copyPurchase(p), nil
}

func (r *fakePurchaseRepo) ListByParty(_ context.Context, party uuid.UUID, _, _ int) ([]*domainPurchase.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domainPurchase.Purchase
	for _, p := range r.purchases {
		if p.BuyerID == party || p.SellerID == party {
			out = append(out, copyPurchase(p))
		}
	}
	return out, nil
}

func (r *fakePurchaseRepo) HasPending(_ context.Context, itemID, buyer uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.purchases {
		if p.ItemID == itemID && p.BuyerID == buyer && p.Status == domainPurchase.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePurchaseRepo) Update(_ context.Context, p *domainPurchase.Purchase) error {
	return r.store(p)
}

func (r *fakePurchaseRepo) CompleteWithItem(_ context.Context, p *domainPurchase.Purchase) error {
	if err := r.store(p); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.soldItems[p.ItemID] = true
	return nil
}

func (r *fakePurchaseRepo) store(p *domainPurchase.Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.staleBudget > 0 {
		r.staleBudget--
		return trade.ErrStale
	}
	stored, ok := r.purchases[p.PurchaseID]
	if !ok {
		return fmt.Errorf("purchase not found")
	}
	if stored.Version != p.Version {
		return trade.ErrStale
	}
	p.Version++
	r.purchases[p.PurchaseID] = copyPurchase(p)
	return nil
}

type fakeGate struct {
	items map[uuid.UUID]*domainItem.Item
}

func (g *fakeGate) Get(_ context.Context, itemID uuid.UUID) (*domainItem.Item, error) {
	it, ok := g.items[itemID]
	if !ok {
		return nil, fmt.Errorf("%w: item %s", trade.ErrNotFound, itemID)
	}
	return it, nil
}

func (g *fakeGate) Eligible(ctx context.Context, itemID uuid.UUID, kind domainItem.Kind) (*domainItem.Item, error) {
	it, err := g.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if kind == domainItem.KindPurchase && it.IsSold {
		return nil, fmt.Errorf("%w: item already sold", trade.ErrConflict)
	}
	if kind == domainItem.KindSwap && it.IsSwapped {
		return nil, fmt.Errorf("%w: item already swapped", trade.ErrConflict)
	}
	if it.Removed {
		return nil, fmt.Errorf("%w: item removed", trade.ErrInvalidOperand)
	}
	return it, nil
}

// fakeGateway counts payment calls and can be told to fail.
type fakeGateway struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (g *fakeGateway) CompletePurchase(_ context.Context, _ uuid.UUID, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.fail {
		return fmt.Errorf("gateway timeout")
	}
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notifiedEvent
}

type notifiedEvent struct {
	recipient uuid.UUID
	kind      notification.EventKind
}

func (n *fakeNotifier) Notify(_ context.Context, recipient uuid.UUID, kind notification.EventKind, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notifiedEvent{recipient: recipient, kind: kind})
}

func (n *fakeNotifier) last() (notifiedEvent, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.events) == 0 {
		return notifiedEvent{}, false
	}
	return n.events[len(n.events)-1], true
}

type purchaseWorld struct {
	svc      *Service
	repo     *fakePurchaseRepo
	gateway  *fakeGateway
	notifier *fakeNotifier
	buyer    uuid.UUID
	seller   uuid.UUID
	item     uuid.UUID
	gate     *fakeGate
}

func newPurchaseWorld(t *testing.T) *purchaseWorld {
	t.Helper()
	w := &purchaseWorld{
		repo:     newFakePurchaseRepo(),
		gateway:  &fakeGateway{},
		notifier: &fakeNotifier{},
		buyer:    uuid.New(),
		seller:   uuid.New(),
		item:     uuid.New(),
	}
	w.gate = &fakeGate{items: map[uuid.UUID]*domainItem.Item{
		w.item: {ItemID: w.item, OwnerID: w.seller, Title: "road bike", PriceCents: 45000},
	}}

	auditRepo := &auditMocks.MockRepository{}
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	auditSvc := appAudit.NewService(auditRepo, zerolog.Nop())

	w.svc = NewService(w.repo, w.gate, w.gateway, w.notifier, auditSvc, zerolog.Nop())
	return w
}

func (w *purchaseWorld) request(t *testing.T) *domainPurchase.Purchase {
	t.Helper()
	p, err := w.svc.Request(context.Background(), w.buyer, w.item)
	require.NoError(t, err)
	return p
}

func TestRequest(t *testing.T) {
	w := newPurchaseWorld(t)
	p := w.request(t)

	assert.Equal(t, domainPurchase.StatusPending, p.Status)
	assert.Equal(t, w.seller, p.SellerID, "seller must come from the item's owner")
	assert.Equal(t, int64(45000), p.OfferCents, "opening offer is the listed price")
	assert.Equal(t, domainPurchase.PaymentUnpaid, p.PaymentStatus)

	ev, ok := w.notifier.last()
	require.True(t, ok)
	assert.Equal(t, w.seller, ev.recipient)
	assert.Equal(t, notification.EventPurchaseRequested, ev.kind)
}

func TestRequestOwnItem(t *testing.T) {
	w := newPurchaseWorld(t)
	_, err := w.svc.Request(context.Background(), w.seller, w.item)
	assert.ErrorIs(t, err, trade.ErrInvalidOperand)
	assert.Empty(t, w.repo.purchases)
}

func TestRequestSoldItem(t *testing.T) {
	w := newPurchaseWorld(t)
	w.gate.items[w.item].IsSold = true

	_, err := w.svc.Request(context.Background(), w.buyer, w.item)
	assert.ErrorIs(t, err, trade.ErrConflict)
	assert.Empty(t, w.repo.purchases)
}

func TestRequestSwappedItemStillBuyable(t *testing.T) {
	w := newPurchaseWorld(t)
	w.gate.items[w.item].IsSwapped = true

	p, err := w.svc.Request(context.Background(), w.buyer, w.item)
	require.NoError(t, err, "swapped blocks swaps, not sales")
	assert.Equal(t, domainPurchase.StatusPending, p.Status)
}

func TestRequestDuplicatePending(t *testing.T) {
	w := newPurchaseWorld(t)
	w.request(t)

	_, err := w.svc.Request(context.Background(), w.buyer, w.item)
	assert.ErrorIs(t, err, trade.ErrConflict)
	assert.Len(t, w.repo.purchases, 1)
}

func TestRequestAgainAfterDecline(t *testing.T) {
	w := newPurchaseWorld(t)
	p := w.request(t)
	_, err := w.svc.Respond(context.Background(), w.seller, p.PurchaseID, ActionDecline, nil)
	require.NoError(t, err)

	_, err = w.svc.Request(context.Background(), w.buyer, w.item)
	require.NoError(t, err, "a settled negotiation must not block a fresh request")
	assert.Len(t, w.repo.purchases, 2)
}

func TestRespondAccept(t *testing.T) {
	w := newPurchaseWorld(t)
	p := w.request(t)

	got, err := w.svc.Respond(context.Background(), w.seller, p.PurchaseID, ActionAccept, nil)
	require.NoError(t, err)
	assert.Equal(t, domainPurchase.StatusAccepted, got.Status)
	assert.False(t, w.repo.soldItems[w.item], "accept alone must not mark the item sold")

	ev, _ := w.notifier.last()
	assert.Equal(t, w.buyer, ev.recipient)
	assert.Equal(t, notification.EventPurchaseAccepted, ev.kind)
}

func TestRespondOnlySeller(t *testing.T) {
	w := newPurchaseWorld(t)
	p := w.request(t)

	_, err := w.svc.Respond(context.Background(), w.buyer, p.PurchaseID, ActionAccept, nil)
	assert.ErrorIs(t, err, trade.ErrForbidden)

	_, err = w.svc.Respond(context.Background(), uuid.New(), p.PurchaseID, ActionAccept, nil)
	assert.ErrorIs(t, err, trade.ErrForbidden)
}

func TestRespondCounter(t *testing.T) {
	w := newPurchaseWorld(t)
	p := w.request(t)
	price := int64(52000)

	got, err := w.svc.Respond(context.Background(), w.seller, p.PurchaseID, ActionCounter, &price)
	require.NoError(t, err)
	assert.Equal(t, domainPurchase.StatusCountered, got.Status)
	require.NotNil(t, got.CounterPriceCents)
	assert.Equal(t, price, *got.CounterPriceCents)
	assert.Equal(t, price, got.OfferCents, "counter replaces the offer on the table")

	ev, _ := w.notifier.last()
	assert.Equal(t, notification.EventPurchaseCountered, ev.kind)
}

func TestRespondCounterRequiresPrice(t *testing.T) {
	w := newPurchaseWorld(t)
	p := w.request(t)

	_, err := w.svc.Respond(context.Background(), w.seller, p.PurchaseID, ActionCounter, nil)
	assert.ErrorIs(t, err, trade.ErrInvalidOperand)

	zero := int64(0)
	_, err = w.svc.Respond(context.Background(), w.seller, p.PurchaseID, ActionCounter, &zero)
	assert.ErrorIs(t, err, trade.ErrInvalidOperand)
}

func TestRespondToCounterAccept(t *testing.T) {
	w := newPurchaseWorld(t)
	p := w.request(t)
	price := int64(52000)
	_, err := w.svc.Respond(context.Background(), w.seller, p.PurchaseID, ActionCounter, &price)
	require.NoError(t, err)

	got, err := w.svc.RespondToCounter(context.Background(), w.buyer, p.PurchaseID, ActionAccept)
	require.NoError(t, err)
	assert.Equal(t, domainPurchase.StatusAccepted, got.Status)
	assert.Equal(t, price, got.OfferCents)

	ev, _ := w.notifier.last()
	assert.Equal(t, w.seller, ev.recipient)
	assert.Equal(t, notification.EventPurchaseAccepted, ev.kind)
}

func TestRespondToCounterOnlyBuyer(t *testing.T) {
	w := newPurchaseWorld(t)
	p := w.request(t)
	price := int64(52000)
	_, err := w.svc.Respond(context.Background(), w.seller, p.PurchaseID, ActionCounter, &price)
	require.NoError(t, err)

	_, err = w.svc.RespondToCounter(context.Background(), w.seller, p.PurchaseID, ActionAccept)
	assert.ErrorIs(t, err, trade.ErrForbidden)
}

func TestRespondToCounterRejectsCounterAction(t *testing.T) {
	w := newPurchaseWorld(t)
	p := w.request(t)

	_, err := w.svc.RespondToCounter(context.Background(), w.buyer, p.PurchaseID, ActionCounter)
	assert.ErrorIs(t, err, trade.ErrInvalidOperand)
}

func acceptedPurchase(t *testing.T, w *purchaseWorld) *domainPurchase.Purchase {
	t.Helper()
	p := w.request(t)
	got, err := w.svc.Respond(context.Background(), w.seller, p.PurchaseID, ActionAccept, nil)
	require.NoError(t, err)
	return got
}

func TestComplete(t *testing.T) {
	w := newPurchaseWorld(t)
	p := acceptedPurchase(t, w)

	got, err := w.svc.Complete(context.Background(), w.buyer, p.PurchaseID, "pay_789")
	require.NoError(t, err)
	assert.Equal(t, domainPurchase.StatusCompleted, got.Status)
	assert.Equal(t, domainPurchase.PaymentPaid, got.PaymentStatus)
	require.NotNil(t, got.PaymentReference)
	assert.Equal(t, "pay_789", *got.PaymentReference)
	assert.True(t, w.repo.soldItems[w.item], "item must be marked sold with the completion")
	assert.Equal(t, 1, w.gateway.calls)

	ev, _ := w.notifier.last()
	assert.Equal(t, w.seller, ev.recipient)
	assert.Equal(t, notification.EventPurchaseCompleted, ev.kind)
}

func TestCompleteOnlyBuyer(t *testing.T) {
	w := newPurchaseWorld(t)
	p := acceptedPurchase(t, w)

	_, err := w.svc.Complete(context.Background(), w.seller, p.PurchaseID, "pay_789")
	assert.ErrorIs(t, err, trade.ErrForbidden)
	assert.Zero(t, w.gateway.calls)
}

func TestCompleteRequiresAccepted(t *testing.T) {
	w := newPurchaseWorld(t)
	p := w.request(t)

	_, err := w.svc.Complete(context.Background(), w.buyer, p.PurchaseID, "pay_789")
	assert.ErrorIs(t, err, trade.ErrInvalidState)
	assert.Zero(t, w.gateway.calls, "no payment signal before the state check passes")
}

func TestCompleteRequiresReference(t *testing.T) {
	w := newPurchaseWorld(t)
	p := acceptedPurchase(t, w)

	_, err := w.svc.Complete(context.Background(), w.buyer, p.PurchaseID, "")
	assert.ErrorIs(t, err, trade.ErrInvalidOperand)
	assert.Zero(t, w.gateway.calls)
}

func TestCompleteGatewayFailure(t *testing.T) {
	w := newPurchaseWorld(t)
	p := acceptedPurchase(t, w)
	w.gateway.fail = true

	got, err := w.svc.Complete(context.Background(), w.buyer, p.PurchaseID, "pay_789")
	assert.ErrorIs(t, err, trade.ErrDependencyFailure)
	assert.Equal(t, domainPurchase.StatusAccepted, got.Status, "gateway failure must leave the negotiation untouched")
	assert.False(t, w.repo.soldItems[w.item])

	stored, _ := w.repo.GetByID(context.Background(), p.PurchaseID)
	assert.Equal(t, domainPurchase.StatusAccepted, stored.Status)
	assert.Equal(t, domainPurchase.PaymentUnpaid, stored.PaymentStatus)
}

func TestCompleteTwice(t *testing.T) {
	w := newPurchaseWorld(t)
	p := acceptedPurchase(t, w)

	_, err := w.svc.Complete(context.Background(), w.buyer, p.PurchaseID, "pay_789")
	require.NoError(t, err)

	_, err = w.svc.Complete(context.Background(), w.buyer, p.PurchaseID, "pay_790")
	assert.ErrorIs(t, err, trade.ErrConflict)
	assert.Equal(t, 1, w.gateway.calls, "a settled purchase must never re-trigger payment")
}

func TestCompletePaymentNotRepeatedOnStaleRetry(t *testing.T) {
	w := newPurchaseWorld(t)
	p := acceptedPurchase(t, w)
	w.repo.staleBudget = 2

	got, err := w.svc.Complete(context.Background(), w.buyer, p.PurchaseID, "pay_789")
	require.NoError(t, err)
	assert.Equal(t, domainPurchase.StatusCompleted, got.Status)
	assert.Equal(t, 1, w.gateway.calls, "stale retries re-apply the transition without re-charging")
}

func TestStaleWriteExhausted(t *testing.T) {
	w := newPurchaseWorld(t)
	p := w.request(t)
	w.repo.staleBudget = 100

	_, err := w.svc.Respond(context.Background(), w.seller, p.PurchaseID, ActionAccept, nil)
	assert.ErrorIs(t, err, trade.ErrConflict)
}

func TestGetRequiresParty(t *testing.T) {
	w := newPurchaseWorld(t)
	p := w.request(t)

	_, err := w.svc.Get(context.Background(), uuid.New(), p.PurchaseID)
	assert.ErrorIs(t, err, trade.ErrForbidden)

	got, err := w.svc.Get(context.Background(), w.seller, p.PurchaseID)
	require.NoError(t, err)
	assert.Equal(t, p.PurchaseID, got.PurchaseID)
}
