package storefront

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sweet-shop/internal/admin"
	"sweet-shop/internal/event"
	"sweet-shop/internal/kvstore"
	"sweet-shop/internal/model"
	"sweet-shop/internal/session"
	"sweet-shop/internal/sweetsapi"
	"sweet-shop/internal/testutil"
)

func seedSweets() []model.Sweet {
	return []model.Sweet{
		{ID: 1, Name: "Ladoo", Category: "DRY", Price: 10, Quantity: 5, ImageURL: "ladoo.png"},
		{ID: 2, Name: "Rasgulla", Category: "MILK", Price: 15, Quantity: 2},
		{ID: 3, Name: "Chocolate Barfi", Category: "MILK", Price: 20, Quantity: 0},
	}
}

type harness struct {
	sf  *Storefront
	api *testutil.FakeAPI
	kv  kvstore.Store
	bus *event.InMemoryBus
}

func newHarness(t *testing.T, kv kvstore.Store) *harness {
	t.Helper()

	api := testutil.NewFakeAPI(t, seedSweets()...)
	if kv == nil {
		kv = kvstore.NewMemory()
	}

	client := sweetsapi.New(api.URL(), 2*time.Second, nil)
	sessions := session.NewStore(client, kv)
	client.SetTokenSource(sessions)
	bus := event.NewBus()

	sf := New(sessions, client, admin.NewGate(sessions, client), Options{Bus: bus, CallTimeout: 2 * time.Second})
	t.Cleanup(sf.Close)
	require.NoError(t, sf.Start(context.Background()))

	return &harness{sf: sf, api: api, kv: kv, bus: bus}
}

func (h *harness) login(t *testing.T, username string, password string) {
	t.Helper()

	_, err := h.sf.Login(context.Background(), username, password)
	require.NoError(t, err)
	h.sf.Wait()
}

// inspect runs fn on the loop so tests can look at state the public API hides.
func (h *harness) inspect(t *testing.T, fn func()) {
	t.Helper()
	require.NoError(t, h.sf.exec(context.Background(), fn))
}

func quantityOf(t *testing.T, sf *Storefront, id int64) int {
	t.Helper()

	sweets, err := sf.Inventory(context.Background())
	require.NoError(t, err)
	for _, s := range sweets {
		if s.ID == id {
			return s.Quantity
		}
	}
	t.Fatalf("sweet %d not in snapshot", id)
	return 0
}

func drain(ch <-chan event.Event) []event.Type {
	var out []event.Type
	for {
		select {
		case e := <-ch:
			out = append(out, e.Type)
		default:
			return out
		}
	}
}

func TestLoginStartsSessionAndRefreshesOnce(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	events, unsubscribe := h.bus.Subscribe()
	defer unsubscribe()

	require.Equal(t, model.RoleNone, h.sf.Role(ctx))
	_, err := h.sf.Inventory(ctx)
	require.ErrorIs(t, err, model.ErrNoSession)

	info, err := h.sf.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	require.True(t, info.Authenticated)
	require.Equal(t, "ADMIN", info.Role)
	h.sf.Wait()

	require.Equal(t, model.RoleAdmin, h.sf.Role(ctx))
	require.True(t, h.sf.CanAddSweets(ctx))
	sweets, err := h.sf.Inventory(ctx)
	require.NoError(t, err)
	require.Equal(t, seedSweets(), sweets)
	require.Equal(t, 1, h.api.ListCalls())

	_, err = h.sf.Cart(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, h.api.ListCalls())

	require.Equal(t, []event.Type{event.TypeSessionStarted, event.TypeInventoryRefreshed}, drain(events))
}

func TestLoginFailureLeavesStateUnchanged(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.sf.Login(ctx, "admin", "wrong")
	require.ErrorIs(t, err, model.ErrAuthFailure)
	h.sf.Wait()

	require.Equal(t, model.RoleNone, h.sf.Role(ctx))
	require.Zero(t, h.api.ListCalls())
	_, err = h.sf.Cart(ctx)
	require.ErrorIs(t, err, model.ErrNoSession)

	notices, err := h.sf.Notices(ctx)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	require.Equal(t, model.NoticeAuthFailure, notices[0].Kind)
	require.Equal(t, "Invalid username or password", notices[0].Message)

	// A successful login starts with a clean slate.
	_, err = h.sf.Login(ctx, "admin", "wrong")
	require.Error(t, err)
	h.login(t, "admin", "admin123")
	notices, err = h.sf.Notices(ctx)
	require.NoError(t, err)
	require.Empty(t, notices)
}

func TestStartResumesPersistedToken(t *testing.T) {
	kv := kvstore.NewMemory()
	require.NoError(t, kv.Set(context.Background(), session.TokenKey, testutil.IssueToken(t, 2, "alice", model.RoleUser)))

	h := newHarness(t, kv)
	h.sf.Wait()

	require.Equal(t, model.RoleUser, h.sf.Role(context.Background()))
	require.False(t, h.sf.CanAddSweets(context.Background()))
	require.Equal(t, 1, h.api.ListCalls())
	require.Equal(t, 5, quantityOf(t, h.sf, 1))
}

func TestPurchaseUpdatesCartNowAndInventoryLater(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t, "alice", "alice123")
	ctx := context.Background()

	gate := h.api.HoldPurchases()

	line, err := h.sf.Purchase(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, line.Quantity)

	line, err = h.sf.Purchase(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 2, line.Quantity)

	cartView, err := h.sf.Cart(ctx)
	require.NoError(t, err)
	require.Len(t, cartView.Lines, 1)
	require.InDelta(t, 20.0, cartView.Total, 1e-9)
	require.Equal(t, 5, quantityOf(t, h.sf, 1), "inventory must wait for the service")

	close(gate)
	h.sf.Wait()

	require.Equal(t, 3, quantityOf(t, h.sf, 1))
	cartView, err = h.sf.Cart(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, cartView.Lines[0].Quantity)
	require.Equal(t, 2, h.api.PurchaseCalls())
}

func TestFailedPurchaseKeepsCartLineAndRaisesNotice(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t, "alice", "alice123")
	ctx := context.Background()

	events, unsubscribe := h.bus.Subscribe()
	defer unsubscribe()

	h.api.SetFailPurchase(true)
	_, err := h.sf.Purchase(ctx, 2)
	require.NoError(t, err)
	h.sf.Wait()

	cartView, err := h.sf.Cart(ctx)
	require.NoError(t, err)
	require.Len(t, cartView.Lines, 1)
	require.Equal(t, int64(2), cartView.Lines[0].ID)
	require.Equal(t, 2, quantityOf(t, h.sf, 2))

	notices, err := h.sf.Notices(ctx)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	require.Equal(t, model.NoticeMutationFailure, notices[0].Kind)
	require.Equal(t, int64(2), notices[0].SweetID)
	require.Contains(t, notices[0].Message, "Rasgulla")

	notices, err = h.sf.Notices(ctx)
	require.NoError(t, err)
	require.Empty(t, notices)

	require.Equal(t, []event.Type{event.TypeCartUpdated, event.TypePurchaseFailed}, drain(events))
}

func TestPurchaseGuards(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.sf.Purchase(ctx, 1)
	require.ErrorIs(t, err, model.ErrNoSession)

	h.login(t, "alice", "alice123")

	_, err = h.sf.Purchase(ctx, 3)
	require.ErrorIs(t, err, model.ErrOutOfStock)

	_, err = h.sf.Purchase(ctx, 404)
	require.ErrorIs(t, err, model.ErrSweetNotFound)

	h.sf.Wait()
	cartView, err := h.sf.Cart(ctx)
	require.NoError(t, err)
	require.Empty(t, cartView.Lines)
	require.Zero(t, h.api.PurchaseCalls())
}

func TestLogoutClearsCartAndRole(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t, "admin", "admin123")
	ctx := context.Background()

	_, err := h.sf.Purchase(ctx, 1)
	require.NoError(t, err)
	h.sf.Wait()

	require.NoError(t, h.sf.Logout(ctx))

	require.Equal(t, model.RoleNone, h.sf.Role(ctx))
	require.False(t, h.sf.Session(ctx).Authenticated)
	_, err = h.kv.Get(ctx, session.TokenKey)
	require.ErrorIs(t, err, model.ErrKeyNotFound)
	_, err = h.sf.Cart(ctx)
	require.ErrorIs(t, err, model.ErrNoSession)

	h.inspect(t, func() {
		require.Zero(t, h.sf.cart.Count())
		require.Zero(t, h.sf.inventory.Len())
	})

	h.login(t, "admin", "admin123")
	cartView, err := h.sf.Cart(ctx)
	require.NoError(t, err)
	require.Empty(t, cartView.Lines)
}

func TestRefreshResultDiscardedAfterLogout(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	gate := h.api.HoldList()
	_, err := h.sf.Login(ctx, "alice", "alice123")
	require.NoError(t, err)

	require.NoError(t, h.sf.Logout(ctx))
	close(gate)
	h.sf.Wait()

	h.inspect(t, func() {
		require.False(t, h.sf.inventory.Loaded())
		require.Zero(t, h.sf.inventory.Len())
	})
}

func TestPurchaseResultDiscardedAfterLogout(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t, "alice", "alice123")
	ctx := context.Background()

	gate := h.api.HoldPurchases()
	h.api.SetFailPurchase(true)
	_, err := h.sf.Purchase(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, h.sf.Logout(ctx))
	close(gate)
	h.sf.Wait()

	notices, err := h.sf.Notices(ctx)
	require.NoError(t, err)
	require.Empty(t, notices)
}

func TestTokenRemovedBehindOurBackEndsSession(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t, "alice", "alice123")
	ctx := context.Background()

	_, err := h.sf.Purchase(ctx, 1)
	require.NoError(t, err)
	h.sf.Wait()

	require.NoError(t, h.kv.Remove(ctx, session.TokenKey))

	_, err = h.sf.Cart(ctx)
	require.ErrorIs(t, err, model.ErrNoSession)
	h.inspect(t, func() {
		require.Empty(t, h.sf.sessionID)
		require.Zero(t, h.sf.cart.Count())
	})
}

func TestRefreshFailureKeepsPriorSnapshot(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t, "alice", "alice123")
	ctx := context.Background()

	h.api.SetFailList(true)
	require.NoError(t, h.sf.Reload(ctx))
	h.sf.Wait()

	view, err := h.sf.Catalog(ctx, "", "")
	require.NoError(t, err)
	require.Equal(t, "Failed to load sweets", view.LoadError)
	require.Len(t, view.Items, 3)

	notices, err := h.sf.Notices(ctx)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	require.Equal(t, model.NoticeLoadFailure, notices[0].Kind)

	h.api.SetFailList(false)
	require.NoError(t, h.sf.Reload(ctx))
	h.sf.Wait()

	view, err = h.sf.Catalog(ctx, "", "")
	require.NoError(t, err)
	require.Empty(t, view.LoadError)
	require.Equal(t, 3, h.api.ListCalls())
}

func TestInitialRefreshFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.api.SetFailList(true)
	h.login(t, "alice", "alice123")

	view, err := h.sf.Catalog(context.Background(), "", model.CategoryAll)
	require.NoError(t, err)
	require.Equal(t, "Failed to load sweets", view.LoadError)
	require.Empty(t, view.Items)
}

func TestCatalogFilters(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t, "alice", "alice123")
	ctx := context.Background()

	view, err := h.sf.Catalog(ctx, "", "MILK")
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	require.Equal(t, []string{"ALL", "DRY", "MILK"}, view.Categories)

	view, err = h.sf.Catalog(ctx, "LAD", "")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	require.Equal(t, model.CategoryAll, view.Category)
}

func TestAddSweet(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	draft := model.SweetDraft{Name: "Jalebi", Category: "DRY", Price: 8, Quantity: 10}

	_, err := h.sf.AddSweet(ctx, draft)
	require.ErrorIs(t, err, model.ErrNoSession)

	h.login(t, "alice", "alice123")
	_, err = h.sf.AddSweet(ctx, draft)
	require.ErrorIs(t, err, model.ErrForbidden)
	require.Len(t, h.api.Sweets(), 3)

	require.NoError(t, h.sf.Logout(ctx))
	h.login(t, "admin", "admin123")

	h.api.SetFailCreate(true)
	_, err = h.sf.AddSweet(ctx, draft)
	require.ErrorIs(t, err, model.ErrMutationFailure)
	notices, err := h.sf.Notices(ctx)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	require.Equal(t, model.NoticeMutationFailure, notices[0].Kind)
	require.Equal(t, "Failed to add Jalebi", notices[0].Message)
	sweets, err := h.sf.Inventory(ctx)
	require.NoError(t, err)
	require.Len(t, sweets, 3)

	h.api.SetFailCreate(false)
	created, err := h.sf.AddSweet(ctx, draft)
	require.NoError(t, err)
	require.Equal(t, int64(4), created.ID)

	sweets, err = h.sf.Inventory(ctx)
	require.NoError(t, err)
	require.Len(t, sweets, 4)
	require.Equal(t, created, sweets[3])
}

func TestCheckout(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	h := newHarness(t, nil)
	h.sf.now = func() time.Time { return now }
	h.login(t, "alice", "alice123")
	ctx := context.Background()

	_, err := h.sf.Checkout(ctx)
	require.ErrorIs(t, err, model.ErrEmptyCart)

	for _, id := range []int64{1, 2, 1} {
		_, err := h.sf.Purchase(ctx, id)
		require.NoError(t, err)
	}
	h.sf.Wait()

	receipt, err := h.sf.Checkout(ctx)
	require.NoError(t, err)
	require.Len(t, receipt.Lines, 2)
	require.InDelta(t, 35.0, receipt.Total, 1e-9)
	require.Equal(t, now, receipt.CheckedOutAt)

	cartView, err := h.sf.Cart(ctx)
	require.NoError(t, err)
	require.Empty(t, cartView.Lines)
	require.Zero(t, cartView.Total)
}

func TestSecondLoginStartsFreshSession(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t, "admin", "admin123")
	ctx := context.Background()

	_, err := h.sf.Purchase(ctx, 1)
	require.NoError(t, err)
	h.sf.Wait()

	h.login(t, "alice", "alice123")

	require.Equal(t, model.RoleUser, h.sf.Role(ctx))
	cartView, err := h.sf.Cart(ctx)
	require.NoError(t, err)
	require.Empty(t, cartView.Lines)
	require.Equal(t, 2, h.api.ListCalls())
}

func TestClosedStorefront(t *testing.T) {
	h := newHarness(t, nil)
	h.sf.Close()

	_, err := h.sf.Cart(context.Background())
	require.ErrorIs(t, err, ErrClosed)
	h.sf.Close()
}
