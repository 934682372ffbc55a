package cart_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kiwari-pos/storefront/internal/cart"
	"github.com/kiwari-pos/storefront/internal/quantity"
	"github.com/kiwari-pos/storefront/internal/state"
	"github.com/kiwari-pos/storefront/internal/storeapi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock API ---

type mockAPI struct {
	getCartFn     func(ctx context.Context) (storeapi.Cart, error)
	removeFn      func(ctx context.Context, itemID string) error
	createOrderFn func(ctx context.Context, req storeapi.OrderRequest) (storeapi.Order, error)
	addFn         func(ctx context.Context, productID string, qty int64) (storeapi.CartItem, error)
}

func (m *mockAPI) GetCart(ctx context.Context) (storeapi.Cart, error) {
	return m.getCartFn(ctx)
}

func (m *mockAPI) RemoveCartItem(ctx context.Context, itemID string) error {
	return m.removeFn(ctx, itemID)
}

func (m *mockAPI) CreateOrder(ctx context.Context, req storeapi.OrderRequest) (storeapi.Order, error) {
	return m.createOrderFn(ctx, req)
}

func (m *mockAPI) AddCartItem(ctx context.Context, productID string, qty int64) (storeapi.CartItem, error) {
	return m.addFn(ctx, productID, qty)
}

// --- Fixtures ---

var (
	rice  = storeapi.Product{ID: "p-rice", Name: "Beras Pandan Wangi", Unit: quantity.UnitKilogram, Price: decimal.NewFromInt(15000)}
	eggs  = storeapi.Product{ID: "p-eggs", Name: "Telur Ayam", Unit: quantity.UnitPiece, Price: decimal.NewFromInt(2500)}
	chili = storeapi.Product{ID: "p-chili", Name: "Cabai Rawit", Unit: quantity.UnitGram, Price: decimal.NewFromInt(60000)}
)

func serverCart() storeapi.Cart {
	return storeapi.Cart{Items: []storeapi.CartItem{
		{ID: "i1", Quantity: 500, Product: rice},
		{ID: "i2", Quantity: 6, Product: eggs},
		{ID: "i3", Quantity: 250, Product: chili},
	}}
}

func loadedSession(t *testing.T, api *mockAPI) (*cart.Session, *state.CartBadge) {
	t.Helper()
	if api.getCartFn == nil {
		api.getCartFn = func(context.Context) (storeapi.Cart, error) { return serverCart(), nil }
	}
	badge := state.NewCartBadge()
	s := cart.NewSession(api, badge, quantity.Codec{}, nil)
	require.NoError(t, s.Refresh(context.Background()))
	return s, badge
}

func ids(items []quantity.LineItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// --- Session ---

func TestRefresh_MapsServerQuantities(t *testing.T) {
	s, badge := loadedSession(t, &mockAPI{})

	items := s.Items("")
	require.Len(t, items, 3)
	assert.True(t, items[0].Quantity.Equal(qty("0.5")), "rice: %s", items[0].Quantity)
	assert.True(t, items[0].Is500g)
	assert.True(t, items[1].Quantity.Equal(qty("6")), "eggs: %s", items[1].Quantity)
	assert.False(t, items[1].Is250g || items[1].Is500g)
	assert.True(t, items[2].Quantity.Equal(qty("0.25")))
	assert.True(t, items[2].Is250g)

	assert.Equal(t, 3, badge.Count())
	assert.True(t, badge.Has("p-eggs"))
}

func TestRefresh_LegacyPieceScaling(t *testing.T) {
	api := &mockAPI{getCartFn: func(context.Context) (storeapi.Cart, error) {
		return storeapi.Cart{Items: []storeapi.CartItem{{ID: "i2", Quantity: 6000, Product: eggs}}}, nil
	}}
	s := cart.NewSession(api, state.NewCartBadge(), quantity.Codec{LegacyPieceScaling: true}, nil)
	require.NoError(t, s.Refresh(context.Background()))
	assert.True(t, s.Items("")[0].Quantity.Equal(qty("6")))
}

func TestRefresh_Error(t *testing.T) {
	api := &mockAPI{getCartFn: func(context.Context) (storeapi.Cart, error) {
		return storeapi.Cart{}, errors.New("offline")
	}}
	s := cart.NewSession(api, state.NewCartBadge(), quantity.Codec{}, nil)
	assert.Error(t, s.Refresh(context.Background()))
	assert.Empty(t, s.Items(""))
}

func TestRefresh_StaleResponseIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0

	api := &mockAPI{getCartFn: func(context.Context) (storeapi.Cart, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(started)
			<-release
			return storeapi.Cart{Items: []storeapi.CartItem{{ID: "old", Quantity: 1000, Product: rice}}}, nil
		}
		return storeapi.Cart{Items: []storeapi.CartItem{{ID: "new", Quantity: 2, Product: eggs}}}, nil
	}}
	badge := state.NewCartBadge()
	s := cart.NewSession(api, badge, quantity.Codec{}, nil)

	done := make(chan error, 1)
	go func() { done <- s.Refresh(context.Background()) }()
	<-started

	require.NoError(t, s.Refresh(context.Background()))
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, []string{"new"}, ids(s.Items("")))
	assert.Equal(t, []string{"p-eggs"}, badge.ProductIDs())
}

func TestRefresh_InFlightResponseKeepsLocalEdit(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	api := &mockAPI{getCartFn: func(context.Context) (storeapi.Cart, error) {
		calls++
		if calls == 2 {
			close(started)
			<-release
		}
		return serverCart(), nil
	}}
	s, _ := loadedSession(t, api)

	done := make(chan error, 1)
	go func() { done <- s.Refresh(context.Background()) }()
	<-started

	require.NoError(t, s.Increase("i2"))
	close(release)
	require.NoError(t, <-done)

	items := s.Items("")
	require.Len(t, items, 3)
	assert.True(t, items[1].Quantity.Equal(qty("7")), "eggs: %s", items[1].Quantity)
}

func TestItems_SearchFilterAndTotal(t *testing.T) {
	s, _ := loadedSession(t, &mockAPI{})

	assert.Equal(t, []string{"i1"}, ids(s.Items("beras")))
	assert.Equal(t, []string{"i2"}, ids(s.Items("  TELUR ")))
	assert.Empty(t, s.Items("susu"))

	// 15000*0.5 + 2500*6 + 60000*0.25
	assert.True(t, s.Total("").Equal(decimal.NewFromInt(37500)), "total: %s", s.Total(""))
	assert.True(t, s.Total("cabai").Equal(decimal.NewFromInt(15000)))
}

func TestLocalMutations(t *testing.T) {
	calls := 0
	api := &mockAPI{getCartFn: func(context.Context) (storeapi.Cart, error) {
		calls++
		return serverCart(), nil
	}}
	s, _ := loadedSession(t, api)

	require.NoError(t, s.Toggle("i1", quantity.Increment250g))
	require.NoError(t, s.Increase("i2"))
	require.NoError(t, s.Decrease("i3"))

	items := s.Items("")
	assert.True(t, items[0].Quantity.Equal(qty("0.75")))
	assert.True(t, items[0].Is250g)
	assert.False(t, items[0].Is500g)
	assert.True(t, items[1].Quantity.Equal(qty("7")))
	assert.True(t, items[2].Quantity.IsZero())

	assert.ErrorIs(t, s.Increase("missing"), cart.ErrItemNotFound)
	assert.Equal(t, 1, calls, "local edits must not fetch")
}

func TestRemove_Success(t *testing.T) {
	var removed string
	api := &mockAPI{removeFn: func(_ context.Context, id string) error {
		removed = id
		return nil
	}}
	s, badge := loadedSession(t, api)

	require.NoError(t, s.Remove(context.Background(), "i2"))
	assert.Equal(t, "i2", removed)
	assert.Equal(t, []string{"i1", "i3"}, ids(s.Items("")))
	assert.False(t, badge.Has("p-eggs"))

	assert.ErrorIs(t, s.Remove(context.Background(), "i2"), cart.ErrItemNotFound)
}

func TestRemove_FailureRestoresPosition(t *testing.T) {
	api := &mockAPI{}
	s, badge := loadedSession(t, api)

	var badgeDuringCall bool
	api.removeFn = func(context.Context, string) error {
		badgeDuringCall = badge.Has("p-eggs")
		assert.Equal(t, []string{"i1", "i3"}, ids(s.Items("")))
		return errors.New("502 bad gateway")
	}

	err := s.Remove(context.Background(), "i2")
	require.Error(t, err)
	assert.False(t, badgeDuringCall, "removal should be optimistic")
	assert.Equal(t, []string{"i1", "i2", "i3"}, ids(s.Items("")))
	assert.True(t, badge.Has("p-eggs"))
}

func TestRemove_FailureAfterRefreshKeepsSingleLine(t *testing.T) {
	api := &mockAPI{}
	s, badge := loadedSession(t, api)

	api.removeFn = func(ctx context.Context, _ string) error {
		require.NoError(t, s.Refresh(ctx))
		return errors.New("502 bad gateway")
	}

	require.Error(t, s.Remove(context.Background(), "i2"))
	assert.Equal(t, []string{"i1", "i2", "i3"}, ids(s.Items("")))
	assert.Equal(t, 3, badge.Count())
	assert.True(t, badge.Has("p-eggs"))
}

func TestCheckout_SendsServerUnits(t *testing.T) {
	var got storeapi.OrderRequest
	api := &mockAPI{createOrderFn: func(_ context.Context, req storeapi.OrderRequest) (storeapi.Order, error) {
		got = req
		return storeapi.Order{ID: "o1", OrderNumber: "GRC-00001", Status: "PENDING"}, nil
	}}
	s, badge := loadedSession(t, api)
	require.NoError(t, s.Decrease("i3")) // chili to 0, dropped from the order

	order, err := s.Checkout(context.Background(), " Jl. Merdeka 1 ", "ring twice")
	require.NoError(t, err)
	assert.Equal(t, "GRC-00001", order.OrderNumber)

	assert.Equal(t, []quantity.OrderLine{
		{ProductID: "p-rice", Quantity: 500},
		{ProductID: "p-eggs", Quantity: 6},
	}, got.Items)
	assert.Equal(t, "Jl. Merdeka 1", got.DeliveryAddress)
	assert.Equal(t, "ring twice", got.Notes)

	assert.Empty(t, s.Items(""))
	assert.Zero(t, badge.Count())
}

func TestCheckout_EmptyOrderMakesNoRequest(t *testing.T) {
	api := &mockAPI{createOrderFn: func(context.Context, storeapi.OrderRequest) (storeapi.Order, error) {
		t.Fatal("CreateOrder must not be called")
		return storeapi.Order{}, nil
	}}
	api.getCartFn = func(context.Context) (storeapi.Cart, error) {
		return storeapi.Cart{Items: []storeapi.CartItem{{ID: "i1", Quantity: 250, Product: rice}}}, nil
	}
	s, badge := loadedSession(t, api)
	require.NoError(t, s.Toggle("i1", quantity.Increment250g))

	_, err := s.Checkout(context.Background(), "Jl. Merdeka 1", "")
	assert.ErrorIs(t, err, quantity.ErrEmptyOrder)
	assert.Len(t, s.Items(""), 1)
	assert.Equal(t, 1, badge.Count())
}

func TestCheckout_RequiresAddress(t *testing.T) {
	s, _ := loadedSession(t, &mockAPI{})
	_, err := s.Checkout(context.Background(), "   ", "")
	assert.ErrorIs(t, err, cart.ErrNoAddress)
}

func TestCheckout_FailureKeepsCart(t *testing.T) {
	api := &mockAPI{createOrderFn: func(context.Context, storeapi.OrderRequest) (storeapi.Order, error) {
		return storeapi.Order{}, &storeapi.APIError{StatusCode: 400, Message: "product out of stock"}
	}}
	s, badge := loadedSession(t, api)

	_, err := s.Checkout(context.Background(), "Jl. Merdeka 1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product out of stock")
	assert.Len(t, s.Items(""), 3)
	assert.Equal(t, 3, badge.Count())
}

func TestClose_ClearsListButNotBadge(t *testing.T) {
	s, badge := loadedSession(t, &mockAPI{})
	s.Close()
	assert.Empty(t, s.Items(""))
	assert.Equal(t, 3, badge.Count())
}

// --- Picker ---

func TestPicker_StartingQuantity(t *testing.T) {
	weight := cart.NewPicker(&mockAPI{}, state.NewCartBadge(), quantity.Codec{}, rice)
	assert.True(t, weight.Item().Quantity.IsZero())

	piece := cart.NewPicker(&mockAPI{}, state.NewCartBadge(), quantity.Codec{}, eggs)
	assert.True(t, piece.Item().Quantity.Equal(decimal.NewFromInt(1)))
	piece.Decrease()
	assert.True(t, piece.Item().Quantity.Equal(decimal.NewFromInt(1)), "piece floor is 1")
}

func TestPicker_AddToCart(t *testing.T) {
	var gotProduct string
	var gotQty int64
	api := &mockAPI{addFn: func(_ context.Context, productID string, q int64) (storeapi.CartItem, error) {
		gotProduct, gotQty = productID, q
		return storeapi.CartItem{ID: "i9", Quantity: q, Product: rice}, nil
	}}
	badge := state.NewCartBadge()
	p := cart.NewPicker(api, badge, quantity.Codec{}, rice)

	_, err := p.AddToCart(context.Background())
	assert.ErrorIs(t, err, cart.ErrZeroQuantity)
	assert.Zero(t, badge.Count())

	p.Increase()
	it := p.Toggle(quantity.Increment500g)
	assert.True(t, it.Quantity.Equal(qty("1.5")))
	assert.True(t, it.Is500g)
	assert.True(t, p.Price().Equal(decimal.NewFromInt(22500)))

	_, err = p.AddToCart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p-rice", gotProduct)
	assert.Equal(t, int64(1500), gotQty)
	assert.True(t, badge.Has("p-rice"))
}

func TestPicker_AddToCartError(t *testing.T) {
	api := &mockAPI{addFn: func(context.Context, string, int64) (storeapi.CartItem, error) {
		return storeapi.CartItem{}, errors.New("offline")
	}}
	badge := state.NewCartBadge()
	p := cart.NewPicker(api, badge, quantity.Codec{}, eggs)

	_, err := p.AddToCart(context.Background())
	require.Error(t, err)
	assert.False(t, badge.Has("p-eggs"))
}
