package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kiwari-pos/storefront/internal/quantity"
	"github.com/kiwari-pos/storefront/internal/state"
	"github.com/kiwari-pos/storefront/internal/storeapi"
	"github.com/shopspring/decimal"
)

var ErrZeroQuantity = errors.New("choose a quantity first")

// PickerAPI is satisfied by *storeapi.Client.
type PickerAPI interface {
	AddCartItem(ctx context.Context, productID string, quantity int64) (storeapi.CartItem, error)
}

// Picker is the quantity selector on the product-detail screen. It drives the
// same quantity engine as the cart screen over a single line item.
type Picker struct {
	api   PickerAPI
	badge *state.CartBadge
	codec quantity.Codec

	mu   sync.Mutex
	item quantity.LineItem
}

// NewPicker starts at 0 kg for weight products and at 1 for piece products.
func NewPicker(api PickerAPI, badge *state.CartBadge, codec quantity.Codec, product storeapi.Product) *Picker {
	start := decimal.Zero
	if !product.Unit.IsWeight() {
		start = decimal.NewFromInt(1)
	}
	return &Picker{
		api:   api,
		badge: badge,
		codec: codec,
		item:  quantity.NewLineItem(product.ID, product.Ref(), start),
	}
}

// Item returns the current selection.
func (p *Picker) Item() quantity.LineItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.item
}

func (p *Picker) Increase() quantity.LineItem {
	return p.apply(quantity.Increase)
}

func (p *Picker) Decrease() quantity.LineItem {
	return p.apply(quantity.Decrease)
}

func (p *Picker) Toggle(inc quantity.Increment) quantity.LineItem {
	return p.apply(func(items []quantity.LineItem, id string) []quantity.LineItem {
		return quantity.Toggle(items, id, inc)
	})
}

func (p *Picker) apply(fn func([]quantity.LineItem, string) []quantity.LineItem) quantity.LineItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.item = fn([]quantity.LineItem{p.item}, p.item.ID)[0]
	return p.item
}

// Price is the price of the current selection.
func (p *Picker) Price() decimal.Decimal {
	return quantity.Price(p.Item())
}

// AddToCart sends the selection to the server cart and marks the product in
// the badge.
func (p *Picker) AddToCart(ctx context.Context) (storeapi.CartItem, error) {
	it := p.Item()
	q := p.codec.ToServer(it.Product.Unit, it.Quantity)
	if q <= 0 {
		return storeapi.CartItem{}, ErrZeroQuantity
	}
	added, err := p.api.AddCartItem(ctx, it.Product.ID, q)
	if err != nil {
		return storeapi.CartItem{}, fmt.Errorf("add to cart: %w", err)
	}
	p.badge.Add(it.Product.ID)
	return added, nil
}
