package state

import (
	"sort"
	"sync"
)

// CartBadge tracks which products are in the cart for the tab badge and the
// "in cart" markers on product cards. It is not persisted.
type CartBadge struct {
	mu  sync.RWMutex
	ids map[string]struct{}

	subs observers[int]
}

// NewCartBadge creates an empty badge.
func NewCartBadge() *CartBadge {
	return &CartBadge{ids: make(map[string]struct{})}
}

// Reset replaces the product set, typically after a cart fetch.
func (b *CartBadge) Reset(productIDs []string) {
	b.mu.Lock()
	b.ids = make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		b.ids[id] = struct{}{}
	}
	n := len(b.ids)
	b.mu.Unlock()

	b.subs.notify(n)
}

// Add marks a product as in the cart.
func (b *CartBadge) Add(productID string) {
	b.mu.Lock()
	_, had := b.ids[productID]
	b.ids[productID] = struct{}{}
	n := len(b.ids)
	b.mu.Unlock()

	if !had {
		b.subs.notify(n)
	}
}

// Remove unmarks a product.
func (b *CartBadge) Remove(productID string) {
	b.mu.Lock()
	_, had := b.ids[productID]
	delete(b.ids, productID)
	n := len(b.ids)
	b.mu.Unlock()

	if had {
		b.subs.notify(n)
	}
}

// Clear empties the badge.
func (b *CartBadge) Clear() {
	b.Reset(nil)
}

// Count is the number of distinct products in the cart.
func (b *CartBadge) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.ids)
}

// Has reports whether productID is in the cart.
func (b *CartBadge) Has(productID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.ids[productID]
	return ok
}

// ProductIDs returns the product set in sorted order.
func (b *CartBadge) ProductIDs() []string {
	b.mu.RLock()
	ids := make([]string, 0, len(b.ids))
	for id := range b.ids {
		ids = append(ids, id)
	}
	b.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Subscribe registers fn to receive the new count after every change.
func (b *CartBadge) Subscribe(fn func(count int)) (unsubscribe func()) {
	return b.subs.subscribe(fn)
}
