// Package cart holds the cart-screen and product-detail controllers. Both drive
// the quantity engine locally and only talk to the API on fetch, remove,
// add and checkout.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kiwari-pos/storefront/internal/quantity"
	"github.com/kiwari-pos/storefront/internal/state"
	"github.com/kiwari-pos/storefront/internal/storeapi"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrItemNotFound = errors.New("cart item not found")
	ErrNoAddress    = errors.New("delivery address is required")
)

// SessionAPI is the slice of the storefront API the cart screen needs.
// Satisfied by *storeapi.Client; narrow interface for testability.
type SessionAPI interface {
	GetCart(ctx context.Context) (storeapi.Cart, error)
	RemoveCartItem(ctx context.Context, itemID string) error
	CreateOrder(ctx context.Context, req storeapi.OrderRequest) (storeapi.Order, error)
}

// Session is the in-memory cart list behind the cart screen. Quantity edits
// are local until Checkout. Safe for concurrent use.
type Session struct {
	api    SessionAPI
	badge  *state.CartBadge
	codec  quantity.Codec
	logger *zap.Logger

	mu    sync.Mutex
	items []quantity.LineItem
	// issued counts started refreshes; applied is the newest generation whose
	// result (or a local change that supersedes it) is on screen.
	issued  uint64
	applied uint64
}

func NewSession(api SessionAPI, badge *state.CartBadge, codec quantity.Codec, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{api: api, badge: badge, codec: codec, logger: logger}
}

// Refresh fetches the cart and replaces the list. A response that arrives
// after a newer refresh, a local edit, a removal or a checkout has been
// applied is dropped.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.issued++
	gen := s.issued
	s.mu.Unlock()

	cart, err := s.api.GetCart(ctx)
	if err != nil {
		return fmt.Errorf("fetch cart: %w", err)
	}

	items := make([]quantity.LineItem, 0, len(cart.Items))
	ids := make([]string, 0, len(cart.Items))
	for _, rec := range cart.Items {
		if _, err := quantity.ParseUnit(string(rec.Product.Unit)); err != nil {
			s.logger.Warn("cart item with unknown unit",
				zap.String("item_id", rec.ID),
				zap.String("unit", string(rec.Product.Unit)))
		}
		q := s.codec.FromServer(rec.Product.Unit, rec.Quantity)
		items = append(items, quantity.NewLineItem(rec.ID, rec.Product.Ref(), q))
		ids = append(ids, rec.Product.ID)
	}

	s.mu.Lock()
	if gen <= s.applied {
		s.mu.Unlock()
		s.logger.Debug("discard stale cart response", zap.Uint64("generation", gen))
		return nil
	}
	s.applied = gen
	s.items = items
	s.mu.Unlock()

	s.badge.Reset(ids)
	return nil
}

// Items returns the visible items: those whose product name contains search,
// case-insensitively. An empty search returns everything.
func (s *Session) Items(search string) []quantity.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.items, search)
}

func filter(items []quantity.LineItem, search string) []quantity.LineItem {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]quantity.LineItem, 0, len(items))
	for _, it := range items {
		if needle == "" || strings.Contains(strings.ToLower(it.Product.Name), needle) {
			out = append(out, it)
		}
	}
	return out
}

// Total is the sum of line prices over the visible items.
func (s *Session) Total(search string) decimal.Decimal {
	return quantity.Total(s.Items(search), nil)
}

func (s *Session) Increase(id string) error {
	return s.mutate(id, quantity.Increase)
}

func (s *Session) Decrease(id string) error {
	return s.mutate(id, quantity.Decrease)
}

// Toggle applies a 250g/500g shortcut to a weight item.
func (s *Session) Toggle(id string, inc quantity.Increment) error {
	return s.mutate(id, func(items []quantity.LineItem, id string) []quantity.LineItem {
		return quantity.Toggle(items, id, inc)
	})
}

func (s *Session) mutate(id string, fn func([]quantity.LineItem, string) []quantity.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.items, id) < 0 {
		return ErrItemNotFound
	}
	s.items = fn(s.items, id)
	s.applied = s.issued
	return nil
}

// Remove drops the item locally and from the badge, then deletes it on the
// server. If the delete fails the item goes back where it was.
func (s *Session) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := indexOf(s.items, id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrItemNotFound
	}
	removed := s.items[idx]
	next := make([]quantity.LineItem, 0, len(s.items)-1)
	next = append(next, s.items[:idx]...)
	s.items = append(next, s.items[idx+1:]...)
	s.applied = s.issued
	s.mu.Unlock()

	s.badge.Remove(removed.Product.ID)

	if err := s.api.RemoveCartItem(ctx, id); err != nil {
		s.mu.Lock()
		// A refresh applied while the delete was in flight already carries
		// the server's copy of the line.
		if indexOf(s.items, id) < 0 {
			pos := idx
			if pos > len(s.items) {
				pos = len(s.items)
			}
			restored := make([]quantity.LineItem, 0, len(s.items)+1)
			restored = append(restored, s.items[:pos]...)
			restored = append(restored, removed)
			s.items = append(restored, s.items[pos:]...)
		}
		s.mu.Unlock()

		s.badge.Add(removed.Product.ID)
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

// Checkout places an order for every item with a positive quantity. Nothing
// is sent when no such item exists. On success the list and badge are cleared.
func (s *Session) Checkout(ctx context.Context, address, notes string) (storeapi.Order, error) {
	s.mu.Lock()
	items := s.items
	s.mu.Unlock()

	lines, err := s.codec.OrderLines(items)
	if err != nil {
		return storeapi.Order{}, err
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return storeapi.Order{}, ErrNoAddress
	}

	order, err := s.api.CreateOrder(ctx, storeapi.OrderRequest{
		Items:           lines,
		DeliveryAddress: address,
		Notes:           strings.TrimSpace(notes),
	})
	if err != nil {
		return storeapi.Order{}, fmt.Errorf("place order: %w", err)
	}

	s.reset()
	s.logger.Info("order placed",
		zap.String("order_number", order.OrderNumber),
		zap.Int("lines", len(lines)))
	return order, nil
}

// Close clears the in-memory list when the screen goes away. The badge keeps
// reflecting the server cart.
func (s *Session) Close() {
	s.mu.Lock()
	s.items = nil
	s.applied = s.issued
	s.mu.Unlock()
}

func (s *Session) reset() {
	s.mu.Lock()
	s.items = nil
	s.applied = s.issued
	s.mu.Unlock()
	s.badge.Clear()
}

func indexOf(items []quantity.LineItem, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
