package storeapi

import (
	"context"
	"net/url"
)

type addCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

func (c *Client) GetCart(ctx context.Context) (Cart, error) {
	var cart Cart
	err := c.get(ctx, "/api/cart", nil, &cart)
	return cart, err
}

// AddCartItem adds quantity (server units) of a product. The server merges it
// into an existing line for the same product.
func (c *Client) AddCartItem(ctx context.Context, productID string, quantity int64) (CartItem, error) {
	var item CartItem
	err := c.post(ctx, "/api/cart/items", addCartItemRequest{ProductID: productID, Quantity: quantity}, &item)
	return item, err
}

func (c *Client) UpdateCartItem(ctx context.Context, itemID string, quantity int64) (CartItem, error) {
	var item CartItem
	err := c.put(ctx, "/api/cart/items/"+url.PathEscape(itemID), updateCartItemRequest{Quantity: quantity}, &item)
	return item, err
}

func (c *Client) RemoveCartItem(ctx context.Context, itemID string) error {
	return c.delete(ctx, "/api/cart/items/"+url.PathEscape(itemID))
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.delete(ctx, "/api/cart")
}
