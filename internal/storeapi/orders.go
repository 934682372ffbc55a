package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// EventOrderUpdated is the only event type the order stream carries.
const EventOrderUpdated = "order.updated"

func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (Order, error) {
	var o Order
	err := c.post(ctx, "/api/orders", req, &o)
	return o, err
}

// ListOrders returns the caller's orders, newest first.
func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var out []Order
	err := c.get(ctx, "/api/orders", nil, &out)
	return out, err
}

func (c *Client) GetOrder(ctx context.Context, id string) (Order, error) {
	var o Order
	err := c.get(ctx, "/api/orders/"+url.PathEscape(id), nil, &o)
	return o, err
}

// WatchOrders subscribes to status changes of the caller's orders and calls fn
// for each event until ctx is done or the server closes the stream. It returns
// ctx.Err() on cancellation and nil on a clean close.
func (c *Client) WatchOrders(ctx context.Context, fn func(OrderEvent)) error {
	token := c.token()
	if token == "" {
		return &APIError{StatusCode: http.StatusUnauthorized, Message: "not signed in"}
	}

	u := *c.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/orders"
	u.RawQuery = url.Values{"token": {token}}.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			c.clearCredentials()
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("storeapi: dial order stream: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived) {
				return nil
			}
			return fmt.Errorf("storeapi: read order stream: %w", err)
		}

		// The server may coalesce queued events into one frame, newline separated.
		for _, line := range bytes.Split(msg, []byte{'\n'}) {
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			var ev OrderEvent
			if err := json.Unmarshal(line, &ev); err != nil {
				c.logger.Warn("skip malformed order event", zap.Error(err))
				continue
			}
			fn(ev)
		}
	}
}

// IsStreamClosed reports whether err means the order stream ended without
// fault.
func IsStreamClosed(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}
