package ws

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/kiwari-pos/storefront/internal/auth"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must stay below pongWait
	maxMessageSize = 512
	sendBuffer     = 64
)

// Client is one order-stream connection of a signed-in user. The stream is
// one-way: the server pushes order events and only reads control frames.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uuid.UUID
	send   chan []byte
}

// Handler serves GET /ws/orders?token=JWT. The token is passed in the query
// because browsers cannot set headers on a websocket handshake. Connections
// carrying an Origin header must come from allowedOrigins ("*" allows any);
// clients that send none, like the CLI, are let through.
func (h *Hub) Handler(jwtSecret string, allowedOrigins []string) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		claims, err := auth.ValidateToken(jwtSecret, token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("order stream upgrade", zap.Error(err))
			return
		}

		c := &Client{
			hub:    h,
			conn:   conn,
			userID: claims.UserID,
			send:   make(chan []byte, sendBuffer),
		}
		if !h.join(c) {
			conn.Close()
			return
		}
		h.logger.Debug("order stream opened", zap.String("user_id", c.userID.String()))

		go c.writeLoop()
		go c.readLoop()
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(strings.TrimSpace(o), "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set["*"] || set[origin]
	}
}

// readLoop drains control frames until the peer goes away, then leaves the hub.
func (c *Client) readLoop() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
		c.hub.logger.Debug("order stream closed", zap.String("user_id", c.userID.String()))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("order stream read", zap.Error(err))
			}
			return
		}
	}
}

// writeLoop sends queued events and keepalive pings. Events that queued up
// while a frame was being written go out in the same frame, one per line.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "")) //nolint:errcheck
				return
			}
			frame := msg
			if n := len(c.send); n > 0 {
				// msg is shared with the user's other connections.
				frame = append([]byte(nil), msg...)
				for ; n > 0; n-- {
					frame = append(append(frame, '\n'), <-c.send...)
				}
			}
			if err := c.write(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
	return c.conn.WriteMessage(messageType, data)
}
