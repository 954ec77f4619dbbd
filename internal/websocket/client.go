package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"radarcli/internal/infrastructure"
	"radarcli/pkg/contracts/events"
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}

	heartbeat = []byte(`{"type":"heartbeat"}`)
)

// Client is a middleman between one websocket connection subscribed to a
// chart session and the hub
type Client struct {
	hub *Hub

	// The websocket connection
	conn Connection

	// Buffered channel of outbound messages. Closed by the hub.
	send chan []byte

	id          string
	sessionID   string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	logger *slog.Logger
}

// NewClient creates a client of hub subscribed to sessionID
func NewClient(hub *Hub, conn Connection, sessionID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = hub.logger
	}

	id := uuid.NewString()
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		id:          id,
		sessionID:   sessionID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		logger: logger.With(
			slog.String("component", "websocket.client"),
			slog.String("client_id", id),
			slog.String("session_id", sessionID),
		),
	}
}

// NewClientWithTrace creates a client whose log records carry traceID
func NewClientWithTrace(hub *Hub, conn Connection, sessionID, traceID string, logger *slog.Logger) *Client {
	client := NewClient(hub, conn, sessionID, logger)
	client.traceID = traceID
	return client
}

// ID returns the client id
func (c *Client) ID() string { return c.id }

// SessionID returns the session the client follows
func (c *Client) SessionID() string { return c.sessionID }

func (c *Client) context() context.Context {
	ctx := context.Background()
	if c.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, c.traceID)
	}
	return ctx
}

// enqueue queues msg ahead of hub traffic. It must be called before the
// client is registered, while nothing else writes to send.
func (c *Client) enqueue(msg events.WebSocketMessage) error {
	msg.TraceID = c.traceID
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.send <- data
	return nil
}

// ReadPump pumps messages from the websocket connection until it fails.
// Clients only send heartbeats; anything else is logged and ignored.
func (c *Client) ReadPump() {
	ctx := c.context()
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
		c.logger.DebugContext(ctx, "read pump stopped",
			slog.Duration("connection_duration", time.Since(c.connectedAt)))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.hub.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WarnContext(ctx, "unexpected websocket close",
					slog.String("error", err.Error()))
			}
			return
		}
		message = bytes.TrimSpace(bytes.Replace(message, newline, space, -1))
		c.hub.stats.RecordReceived(len(message))

		if bytes.Equal(message, heartbeat) {
			c.conn.SetReadDeadline(time.Now().Add(c.hub.pongWait))
			continue
		}
		c.logger.DebugContext(ctx, "ignoring client message",
			slog.Int("size", len(message)))
	}
}

// WritePump pumps messages from the hub to the websocket connection and
// keeps it alive with pings
func (c *Client) WritePump() {
	ctx := c.context()
	ticker := time.NewTicker(c.hub.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.logger.DebugContext(ctx, "write pump stopped")
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// Each event is its own frame so clients can parse them one by one
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.WarnContext(ctx, "failed to write message",
					slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(ctx, "failed to send ping",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}
