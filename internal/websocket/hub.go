package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"radarcli/internal/config"
	"radarcli/internal/infrastructure"
	"radarcli/pkg/contracts/events"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Capacity of each client's outbound queue
	sendBufferSize = 64

	broadcastBufferSize = 256
)

// outbound is a message addressed to the subscribers of one session
type outbound struct {
	sessionID string
	data      []byte
	// closeAfter disconnects the subscribers once data is queued
	closeAfter bool
}

// Hub tracks the WebSocket clients of every chart session and fans session
// events out to the clients subscribed to that session.
type Hub struct {
	// Subscribed clients by session id
	sessions map[string]map[*Client]bool

	// Outbound session events
	broadcast chan outbound

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu sync.RWMutex

	logger  *slog.Logger
	metrics *infrastructure.ChartMetrics
	stats   *Metrics

	pingPeriod time.Duration
	pongWait   time.Duration

	quit    chan struct{}
	done    chan struct{}
	running bool
	stopped bool
}

// NewHub creates a new Hub. metrics may be nil; zero durations in cfg fall
// back to the config defaults.
func NewHub(cfg config.WebSocketConfig, metrics *infrastructure.ChartMetrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	pongWait := cfg.PongWait
	if pongWait <= 0 {
		pongWait = config.WebSocketPongWait
	}
	pingPeriod := cfg.PingPeriod
	if pingPeriod <= 0 || pingPeriod >= pongWait {
		// Pings must arrive before the peer's read deadline
		pingPeriod = (pongWait * 9) / 10
	}

	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan outbound, broadcastBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
		stats:      NewMetrics(),
		pingPeriod: pingPeriod,
		pongWait:   pongWait,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start starts the hub loop. A stopped hub cannot be restarted.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running || h.stopped {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run is the hub's main loop. It owns every client's send channel: only
// this goroutine closes them.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.quit:
			h.closeAll()
			h.logger.Info("hub shutting down")
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client, "closed")

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	subs, ok := h.sessions[client.sessionID]
	if !ok {
		subs = make(map[*Client]bool)
		h.sessions[client.sessionID] = subs
	}
	subs[client] = true
	count := len(subs)
	h.mu.Unlock()

	ctx := client.context()
	h.stats.RecordConnection()
	infrastructure.RecordWebSocketClientChange(ctx, h.metrics, 1)

	h.logger.InfoContext(ctx, "client registered",
		slog.String("client_id", client.id),
		slog.String("session_id", client.sessionID),
		slog.Int("session_clients", count),
		slog.String("remote_addr", client.remoteAddr))
}

// removeClient drops client and closes its send channel. It is a no-op for
// clients the hub no longer holds.
func (h *Hub) removeClient(client *Client, reason string) {
	h.mu.Lock()
	subs := h.sessions[client.sessionID]
	if !subs[client] {
		h.mu.Unlock()
		return
	}
	delete(subs, client)
	if len(subs) == 0 {
		delete(h.sessions, client.sessionID)
	}
	h.mu.Unlock()

	close(client.send)

	ctx := client.context()
	h.stats.RecordDisconnection(time.Since(client.connectedAt))
	infrastructure.RecordWebSocketClientChange(ctx, h.metrics, -1)

	h.logger.InfoContext(ctx, "client unregistered",
		slog.String("client_id", client.id),
		slog.String("session_id", client.sessionID),
		slog.String("reason", reason),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
}

func (h *Hub) deliver(msg outbound) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.sessions[msg.sessionID]))
	for client := range h.sessions[msg.sessionID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- msg.data:
			h.stats.RecordSent(len(msg.data))
		default:
			h.stats.RecordSlowClient()
			h.logger.WarnContext(client.context(), "client send buffer full, disconnecting",
				slog.String("client_id", client.id))
			h.removeClient(client, "slow")
			continue
		}
		if msg.closeAfter {
			h.removeClient(client, "session closed")
		}
	}

	h.logger.Debug("session event delivered",
		slog.String("session_id", msg.sessionID),
		slog.Int("client_count", len(clients)),
		slog.Int("message_size", len(msg.data)))
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	var clients []*Client
	for _, subs := range h.sessions {
		for client := range subs {
			clients = append(clients, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.removeClient(client, "shutdown")
	}
}

// Register adds a client to the hub. It returns false once the hub has
// stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// PublishSnapshot pushes a session:snapshot event to the subscribers of
// sessionID
func (h *Hub) PublishSnapshot(ctx context.Context, sessionID string, snapshot interface{}) {
	h.publish(ctx, events.NewMessage(events.MessageTypeSessionSnapshot, sessionID, snapshot), false)
}

// PublishDeleted tells the subscribers of sessionID that it is gone and
// disconnects them. Unlike snapshots it is never dropped on a full queue;
// it waits until the hub takes it, stops, or ctx is done.
func (h *Hub) PublishDeleted(ctx context.Context, sessionID, reason string) {
	msg := events.NewMessage(events.MessageTypeSessionDeleted, sessionID, events.SessionDeletedPayload{
		SessionID: sessionID,
		Reason:    reason,
	})
	h.publish(ctx, msg, true)
}

func (h *Hub) publish(ctx context.Context, msg events.WebSocketMessage, closeAfter bool) {
	msg.TraceID = infrastructure.GetTraceID(ctx)

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to marshal session event",
			slog.String("type", string(msg.Type)),
			slog.String("error", err.Error()))
		return
	}

	out := outbound{sessionID: msg.SessionID, data: data, closeAfter: closeAfter}

	h.mu.RLock()
	running := h.running
	h.mu.RUnlock()

	// Deletions wait for queue space instead of being dropped. A hub that
	// is not running has no subscribers to disconnect.
	if closeAfter && running {
		select {
		case h.broadcast <- out:
		case <-h.quit:
		case <-ctx.Done():
			h.logger.WarnContext(ctx, "session deletion not delivered",
				slog.String("session_id", msg.SessionID),
				slog.String("error", ctx.Err().Error()))
		}
		return
	}

	select {
	case h.broadcast <- out:
	case <-h.quit:
	default:
		h.stats.RecordDropped()
		h.logger.WarnContext(ctx, "broadcast queue full, dropping session event",
			slog.String("type", string(msg.Type)),
			slog.String("session_id", msg.SessionID))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, subs := range h.sessions {
		count += len(subs)
	}
	return count
}

// SessionClientCount returns the number of clients subscribed to sessionID
func (h *Hub) SessionClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// Stop disconnects every client and waits for the hub loop to exit
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.stopped = true
	h.mu.Unlock()

	close(h.quit)
	<-h.done
}

// GetHubMetrics returns current hub metrics
func (h *Hub) GetHubMetrics() map[string]interface{} {
	snapshot := h.stats.GetSnapshot()

	h.mu.RLock()
	snapshot["sessions"] = len(h.sessions)
	h.mu.RUnlock()

	snapshot["active_clients"] = h.ClientCount()
	return snapshot
}
