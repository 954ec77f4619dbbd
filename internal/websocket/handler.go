package websocket

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"radarcli/internal/config"
	apierrors "radarcli/internal/errors"
	"radarcli/internal/infrastructure"
	"radarcli/internal/session"
	"radarcli/pkg/contracts/events"
)

// SnapshotSource returns the current render contract of a session
type SnapshotSource interface {
	GetSnapshot(ctx context.Context, id string) (session.Snapshot, error)
}

// Handler upgrades /ws?session={id} requests and subscribes the connection
// to that session. The first frames are a connect event and the current
// snapshot; every later mutation arrives as a session:snapshot event.
type Handler struct {
	hub          *Hub
	source       SnapshotSource
	upgrader     websocket.Upgrader
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewHandler creates the upgrade handler. Origins are checked against
// allowedOrigins; "*" allows any origin and requests without an Origin
// header are always accepted.
func NewHandler(hub *Hub, source SnapshotSource, cfg config.WebSocketConfig, allowedOrigins []string, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *Handler {
	logger = logger.With(slog.String("component", "websocket.handler"))

	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	h := &Handler{
		hub:          hub,
		source:       source,
		errorHandler: errorHandler,
		logger:       logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowed["*"] || allowed[origin] {
				return true
			}
			logger.WarnContext(r.Context(), "websocket origin not allowed",
				slog.String("origin", origin))
			return false
		},
	}
	return h
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("session", "session query parameter is required"))
		return
	}

	snapshot, err := h.source.GetSnapshot(ctx, sessionID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already answered the request
		h.logger.WarnContext(ctx, "websocket upgrade failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		return
	}

	client := NewClientWithTrace(h.hub, NewConnectionWrapper(conn), sessionID, infrastructure.GetTraceID(ctx), h.logger)

	connect := events.NewMessage(events.MessageTypeConnect, sessionID, events.ConnectPayload{
		ClientID:        client.id,
		SessionID:       sessionID,
		ProtocolVersion: events.ProtocolVersion,
	})
	if err := client.enqueue(connect); err != nil {
		h.logger.ErrorContext(ctx, "failed to queue connect event", slog.String("error", err.Error()))
	}
	if err := client.enqueue(events.NewMessage(events.MessageTypeSessionSnapshot, sessionID, snapshot)); err != nil {
		h.logger.ErrorContext(ctx, "failed to queue initial snapshot", slog.String("error", err.Error()))
	}

	if !h.hub.Register(client) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
