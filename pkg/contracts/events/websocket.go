// Package events contains the WebSocket event contracts pushed to chart
// subscribers.
package events

import (
	"time"
)

// ProtocolVersion is sent in the connect event
const ProtocolVersion = "1.0"

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeSessionSnapshot carries the full render contract after a
	// mutation. It is the only event a renderer needs.
	MessageTypeSessionSnapshot MessageType = "session:snapshot"

	// MessageTypeSessionDeleted tells subscribers their session is gone.
	// The server closes the connection right after.
	MessageTypeSessionDeleted MessageType = "session:deleted"

	// Connection messages
	MessageTypeConnect MessageType = "connect"
	MessageTypeError   MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	SessionID string      `json:"session_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// ConnectPayload is the data of the connect event
type ConnectPayload struct {
	ClientID        string `json:"client_id"`
	SessionID       string `json:"session_id"`
	ProtocolVersion string `json:"protocol_version"`
}

// SessionDeletedPayload is the data of the session:deleted event
type SessionDeletedPayload struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"` // deleted or expired
}

// ErrorPayload is the data of the error event
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewMessage builds a message stamped with the current time
func NewMessage(msgType MessageType, sessionID string, data interface{}) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			Type:      msgType,
			Timestamp: time.Now().UTC(),
		},
		SessionID: sessionID,
		Data:      data,
	}
}
