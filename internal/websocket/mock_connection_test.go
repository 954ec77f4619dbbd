package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// mockConnection is an in-memory Connection. Reads block until a message is
// pushed or the connection is closed.
type mockConnection struct {
	mu       sync.Mutex
	written  []mockMessage
	incoming chan mockMessage
	closed   chan struct{}
	once     sync.Once

	writeErr error
}

type mockMessage struct {
	Type int
	Data []byte
}

func newMockConnection() *mockConnection {
	return &mockConnection{
		incoming: make(chan mockMessage, 16),
		closed:   make(chan struct{}),
	}
}

func (m *mockConnection) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.written = append(m.written, mockMessage{Type: messageType, Data: append([]byte(nil), data...)})
	return nil
}

func (m *mockConnection) ReadMessage() (int, []byte, error) {
	select {
	case msg := <-m.incoming:
		return msg.Type, msg.Data, nil
	case <-m.closed:
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
}

func (m *mockConnection) Close() error {
	m.once.Do(func() { close(m.closed) })
	return nil
}

func (m *mockConnection) SetReadDeadline(time.Time) error { return nil }
func (m *mockConnection) SetWriteDeadline(time.Time) error { return nil }
func (m *mockConnection) SetReadLimit(int64) {}
func (m *mockConnection) SetPongHandler(func(string) error) {}
func (m *mockConnection) RemoteAddr() string { return "127.0.0.1:54321" }

func (m *mockConnection) push(data string) {
	m.incoming <- mockMessage{Type: websocket.TextMessage, Data: []byte(data)}
}

// textMessages returns the payloads of the text frames written so far
func (m *mockConnection) textMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out [][]byte
	for _, msg := range m.written {
		if msg.Type == websocket.TextMessage {
			out = append(out, msg.Data)
		}
	}
	return out
}

func (m *mockConnection) sawClose() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, msg := range m.written {
		if msg.Type == websocket.CloseMessage {
			return true
		}
	}
	return false
}
