package websocket

import (
	"sync"
	"time"
)

// Metrics tracks connection and delivery counters for one hub. The
// OpenTelemetry client gauge lives in infrastructure.ChartMetrics; these
// counters feed the health endpoint.
type Metrics struct {
	mu sync.RWMutex

	// Connection metrics
	TotalConnections  int64
	ActiveConnections int64
	MaxConcurrent     int64
	AvgConnectionTime time.Duration

	// Message metrics
	MessagesSent     int64
	MessagesReceived int64
	BytesSent        int64
	BytesReceived    int64
	DroppedMessages  int64
	SlowClients      int64

	LastReset       time.Time
	connectionTimes []time.Duration
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		LastReset:       time.Now(),
		connectionTimes: make([]time.Duration, 0, 100),
	}
}

// RecordConnection records a new connection
func (m *Metrics) RecordConnection() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalConnections++
	m.ActiveConnections++

	if m.ActiveConnections > m.MaxConcurrent {
		m.MaxConcurrent = m.ActiveConnections
	}
}

// RecordDisconnection records a disconnection and folds its duration into
// the average over the last 100 connections
func (m *Metrics) RecordDisconnection(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ActiveConnections--

	m.connectionTimes = append(m.connectionTimes, duration)
	if len(m.connectionTimes) > 100 {
		m.connectionTimes = m.connectionTimes[1:]
	}

	var total time.Duration
	for _, d := range m.connectionTimes {
		total += d
	}
	m.AvgConnectionTime = total / time.Duration(len(m.connectionTimes))
}

// RecordSent records a message delivered to a client queue
func (m *Metrics) RecordSent(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.MessagesSent++
	m.BytesSent += int64(size)
}

// RecordReceived records a message read from a client
func (m *Metrics) RecordReceived(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.MessagesReceived++
	m.BytesReceived += int64(size)
}

// RecordDropped records a message that could not be queued
func (m *Metrics) RecordDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DroppedMessages++
}

// RecordSlowClient records a client disconnected for a full send buffer
func (m *Metrics) RecordSlowClient() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SlowClients++
}

// GetSnapshot returns a snapshot of current metrics
func (m *Metrics) GetSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"connections": map[string]interface{}{
			"total":           m.TotalConnections,
			"active":          m.ActiveConnections,
			"max_concurrent":  m.MaxConcurrent,
			"avg_duration_ms": m.AvgConnectionTime.Milliseconds(),
			"slow_clients":    m.SlowClients,
		},
		"messages": map[string]interface{}{
			"sent":           m.MessagesSent,
			"received":       m.MessagesReceived,
			"bytes_sent":     m.BytesSent,
			"bytes_received": m.BytesReceived,
			"dropped":        m.DroppedMessages,
		},
		"uptime_seconds": time.Since(m.LastReset).Seconds(),
	}
}

// Reset resets all metrics
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalConnections = 0
	m.ActiveConnections = 0
	m.MaxConcurrent = 0
	m.AvgConnectionTime = 0
	m.MessagesSent = 0
	m.MessagesReceived = 0
	m.BytesSent = 0
	m.BytesReceived = 0
	m.DroppedMessages = 0
	m.SlowClients = 0
	m.LastReset = time.Now()
	m.connectionTimes = make([]time.Duration, 0, 100)
}
