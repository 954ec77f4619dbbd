package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "radarcli"
	AppVersion = "1.0.0"

	// Environment variable prefix (RADAR_SERVER_PORT, RADAR_CHART_PALETTE, ...)
	EnvPrefix = "RADAR"

	// Chart defaults
	DefaultPalette    = "Set1"
	DefaultGridRadius = 100.0
	DefaultMaxTicks   = 5

	// Session lifetime
	DefaultSessionTTL    = 2 * time.Hour
	DefaultSweepInterval = 5 * time.Minute
	DefaultMaxBodyBytes  = 1 << 20 // 1MB

	// Network Timeouts
	DefaultRequestTimeout = 30 * time.Second
	WebSocketPingPeriod   = 30 * time.Second
	WebSocketPongWait     = 60 * time.Second

	// WebSocket Buffer Sizes
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogFile   = "logs/radar.log"
)

// API paths
const (
	APIBasePath       = "/api"
	HealthEndpoint    = "/api/health"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)
