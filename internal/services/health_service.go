package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"radarcli/pkg/contracts"
)

// SessionCounter reports the number of live chart sessions
type SessionCounter interface {
	SessionCount() int
}

// HubStats reports WebSocket hub state
type HubStats interface {
	ClientCount() int
	GetHubMetrics() map[string]interface{}
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	sessions  SessionCounter
	hub       HubStats
	startTime time.Time
	draining  atomic.Bool
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// SystemStats represents system statistics
type SystemStats struct {
	UptimeSeconds    float64 `json:"uptime_seconds"`
	Sessions         int     `json:"sessions"`
	WebSocketClients int     `json:"websocket_clients"`
	Goroutines       int     `json:"goroutines"`
	HeapAllocBytes   uint64  `json:"heap_alloc_bytes"`
	GoVersion        string  `json:"go_version"`
	OS               string  `json:"os"`
	Arch             string  `json:"arch"`
}

// NewHealthService creates a new health service. hub may be nil when the
// WebSocket endpoint is not mounted.
func NewHealthService(sessions SessionCounter, hub HubStats, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "health_service"))
	logger.Info("health service initialized", slog.String("version", contracts.Version))

	return &HealthService{
		version:   contracts.Version,
		sessions:  sessions,
		hub:       hub,
		startTime: time.Now(),
		logger:    logger,
	}
}

// SetDraining marks the service as shutting down. Readiness fails from then
// on so load balancers stop routing new sessions here.
func (hs *HealthService) SetDraining(draining bool) {
	hs.draining.Store(draining)
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "performing health check",
		slog.Duration("uptime", time.Since(hs.startTime)))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck returns readiness status
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]interface{}{
			"sessions":  hs.checkSessionHealth(),
			"websocket": hs.checkWebSocketHealth(),
		},
	}

	allReady := !hs.draining.Load()
	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			allReady = false
			break
		}
	}

	if !allReady {
		status.Status = "not_ready"
		hs.logger.WarnContext(ctx, "readiness check failed",
			slog.Bool("draining", hs.draining.Load()))
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":         info.Version,
		"build_time":      info.BuildTime,
		"git_commit":      info.GitCommit,
		"go_version":      info.GoVersion,
		"os":              info.OS,
		"arch":            info.Architecture,
		"api_version":     info.APIVersion,
		"snapshot_format": info.SnapshotFormat,
		"uptime":          time.Since(hs.startTime).Seconds(),
		"start_time":      hs.startTime.Format(time.RFC3339),
	}
}

// SystemStats returns system statistics
func (hs *HealthService) SystemStats(ctx context.Context) SystemStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := SystemStats{
		UptimeSeconds:  time.Since(hs.startTime).Seconds(),
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: mem.HeapAlloc,
		GoVersion:      runtime.Version(),
		OS:             runtime.GOOS,
		Arch:           runtime.GOARCH,
	}
	if hs.sessions != nil {
		stats.Sessions = hs.sessions.SessionCount()
	}
	if hs.hub != nil {
		stats.WebSocketClients = hs.hub.ClientCount()
	}
	return stats
}

func (hs *HealthService) checkSessionHealth() ServiceHealth {
	if hs.sessions == nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "session store not initialized",
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d live sessions", hs.sessions.SessionCount()),
	}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.hub == nil {
		return ServiceHealth{
			Status:  "ready",
			Message: "websocket disabled",
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d connected clients", hs.hub.ClientCount()),
		Uptime:  time.Since(hs.startTime).String(),
	}
}

// GetDetailedHealth returns comprehensive health information
func (hs *HealthService) GetDetailedHealth(ctx context.Context) map[string]interface{} {
	detailed := map[string]interface{}{
		"health":    hs.HealthCheck(ctx),
		"readiness": hs.ReadinessCheck(ctx),
		"liveness":  hs.LivenessCheck(ctx),
		"stats":     hs.SystemStats(ctx),
	}
	if hs.hub != nil {
		detailed["websocket"] = hs.hub.GetHubMetrics()
	}
	return detailed
}
