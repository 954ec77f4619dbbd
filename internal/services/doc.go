// Package services holds the application layer between the HTTP and
// WebSocket transports and the chart sessions.
//
// ChartService turns API requests into session mutations. Each mutation
// runs under the session lock, is traced with OpenTelemetry, is counted in
// the chart metrics, and publishes the resulting snapshot to the session's
// WebSocket subscribers before the lock is released:
//
//	svc := services.NewChartService(store, cfg.Chart, hub, metrics, logger)
//	snap, err := svc.UpdateDimension(ctx, id, "Speed", api.UpdateDimensionRequest{Max: &max})
//
// Errors are the session and sources sentinels wrapped with context; the
// transport maps them to problem responses.
//
// HealthService backs the health, readiness, liveness and version
// endpoints.
package services
