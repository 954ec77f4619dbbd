// Package app wires the radar chart server together and owns its lifecycle.
//
// New builds every component from a *config.Config: telemetry providers and
// chart metrics, the session store, the WebSocket hub, the chart and health
// services, the chi router and the HTTP server. Nothing runs until Run.
//
// # Routes
//
//	/ws         WebSocket subscription to one session's snapshots
//	/metrics    Prometheus exposition
//	/api/...    health, version and the session API
//
// The /api tree is wrapped in tracing, request logging, panic recovery,
// security headers, CORS, rate limiting and compression. /ws only carries
// the request id and trace middleware because the upgrade hijacks the
// connection.
//
// # Lifecycle
//
// Run starts the hub, the HTTP server and the session sweeper under one
// errgroup and returns when ctx is cancelled or any of them fails:
//
//	app, err := app.NewApplication()
//	if err != nil {
//		return err
//	}
//	return app.Run(ctx)
//
// Stop marks readiness as failing, shuts the server down within the
// configured timeout, closes WebSocket clients and flushes telemetry.
package app
