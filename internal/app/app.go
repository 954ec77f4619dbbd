package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"radarcli/internal/config"
	apierrors "radarcli/internal/errors"
	"radarcli/internal/infrastructure"
	customMiddleware "radarcli/internal/middleware"
	"radarcli/internal/services"
	"radarcli/internal/session"
	handlers "radarcli/internal/transport/http"
	ws "radarcli/internal/websocket"
	"radarcli/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Store         *session.Store
	ChartService  *services.ChartService
	HealthService *services.HealthService
	WebSocketHub  *ws.Hub
	ErrorHandler  *apierrors.ErrorHandler
	Metrics       *infrastructure.ChartMetrics
	OTelProviders *infrastructure.OTelProviders
	Logger        *slog.Logger
}

// NewApplication loads the configuration and logger from the environment
// and wires the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires every component for cfg. Nothing is started until Run.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.GetVersionString()),
		slog.String("addr", cfg.Server.Addr()))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateChartMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	app.initializeServices()

	if err := app.setupRouter(); err != nil {
		return nil, err
	}

	app.createServer()
	return app, nil
}

// initializeServices creates the session store, the hub and the services
// over them
func (a *Application) initializeServices() {
	a.Store = session.NewStore(a.Logger)
	a.WebSocketHub = ws.NewHub(a.Config.WebSocket, a.Metrics, a.Logger)
	a.ChartService = services.NewChartService(a.Store, a.Config.Chart, a.WebSocketHub, a.Metrics, a.Logger)
	a.HealthService = services.NewHealthService(a.ChartService, a.WebSocketHub, a.Logger)
}

// setupRouter builds the route tree. The WebSocket endpoint sits outside the
// instrumented group: the OTel and compression wrappers cannot hijack.
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	wsHandler := ws.NewHandler(a.WebSocketHub, a.ChartService, a.Config.WebSocket,
		a.allowedOrigins(), a.ErrorHandler, a.Logger)
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).
		Handle(config.WebSocketEndpoint, wsHandler)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)
	}

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		return fmt.Errorf("failed to create OpenTelemetry middleware: %w", err)
	}

	validation := customMiddleware.NewValidationMiddleware(a.Logger, a.ErrorHandler, a.Config.Sessions.MaxBodyBytes)

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → the rest
		r.Use(otelMiddleware.Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.CORS(a.corsConfig()))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.Use(customMiddleware.Compress(5))

		r.Route(config.APIBasePath, func(r chi.Router) {
			r.Use(validation.ValidateRequest)
			if a.Config.Server.RequestTimeout > 0 {
				r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
			}

			healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
			r.Mount("/health", healthHandler.Routes())
			r.Get("/version", healthHandler.Version)

			chartHandler := handlers.NewChartHandler(a.ChartService, validation, a.ErrorHandler, a.Logger)
			r.Mount("/sessions", chartHandler.Routes())
		})
	})

	a.Router = r
	return nil
}

// allowedOrigins lists the browser origins the API and the WebSocket
// endpoint accept. Without CORS only the server's own localhost origin is.
func (a *Application) allowedOrigins() []string {
	if a.Config.Security.EnableCORS && len(a.Config.Security.AllowedOrigins) > 0 {
		return a.Config.Security.AllowedOrigins
	}
	return []string{fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)}
}

func (a *Application) corsConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.allowedOrigins(),
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{"X-Request-ID", "Location"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run serves HTTP, runs the session sweeper and the WebSocket hub until ctx
// is done or one of them fails, then shuts everything down.
func (a *Application) Run(ctx context.Context) error {
	a.WebSocketHub.Start()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "HTTP server listening",
			slog.String("addr", a.Server.Addr),
			slog.String("level", a.Config.Logging.Level))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.ChartService.RunSweeper(gctx, a.Config.Sessions.SweepInterval, a.Config.Sessions.TTL)
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	err := g.Wait()
	a.Logger.Info("application stopped")
	return err
}

// Stop drains the service: readiness fails first, then the server stops
// accepting requests, WebSocket clients are closed and telemetry is flushed
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application",
		slog.Int("sessions", a.ChartService.SessionCount()),
		slog.Int("websocket_clients", a.WebSocketHub.ClientCount()))

	a.HealthService.SetDraining(true)

	timeout := a.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}

	a.WebSocketHub.Stop()

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	return errors.Join(errs...)
}
