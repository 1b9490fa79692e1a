// Package api provides the diagnostic HTTP REST API and WebSocket server
// for StableCam.
//
// It exposes registry reads, one-shot detection, device registration, and a
// real-time event stream to dashboards and scripts running on the same host.
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stablecam/stablecam/internal/device"
	"github.com/stablecam/stablecam/internal/events"
	"github.com/stablecam/stablecam/internal/history"
	"github.com/stablecam/stablecam/internal/infrastructure/config"
	"github.com/stablecam/stablecam/internal/infrastructure/logging"
	"github.com/stablecam/stablecam/internal/monitor"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	WS      config.WebSocketConfig
	Logger  *logging.Logger
	Monitor *monitor.Manager
	Bus     *events.Bus
	History *history.Store // Optional; history endpoints return 404 when nil
	Version string
}

// Server is the diagnostic HTTP API server for StableCam.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg     config.APIConfig
	wsCfg   config.WebSocketConfig
	logger  *logging.Logger
	monitor *monitor.Manager
	bus     *events.Bus
	history *history.Store
	version string

	server *http.Server
	hub    *Hub
	cancel context.CancelFunc

	// busSubscriptions holds the bus handles feeding the WebSocket hub.
	busSubscriptions map[events.Type]int
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, monitor, bus)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Monitor == nil {
		return nil, fmt.Errorf("monitor manager is required")
	}
	if deps.Bus == nil {
		return nil, fmt.Errorf("event bus is required")
	}

	return &Server{
		cfg:              deps.Config,
		wsCfg:            deps.WS,
		logger:           deps.Logger,
		monitor:          deps.Monitor,
		bus:              deps.Bus,
		history:          deps.History,
		version:          deps.Version,
		busSubscriptions: make(map[events.Type]int),
	}, nil
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub, subscribes to the event
// bus for real-time WebSocket broadcast, and launches the HTTP listener in a
// background goroutine. The server can be stopped with Close().
//
// Parameters:
//   - ctx: Context for cancellation (not used for listener lifetime)
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.wsCfg, s.logger)
	go s.hub.Run(srvCtx)

	if err := s.subscribeBusEvents(); err != nil {
		return fmt.Errorf("subscribing to bus events: %w", err)
	}

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server started", "address", s.server.Addr)
	return nil
}

// subscribeBusEvents feeds device events into the WebSocket hub. Clients
// subscribe to channels named after the event types ("on_connect",
// "on_disconnect", "on_status_change").
func (s *Server) subscribeBusEvents() error {
	for _, et := range events.AllTypes() {
		et := et
		id, err := s.bus.Subscribe(et, func(dev *device.RegisteredDevice) {
			s.hub.Broadcast(string(et), dev)
		})
		if err != nil {
			return err
		}
		s.busSubscriptions[et] = id
	}
	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	for et, id := range s.busSubscriptions {
		s.bus.Unsubscribe(et, id) //nolint:errcheck // Best effort on teardown
		delete(s.busSubscriptions, et)
	}

	// Cancel background goroutines (hub)
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
