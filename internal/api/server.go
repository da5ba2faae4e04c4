// Package api provides the HTTP REST API and WebSocket server for Beacon Core.
//
// It exposes the device submission endpoints, pull-based query endpoints,
// the audio upload endpoint, and the WebSocket observer surface (snapshot
// then live stream) to collection consoles.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
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

	"github.com/davenersa/beacon-core/internal/gateway"
	"github.com/davenersa/beacon-core/internal/infrastructure/config"
	"github.com/davenersa/beacon-core/internal/infrastructure/logging"
	"github.com/davenersa/beacon-core/internal/telemetry"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.ServerConfig
	WS      config.WebSocketConfig
	Storage config.StorageConfig
	Logger  *logging.Logger
	Store   *telemetry.Store
	Gateway *gateway.Gateway
	Version string
}

// Server is the HTTP API server for Beacon Core.
//
// It manages the HTTP listener, routes, middleware, and WebSocket sessions.
// The server is created with New() and started with Start().
type Server struct {
	cfg     config.ServerConfig
	wsCfg   config.WebSocketConfig
	storage config.StorageConfig
	logger  *logging.Logger
	store   *telemetry.Store
	gateway *gateway.Gateway
	version string
	server  *http.Server
	cancel  context.CancelFunc // cancels WebSocket sessions on Close()
	ctx     context.Context    // server-level context handed to sessions
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("telemetry store is required")
	}
	if deps.Gateway == nil {
		return nil, fmt.Errorf("observer gateway is required")
	}

	return &Server{
		cfg:     deps.Config,
		wsCfg:   deps.WS,
		storage: deps.Storage,
		logger:  deps.Logger,
		store:   deps.Store,
		gateway: deps.Gateway,
		version: deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It builds the router and launches the HTTP listener in a background
// goroutine. The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can end WebSocket sessions independently
	// of the parent context.
	s.ctx, s.cancel = context.WithCancel(ctx)

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

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// End WebSocket sessions so their pumps exit.
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
