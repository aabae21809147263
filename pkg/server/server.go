package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"veritas-hq/meridian/pkg/config"
	"veritas-hq/meridian/pkg/ledger"
	"veritas-hq/meridian/pkg/ledger/archive"
	"veritas-hq/meridian/pkg/ledger/export"
	"veritas-hq/meridian/pkg/policy/engine"
	"veritas-hq/meridian/pkg/policy/source"
	"veritas-hq/meridian/pkg/telemetry/health"
	"veritas-hq/meridian/pkg/telemetry/metrics"
)

// Server is the Meridian HTTP API server.
type Server struct {
	config   config.ServerConfig
	engine   *engine.Engine
	policies *source.Store
	ledger   *ledger.Ledger
	store    ledger.Store
	exporter *export.Builder
	archive  *archive.Archive
	metrics  *metrics.Collector
	checker  *health.Checker
	logger   *slog.Logger

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Deps bundles the components the server serves. Archive and Metrics
// are optional; the corresponding endpoints and recording are skipped
// when nil.
type Deps struct {
	Engine   *engine.Engine
	Policies *source.Store
	Ledger   *ledger.Ledger
	Store    ledger.Store
	Exporter *export.Builder
	Archive  *archive.Archive
	Metrics  *metrics.Collector
	Checker  *health.Checker
}

// NewServer creates the API server.
func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	checker := deps.Checker
	if checker == nil {
		checker = health.New(0)
	}
	return &Server{
		config:       cfg,
		engine:       deps.Engine,
		policies:     deps.Policies,
		ledger:       deps.Ledger,
		store:        deps.Store,
		exporter:     deps.Exporter,
		archive:      deps.Archive,
		metrics:      deps.Metrics,
		checker:      checker,
		logger:       slog.Default().With("component", "server"),
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown",
			"timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("API server stopped")
	})

	return shutdownErr
}

// Handler returns the configured HTTP handler with the full middleware
// chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/decide", s.handleDecide)
	mux.HandleFunc("/v1/resolve", s.handleResolve)
	mux.HandleFunc("/v1/ledger", s.handleLedger)
	mux.HandleFunc("/v1/ledger/head", s.handleLedgerHead)
	mux.HandleFunc("/v1/key", s.handleKey)
	mux.HandleFunc("/v1/verify", s.handleVerify)
	mux.HandleFunc("/v1/export", s.handleExport)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/readyz", s.handleReadyz)

	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)
	handler = recoveryMiddleware(handler)

	return handler
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
