// Package app initializes and runs the registrar service.
// It configures logging, tracing, the registry and routing,
// and handles graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/patric-chuzhbe/registrar/internal/config"
	"github.com/patric-chuzhbe/registrar/internal/ipchecker"
	"github.com/patric-chuzhbe/registrar/internal/logger"
	"github.com/patric-chuzhbe/registrar/internal/registry"
	"github.com/patric-chuzhbe/registrar/internal/router"
	"github.com/patric-chuzhbe/registrar/internal/tracing"
)

// App owns the registry and everything needed to serve it over HTTP.
type App struct {
	cfg             *config.Config
	instanceID      string
	registry        *registry.Registry
	httpHandler     http.Handler
	shutdownTracing tracing.ShutdownFunc
}

// New loads the configuration and builds the service:
// - logger
// - tracer provider
// - registry
// - router with its middleware
func New(optionsProto ...config.InitOption) (*App, error) {
	var err error
	app := &App{
		instanceID: uuid.New().String(),
		registry:   registry.New(),
	}

	app.cfg, err = config.New(optionsProto...)
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel, "instance", app.instanceID)
	if err != nil {
		return nil, err
	}

	app.shutdownTracing, err = tracing.Init(
		context.Background(),
		app.cfg.ServiceName,
		app.instanceID,
		app.cfg.OTLPEndpoint,
	)
	if err != nil {
		return nil, err
	}

	checker, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	app.httpHandler = router.New(app.registry, checker)

	return app, nil
}

// Run serves HTTP until ctx is done or SIGINT/SIGTERM arrives, then shuts
// the server down within the configured timeout.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Log.Infow("server running", "RunAddr", a.cfg.RunAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Log.Infoln("Shutting down the server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.shutdownTracing(shutdownCtx)
	})

	return group.Wait()
}

// Registry gives access to the registry served by the app.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Handler returns the HTTP handler of the service.
func (a *App) Handler() http.Handler {
	return a.httpHandler
}

// Close flushes the logger.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}
