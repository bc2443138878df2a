// Package app wires the streamflow server together.
package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chrissnell/streamflow/internal/controllers/restserver"
	"github.com/chrissnell/streamflow/internal/log"
	"github.com/chrissnell/streamflow/pkg/config"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the REST server and blocks until a shutdown signal arrives or
// ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Initialize the REST controller and its run registry
	rest, err := restserver.NewController(ctx, &wg, a.configProvider, a.logger)
	if err != nil {
		return err
	}
	if err := rest.StartController(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal the server to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for the REST server to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
