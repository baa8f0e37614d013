// Package engine wires storage, the invalidation bus, operations, views and
// the HTTP API into one process.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkkko/eventops/internal/api"
	"github.com/nkkko/eventops/internal/config"
	"github.com/nkkko/eventops/internal/domain"
	"github.com/nkkko/eventops/internal/invalidation"
	"github.com/nkkko/eventops/internal/operations"
	"github.com/nkkko/eventops/internal/storage"
	"github.com/nkkko/eventops/internal/telemetry"
	"github.com/nkkko/eventops/internal/views"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// backgroundRunner is implemented by storage engines with maintenance loops
type backgroundRunner interface {
	Start(ctx context.Context) error
}

// Engine is the main coordinator of all components
type Engine struct {
	config      *config.Config
	storage     domain.StorageEngine
	bus         *invalidation.Bus
	ops         *operations.Service
	views       *views.Manager
	api         *api.API
	logger      zerolog.Logger
	telemetryFn telemetry.ShutdownFunc
}

// New creates an Engine with every component built from cfg
func New(ctx context.Context, cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := log.With().Str("component", "engine").Logger()

	telShutdown, err := telemetry.Setup(ctx, cfg.ToTelemetryConfig())
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to set up telemetry, continuing without it")
		telShutdown = func(context.Context) error { return nil }
	}

	store, err := storage.CreateStorage(cfg.ToStorageConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	bus := invalidation.NewBus()
	ops := operations.NewService(store, bus)

	manager, err := views.NewManager(cfg.ToViewsConfig(), bus, views.Catalog(ops))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize views: %w", err)
	}

	return &Engine{
		config:      cfg,
		storage:     store,
		bus:         bus,
		ops:         ops,
		views:       manager,
		api:         api.NewAPI(cfg.ToAPIConfig(), ops, manager, bus),
		logger:      logger,
		telemetryFn: telShutdown,
	}, nil
}

// API returns the HTTP API
func (e *Engine) API() *api.API {
	return e.api
}

// Operations returns the mutation and read service
func (e *Engine) Operations() *operations.Service {
	return e.ops
}

// Views returns the view manager
func (e *Engine) Views() *views.Manager {
	return e.views
}

// Start runs all components until ctx is cancelled or one of them fails
func (e *Engine) Start(ctx context.Context) error {
	e.logger.Info().
		Str("addr", e.config.Server.Addr).
		Str("storage", e.config.Storage.Type).
		Msg("Starting eventops engine")

	g, ctx := errgroup.WithContext(ctx)

	if runner, ok := e.storage.(backgroundRunner); ok {
		g.Go(func() error {
			return runner.Start(ctx)
		})
	}

	g.Go(func() error {
		return e.views.Start(ctx)
	})

	g.Go(func() error {
		return e.api.Start(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("error running engine: %w", err)
	}

	e.logger.Info().Msg("Engine stopped")
	return nil
}

// Shutdown stops accepting requests, unmounts every view and closes storage
func (e *Engine) Shutdown(ctx context.Context) error {
	e.logger.Info().Msg("Shutting down eventops engine")

	var errs []error

	// API first so no request observes a closed store
	if err := e.api.Shutdown(ctx); err != nil {
		e.logger.Error().Err(err).Msg("Failed to shut down API")
		errs = append(errs, err)
	}

	e.views.Close()

	if err := e.storage.Close(); err != nil {
		e.logger.Error().Err(err).Msg("Failed to close storage")
		errs = append(errs, err)
	}

	if err := e.telemetryFn(ctx); err != nil {
		e.logger.Error().Err(err).Msg("Failed to shut down telemetry")
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
