// Package api exposes operations and views over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	ratelimit "github.com/nkkko/eventops/internal/api/middleware"
	"github.com/nkkko/eventops/internal/domain"
	"github.com/nkkko/eventops/internal/logging"
	"github.com/nkkko/eventops/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config contains API configuration
type Config struct {
	// Server address
	Addr string

	// Timeouts
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration

	// Maximum accepted request body in bytes
	MaxBodySize int64

	// CORS
	AllowedOrigins []string

	// Rate limiting of /orgs and /invalidate
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Serve /metrics
	MetricsEnabled bool

	// Service name reported on server spans
	ServiceName string
}

// DefaultConfig returns a default configuration
func DefaultConfig() Config {
	return Config{
		Addr:              ":8080",
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		RequestTimeout:    30 * time.Second,
		MaxBodySize:       1 << 20,
		AllowedOrigins:    []string{"*"},
		RateLimitEnabled:  false,
		RateLimitRequests: 600,
		RateLimitWindow:   time.Minute,
		MetricsEnabled:    true,
		ServiceName:       "eventops",
	}
}

// API handles HTTP endpoints using the chi router
type API struct {
	config Config
	router *chi.Mux
	server *http.Server
	ops    Operations
	views  ViewSource
	bus    domain.Publisher
	logger zerolog.Logger
}

// NewAPI creates a new API instance and registers its routes
func NewAPI(config Config, ops Operations, views ViewSource, bus domain.Publisher) *API {
	defaults := DefaultConfig()
	if config.Addr == "" {
		config.Addr = defaults.Addr
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = defaults.ReadTimeout
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	if config.IdleTimeout == 0 {
		config.IdleTimeout = defaults.IdleTimeout
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = defaults.RequestTimeout
	}
	if config.MaxBodySize == 0 {
		config.MaxBodySize = defaults.MaxBodySize
	}
	if config.RateLimitWindow == 0 {
		config.RateLimitWindow = defaults.RateLimitWindow
	}
	if config.ServiceName == "" {
		config.ServiceName = defaults.ServiceName
	}

	a := &API{
		config: config,
		ops:    ops,
		views:  views,
		bus:    bus,
		logger: log.With().Str("component", "api").Logger(),
	}
	a.router = a.newRouter()
	a.server = &http.Server{
		Addr:         config.Addr,
		Handler:      a.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return a
}

// Handler returns the HTTP handler of the API
func (a *API) Handler() http.Handler {
	return a.router
}

func (a *API) newRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(telemetry.HTTPMiddleware(a.config.ServiceName))
	r.Use(logging.HTTPMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(a.config.RequestTimeout))
	r.Use(middleware.RequestSize(a.config.MaxBodySize))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	a.registerRoutes(r)
	return r
}

// registerRoutes sets up all API endpoints
func (a *API) registerRoutes(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Get("/readyz", a.handleReady)

	if a.config.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Group(func(r chi.Router) {
		if a.config.RateLimitEnabled {
			r.Use(ratelimit.RateLimit(ratelimit.RateLimitConfig{
				RequestLimit: a.config.RateLimitRequests,
				WindowSize:   a.config.RateLimitWindow,
				KeyFunc:      ratelimit.KeyByOrg,
			}))
		}

		r.Post("/invalidate", a.handleInvalidate)

		r.Route("/orgs/{orgID}", func(r chi.Router) {
			r.Post("/events", a.handleCreateEvent)
			r.Post("/zones", a.handleCreateZone)

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", a.handleCreateTask)
				r.Patch("/{taskID}/status", a.handleUpdateTaskStatus)
				r.Delete("/{taskID}", a.handleDeleteTask)
			})

			r.Route("/work-orders", func(r chi.Router) {
				r.Post("/", a.handleCreateWorkOrder)
				r.Patch("/{workOrderID}/status", a.handleUpdateWorkOrderStatus)
			})

			r.Route("/assets", func(r chi.Router) {
				r.Post("/", a.handleCreateAsset)
				r.Post("/{assetID}/move", a.handleMoveAsset)
			})

			r.Post("/kits", a.handleCreateKit)

			r.Route("/checklists", func(r chi.Router) {
				r.Post("/", a.handleCreateChecklist)
				r.Post("/{checklistID}/items/{itemID}/toggle", a.handleToggleChecklistItem)
			})

			r.Post("/staff", a.handleCreateStaffMember)
			r.Post("/assignments", a.handleAssignStaff)

			r.Route("/credentials", func(r chi.Router) {
				r.Post("/", a.handleIssueCredential)
				r.Post("/{credentialID}/revoke", a.handleRevokeCredential)
			})

			r.Get("/views", a.handleListViews)
			r.Get("/views/{view}", a.handleGetView)
		})
	})
}

// Start serves HTTP until ctx is cancelled or the listener fails
func (a *API) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	a.logger.Info().Str("addr", a.config.Addr).Msg("API server started")

	select {
	case err := <-errCh:
		if err != nil {
			a.logger.Error().Err(err).Msg("API server error")
		}
		return err
	case <-ctx.Done():
		return nil
	}
}

// Shutdown gracefully stops the HTTP server
func (a *API) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down API server")
	return a.server.Shutdown(ctx)
}
