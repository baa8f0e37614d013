package views

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/nkkko/eventops/internal/domain"
	"github.com/nkkko/eventops/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Config contains view manager configuration
type Config struct {
	// Maximum number of mounted views; the least recently read is evicted
	MaxMounted int

	// Capacity of the background refresh queue
	RefreshQueueSize int

	// Number of refresh workers
	RefreshWorkers int

	// Timeout of one background reload
	LoadTimeout time.Duration
}

// DefaultConfig returns a default configuration
func DefaultConfig() Config {
	return Config{
		MaxMounted:       1024,
		RefreshQueueSize: 256,
		RefreshWorkers:   4,
		LoadTimeout:      10 * time.Second,
	}
}

// Manager mounts views on demand and keeps them fresh
type Manager struct {
	config  Config
	bus     domain.Subscriber
	catalog map[string]Definition

	mu      sync.Mutex
	mounted *lru.Cache

	refresh chan *View
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewManager creates a manager serving the given definitions
func NewManager(config Config, bus domain.Subscriber, defs []Definition) (*Manager, error) {
	defaults := DefaultConfig()
	if config.MaxMounted <= 0 {
		config.MaxMounted = defaults.MaxMounted
	}
	if config.RefreshQueueSize <= 0 {
		config.RefreshQueueSize = defaults.RefreshQueueSize
	}
	if config.RefreshWorkers <= 0 {
		config.RefreshWorkers = defaults.RefreshWorkers
	}
	if config.LoadTimeout <= 0 {
		config.LoadTimeout = defaults.LoadTimeout
	}

	m := &Manager{
		config:  config,
		bus:     bus,
		catalog: make(map[string]Definition, len(defs)),
		refresh: make(chan *View, config.RefreshQueueSize),
		logger:  log.With().Str("component", "views").Logger(),
		metrics: metrics.GetMetrics(),
	}
	for _, def := range defs {
		m.catalog[def.Name] = def
	}

	mounted, err := lru.NewWithEvict(config.MaxMounted, m.onEvict)
	if err != nil {
		return nil, fmt.Errorf("failed to create view cache: %w", err)
	}
	m.mounted = mounted

	return m, nil
}

// onEvict unmounts a view leaving the cache, which drops its subscription
func (m *Manager) onEvict(key, value interface{}) {
	v := value.(*View)
	v.Unmount()
	m.metrics.ViewEvictionsTotal.Inc()
	m.logger.Debug().
		Str("view", v.Name()).
		Str("scope", key.(string)).
		Msg("View unmounted")
}

func cacheKey(name string, scope Scope) string {
	return name + "@" + scope.String()
}

// View returns the mounted view for name and scope, mounting it on first use
func (m *Manager) View(name string, scope Scope) (*View, error) {
	def, ok := m.catalog[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownView)
	}
	if err := def.Validate(scope); err != nil {
		return nil, err
	}

	key := cacheKey(name, scope)

	m.mu.Lock()
	defer m.mu.Unlock()

	if cached, ok := m.mounted.Get(key); ok {
		return cached.(*View), nil
	}

	v := NewView(def, scope, m.bus, m.enqueue)
	v.Mount()
	m.mounted.Add(key, v)

	m.logger.Debug().
		Str("view", name).
		Str("scope", scope.String()).
		Msg("View mounted")
	return v, nil
}

// Snapshot returns the data of a view, reloading it when stale
func (m *Manager) Snapshot(ctx context.Context, name string, scope Scope) (*Snapshot, error) {
	v, err := m.View(name, scope)
	if err != nil {
		return nil, err
	}
	return v.Get(ctx)
}

// Unmount drops one view, if mounted
func (m *Manager) Unmount(name string, scope Scope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mounted.Remove(cacheKey(name, scope))
}

// Mounted returns the number of mounted views
func (m *Manager) Mounted() int {
	return m.mounted.Len()
}

// Names returns the catalog's view names
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.catalog))
	for name := range m.catalog {
		names = append(names, name)
	}
	return names
}

// enqueue hands a stale view to the refresh workers. It runs inside the
// bus dispatch and must not block: when the queue is full the refresh is
// dropped and the view reloads on its next read.
func (m *Manager) enqueue(v *View) {
	select {
	case m.refresh <- v:
	default:
		m.metrics.ViewRefreshDropped.Inc()
	}
}

// Start runs the refresh workers until ctx is cancelled
func (m *Manager) Start(ctx context.Context) error {
	m.logger.Info().
		Int("workers", m.config.RefreshWorkers).
		Int("max_mounted", m.config.MaxMounted).
		Msg("Starting view manager")

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < m.config.RefreshWorkers; i++ {
		g.Go(func() error {
			m.worker(ctx)
			return nil
		})
	}
	return g.Wait()
}

func (m *Manager) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case v := <-m.refresh:
			if !v.Mounted() || !v.Stale() {
				continue
			}

			loadCtx, cancel := context.WithTimeout(ctx, m.config.LoadTimeout)
			if _, err := v.Refresh(loadCtx); err != nil {
				m.logger.Warn().
					Err(err).
					Str("view", v.Name()).
					Str("scope", v.Scope().String()).
					Msg("Background view refresh failed")
			}
			cancel()
		}
	}
}

// Close unmounts every view
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mounted.Purge()
	m.logger.Info().Msg("View manager closed")
}
