// Package views keeps server-side materialized views of the dashboard.
//
// A mounted view subscribes to the query keys of the data it renders. When a
// mutation publishes a related key the view is marked stale and a reload is
// queued; reads of a stale view reload it first.
package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nkkko/eventops/internal/domain"
	"github.com/nkkko/eventops/internal/metrics"
	"github.com/nkkko/eventops/internal/telemetry"
	"github.com/nkkko/eventops/pkg/querykey"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// ErrUnknownView is returned for a view name missing from the catalog
	ErrUnknownView = errors.New("unknown view")

	// ErrInvalidScope is returned when a scope lacks a field the view needs
	ErrInvalidScope = errors.New("invalid view scope")
)

// Scope narrows a view to an organization and optionally an event, a list
// filter or a single entity id
type Scope struct {
	OrgID   string `json:"org_id"`
	EventID string `json:"event_id,omitempty"`
	Filter  string `json:"filter,omitempty"`
	ID      string `json:"id,omitempty"`
}

// String renders the scope as a stable cache key
func (s Scope) String() string {
	return strings.Join([]string{s.OrgID, s.EventID, s.Filter, s.ID}, "|")
}

// Loader fetches the data of a view for a scope
type Loader func(ctx context.Context, scope Scope) (any, error)

// Definition describes one kind of view
type Definition struct {
	Name string

	// Keys returns the query keys the view depends on
	Keys func(scope Scope) []querykey.Key

	Load Loader

	NeedsEvent bool
	NeedsID    bool
}

// Validate checks that scope carries what the definition needs
func (d Definition) Validate(scope Scope) error {
	switch {
	case scope.OrgID == "":
		return fmt.Errorf("%s: organization required: %w", d.Name, ErrInvalidScope)
	case d.NeedsEvent && scope.EventID == "":
		return fmt.Errorf("%s: event required: %w", d.Name, ErrInvalidScope)
	case d.NeedsID && scope.ID == "":
		return fmt.Errorf("%s: id required: %w", d.Name, ErrInvalidScope)
	}
	return nil
}

// Snapshot is the data of a view at one load
type Snapshot struct {
	View     string    `json:"view"`
	Scope    Scope     `json:"scope"`
	Version  uint64    `json:"version"`
	LoadedAt time.Time `json:"loaded_at"`
	Data     any       `json:"data"`
}

// View is one mounted (or mountable) instance of a Definition
type View struct {
	def     Definition
	bus     domain.Subscriber
	onStale func(*View)
	metrics *metrics.Metrics

	// loadMu serializes loads
	loadMu sync.Mutex

	mu          sync.RWMutex
	scope       Scope
	unsubscribe domain.Unsubscribe
	snapshot    *Snapshot
	version     uint64

	stale atomic.Bool
}

// NewView creates an unmounted view. onStale, when set, is called each time
// an invalidation reaches the view.
func NewView(def Definition, scope Scope, bus domain.Subscriber, onStale func(*View)) *View {
	v := &View{
		def:     def,
		bus:     bus,
		onStale: onStale,
		metrics: metrics.GetMetrics(),
		scope:   scope,
	}
	v.stale.Store(true)
	return v
}

// Name returns the definition name
func (v *View) Name() string {
	return v.def.Name
}

// Scope returns the current scope
func (v *View) Scope() Scope {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.scope
}

// Keys returns the query keys of the current scope
func (v *View) Keys() []querykey.Key {
	return v.def.Keys(v.Scope())
}

// Mount subscribes the view's keys. Mounting a mounted view does nothing.
func (v *View) Mount() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.unsubscribe != nil {
		return
	}
	v.unsubscribe = v.bus.Subscribe(v.def.Keys(v.scope), v.invalidate)
	v.metrics.ViewsMounted.Inc()
}

// Unmount removes the subscription. Unmounting twice does nothing.
func (v *View) Unmount() {
	v.mu.Lock()
	unsubscribe := v.unsubscribe
	v.unsubscribe = nil
	v.mu.Unlock()

	if unsubscribe == nil {
		return
	}
	unsubscribe()
	v.metrics.ViewsMounted.Dec()
}

// Mounted reports whether the view holds a live subscription
func (v *View) Mounted() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.unsubscribe != nil
}

// Rescope moves the view to another scope. Keys cannot be updated in place,
// so a mounted view is unmounted and mounted again with the new keys.
func (v *View) Rescope(scope Scope) {
	mounted := v.Mounted()
	if mounted {
		v.Unmount()
	}

	v.mu.Lock()
	v.scope = scope
	v.snapshot = nil
	v.mu.Unlock()
	v.stale.Store(true)

	if mounted {
		v.Mount()
	}
}

// Stale reports whether the view must be reloaded before it is read
func (v *View) Stale() bool {
	return v.stale.Load()
}

// invalidate is the bus callback. It runs synchronously inside Publish, so it
// only flips the flag and hands the reload to onStale.
func (v *View) invalidate() {
	v.stale.Store(true)
	v.metrics.ViewInvalidations.WithLabelValues(v.def.Name).Inc()
	if v.onStale != nil {
		v.onStale(v)
	}
}

// Current returns the last loaded snapshot without loading, or nil
func (v *View) Current() *Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snapshot
}

// Get returns the current snapshot, reloading first when stale
func (v *View) Get(ctx context.Context) (*Snapshot, error) {
	if !v.Stale() {
		v.mu.RLock()
		snap := v.snapshot
		v.mu.RUnlock()
		if snap != nil {
			return snap, nil
		}
	}
	return v.Refresh(ctx)
}

// Refresh reloads the view unconditionally
func (v *View) Refresh(ctx context.Context) (*Snapshot, error) {
	v.loadMu.Lock()
	defer v.loadMu.Unlock()

	scope := v.Scope()

	ctx, span := telemetry.StartSpan(ctx, "views.Load")
	defer span.End()
	span.SetAttributes(
		attribute.String("view", v.def.Name),
		attribute.String("org_id", scope.OrgID),
	)

	// Cleared before loading so an invalidation that lands mid-load marks
	// the result stale again.
	v.stale.Store(false)

	start := time.Now()
	data, err := v.def.Load(ctx, scope)
	v.metrics.ViewLoadDuration.WithLabelValues(v.def.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		v.stale.Store(true)
		v.metrics.ViewLoadsTotal.WithLabelValues(v.def.Name, "false").Inc()
		telemetry.MarkSpanError(ctx, err)
		return nil, err
	}
	v.metrics.ViewLoadsTotal.WithLabelValues(v.def.Name, "true").Inc()

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.scope != scope {
		// Rescoped while loading; the result belongs to the old scope.
		v.stale.Store(true)
		return &Snapshot{View: v.def.Name, Scope: scope, LoadedAt: start, Data: data}, nil
	}

	v.version++
	v.snapshot = &Snapshot{
		View:     v.def.Name,
		Scope:    scope,
		Version:  v.version,
		LoadedAt: start,
		Data:     data,
	}
	return v.snapshot, nil
}
