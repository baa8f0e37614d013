// Package invalidation implements the in-process query invalidation bus.
//
// Views subscribe with the keys whose data they render; mutations publish the
// keys they touched. A publish fires every subscription holding a key that is
// a prefix of, or is prefixed by, one of the published keys.
package invalidation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nkkko/eventops/internal/domain"
	"github.com/nkkko/eventops/internal/metrics"
	"github.com/nkkko/eventops/internal/telemetry"
	"github.com/nkkko/eventops/pkg/querykey"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// Ensure Bus implements domain.InvalidationBus
var _ domain.InvalidationBus = (*Bus)(nil)

// subscription is one consumer's interest in a set of keys
type subscription struct {
	id   uint64
	keys []querykey.Key
	fn   func()
}

// Bus is the registry of live subscriptions. The zero value is not usable;
// construct one with NewBus and share it from the composition root.
type Bus struct {
	mu            sync.RWMutex
	lastID        uint64
	subscriptions map[uint64]*subscription
	logger        zerolog.Logger
	metrics       *metrics.Metrics
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{
		subscriptions: make(map[uint64]*subscription),
		logger:        log.With().Str("component", "invalidation").Logger(),
		metrics:       metrics.GetMetrics(),
	}
}

// Subscribe registers fn for keys and returns the handle that removes it.
//
// An empty key set is accepted and never matches. The handle stays valid for
// the life of the bus and may be called any number of times.
func (b *Bus) Subscribe(keys []querykey.Key, fn func()) domain.Unsubscribe {
	if fn == nil {
		fn = func() {}
	}

	owned := make([]querykey.Key, len(keys))
	for i, k := range keys {
		owned[i] = append(querykey.Key(nil), k...)
	}

	b.mu.Lock()
	b.lastID++
	sub := &subscription{
		id:   b.lastID,
		keys: owned,
		fn:   fn,
	}
	b.subscriptions[sub.id] = sub
	b.mu.Unlock()

	b.metrics.BusSubscriptionsActive.Inc()
	b.logger.Debug().
		Uint64("subscription_id", sub.id).
		Int("keys", len(owned)).
		Msg("Subscription registered")

	return func() {
		b.unsubscribe(sub.id)
	}
}

// unsubscribe removes exactly one identity; unknown ids are ignored
func (b *Bus) unsubscribe(id uint64) {
	b.mu.Lock()
	_, ok := b.subscriptions[id]
	delete(b.subscriptions, id)
	b.mu.Unlock()

	if !ok {
		return
	}

	b.metrics.BusSubscriptionsActive.Dec()
	b.logger.Debug().Uint64("subscription_id", id).Msg("Subscription removed")
}

// Publish invokes, synchronously and once each, the callbacks of every
// subscription related to any of keys. Publishing no keys does nothing.
//
// The registry is snapshotted first: subscriptions added by a callback are
// not part of the current pass, and subscriptions removed before their turn
// are skipped. Callbacks run in subscription order. A panicking callback is
// recovered and logged; the remaining callbacks still run.
func (b *Bus) Publish(ctx context.Context, keys ...querykey.Key) {
	if len(keys) == 0 {
		return
	}

	ctx, span := telemetry.StartSpan(ctx, "invalidation.Publish")
	defer span.End()

	start := time.Now()
	b.metrics.BusPublishesTotal.Inc()
	b.metrics.BusKeysPublished.Observe(float64(len(keys)))

	snapshot := b.snapshot()

	fired := 0
	for _, sub := range snapshot {
		if !querykey.AnyRelated(sub.keys, keys) {
			continue
		}
		if !b.registered(sub.id) {
			continue
		}
		b.invoke(ctx, sub, keys)
		fired++
	}

	telemetry.AddSpanAttributes(ctx,
		attribute.Int("invalidation.keys", len(keys)),
		attribute.Int("invalidation.subscriptions", len(snapshot)),
		attribute.Int("invalidation.fired", fired),
	)
	b.metrics.BusDispatchDuration.Observe(time.Since(start).Seconds())

	b.logger.Debug().
		Strs("keys", keyStrings(keys)).
		Int("subscriptions", len(snapshot)).
		Int("fired", fired).
		Msg("Published invalidation")
}

// Len returns the number of live subscriptions
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}

// snapshot copies the registry in ascending id order
func (b *Bus) snapshot() []*subscription {
	b.mu.RLock()
	subs := make([]*subscription, 0, len(b.subscriptions))
	for _, sub := range b.subscriptions {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	sort.Slice(subs, func(i, j int) bool { return subs[i].id < subs[j].id })
	return subs
}

func (b *Bus) registered(id uint64) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subscriptions[id]
	return ok
}

// invoke runs one callback, containing any panic to this subscriber
func (b *Bus) invoke(ctx context.Context, sub *subscription, keys []querykey.Key) {
	defer func() {
		if r := recover(); r != nil {
			b.metrics.BusCallbackPanics.Inc()
			b.logger.Error().
				Uint64("subscription_id", sub.id).
				Strs("keys", keyStrings(keys)).
				Interface("panic", r).
				Msg("Invalidation callback panicked")
			telemetry.AddSpanEvent(ctx, "callback_panic",
				attribute.Int64("subscription_id", int64(sub.id)))
		}
	}()

	b.metrics.BusCallbacksInvoked.Inc()
	sub.fn()
}

func keyStrings(keys []querykey.Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}
