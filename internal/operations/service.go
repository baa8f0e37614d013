// Package operations implements the mutations and reads of the event
// operations domain. Every successful mutation publishes the query keys it
// affected on the invalidation bus so that mounted views reload.
package operations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nkkko/eventops/internal/domain"
	"github.com/nkkko/eventops/internal/metrics"
	"github.com/nkkko/eventops/internal/storage"
	"github.com/nkkko/eventops/internal/telemetry"
	"github.com/nkkko/eventops/pkg/querykey"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrInvalidTransition is returned when a status change is not allowed
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidInput is returned for values outside an enumeration
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when a change collides with existing state
	ErrConflict = errors.New("conflict")

	// ErrNotFound is returned when a referenced entity does not exist
	ErrNotFound = storage.ErrNotFound
)

// Service performs mutations against storage and announces them on the bus
type Service struct {
	store   domain.StorageEngine
	bus     domain.Publisher
	logger  zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator overrides entity id allocation
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// NewService creates an operations service
func NewService(store domain.StorageEngine, bus domain.Publisher, opts ...Option) *Service {
	s := &Service{
		store:   store,
		bus:     bus,
		logger:  log.With().Str("component", "operations").Logger(),
		metrics: metrics.GetMetrics(),
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// begin opens the span of one mutation
func (s *Service) begin(ctx context.Context, op, orgID string) (context.Context, trace.Span) {
	ctx, span := telemetry.StartSpan(ctx, "operations."+op)
	span.SetAttributes(
		attribute.String("operation", op),
		attribute.String("org_id", orgID),
	)
	return ctx, span
}

// finish records the outcome of a mutation. Only a successful mutation
// publishes its keys.
func (s *Service) finish(ctx context.Context, op string, err error, keys ...querykey.Key) error {
	if err != nil {
		s.metrics.MutationsTotal.WithLabelValues(op, "error").Inc()
		telemetry.MarkSpanError(ctx, err)
		s.logger.Debug().Err(err).Str("operation", op).Msg("Mutation failed")
		return err
	}

	s.metrics.MutationsTotal.WithLabelValues(op, "success").Inc()
	s.bus.Publish(ctx, keys...)
	return nil
}

// lookup loads a referenced entity, naming it in the error when missing
func lookup[T any](ctx context.Context, s *Service, collection, orgID, id, what string) (T, error) {
	v, err := storage.GetAs[T](ctx, s.store, collection, orgID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return v, fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
		}
		return v, fmt.Errorf("failed to load %s %s: %w", what, id, err)
	}
	return v, nil
}

func (s *Service) put(ctx context.Context, collection, orgID, id string, v any) error {
	if err := storage.PutAs(ctx, s.store, collection, orgID, id, v); err != nil {
		return fmt.Errorf("failed to store %s: %w", collection, err)
	}
	return nil
}

func (s *Service) delete(ctx context.Context, collection, orgID, id string) error {
	if err := s.store.Delete(ctx, collection, orgID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete %s %s: %w", collection, id, err)
	}
	return nil
}

// list loads a collection, keeping the entries accepted by keep
func list[T any](ctx context.Context, s *Service, collection, orgID string, keep func(T) bool) ([]T, error) {
	all, err := storage.ListAs[T](ctx, s.store, collection, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	if keep == nil {
		return all, nil
	}
	out := all[:0]
	for _, v := range all {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out, nil
}
