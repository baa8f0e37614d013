// Package memory provides a process-local StorageEngine used by tests and
// by deployments that do not need durability.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nkkko/eventops/internal/domain"
	"github.com/nkkko/eventops/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Ensure Storage implements domain.StorageEngine
var _ domain.StorageEngine = (*Storage)(nil)

type recordKey struct {
	collection string
	orgID      string
	id         string
}

// Storage keeps records in a map guarded by a RWMutex
type Storage struct {
	mu      sync.RWMutex
	records map[recordKey][]byte
	metrics *metrics.Metrics
}

// NewStorage creates an empty in-memory store
func NewStorage() *Storage {
	return &Storage{
		records: make(map[recordKey][]byte),
		metrics: metrics.GetMetrics(),
	}
}

func (s *Storage) observe(op string, start time.Time, err error) {
	s.metrics.StorageOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	success := "true"
	if err != nil {
		success = "false"
	}
	s.metrics.StorageOperations.WithLabelValues(op, success).Inc()
}

// Put creates or replaces a record
func (s *Storage) Put(ctx context.Context, rec domain.Record) error {
	defer s.observe("put", time.Now(), nil)

	data := append([]byte(nil), rec.Data...)

	s.mu.Lock()
	s.records[recordKey{rec.Collection, rec.OrgID, rec.ID}] = data
	s.mu.Unlock()
	return nil
}

// Get retrieves a record
func (s *Storage) Get(ctx context.Context, collection, orgID, id string) (rec domain.Record, err error) {
	defer func(start time.Time) { s.observe("get", start, err) }(time.Now())

	s.mu.RLock()
	data, ok := s.records[recordKey{collection, orgID, id}]
	s.mu.RUnlock()

	if !ok {
		return domain.Record{}, domain.ErrNotFound
	}
	return domain.Record{
		Collection: collection,
		OrgID:      orgID,
		ID:         id,
		Data:       append([]byte(nil), data...),
	}, nil
}

// List returns the records of a collection for an organization, ordered by id
func (s *Storage) List(ctx context.Context, collection, orgID string) ([]domain.Record, error) {
	timer := prometheus.NewTimer(s.metrics.StorageOperationDuration.WithLabelValues("list"))
	defer timer.ObserveDuration()

	s.mu.RLock()
	var out []domain.Record
	for k, data := range s.records {
		if k.collection != collection || k.orgID != orgID {
			continue
		}
		out = append(out, domain.Record{
			Collection: collection,
			OrgID:      orgID,
			ID:         k.id,
			Data:       append([]byte(nil), data...),
		})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	s.metrics.StorageOperations.WithLabelValues("list", "true").Inc()
	return out, nil
}

// Delete removes a record
func (s *Storage) Delete(ctx context.Context, collection, orgID, id string) (err error) {
	defer func(start time.Time) { s.observe("delete", start, err) }(time.Now())

	k := recordKey{collection, orgID, id}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[k]; !ok {
		return domain.ErrNotFound
	}
	delete(s.records, k)
	return nil
}

// Close is a no-op
func (s *Storage) Close() error {
	return nil
}
