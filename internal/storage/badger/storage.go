// Package badger stores records in an embedded Badger database.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/nkkko/eventops/internal/domain"
	"github.com/nkkko/eventops/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Ensure Storage implements domain.StorageEngine
var _ domain.StorageEngine = (*Storage)(nil)

// prefixRecords namespaces every record key: rec:<len>:<collection>:<len>:<org>:<id>
const prefixRecords = "rec:"

// Config contains Badger storage configuration
type Config struct {
	// Base directory for data files
	DataDir string

	// Keep everything in memory; DataDir is ignored
	InMemory bool

	// Sync every write to disk
	SyncWrites bool

	// Interval between value log garbage collection runs
	GCInterval time.Duration

	// Cache settings
	CacheEnabled    bool
	CacheSize       int
	CacheExpiration time.Duration
}

// DefaultConfig returns a default configuration for Badger-based storage
func DefaultConfig() Config {
	return Config{
		DataDir:         "./data",
		SyncWrites:      false,
		GCInterval:      5 * time.Minute,
		CacheEnabled:    true,
		CacheSize:       10000,
		CacheExpiration: 30 * time.Second,
	}
}

// Storage manages persistence of records using Badger
type Storage struct {
	config  Config
	db      *badger.DB
	cache   *cache
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewStorage opens (or creates) the Badger database described by config
func NewStorage(config Config) (*Storage, error) {
	defaults := DefaultConfig()
	if config.GCInterval <= 0 {
		config.GCInterval = defaults.GCInterval
	}

	s := &Storage{
		config:  config,
		logger:  log.With().Str("component", "storage-badger").Logger(),
		metrics: metrics.GetMetrics(),
	}

	if err := s.initBadger(); err != nil {
		return nil, err
	}

	if config.CacheEnabled {
		if config.CacheSize <= 0 {
			config.CacheSize = defaults.CacheSize
		}
		if config.CacheExpiration <= 0 {
			config.CacheExpiration = defaults.CacheExpiration
		}

		c, err := newCache(config.CacheSize, config.CacheExpiration)
		if err != nil {
			s.db.Close()
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		s.cache = c
		s.logger.Info().
			Int("cache_size", config.CacheSize).
			Dur("cache_expiration", config.CacheExpiration).
			Msg("Cache initialized")
	}

	return s, nil
}

// initBadger initializes the Badger database
func (s *Storage) initBadger() error {
	var options badger.Options
	if s.config.InMemory {
		options = badger.DefaultOptions("").WithInMemory(true)
	} else {
		dbPath := filepath.Join(s.config.DataDir, "badger")
		if err := os.MkdirAll(dbPath, 0755); err != nil {
			return fmt.Errorf("failed to create badger directory: %w", err)
		}
		options = badger.DefaultOptions(dbPath)
	}
	options = options.WithLoggingLevel(badger.WARNING).WithSyncWrites(s.config.SyncWrites)

	db, err := badger.Open(options)
	if err != nil {
		return fmt.Errorf("failed to open Badger: %w", err)
	}

	s.db = db
	return nil
}

func recordKey(collection, orgID, id string) []byte {
	return append(listPrefix(collection, orgID), id...)
}

// listPrefix length-prefixes collection and org so that no org id, whatever
// it contains, can be a byte prefix of another org's key range.
func listPrefix(collection, orgID string) []byte {
	return []byte(prefixRecords +
		strconv.Itoa(len(collection)) + ":" + collection + ":" +
		strconv.Itoa(len(orgID)) + ":" + orgID + ":")
}

// Start runs value log garbage collection until ctx is cancelled
func (s *Storage) Start(ctx context.Context) error {
	if s.config.InMemory {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(s.config.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runGC()
		case <-ctx.Done():
			return nil
		}
	}
}

// runGC rewrites value log files until badger reports nothing left to collect
func (s *Storage) runGC() {
	timer := prometheus.NewTimer(s.metrics.StorageOperationDuration.WithLabelValues("value_log_gc"))
	defer timer.ObserveDuration()

	for {
		err := s.db.RunValueLogGC(0.5)
		if err == nil {
			continue
		}
		if !errors.Is(err, badger.ErrNoRewrite) {
			s.logger.Warn().Err(err).Msg("Value log GC failed")
			s.metrics.StorageOperations.WithLabelValues("value_log_gc", "false").Inc()
			return
		}
		s.metrics.StorageOperations.WithLabelValues("value_log_gc", "true").Inc()
		return
	}
}

// Put creates or replaces a record
func (s *Storage) Put(ctx context.Context, rec domain.Record) error {
	timer := prometheus.NewTimer(s.metrics.StorageOperationDuration.WithLabelValues("put"))
	defer timer.ObserveDuration()

	key := recordKey(rec.Collection, rec.OrgID, rec.ID)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, rec.Data)
	})
	if err != nil {
		s.metrics.StorageOperations.WithLabelValues("put", "false").Inc()
		return fmt.Errorf("failed to store %s %s: %w", rec.Collection, rec.ID, err)
	}

	if s.cache != nil {
		s.cache.set(string(key), rec.Data)
	}

	s.metrics.StorageOperations.WithLabelValues("put", "true").Inc()
	return nil
}

// Get retrieves a record
func (s *Storage) Get(ctx context.Context, collection, orgID, id string) (domain.Record, error) {
	timer := prometheus.NewTimer(s.metrics.StorageOperationDuration.WithLabelValues("get"))
	defer timer.ObserveDuration()

	key := recordKey(collection, orgID, id)
	rec := domain.Record{Collection: collection, OrgID: orgID, ID: id}

	var generation uint64
	if s.cache != nil {
		if data, found := s.cache.get(string(key)); found {
			rec.Data = data
			return rec, nil
		}
		generation = s.cache.generation()
	}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to retrieve %s %s: %w", collection, id, err)
		}

		return item.Value(func(val []byte) error {
			rec.Data = append([]byte{}, val...)
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.metrics.StorageOperations.WithLabelValues("get", "false").Inc()
		}
		return domain.Record{}, err
	}

	if s.cache != nil {
		s.cache.fill(string(key), rec.Data, generation)
	}

	s.metrics.StorageOperations.WithLabelValues("get", "true").Inc()
	return rec, nil
}

// List returns the records of a collection for an organization, ordered by id
func (s *Storage) List(ctx context.Context, collection, orgID string) ([]domain.Record, error) {
	timer := prometheus.NewTimer(s.metrics.StorageOperationDuration.WithLabelValues("list"))
	defer timer.ObserveDuration()

	prefix := listPrefix(collection, orgID)
	var out []domain.Record

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			id := string(item.Key()[len(prefix):])
			data, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("failed to read %s %s: %w", collection, id, err)
			}

			out = append(out, domain.Record{
				Collection: collection,
				OrgID:      orgID,
				ID:         id,
				Data:       data,
			})
		}
		return nil
	})
	if err != nil {
		s.metrics.StorageOperations.WithLabelValues("list", "false").Inc()
		return nil, err
	}

	s.metrics.StorageOperations.WithLabelValues("list", "true").Inc()
	return out, nil
}

// Delete removes a record
func (s *Storage) Delete(ctx context.Context, collection, orgID, id string) error {
	timer := prometheus.NewTimer(s.metrics.StorageOperationDuration.WithLabelValues("delete"))
	defer timer.ObserveDuration()

	key := recordKey(collection, orgID, id)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		return txn.Delete(key)
	})

	if s.cache != nil {
		s.cache.remove(string(key))
	}

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		s.metrics.StorageOperations.WithLabelValues("delete", "false").Inc()
		return fmt.Errorf("failed to delete %s %s: %w", collection, id, err)
	}

	s.metrics.StorageOperations.WithLabelValues("delete", "true").Inc()
	return nil
}

// Close flushes and closes the database
func (s *Storage) Close() error {
	s.logger.Info().Msg("Closing Badger storage")
	if s.cache != nil {
		s.cache.clear()
	}
	return s.db.Close()
}
