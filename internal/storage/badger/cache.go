package badger

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/nkkko/eventops/internal/metrics"
)

// cache is a read-through layer for frequently accessed records.
//
// Writers call set or remove after committing. Readers take a generation
// before reading the database and fill only if no write happened since, so
// a slow read can never replace a newer value.
type cache struct {
	records    *lru.TwoQueueCache
	mutex      sync.RWMutex
	writes     uint64
	metrics    *metrics.Metrics
	expiration time.Duration
}

// cacheItem represents a record value with an expiration time
type cacheItem struct {
	value      []byte
	expiration time.Time
}

func newCache(capacity int, expiration time.Duration) (*cache, error) {
	records, err := lru.New2Q(capacity)
	if err != nil {
		return nil, err
	}

	return &cache{
		records:    records,
		metrics:    metrics.GetMetrics(),
		expiration: expiration,
	}, nil
}

// get returns a copy of the cached value for key
func (c *cache) get(key string) ([]byte, bool) {
	c.mutex.RLock()
	value, found := c.records.Get(key)
	c.mutex.RUnlock()

	if !found {
		c.metrics.StorageOperations.WithLabelValues("cache_miss", "true").Inc()
		return nil, false
	}

	item := value.(cacheItem)
	if time.Now().After(item.expiration) {
		c.remove(key)
		c.metrics.StorageOperations.WithLabelValues("cache_expired", "true").Inc()
		return nil, false
	}

	c.metrics.StorageOperations.WithLabelValues("cache_hit", "true").Inc()
	return append([]byte(nil), item.value...), true
}

// set stores a value just written to the database
func (c *cache) set(key string, value []byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.writes++
	c.add(key, value)
}

// generation returns the write counter to pass to fill
func (c *cache) generation() uint64 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.writes
}

// fill stores a value read from the database, unless the key is already
// cached or any write landed after generation was taken
func (c *cache) fill(key string, value []byte, generation uint64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.writes != generation || c.records.Contains(key) {
		return
	}
	c.add(key, value)
}

func (c *cache) add(key string, value []byte) {
	c.records.Add(key, cacheItem{
		value:      append([]byte(nil), value...),
		expiration: time.Now().Add(c.expiration),
	})
}

func (c *cache) remove(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.writes++
	c.records.Remove(key)
}

func (c *cache) clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.records.Purge()
}
