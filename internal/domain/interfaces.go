package domain

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/nkkko/eventops/pkg/querykey"
)

// Unsubscribe removes a subscription. Calling it more than once is a no-op.
type Unsubscribe func()

// Publisher announces that the data named by keys may be stale
type Publisher interface {
	// Publish invokes every subscription whose keys are related to keys
	Publish(ctx context.Context, keys ...querykey.Key)
}

// Subscriber registers interest in keys
type Subscriber interface {
	// Subscribe registers fn for keys and returns the handle that removes it
	Subscribe(keys []querykey.Key, fn func()) Unsubscribe
}

// InvalidationBus is both sides of the invalidation bus
type InvalidationBus interface {
	Publisher
	Subscriber
}

// ErrNotFound is returned by a StorageEngine when a record does not exist
var ErrNotFound = errors.New("record not found")

// Record is one stored JSON document
type Record struct {
	Collection string
	OrgID      string
	ID         string
	Data       json.RawMessage
}

// StorageEngine defines the interface for record storage backends
type StorageEngine interface {
	// Put creates or replaces a record
	Put(ctx context.Context, rec Record) error

	// Get retrieves a record, or ErrNotFound
	Get(ctx context.Context, collection, orgID, id string) (Record, error)

	// List returns every record of a collection for an organization, ordered by id
	List(ctx context.Context, collection, orgID string) ([]Record, error)

	// Delete removes a record, or returns ErrNotFound
	Delete(ctx context.Context, collection, orgID, id string) error

	// Close releases the underlying resources
	Close() error
}
