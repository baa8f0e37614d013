package storage

import (
	"fmt"

	"github.com/nkkko/eventops/internal/domain"
	"github.com/nkkko/eventops/internal/storage/badger"
	"github.com/nkkko/eventops/internal/storage/memory"
)

// StorageType represents the type of storage implementation to use
type StorageType string

const (
	// BadgerStorage is the default, durable storage type
	BadgerStorage StorageType = "badger"

	// MemoryStorage keeps records in process memory only
	MemoryStorage StorageType = "memory"
)

// FactoryConfig contains configuration for the storage factory
type FactoryConfig struct {
	// Storage type to create
	Type StorageType

	// Badger settings, used when Type is BadgerStorage
	Badger badger.Config
}

// DefaultFactoryConfig returns the default factory configuration
func DefaultFactoryConfig() FactoryConfig {
	return FactoryConfig{
		Type:   BadgerStorage,
		Badger: badger.DefaultConfig(),
	}
}

// CreateStorage creates a storage instance based on the factory configuration
func CreateStorage(config FactoryConfig) (domain.StorageEngine, error) {
	switch config.Type {
	case BadgerStorage, "":
		s, err := badger.NewStorage(config.Badger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case MemoryStorage:
		return memory.NewStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.Type)
	}
}
