// Package storage selects a record storage backend and provides typed
// helpers for reading and writing domain entities through it.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nkkko/eventops/internal/domain"
)

// Storage is the record store used by operations and views
type Storage = domain.StorageEngine

// ErrNotFound is returned when a record does not exist
var ErrNotFound = domain.ErrNotFound

// Collection names, one per entity kind
const (
	CollectionEvents      = "events"
	CollectionZones       = "zones"
	CollectionTasks       = "tasks"
	CollectionWorkOrders  = "work_orders"
	CollectionAssets      = "assets"
	CollectionKits        = "kits"
	CollectionChecklists  = "checklists"
	CollectionMovements   = "movements"
	CollectionStaff       = "staff_members"
	CollectionAssignments = "assignments"
	CollectionCredentials = "credentials"
)

// NewRecord marshals v into a record
func NewRecord(collection, orgID, id string, v any) (domain.Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return domain.Record{}, fmt.Errorf("failed to marshal %s %s: %w", collection, id, err)
	}
	return domain.Record{Collection: collection, OrgID: orgID, ID: id, Data: data}, nil
}

// Decode unmarshals the record data into v
func Decode(rec domain.Record, v any) error {
	if err := json.Unmarshal(rec.Data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s %s: %w", rec.Collection, rec.ID, err)
	}
	return nil
}

// GetAs loads a record and decodes it into a T
func GetAs[T any](ctx context.Context, s domain.StorageEngine, collection, orgID, id string) (T, error) {
	var v T
	rec, err := s.Get(ctx, collection, orgID, id)
	if err != nil {
		return v, err
	}
	err = Decode(rec, &v)
	return v, err
}

// ListAs loads every record of a collection and decodes them into Ts
func ListAs[T any](ctx context.Context, s domain.StorageEngine, collection, orgID string) ([]T, error) {
	recs, err := s.List(ctx, collection, orgID)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		var v T
		if err := Decode(rec, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// PutAs marshals v and stores it
func PutAs(ctx context.Context, s domain.StorageEngine, collection, orgID, id string, v any) error {
	rec, err := NewRecord(collection, orgID, id, v)
	if err != nil {
		return err
	}
	return s.Put(ctx, rec)
}
