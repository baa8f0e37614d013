package views

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/nkkko/eventops/internal/invalidation"
	"github.com/nkkko/eventops/pkg/querykey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewMountUnmountIsIdempotent(t *testing.T) {
	bus := invalidation.NewBus()
	def, _ := countingDef("tasks")
	v := NewView(def, Scope{OrgID: "org-1"}, bus, nil)

	v.Mount()
	v.Mount()
	assert.True(t, v.Mounted())
	assert.Equal(t, 1, bus.Len())

	v.Unmount()
	v.Unmount()
	assert.False(t, v.Mounted())
	assert.Equal(t, 0, bus.Len())
}

func TestViewInvalidationCallsOnStale(t *testing.T) {
	bus := invalidation.NewBus()
	def, _ := countingDef("tasks")

	var stale []*View
	v := NewView(def, Scope{OrgID: "org-1", Filter: "active"}, bus, func(v *View) {
		stale = append(stale, v)
	})
	v.Mount()

	_, err := v.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, v.Stale())

	bus.Publish(context.Background(), querykey.TasksAll("org-1"))
	assert.True(t, v.Stale())
	assert.Equal(t, []*View{v}, stale)
}

func TestViewCurrentDoesNotLoad(t *testing.T) {
	bus := invalidation.NewBus()
	def, loads := countingDef("tasks")
	v := NewView(def, Scope{OrgID: "org-1"}, bus, nil)
	v.Mount()

	assert.Nil(t, v.Current())

	snap, err := v.Get(context.Background())
	require.NoError(t, err)
	bus.Publish(context.Background(), querykey.TasksAll("org-1"))

	assert.Same(t, snap, v.Current())
	assert.Equal(t, int64(1), atomic.LoadInt64(loads))
}

func TestViewRescopeResubscribes(t *testing.T) {
	bus := invalidation.NewBus()
	def, loads := countingDef("tasks")
	v := NewView(def, Scope{OrgID: "org-1"}, bus, nil)
	v.Mount()

	_, err := v.Get(context.Background())
	require.NoError(t, err)

	v.Rescope(Scope{OrgID: "org-2"})
	assert.True(t, v.Mounted())
	assert.Equal(t, 1, bus.Len())
	assert.True(t, v.Stale())

	snap, err := v.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "org-2", snap.Scope.OrgID)

	// Old scope no longer reaches the view
	bus.Publish(context.Background(), querykey.TasksAll("org-1"))
	assert.False(t, v.Stale())

	bus.Publish(context.Background(), querykey.TasksAll("org-2"))
	assert.True(t, v.Stale())
	assert.Equal(t, int64(2), *loads)
}

func TestCatalogKeysMatchVocabulary(t *testing.T) {
	defs := Catalog(nil)
	scope := Scope{OrgID: "org-1", EventID: "ev-1", ID: "task-1"}

	names := make(map[string]bool)
	for _, def := range defs {
		names[def.Name] = true
		require.NoError(t, def.Validate(scope), def.Name)
		assert.NotEmpty(t, def.Keys(scope), def.Name)
	}
	assert.Len(t, names, 14)

	byName := make(map[string]Definition)
	for _, def := range defs {
		byName[def.Name] = def
	}
	assert.Equal(t, []querykey.Key{querykey.Dashboard("org-1", "ev-1")}, byName[ViewDashboard].Keys(scope))
	assert.Equal(t, []querykey.Key{querykey.TasksByOrg("org-1")}, byName[ViewTasks].Keys(Scope{OrgID: "org-1"}))
	assert.ErrorIs(t, byName[ViewZones].Validate(Scope{OrgID: "org-1"}), ErrInvalidScope)
	assert.Equal(t, []querykey.Key{querykey.Event("ev-9")}, byName[ViewEvent].Keys(Scope{OrgID: "org-1", ID: "ev-9"}))
	assert.ErrorIs(t, byName[ViewEvent].Validate(Scope{OrgID: "org-1"}), ErrInvalidScope)
	assert.ErrorIs(t, byName[ViewTask].Validate(Scope{OrgID: "org-1"}), ErrInvalidScope)
}
