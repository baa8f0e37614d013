package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nkkko/eventops/internal/api"
	"github.com/nkkko/eventops/internal/invalidation"
	"github.com/nkkko/eventops/internal/operations"
	"github.com/nkkko/eventops/internal/storage/memory"
	"github.com/nkkko/eventops/internal/views"
	"github.com/nkkko/eventops/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Client {
	t.Helper()

	bus := invalidation.NewBus()
	svc := operations.NewService(memory.NewStorage(), bus)
	manager, err := views.NewManager(views.DefaultConfig(), bus, views.Catalog(svc))
	require.NoError(t, err)
	t.Cleanup(manager.Close)

	srv := httptest.NewServer(api.NewAPI(api.DefaultConfig(), svc, manager, bus).Handler())
	t.Cleanup(srv.Close)

	return New(srv.URL + "/")
}

func TestClientTaskLifecycle(t *testing.T) {
	c := newTestServer(t)
	ctx := context.Background()

	task, err := c.CreateTask(ctx, "org-1", model.CreateTaskRequest{Title: "Rig lights"})
	require.NoError(t, err)
	assert.Equal(t, model.TaskTodo, task.Status)

	snap, err := c.View(ctx, "org-1", "tasks", ViewParams{Filter: "active"})
	require.NoError(t, err)
	var tasks []model.Task
	require.NoError(t, json.Unmarshal(snap.Data, &tasks))
	assert.Len(t, tasks, 1)

	task, err = c.UpdateTaskStatus(ctx, "org-1", task.ID, model.TaskDone)
	require.NoError(t, err)
	assert.Equal(t, model.TaskDone, task.Status)

	snap, err = c.View(ctx, "org-1", "tasks", ViewParams{Filter: "active"})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(snap.Data, &tasks))
	assert.Empty(t, tasks)
	assert.Equal(t, uint64(2), snap.Version)

	require.NoError(t, c.DeleteTask(ctx, "org-1", task.ID))
}

func TestClientDecodesAPIErrors(t *testing.T) {
	c := newTestServer(t)
	ctx := context.Background()

	err := c.DeleteTask(ctx, "org-1", "missing")
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "not_found", apiErr.Code)

	_, err = c.CreateEvent(ctx, "org-1", model.CreateEventRequest{})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestClientInvalidateAndViews(t *testing.T) {
	c := newTestServer(t)
	ctx := context.Background()

	keys, err := c.Invalidate(ctx, "tasks/org-1", "dashboard/org-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"[tasks,org-1]", "[dashboard,org-1]"}, keys)

	names, err := c.Views(ctx, "org-1")
	require.NoError(t, err)
	assert.Contains(t, names, "dashboard")
}
