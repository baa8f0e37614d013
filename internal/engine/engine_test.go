package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nkkko/eventops/internal/config"
	"github.com/nkkko/eventops/internal/views"
	"github.com/nkkko/eventops/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func testConfig(t *testing.T, storageType string) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Storage.Type = storageType
	cfg.Storage.DataDir = t.TempDir()
	cfg.Views.RefreshWorkers = 2
	return cfg
}

func runEngine(t *testing.T, e *Engine) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Start(ctx) }()

	return func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("engine did not stop")
		}

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		require.NoError(t, e.Shutdown(shutdownCtx))
	}
}

func TestEngineLifecycleDoesNotLeak(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	for _, storageType := range []string{"memory", "badger"} {
		t.Run(storageType, func(t *testing.T) {
			e, err := New(context.Background(), testConfig(t, storageType))
			require.NoError(t, err)

			stop := runEngine(t, e)
			stop()

			assert.Zero(t, e.bus.Len())
		})
	}
}

func TestEngineRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Type = "postgres"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestEngineBackgroundRefresh(t *testing.T) {
	e, err := New(context.Background(), testConfig(t, "memory"))
	require.NoError(t, err)
	stop := runEngine(t, e)
	defer stop()

	ctx := context.Background()
	scope := views.Scope{OrgID: "org-1", Filter: "all"}

	snap, err := e.Views().Snapshot(ctx, views.ViewTasks, scope)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Version)

	_, err = e.Operations().CreateTask(ctx, "org-1", model.CreateTaskRequest{Title: "Load in"})
	require.NoError(t, err)

	v, err := e.Views().View(views.ViewTasks, scope)
	require.NoError(t, err)

	// A refresh worker reloads the stale view without a reader asking
	assert.Eventually(t, func() bool {
		current := v.Current()
		return current != nil && current.Version == 2
	}, 2*time.Second, 10*time.Millisecond)

	assert.Len(t, v.Current().Data, 1)
}

func TestEngineServesAPI(t *testing.T) {
	e, err := New(context.Background(), testConfig(t, "memory"))
	require.NoError(t, err)
	stop := runEngine(t, e)
	defer stop()

	req := httptest.NewRequest(http.MethodPost, "/orgs/org-1/events",
		strings.NewReader(`{"name":"Harbour Festival"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.API().Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	events, err := e.Operations().ListEvents(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
