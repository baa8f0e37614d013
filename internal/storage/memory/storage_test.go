package memory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/nkkko/eventops/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoragePutGet(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()

	rec := domain.Record{Collection: "tasks", OrgID: "org-1", ID: "t1", Data: json.RawMessage(`{"title":"a"}`)}
	require.NoError(t, s.Put(ctx, rec))

	got, err := s.Get(ctx, "tasks", "org-1", "t1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"a"}`, string(got.Data))

	_, err = s.Get(ctx, "tasks", "org-2", "t1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStorageCopiesData(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()

	data := []byte(`{"n":1}`)
	require.NoError(t, s.Put(ctx, domain.Record{Collection: "c", OrgID: "o", ID: "1", Data: data}))
	data[5] = '2'

	got, err := s.Get(ctx, "c", "o", "1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(got.Data))
}

func TestStorageListScopedAndSorted(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.Put(ctx, domain.Record{Collection: "tasks", OrgID: "org-1", ID: id, Data: json.RawMessage(`{}`)}))
	}
	require.NoError(t, s.Put(ctx, domain.Record{Collection: "tasks", OrgID: "org-2", ID: "z", Data: json.RawMessage(`{}`)}))
	require.NoError(t, s.Put(ctx, domain.Record{Collection: "assets", OrgID: "org-1", ID: "x", Data: json.RawMessage(`{}`)}))

	recs, err := s.List(ctx, "tasks", "org-1")
	require.NoError(t, err)

	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestStorageDelete(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, domain.Record{Collection: "kits", OrgID: "org-1", ID: "k1", Data: json.RawMessage(`{}`)}))
	require.NoError(t, s.Delete(ctx, "kits", "org-1", "k1"))

	assert.ErrorIs(t, s.Delete(ctx, "kits", "org-1", "k1"), domain.ErrNotFound)
	_, err := s.Get(ctx, "kits", "org-1", "k1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
