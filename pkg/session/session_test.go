package session

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
	"github.com/matzehuels/jsonflow/pkg/visualizer"
)

func quietOptions() visualizer.Options {
	return visualizer.Options{Logger: log.New(io.Discard)}
}

func TestNew(t *testing.T) {
	s := New(time.Hour)
	assert.Len(t, s.ID, 36)
	assert.False(t, s.IsExpired())
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt, time.Second)
	assert.NotEqual(t, s.ID, New(time.Hour).ID)

	expired := New(-time.Second)
	assert.True(t, expired.IsExpired())
	expired.Touch(time.Minute)
	assert.False(t, expired.IsExpired())
}

func TestCaptureAndRestore(t *testing.T) {
	vz := visualizer.New(quietOptions())
	vz.RenderGraph(jsonvalue.MustParse(`{"x": 1, "y": 2}`))
	_, err := vz.Toggle("n0")
	require.NoError(t, err)

	sess := New(time.Hour)
	require.NoError(t, sess.Capture(vz))
	assert.Equal(t, `[1,2]`, string(sess.Value))
	assert.Len(t, sess.Graph.Nodes, 3)

	restored, err := sess.Visualizer(quietOptions())
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, jsonvalue.Format(restored.Last()))

	_, err = restored.Toggle("n0")
	require.NoError(t, err)
	v, err := restored.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"x":1,"y":2}`, jsonvalue.Format(v))
}

// testStore exercises the Store contract shared by all backends.
func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	vz := visualizer.New(quietOptions())
	vz.RenderGraph(jsonvalue.MustParse(`{"a": [1, 2]}`))
	sess := New(time.Hour)
	sess.Name = "demo"
	require.NoError(t, sess.Capture(vz))
	require.NoError(t, store.Set(ctx, sess))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "demo", got.Name)
	assert.Equal(t, sess.Graph, got.Graph)
	assert.JSONEq(t, string(sess.Value), string(got.Value))

	expired := New(-time.Minute)
	require.NoError(t, store.Set(ctx, expired))
	_, err = store.Get(ctx, expired.ID)
	assert.ErrorIs(t, err, ErrExpired)

	require.NoError(t, store.Cleanup(ctx))
	require.NoError(t, store.Delete(ctx, sess.ID))
	require.NoError(t, store.Delete(ctx, sess.ID), "deleting twice is not an error")
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Close())
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore(0))
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	testStore(t, store)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	testStore(t, store)
}

func TestSQLiteStoreCleanup(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	live := New(time.Hour)
	require.NoError(t, store.Set(ctx, live))
	require.NoError(t, store.Set(ctx, New(-time.Hour)))

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, store.Cleanup(ctx))
	n, err = store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Set replaces the row in place.
	live.Name = "renamed"
	require.NoError(t, store.Set(ctx, live))
	got, err := store.Get(ctx, live.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	n, err = store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLiteStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	sess := New(time.Hour)
	require.NoError(t, store.Set(ctx, sess))
	require.NoError(t, store.Close())

	store, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()
	_, err = store.Get(ctx, sess.ID)
	assert.NoError(t, err)
}

func TestMemoryStoreEvictsOldest(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(2)

	first, second, third := New(time.Hour), New(time.Hour), New(time.Hour)
	first.UpdatedAt = time.Now().Add(-time.Hour)
	for _, s := range []*Session{first, second, third} {
		require.NoError(t, store.Set(ctx, s))
	}

	assert.Equal(t, 2, store.Len())
	_, err := store.Get(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Replacing an existing session does not evict.
	require.NoError(t, store.Set(ctx, third))
	assert.Equal(t, 2, store.Len())
}

func TestMemoryStoreCleanup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	require.NoError(t, store.Set(ctx, New(-time.Second)))
	require.NoError(t, store.Set(ctx, New(time.Hour)))

	require.NoError(t, store.Cleanup(ctx))
	assert.Equal(t, 1, store.Len())
}

func TestStartCleanup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	require.NoError(t, store.Set(ctx, New(-time.Second)))

	stop := StartCleanup(store, 10*time.Millisecond, nil)
	defer stop()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 10*time.Millisecond)

	assert.NotPanics(t, func() {
		stop()
		stop()
	})
}

func TestFileStoreCleanup(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	live, dead := New(time.Hour), New(-time.Hour)
	require.NoError(t, store.Set(ctx, live))
	require.NoError(t, store.Set(ctx, dead))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o600))

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, store.Cleanup(ctx))
	n, err = store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := store.Get(ctx, live.ID)
	require.NoError(t, err)
	assert.Equal(t, live.ID, got.ID)
}

func TestFileStorePathStaysInDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "passwd.json"), store.file("../../etc/passwd"))
}

func TestRedisKeys(t *testing.T) {
	assert.Equal(t, "jsonflow:session:abc", NewRedisStoreWithClient(nil, "").key("abc"))
	assert.Equal(t, "custom:abc", NewRedisStoreWithClient(nil, "custom:").key("abc"))
}

func TestMongoDocumentShape(t *testing.T) {
	sess := New(time.Hour)
	sess.Name = "demo"
	data, err := bson.Marshal(sess)
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(data, &doc))
	assert.Equal(t, sess.ID, doc["_id"])
	assert.Equal(t, "demo", doc["name"])
	assert.Contains(t, doc, "expires_at")
	assert.Contains(t, doc, "graph")

	assert.Equal(t, bson.M{"_id": "abc"}, byID("abc"))
	now := time.Now()
	assert.Equal(t, bson.M{"expires_at": bson.M{"$lt": now}}, expiredBefore(now))
	assert.Equal(t, bson.D{{Key: "expires_at", Value: 1}}, expiryIndex().Keys)
}
