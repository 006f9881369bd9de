package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/google/uuid"

	"github.com/norun9/mobilecart/config"
	"github.com/norun9/mobilecart/logging"
)

// testStorage exercises the behaviour every backend must share.
func testStorage(t *testing.T, st Storage) {
	t.Helper()
	ctx := context.Background()
	key := "@cart:" + uuid.NewString()

	_, ok, err := st.GetItem(ctx, key)
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, st.SetItem(ctx, key, `[{"id":"a"}]`))
	v, ok, err := st.GetItem(ctx, key)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"a"}]`, v)

	assert.NoError(t, st.SetItem(ctx, key, `[]`))
	v, _, err = st.GetItem(ctx, key)
	assert.NoError(t, err)
	assert.Equal(t, `[]`, v)

	assert.NoError(t, st.RemoveItem(ctx, key))
	_, ok, err = st.GetItem(ctx, key)
	assert.NoError(t, err)
	assert.False(t, ok)

	// Removing a missing key is fine.
	assert.NoError(t, st.RemoveItem(ctx, key))
	assert.True(t, st.Ping(ctx))
}

func TestLocalStorage(t *testing.T) {
	testStorage(t, NewLocalStorage())
}

func TestLocalStorageHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := NewLocalStorage()
	assert.Error(t, st.SetItem(ctx, "k", "v"))
	_, _, err := st.GetItem(ctx, "k")
	assert.Error(t, err)
}

func TestSQLiteStorage(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cart.db")
	st, err := OpenSQLiteStorage(ctx, path)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	testStorage(t, st)
}

func TestSQLiteStorageSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cart.db")

	st, err := OpenSQLiteStorage(ctx, path)
	assert.NoError(t, err)
	assert.NoError(t, st.SetItem(ctx, "@cart", `[{"id":"a","quantity":2}]`))
	assert.NoError(t, st.Close())

	st, err = OpenSQLiteStorage(ctx, path)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	v, ok, err := st.GetItem(ctx, "@cart")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"a","quantity":2}]`, v)
}

func TestOpenSQLiteStorageRequiresPath(t *testing.T) {
	_, err := OpenSQLiteStorage(context.Background(), "  ")
	assert.Error(t, err)
}

func TestRedisStorage(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st := NewRedisStorage(addr,
		WithNamespace("mobilecart:test:"+uuid.NewString()),
		WithRedisLogger(logging.Discard()),
		WithConnectRetry(3, 100*time.Millisecond),
	)
	t.Cleanup(func() { _ = st.Close() })
	assert.NoError(t, st.Initialize(ctx))

	testStorage(t, st)
}

func TestRedisStorageInitializeGivesUp(t *testing.T) {
	st := NewRedisStorage("127.0.0.1:1",
		WithRedisLogger(logging.Discard()),
		WithConnectRetry(2, time.Millisecond),
	)
	t.Cleanup(func() { _ = st.Close() })
	assert.Error(t, st.Initialize(context.Background()))
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	log := logging.Discard()

	st, err := New(ctx, config.Config{StorageBackend: config.BackendLocal}, log)
	assert.NoError(t, err)
	_, ok := st.(*LocalStorage)
	assert.True(t, ok)

	st, err = New(ctx, config.Config{
		StorageBackend: config.BackendSQLite,
		SQLitePath:     filepath.Join(t.TempDir(), "cart.db"),
	}, log)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	_, ok = st.(*SQLiteStorage)
	assert.True(t, ok)

	_, err = New(ctx, config.Config{StorageBackend: config.BackendRedis}, log)
	assert.Error(t, err)

	_, err = New(ctx, config.Config{StorageBackend: "etcd"}, log)
	assert.Error(t, err)
}
