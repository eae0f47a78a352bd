package kvstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeplus/internal/config"
	"timeplus/internal/kvstore"
)

func backends(t *testing.T) map[string]func(t *testing.T) kvstore.Store {
	t.Helper()
	return map[string]func(t *testing.T) kvstore.Store{
		"memory": func(t *testing.T) kvstore.Store {
			return kvstore.NewMemory()
		},
		"sqlite": func(t *testing.T) kvstore.Store {
			store, err := kvstore.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "kv.db"))
			require.NoError(t, err)
			return store
		},
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			t.Cleanup(func() { _ = store.Close() })

			_, ok, err := store.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Set(ctx, "p_a", `[{"time":1}]`))
			require.NoError(t, store.Set(ctx, "p_a", `[{"time":2}]`))
			value, ok, err := store.Get(ctx, "p_a")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, `[{"time":2}]`, value)

			require.NoError(t, store.SetMany(ctx, map[string]string{
				"p_c":     "true",
				"p_b":     "",
				"other_x": "1",
			}))

			keys, err := store.Keys(ctx, "p_")
			require.NoError(t, err)
			assert.Equal(t, []string{"p_a", "p_b", "p_c"}, keys)

			value, ok, err = store.Get(ctx, "p_b")
			require.NoError(t, err)
			assert.True(t, ok, "empty values are stored")
			assert.Equal(t, "", value)
		})
	}
}

func TestKeysTreatsPrefixLiterally(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			t.Cleanup(func() { _ = store.Close() })

			require.NoError(t, store.SetMany(ctx, map[string]string{
				"a_%x": "1",
				"ab_x": "2",
				"a_%":  "3",
			}))
			keys, err := store.Keys(ctx, "a_%")
			require.NoError(t, err)
			assert.Equal(t, []string{"a_%", "a_%x"}, keys)
		})
	}
}

func TestClosedStoreReturnsErrClosed(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			require.NoError(t, store.Close())
			require.NoError(t, store.Close(), "close is idempotent")

			_, _, err := store.Get(ctx, "k")
			assert.ErrorIs(t, err, kvstore.ErrClosed)
			assert.ErrorIs(t, store.Set(ctx, "k", "v"), kvstore.ErrClosed)
			assert.ErrorIs(t, store.SetMany(ctx, map[string]string{"k": "v"}), kvstore.ErrClosed)
			_, err = store.Keys(ctx, "")
			assert.ErrorIs(t, err, kvstore.ErrClosed)
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	store, err := kvstore.OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "k", "v"))
	require.NoError(t, store.Close())

	reopened, err := kvstore.OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	value, ok, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)
	assert.Equal(t, path, reopened.Path())
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Paths.StateDir = dir
	cfg.Storage.Path = filepath.Join(dir, "db", "timeplus.db")

	store, err := kvstore.Open(ctx, &cfg, nil)
	require.NoError(t, err)
	_, isSQLite := store.(*kvstore.SQLite)
	assert.True(t, isSQLite)
	require.NoError(t, store.Close())

	cfg.Storage.Backend = config.BackendMemory
	store, err = kvstore.Open(ctx, &cfg, nil)
	require.NoError(t, err)
	_, isMemory := store.(*kvstore.Memory)
	assert.True(t, isMemory)

	cfg.Storage.Backend = "redis"
	_, err = kvstore.Open(ctx, &cfg, nil)
	assert.Error(t, err)
}

func TestSnapshotCollectsPrefix(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	require.NoError(t, store.SetMany(ctx, map[string]string{"p_1": "a", "p_2": "b", "q_1": "c"}))

	snapshot, err := kvstore.Snapshot(ctx, store, "p_")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"p_1": "a", "p_2": "b"}, snapshot)
}
