package localstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annoylog/backend/internal/application/adapter"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "annoylog:", ttl), mr
}

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// exerciseStore runs the contract every LocalStore must satisfy.
func exerciseStore(t *testing.T, store adapter.LocalStore) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, found, err := store.Get(ctx, "device:a:staged_entries")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "device:a:staged_entries", `[{"id":"1"}]`))
		value, found, err := store.Get(ctx, "device:a:staged_entries")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `[{"id":"1"}]`, value)
	})

	t.Run("set replaces", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "device:a:staged_entries", `[]`))
		value, _, err := store.Get(ctx, "device:a:staged_entries")
		require.NoError(t, err)
		assert.Equal(t, `[]`, value)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, store.Remove(ctx, "device:a:staged_entries"))
		_, found, err := store.Get(ctx, "device:a:staged_entries")
		require.NoError(t, err)
		assert.False(t, found)

		assert.NoError(t, store.Remove(ctx, "device:a:never_set"))
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})
}

func TestRedisStore(t *testing.T) {
	store, mr := newRedisStore(t, 0)
	exerciseStore(t, store)

	t.Run("keys carry the prefix", func(t *testing.T) {
		require.NoError(t, store.Set(context.Background(), "device:b:pro_owner", "x"))
		assert.True(t, mr.Exists("annoylog:device:b:pro_owner"))
	})

	t.Run("unreachable server", func(t *testing.T) {
		broken, mr := newRedisStore(t, 0)
		mr.Close()
		_, _, err := broken.Get(context.Background(), "k")
		assert.Error(t, err)
		assert.Error(t, broken.Ping(context.Background()))
	})
}

func TestRedisStore_TTL(t *testing.T) {
	store, mr := newRedisStore(t, time.Hour)
	require.NoError(t, store.Set(context.Background(), "device:c:pro_flag", "{}"))

	mr.FastForward(2 * time.Hour)

	_, found, err := store.Get(context.Background(), "device:c:pro_flag")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteStore(t *testing.T) {
	exerciseStore(t, newSQLiteStore(t))
}
