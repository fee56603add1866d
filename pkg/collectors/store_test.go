package collectors

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yair/localgeo/pkg/config"
	"github.com/yair/localgeo/pkg/domain"
)

func storeImplementations(t *testing.T) map[string]Store {
	db, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)

	sqliteStore, err := NewSQLiteStore(db)
	require.NoError(t, err)

	return map[string]Store{
		"sqlite": sqliteStore,
		"memory": NewMemoryStore(1),
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()

	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("missing key", func(t *testing.T) {
				_, err := store.Get(ctx, "events_Nowhere_2025-01-01")
				assert.ErrorIs(t, err, domain.ErrNotFound)
			})

			t.Run("set then get", func(t *testing.T) {
				require.NoError(t, store.Set(ctx, domain.KeyToken, []byte("abc.def.ghi")))

				got, err := store.Get(ctx, domain.KeyToken)
				require.NoError(t, err)
				assert.Equal(t, "abc.def.ghi", string(got))
			})

			t.Run("overwrite keeps last value", func(t *testing.T) {
				require.NoError(t, store.Set(ctx, domain.KeySavedEvents, []byte(`[]`)))
				require.NoError(t, store.Set(ctx, domain.KeySavedEvents, []byte(`[{"id":"e1"}]`)))

				got, err := store.Get(ctx, domain.KeySavedEvents)
				require.NoError(t, err)
				assert.Equal(t, `[{"id":"e1"}]`, string(got))
			})

			t.Run("delete", func(t *testing.T) {
				require.NoError(t, store.Set(ctx, domain.KeyReachedStep3, []byte("true")))
				require.NoError(t, store.Delete(ctx, domain.KeyReachedStep3))

				_, err := store.Get(ctx, domain.KeyReachedStep3)
				assert.ErrorIs(t, err, domain.ErrNotFound)

				assert.NoError(t, store.Delete(ctx, "never-set"))
			})
		})
	}
}

func TestSQLiteStore_ClosedDatabase(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store, err := NewSQLiteStore(db)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.Get(context.Background(), domain.KeyToken)
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
}

func TestMemoryStore_CloseClears(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", []byte("1")))
	require.NoError(t, store.Close())

	_, err := store.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisStore_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	store := NewRedisStore(client)
	defer store.Close()

	ctx := context.Background()
	_, err := store.Get(ctx, domain.KeyToken)
	assert.ErrorIs(t, err, domain.ErrStorageFailure)

	err = store.Set(ctx, domain.KeyToken, []byte("t"))
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite", func(t *testing.T) {
		store, err := NewStore(ctx, config.StoreConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "state.db")})
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &SQLiteStore{}, store)
	})

	t.Run("memory", func(t *testing.T) {
		store, err := NewStore(ctx, config.StoreConfig{Driver: "memory", MemorySizeMB: 1})
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, store)
	})

	t.Run("unreachable redis", func(t *testing.T) {
		_, err := NewStore(ctx, config.StoreConfig{Driver: "redis", RedisAddr: "127.0.0.1:1"})
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := NewStore(ctx, config.StoreConfig{Driver: "postgres"})
		assert.Error(t, err)
	})
}
