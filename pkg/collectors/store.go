package collectors

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"

	"github.com/yair/localgeo/pkg/config"
	"github.com/yair/localgeo/pkg/domain"
)

// Store is a KeyValueStore that owns a closable resource.
type Store interface {
	domain.KeyValueStore
	io.Closer
}

// NewStore builds the persistence selected by cfg.Driver.
func NewStore(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		db, err := NewSQLiteDB(cfg.Path)
		if err != nil {
			return nil, err
		}
		store, err := NewSQLiteStore(db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return store, nil
	case "memory":
		return NewMemoryStore(cfg.MemorySizeMB), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
