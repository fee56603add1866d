package collectors

import (
	"context"
	"errors"
	"fmt"
	"unsafe"

	"github.com/coocood/freecache"

	"github.com/yair/localgeo/pkg/domain"
)

// MemoryStore keeps state in a fixed-size freecache arena. Entries never expire
// but may be evicted once the arena is full.
type MemoryStore struct {
	cache *freecache.Cache
}

func NewMemoryStore(sizeMB int) *MemoryStore {
	if sizeMB <= 0 {
		sizeMB = 1
	}
	return &MemoryStore{cache: freecache.NewCache(sizeMB * 1024 * 1024)}
}

// freecache copies keys internally, so the aliased bytes are never retained.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	val, err := m.cache.Get(unsafeStringToBytes(key))
	if errors.Is(err, freecache.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w: %v", key, domain.ErrStorageFailure, err)
	}
	return val, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	if err := m.cache.Set(unsafeStringToBytes(key), value, 0); err != nil {
		return fmt.Errorf("failed to set %s: %w: %v", key, domain.ErrStorageFailure, err)
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.cache.Del(unsafeStringToBytes(key))
	return nil
}

func (m *MemoryStore) Close() error {
	m.cache.Clear()
	return nil
}
