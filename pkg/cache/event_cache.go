package cache

import (
	"context"
	"errors"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/yair/localgeo/pkg/domain"
	"github.com/yair/localgeo/pkg/observability"
)

const keyPrefix = "events_"

// Key is the storage key of a query's resolved events.
func Key(query domain.Query) string {
	return keyPrefix + query.City + "_" + query.Date
}

// EventCache stores one CacheEntry per query. Entries never expire.
type EventCache struct {
	store   domain.KeyValueStore
	codec   Codec
	metrics observability.MetricsProviderInterface
	logger  zerolog.Logger
	now     func() time.Time
}

func NewEventCache(store domain.KeyValueStore, codec Codec, metrics observability.MetricsProviderInterface, logger zerolog.Logger) *EventCache {
	if codec == nil {
		codec = PlainCodec()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics()
	}
	return &EventCache{
		store:   store,
		codec:   codec,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Get returns the full entry for query, or false. Undecodable entries count as misses.
func (c *EventCache) Get(ctx context.Context, query domain.Query) (*domain.CacheEntry, bool) {
	key := Key(query)

	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		c.metrics.IncCacheMisses()
		return nil, false
	}

	data, err := c.codec.Decode(raw)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache entry could not be decompressed")
		c.metrics.IncCacheMisses()
		return nil, false
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Events == nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache entry could not be decoded")
		c.metrics.IncCacheMisses()
		return nil, false
	}

	c.metrics.IncCacheHits()
	return &entry, true
}

// Put writes entry under its query key. Failures are logged and reported as false.
func (c *EventCache) Put(ctx context.Context, entry domain.CacheEntry) bool {
	key := Key(entry.Query)
	if entry.Timestamp == 0 {
		entry.Timestamp = c.now().UnixMilli()
	}
	if entry.Events == nil {
		entry.Events = []domain.MergedEvent{}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache entry could not be encoded")
		return false
	}

	encoded, err := c.codec.Encode(data)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache entry could not be compressed")
		return false
	}

	if err := c.store.Set(ctx, key, encoded); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		return false
	}

	return true
}

func (c *EventCache) Evict(ctx context.Context, query domain.Query) error {
	return c.store.Delete(ctx, Key(query))
}
