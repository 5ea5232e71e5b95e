// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

// published.go provides a Valkey-backed JSON cache for the public API.
// Published issues only change on publish/cancel, so responses are cached
// aggressively and invalidated per magazine when an issue's visibility
// changes.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// publishedKeyPrefix is the Valkey key prefix for cached public responses.
	publishedKeyPrefix = "pub:"

	// DefaultPublishedTTL is how long a public response stays cached.
	DefaultPublishedTTL = 5 * time.Minute
)

// PublishedCache manages public API response caching in Valkey.
type PublishedCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPublishedCache creates a cache backed by the given Valkey client.
func NewPublishedCache(client *redis.Client, ttl time.Duration) *PublishedCache {
	if ttl == 0 {
		ttl = DefaultPublishedTTL
	}
	return &PublishedCache{client: client, ttl: ttl}
}

// Key builds the cache key for a public resource under a magazine, e.g.
// Key("demo-coffee", "daily-grind", "issue", "2026-09").
func Key(tenantSlug, magazineSlug string, parts ...string) string {
	key := tenantSlug + ":" + magazineSlug
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// Get retrieves a cached JSON response. Returns (nil, false) on miss.
func (pc *PublishedCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, publishedKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("published cache get error", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

// Set stores a JSON response with the configured TTL.
func (pc *PublishedCache) Set(ctx context.Context, key string, payload []byte) {
	if err := pc.client.Set(ctx, publishedKeyPrefix+key, payload, pc.ttl).Err(); err != nil {
		slog.Warn("published cache set error", "key", key, "error", err)
	}
}

// InvalidateMagazine removes every cached response for one magazine by
// scanning for its prefix. Called on publish, cancel, and ad slot updates.
func (pc *PublishedCache) InvalidateMagazine(ctx context.Context, tenantSlug, magazineSlug string) {
	pc.deleteByPattern(ctx, publishedKeyPrefix+tenantSlug+":"+magazineSlug+":*")
}

// InvalidateAll removes all cached public responses.
func (pc *PublishedCache) InvalidateAll(ctx context.Context) {
	pc.deleteByPattern(ctx, publishedKeyPrefix+"*")
}

func (pc *PublishedCache) deleteByPattern(ctx context.Context, pattern string) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("published cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("published cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("published cache cleared", "pattern", pattern, "deleted", deleted)
	}
}
