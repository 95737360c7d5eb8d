// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// artifact.go provides a Valkey-backed cache for generated artifact sets.
// Generation is deterministic, so a set stays valid until its schema entry
// changes; keys fold in the entry's updated_at to self-invalidate on edits.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"appforge/internal/generator"
)

const (
	// artifactKeyPrefix is the Valkey key prefix for cached artifact sets.
	artifactKeyPrefix = "artifacts:"

	// DefaultArtifactTTL is how long a generated set stays cached.
	DefaultArtifactTTL = 30 * time.Minute
)

// ArtifactCache stores generation pipeline outputs in Valkey. A nil
// ArtifactCache is a no-op, so callers need no cache-enabled branches.
type ArtifactCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewArtifactCache creates an artifact cache backed by the given Valkey
// client. Passing a nil client returns a nil cache, which misses always.
func NewArtifactCache(client *redis.Client, ttl time.Duration) *ArtifactCache {
	if client == nil {
		return nil
	}
	if ttl == 0 {
		ttl = DefaultArtifactTTL
	}
	return &ArtifactCache{client: client, ttl: ttl}
}

// EntryKey returns the cache key for a schema entry generation run.
func EntryKey(entryID uuid.UUID, updatedAt time.Time) string {
	return fmt.Sprintf("%s:%d", entryID, updatedAt.UnixNano())
}

// Get retrieves a cached artifact set. Returns nil on miss or decode error.
func (ac *ArtifactCache) Get(ctx context.Context, key string) *generator.ArtifactSet {
	if ac == nil {
		return nil
	}
	val, err := ac.client.Get(ctx, artifactKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		slog.Warn("artifact cache get error", "key", key, "error", err)
		return nil
	}
	var set generator.ArtifactSet
	if err := json.Unmarshal(val, &set); err != nil {
		slog.Warn("artifact cache decode error", "key", key, "error", err)
		return nil
	}
	slog.Debug("artifact cache hit", "key", key)
	return &set
}

// Set stores an artifact set with the configured TTL.
func (ac *ArtifactCache) Set(ctx context.Context, key string, set *generator.ArtifactSet) {
	if ac == nil {
		return
	}
	val, err := json.Marshal(set)
	if err != nil {
		slog.Warn("artifact cache encode error", "key", key, "error", err)
		return
	}
	if err := ac.client.Set(ctx, artifactKeyPrefix+key, val, ac.ttl).Err(); err != nil {
		slog.Warn("artifact cache set error", "key", key, "error", err)
	}
}

// InvalidateEntry removes every cached set of one schema entry by scanning
// for its id prefix. Used on force delete, where the row is gone and no
// updated_at remains to age the key out naturally.
func (ac *ArtifactCache) InvalidateEntry(ctx context.Context, entryID uuid.UUID) {
	if ac == nil {
		return
	}
	var cursor uint64
	var deleted int
	pattern := artifactKeyPrefix + entryID.String() + ":*"
	for {
		keys, nextCursor, err := ac.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("artifact cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := ac.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("artifact cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("artifact cache invalidated", "entry", entryID, "deleted", deleted)
	}
}
