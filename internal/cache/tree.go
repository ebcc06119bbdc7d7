// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// tree.go provides a Valkey-backed cache for projected category views.
// The navbar, forest and leaf list are rebuilt from the full collection on
// every request, so the encoded JSON is kept in Valkey until the next
// category change clears it.
//
// Keys are versioned by a generation counter. Readers take the generation
// before computing a view and store it under that generation; a change
// bumps the counter first, so a view computed from old data lands on a key
// nobody reads again.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"wecamp/internal/events"
)

const (
	// treeKeyPrefix is the Valkey key prefix for cached projections.
	treeKeyPrefix = "tree:"

	// generationKey holds the current cache generation.
	generationKey = treeKeyPrefix + "gen"

	// viewKeyPrefix prefixes every versioned projection key.
	viewKeyPrefix = treeKeyPrefix + "v"

	// DefaultTreeTTL bounds staleness if an invalidation is ever missed.
	DefaultTreeTTL = 10 * time.Minute
)

// Cache keys for the projections served by the public API.
const (
	NavbarKey = "navbar"
	ForestKey = "forest"
	LeavesKey = "leaves"
)

// RootKey returns the cache key for the projection of one root.
func RootKey(id string) string {
	return "root:" + id
}

// versioned returns the Valkey key of key in generation gen.
func versioned(gen int64, key string) string {
	return viewKeyPrefix + strconv.FormatInt(gen, 10) + ":" + key
}

// TreeCache stores encoded projections in Valkey. A nil *TreeCache is a
// valid, always-missing cache.
type TreeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTreeCache creates a tree cache backed by the given Valkey client.
func NewTreeCache(client *redis.Client, ttl time.Duration) *TreeCache {
	if ttl == 0 {
		ttl = DefaultTreeTTL
	}
	return &TreeCache{client: client, ttl: ttl}
}

// Generation returns the current cache generation. The bool is false when
// the cache is disabled or unreachable; callers then skip it entirely.
func (tc *TreeCache) Generation(ctx context.Context) (int64, bool) {
	if tc == nil {
		return 0, false
	}
	gen, err := tc.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		slog.Warn("tree cache generation error", "error", err)
		return 0, false
	}
	return gen, true
}

// Get retrieves a projection cached in generation gen. The bool is false
// on a miss.
func (tc *TreeCache) Get(ctx context.Context, gen int64, key string) ([]byte, bool) {
	if tc == nil {
		return nil, false
	}
	val, err := tc.client.Get(ctx, versioned(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("tree cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("tree cache hit", "key", key, "generation", gen)
	return val, true
}

// Set stores an encoded projection computed in generation gen.
func (tc *TreeCache) Set(ctx context.Context, gen int64, key string, data []byte) {
	if tc == nil {
		return
	}
	if err := tc.client.Set(ctx, versioned(gen, key), data, tc.ttl).Err(); err != nil {
		slog.Warn("tree cache set error", "key", key, "error", err)
	}
}

// InvalidateAll starts a new generation and removes the projections of
// older ones. Any category change can affect any view.
func (tc *TreeCache) InvalidateAll(ctx context.Context) {
	if tc == nil {
		return
	}
	gen, err := tc.client.Incr(ctx, generationKey).Result()
	if err != nil {
		slog.Warn("tree cache generation bump error", "error", err)
		return
	}
	live := versioned(gen, "")

	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := tc.client.Scan(ctx, cursor, viewKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("tree cache scan error", "error", err)
			return
		}
		stale := keys[:0]
		for _, k := range keys {
			if !strings.HasPrefix(k, live) {
				stale = append(stale, k)
			}
		}
		if len(stale) > 0 {
			if err := tc.client.Del(ctx, stale...).Err(); err != nil {
				slog.Warn("tree cache bulk delete error", "error", err)
			}
			deleted += len(stale)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	slog.Debug("tree cache cleared", "generation", gen, "deleted", deleted)
}

// Invalidator drops cached views. *TreeCache implements it.
type Invalidator interface {
	InvalidateAll(ctx context.Context)
}

// InvalidatingPublisher clears the cache before handing an event on, so a
// subscriber reacting to the event never reads a view from before the
// change.
type InvalidatingPublisher struct {
	cache Invalidator
	next  events.Publisher
}

// NewInvalidatingPublisher wraps next.
func NewInvalidatingPublisher(cache Invalidator, next events.Publisher) *InvalidatingPublisher {
	return &InvalidatingPublisher{cache: cache, next: next}
}

// Publish invalidates, then publishes. The change has already happened, so
// the invalidation outlives a cancelled request context.
func (p *InvalidatingPublisher) Publish(ctx context.Context, e events.Event) {
	p.cache.InvalidateAll(context.WithoutCancel(ctx))
	p.next.Publish(ctx, e)
}
