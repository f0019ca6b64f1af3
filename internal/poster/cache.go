// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

package poster

import (
	"context"
	"sync"
	"time"

	"github.com/filmseer/filmseer/internal/metrics"
)

// urlCache is a thread-safe TTL cache for resolved poster URLs. Only
// successful resolutions are cached; failures may be transient and must
// stay retryable.
type urlCache struct {
	mu      sync.RWMutex
	entries map[int]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	url       string
	expiresAt time.Time
}

func newURLCache(ttl time.Duration) *urlCache {
	c := &urlCache{
		entries: make(map[int]cacheEntry),
		ttl:     ttl,
	}
	go c.cleanupLoop()
	return c
}

func (c *urlCache) get(movieID int) (string, bool) {
	c.mu.RLock()
	entry, exists := c.entries[movieID]
	c.mu.RUnlock()

	if !exists || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.url, true
}

func (c *urlCache) set(movieID int, url string) {
	c.mu.Lock()
	c.entries[movieID] = cacheEntry{url: url, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// cleanupLoop removes expired entries every five minutes so the map does
// not grow unbounded over the process lifetime.
func (c *urlCache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for movieID, entry := range c.entries {
			if now.After(entry.expiresAt) {
				delete(c.entries, movieID)
			}
		}
		c.mu.Unlock()
	}
}

// cachedResolver serves poster URLs from the cache before falling through
// to the wrapped resolver.
type cachedResolver struct {
	inner Resolver
	cache *urlCache
}

func newCachedResolver(inner Resolver, ttl time.Duration) *cachedResolver {
	return &cachedResolver{inner: inner, cache: newURLCache(ttl)}
}

func (r *cachedResolver) Resolve(ctx context.Context, movieID int) (string, bool) {
	if url, ok := r.cache.get(movieID); ok {
		metrics.RecordPosterCache(true)
		return url, true
	}
	metrics.RecordPosterCache(false)

	url, ok := r.inner.Resolve(ctx, movieID)
	if ok {
		r.cache.set(movieID, url)
	}
	return url, ok
}
