// Package compute memoizes derived analytics results. Normalization and
// regime fits are deterministic for a given input range, so identical
// requests share one computation and subsequent ones hit the cache until the
// TTL expires.
package compute

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	domrepo "OscLens/internal/domain/repository"
	domsvc "OscLens/internal/domain/service"
	pkgcache "OscLens/pkg/cache"

	"golang.org/x/sync/singleflight"
)

const cacheName = "compute"

// Cache wraps the layered cache with singleflight request collapsing.
type Cache struct {
	store   pkgcache.Service
	metrics domrepo.Metrics
	group   singleflight.Group
}

// New creates a compute cache over the given cache backend.
func New(store pkgcache.Service, metrics domrepo.Metrics) *Cache {
	return &Cache{store: store, metrics: metrics}
}

// Key builds a cache key from request dimensions. Parts are joined in the
// order given, so callers must pass them in a stable order.
func Key(parts ...string) string {
	return "compute:" + strings.Join(parts, ":")
}

// Do returns the cached value for key, or runs fn once for all concurrent
// callers and caches its result. Values round-trip through JSON; fn must
// return a JSON-serializable result.
func (c *Cache) Do(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	var cached json.RawMessage
	if err := c.store.Get(ctx, key, &cached); err == nil {
		c.metrics.RecordCacheHit(cacheName)
		return cached, nil
	}
	c.metrics.RecordCacheMiss(cacheName)

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// another flight may have populated the cache while we queued
		var raw json.RawMessage
		if err := c.store.Get(ctx, key, &raw); err == nil {
			return raw, nil
		}

		result, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("marshal compute result: %w", err)
		}
		if err := c.store.Set(ctx, key, json.RawMessage(b), ttl); err != nil {
			c.metrics.RecordError("compute_cache_set")
		}
		return json.RawMessage(b), nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// DoTyped runs Do and unmarshals the result into T, mirroring the typed
// helpers in pkg/cache.
func DoTyped[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	v, err := c.Do(ctx, key, ttl, func(ctx context.Context) (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		return out, err
	}
	raw, ok := v.(json.RawMessage)
	if !ok {
		b, err := json.Marshal(v)
		if err != nil {
			return out, fmt.Errorf("marshal cached value: %w", err)
		}
		raw = b
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("unmarshal cached value: %w", err)
	}
	return out, nil
}

// Invalidate drops one key.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// InvalidatePrefix drops every key under a prefix. Used by the refresh jobs
// after new data lands.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) error {
	return c.store.DeleteByPattern(ctx, pkgcache.BuildPattern(prefix))
}

var _ domsvc.ComputeCache = (*Cache)(nil)
