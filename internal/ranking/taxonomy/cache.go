// internal/ranking/taxonomy/cache.go
package taxonomy

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"profile-ranker/internal/common/logger"
)

const cacheKeyPrefix = "skill:norm:"

// Cache is a read-mostly store of resolved alias lookups shared across
// ranking passes. Entries are written only on miss and removed only through
// Invalidate; nothing refreshes them implicitly.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewCache wraps a Redis client as a skill-normalization cache.
func NewCache(client *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "skill-cache"}),
	}
}

// Lookup returns the cached canonical form of token, if present.
func (c *Cache) Lookup(ctx context.Context, token string) (string, bool) {
	val, err := c.client.Get(ctx, cacheKeyPrefix+strings.ToLower(token)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("cache lookup failed", map[string]interface{}{
				"token": token, "error": err.Error(),
			})
		}
		return "", false
	}
	return val, true
}

// Store records a resolved lookup. Failures are logged and ignored; the
// cache is an optimization, never a source of truth.
func (c *Cache) Store(ctx context.Context, token, canonical string) {
	if err := c.client.Set(ctx, cacheKeyPrefix+strings.ToLower(token), canonical, c.ttl).Err(); err != nil {
		c.logger.Debug("cache store failed", map[string]interface{}{
			"token": token, "error": err.Error(),
		})
	}
}

// Invalidate removes cached lookups, e.g. after a taxonomy reload.
func (c *Cache) Invalidate(ctx context.Context, tokens ...string) error {
	keys := make([]string, len(tokens))
	for i, token := range tokens {
		keys[i] = cacheKeyPrefix + strings.ToLower(token)
	}
	return c.client.Del(ctx, keys...).Err()
}

// Resolver normalizes tokens through the cache when one is attached. A nil
// cache degrades to plain taxonomy lookups.
type Resolver struct {
	Taxonomy *Taxonomy
	Cache    *Cache
}

// Normalize resolves one token, consulting the cache first.
func (r *Resolver) Normalize(ctx context.Context, token string) string {
	if r.Cache == nil {
		return r.Taxonomy.Normalize(token)
	}
	if canonical, ok := r.Cache.Lookup(ctx, token); ok {
		return canonical
	}
	canonical := r.Taxonomy.Normalize(token)
	r.Cache.Store(ctx, token, canonical)
	return canonical
}

// NormalizeAll resolves tokens into a deduplicated, sorted skill set.
func (r *Resolver) NormalizeAll(ctx context.Context, tokens []string) []string {
	if r.Cache == nil {
		return r.Taxonomy.NormalizeAll(tokens)
	}
	resolved := make([]string, 0, len(tokens))
	for _, token := range tokens {
		resolved = append(resolved, r.Normalize(ctx, token))
	}
	return r.Taxonomy.NormalizeAll(resolved)
}
