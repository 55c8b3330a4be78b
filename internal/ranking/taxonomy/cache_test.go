// internal/ranking/taxonomy/cache_test.go
package taxonomy

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-ranker/internal/common/logger"
)

func newMiniredisCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(client, time.Hour, logger.NewTestLogger(t)), mr
}

func TestCache_StoreAndLookup(t *testing.T) {
	cache, _ := newMiniredisCache(t)
	ctx := context.Background()

	_, ok := cache.Lookup(ctx, "K8s")
	assert.False(t, ok)

	cache.Store(ctx, "K8s", "kubernetes")

	got, ok := cache.Lookup(ctx, "k8s")
	assert.True(t, ok)
	assert.Equal(t, "kubernetes", got)
}

func TestCache_Invalidate(t *testing.T) {
	cache, _ := newMiniredisCache(t)
	ctx := context.Background()

	cache.Store(ctx, "go", "golang")
	require.NoError(t, cache.Invalidate(ctx, "GO"))

	_, ok := cache.Lookup(ctx, "go")
	assert.False(t, ok)
}

func TestCache_TTLApplied(t *testing.T) {
	cache, mr := newMiniredisCache(t)
	ctx := context.Background()

	cache.Store(ctx, "pgsql", "postgresql")

	mr.FastForward(2 * time.Hour)
	_, ok := cache.Lookup(ctx, "pgsql")
	assert.False(t, ok)
}

func TestResolver_CacheHitSkipsTaxonomy(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectGet("skill:norm:k8s").SetVal("kubernetes")

	resolver := &Resolver{
		Taxonomy: New(nil),
		Cache:    NewCache(db, time.Hour, logger.NewTestLogger(t)),
	}

	got := resolver.Normalize(context.Background(), "K8s")

	assert.Equal(t, "kubernetes", got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolver_MissResolvesAndStores(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectGet("skill:norm:k8s").RedisNil()
	mock.ExpectSet("skill:norm:k8s", "kubernetes", time.Hour).SetVal("OK")

	resolver := &Resolver{
		Taxonomy: testTaxonomy(),
		Cache:    NewCache(db, time.Hour, logger.NewTestLogger(t)),
	}

	got := resolver.Normalize(context.Background(), "K8s")

	assert.Equal(t, "kubernetes", got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolver_NilCacheFallsBackToTaxonomy(t *testing.T) {
	resolver := &Resolver{Taxonomy: testTaxonomy()}

	assert.Equal(t, "kubernetes", resolver.Normalize(context.Background(), "k8s"))
	assert.Equal(t,
		[]string{"golang", "kubernetes"},
		resolver.NormalizeAll(context.Background(), []string{"go", "K8S"}),
	)
}
