package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cppla/inkwell/store"
	"github.com/cppla/inkwell/store/storetest"
)

func newRedisCache(t *testing.T) (*miniredis.Miniredis, *store.RedisCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, store.NewRedisCache(client, time.Minute, zap.NewNop())
}

func TestRedisCache_GetSetExpire(t *testing.T) {
	mr, c := newRedisCache(t)
	ctx := context.Background()

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	c.Set(ctx, "k", []byte("v"))
	b, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", string(b))

	mr.FastForward(2 * time.Minute)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisCache_InvalidatePrefixLargeKeyspace(t *testing.T) {
	mr, c := newRedisCache(t)
	ctx := context.Background()

	for i := 0; i < 15000; i++ {
		require.NoError(t, mr.Set(fmt.Sprintf("cache:user:%d:articles:page=1:size=10", i+100), "[]"))
	}
	for i := 1; i <= 30; i++ {
		require.NoError(t, mr.Set(fmt.Sprintf("cache:user:7:articles:page=%d:size=10", i), "[]"))
	}

	c.InvalidatePrefix(ctx, "cache:user:7:articles:")

	for _, k := range mr.Keys() {
		assert.NotContains(t, k, "cache:user:7:articles:")
	}
	assert.Len(t, mr.Keys(), 15000)
}

func TestRedisCache_StoreSeesNewArticles(t *testing.T) {
	_, c := newRedisCache(t)
	s := store.New(storetest.OpenDB(t), store.Options{Cache: c})
	ctx := context.Background()
	alice := mustUser(t, s, "alice")

	_, err := s.CreateArticles(ctx, []store.NewArticle{{Title: "one", Content: "c", AuthorID: &alice}})
	require.NoError(t, err)
	got, err := s.GetArticlesByAuthor(ctx, alice, store.Page{})
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = s.CreateArticles(ctx, []store.NewArticle{{Title: "two", Content: "c", AuthorID: &alice}})
	require.NoError(t, err)
	got, err = s.GetArticlesByAuthor(ctx, alice, store.Page{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "two", got[1].Title)
}
