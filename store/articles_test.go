package store_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/inkwell/store"
	"github.com/cppla/inkwell/store/storetest"
)

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return b, ok
}

func (c *memCache) Set(_ context.Context, key string, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = b
}

func (c *memCache) InvalidatePrefix(_ context.Context, prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

func mustUser(t *testing.T, s *store.Store, name string) uint {
	t.Helper()
	id, err := s.CreateUser(context.Background(), store.NewUser{Username: name, Password: "x"})
	require.NoError(t, err)
	return id
}

func TestCreateArticles_AndListByAuthor(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")

	ids, err := s.CreateArticles(ctx, []store.NewArticle{
		{Title: "Flask学习大纲", Content: "Flaskwqqq", AuthorID: &alice},
		{Title: "other", Content: "by bob", AuthorID: &bob},
		{Title: "Django学习大纲", Content: "Djangowqqq", AuthorID: &alice},
	})
	require.NoError(t, err)
	require.Len(t, ids, 3)

	got, err := s.GetArticlesByAuthor(ctx, alice, store.Page{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ids[0], got[0].ID)
	assert.Equal(t, "Flask学习大纲", got[0].Title)
	assert.Equal(t, ids[2], got[1].ID)
	for _, a := range got {
		require.NotNil(t, a.AuthorID)
		assert.Equal(t, alice, *a.AuthorID)
	}

	none, err := s.GetArticlesByAuthor(ctx, 999, store.Page{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCreateArticles_WithoutAuthor(t *testing.T) {
	s := newStore(t)

	ids, err := s.CreateArticles(context.Background(), []store.NewArticle{{Title: "orphan", Content: "c"}})
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestCreateArticles_UnknownAuthorRollsBack(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	alice := mustUser(t, s, "alice")
	missing := uint(7)

	_, err := s.CreateArticles(ctx, []store.NewArticle{
		{Title: "ok", Content: "valid row first", AuthorID: &alice},
		{Title: "T1", Content: "c", AuthorID: &missing},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrReference)

	var txErr *store.TransactionError
	require.True(t, errors.As(err, &txErr))
	assert.Equal(t, 1, txErr.Index)

	n, err := s.CountArticles(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "no partial rows may persist")
}

func TestCreateArticles_Validation(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	alice := mustUser(t, s, "alice")

	_, err := s.CreateArticles(ctx, nil)
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = s.CreateArticles(ctx, []store.NewArticle{
		{Title: "fine", Content: "fine", AuthorID: &alice},
		{Title: " ", Content: "no title", AuthorID: &alice},
	})
	assert.ErrorIs(t, err, store.ErrValidation)
	var txErr *store.TransactionError
	require.True(t, errors.As(err, &txErr))
	assert.Equal(t, 1, txErr.Index)

	n, err := s.CountArticles(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateArticles_StripsMarkup(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	alice := mustUser(t, s, "alice")

	_, err := s.CreateArticles(ctx, []store.NewArticle{
		{Title: "hello<script>alert(1)</script>", Content: "<b>bold</b><script>x</script>", AuthorID: &alice},
	})
	require.NoError(t, err)

	got, err := s.GetArticlesByAuthor(ctx, alice, store.Page{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Title)
	assert.Equal(t, "bold", got[0].Content)
}

func TestCreateArticles_PlainTextRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	alice := mustUser(t, s, "alice")

	_, err := s.CreateArticles(ctx, []store.NewArticle{
		{Title: "Tom & Jerry", Content: "if a < b && b > c", AuthorID: &alice},
	})
	require.NoError(t, err)

	got, err := s.GetArticlesByAuthor(ctx, alice, store.Page{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Tom & Jerry", got[0].Title)
	assert.Equal(t, "if a < b && b > c", got[0].Content)
}

func TestGetArticlesByAuthor_Paged(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	alice := mustUser(t, s, "alice")

	var batch []store.NewArticle
	for _, title := range []string{"a1", "a2", "a3"} {
		batch = append(batch, store.NewArticle{Title: title, Content: "c", AuthorID: &alice})
	}
	_, err := s.CreateArticles(ctx, batch)
	require.NoError(t, err)

	got, err := s.GetArticlesByAuthor(ctx, alice, store.Page{Number: 2, Size: 2})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a3", got[0].Title)
}

func TestGetArticlesByAuthor_CacheInvalidatedOnCreate(t *testing.T) {
	cache := newMemCache()
	s := store.New(storetest.OpenDB(t), store.Options{Cache: cache})
	ctx := context.Background()
	alice := mustUser(t, s, "alice")

	_, err := s.CreateArticles(ctx, []store.NewArticle{{Title: "one", Content: "c", AuthorID: &alice}})
	require.NoError(t, err)

	got, err := s.GetArticlesByAuthor(ctx, alice, store.Page{})
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = s.GetArticlesByAuthor(ctx, alice, store.Page{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, cache.hits)

	_, err = s.CreateArticles(ctx, []store.NewArticle{{Title: "two", Content: "c", AuthorID: &alice}})
	require.NoError(t, err)

	got, err = s.GetArticlesByAuthor(ctx, alice, store.Page{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, cache.hits)
}
