package embedcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chitdoc/docqa/internal/model"
	appErr "github.com/chitdoc/docqa/internal/pkg/errors"
)

type countingEmbedder struct {
	name  string
	calls int
}

func (e *countingEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	e.calls++
	return []float64{float64(len(text)), float64(e.calls)}, nil
}

func (e *countingEmbedder) ModelName() string {
	if e.name == "" {
		return "counting"
	}
	return e.name
}

type memStore struct {
	entries map[string]*model.EmbeddingCache
	puts    int
}

func newMemStore() *memStore {
	return &memStore{entries: map[string]*model.EmbeddingCache{}}
}

func (s *memStore) Get(ctx context.Context, modelName, contentHash string) (*model.EmbeddingCache, error) {
	entry, ok := s.entries[modelName+"/"+contentHash]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return entry, nil
}

func (s *memStore) Put(ctx context.Context, entry *model.EmbeddingCache) error {
	s.puts++
	s.entries[entry.ModelName+"/"+entry.ContentHash] = entry
	return nil
}

func TestCachedEmbedderMemoryHit(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{}
	cached := New(inner, nil)

	first, err := cached.Embed(ctx, "hello world")
	require.NoError(t, err)
	second, err := cached.Embed(ctx, "hello world")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, inner.calls)
}

func TestCachedEmbedderStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	inner := &countingEmbedder{}
	cached := New(inner, store)
	vec, err := cached.Embed(ctx, "persist me")
	require.NoError(t, err)
	require.Equal(t, 1, store.puts)

	// fresh instance has a cold memory layer and must hit the store
	inner2 := &countingEmbedder{}
	cached2 := New(inner2, store)
	vec2, err := cached2.Embed(ctx, "persist me")
	require.NoError(t, err)
	require.Equal(t, 0, inner2.calls)
	require.InDeltaSlice(t, vec, vec2, 1e-6)
}

func TestCachedEmbedderKeyedByModel(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	innerA := &countingEmbedder{name: "model-a"}
	innerB := &countingEmbedder{name: "model-b"}
	cachedA := New(innerA, store)
	cachedB := New(innerB, store)

	_, err := cachedA.Embed(ctx, "same text")
	require.NoError(t, err)
	// same content under another model must not be served from the
	// first model's cache entries
	_, err = cachedB.Embed(ctx, "same text")
	require.NoError(t, err)
	require.Equal(t, 1, innerA.calls)
	require.Equal(t, 1, innerB.calls)
	require.Len(t, store.entries, 2)
}

func TestContentHashStable(t *testing.T) {
	require.Equal(t, ContentHash("abc"), ContentHash("abc"))
	require.NotEqual(t, ContentHash("abc"), ContentHash("abd"))
}
