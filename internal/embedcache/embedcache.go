// Package embedcache layers caches in front of a remote embedder so
// repeated texts never hit the provider twice: an in-process LRU first,
// then a shared database table keyed by model and content hash.
package embedcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/chitdoc/docqa/internal/ai"
	"github.com/chitdoc/docqa/internal/model"
	"github.com/chitdoc/docqa/internal/pkg/timeutil"
)

const (
	defaultMemorySize = 2048
	defaultMemoryTTL  = 30 * time.Minute
)

type Store interface {
	Get(ctx context.Context, modelName, contentHash string) (*model.EmbeddingCache, error)
	Put(ctx context.Context, entry *model.EmbeddingCache) error
}

type cachedEmbedder struct {
	inner  ai.IEmbedder
	store  Store
	memory *lru.LRU[string, []float64]
}

// New wraps an embedder with the memory and database cache layers.
// store may be nil, in which case only the in-process LRU applies.
func New(inner ai.IEmbedder, store Store) ai.IEmbedder {
	return &cachedEmbedder{
		inner:  inner,
		store:  store,
		memory: lru.NewLRU[string, []float64](defaultMemorySize, nil, defaultMemoryTTL),
	}
}

func (c *cachedEmbedder) ModelName() string {
	return c.inner.ModelName()
}

func (c *cachedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	hash := ContentHash(text)
	// Memory entries carry the model name too, matching the database
	// key, so vectors from one model are never served for another.
	memKey := c.inner.ModelName() + "/" + hash
	if vec, ok := c.memory.Get(memKey); ok {
		return vec, nil
	}
	if c.store != nil {
		entry, err := c.store.Get(ctx, c.inner.ModelName(), hash)
		if err == nil {
			vec := toFloat64(entry.Embedding)
			c.memory.Add(memKey, vec)
			return vec, nil
		}
	}
	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.memory.Add(memKey, vec)
	if c.store != nil {
		entry := &model.EmbeddingCache{
			ModelName:   c.inner.ModelName(),
			ContentHash: hash,
			Embedding:   toFloat32(vec),
			Ctime:       timeutil.NowUnix(),
		}
		if err := c.store.Put(ctx, entry); err != nil {
			logutil.GetLogger(ctx).Warn("persist embedding cache entry failed", zap.Error(err))
		}
	}
	return vec, nil
}

func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}

func toFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
