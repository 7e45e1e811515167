package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/chitdoc/docqa/internal/pkg/timeutil"
	"github.com/chitdoc/docqa/internal/repo"
)

// CacheCleanupJob expires old embedding cache rows so the table does
// not grow without bound.
type CacheCleanupJob struct {
	cache  *repo.EmbeddingCacheRepo
	maxAge time.Duration
}

func NewCacheCleanupJob(cache *repo.EmbeddingCacheRepo, maxAge time.Duration) *CacheCleanupJob {
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour
	}
	return &CacheCleanupJob{cache: cache, maxAge: maxAge}
}

func (j *CacheCleanupJob) Name() string {
	return "embedding_cache_cleanup"
}

func (j *CacheCleanupJob) Run(ctx context.Context) error {
	cutoff := timeutil.NowUnix() - int64(j.maxAge/time.Second)
	deleted, err := j.cache.DeleteBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		logutil.GetLogger(ctx).Info("expired embedding cache rows", zap.Int64("deleted", deleted))
	}
	return nil
}
