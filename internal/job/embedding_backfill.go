// Package job holds the background maintenance tasks wired into the
// cron scheduler.
package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/chitdoc/docqa/internal/repo"
	"github.com/chitdoc/docqa/internal/service"
)

const backfillBatchSize = 20

// EmbeddingBackfillJob rebuilds chunk embeddings for documents whose
// extracted text is newer than their chunk set. Covers documents whose
// best-effort embedding refresh failed during extraction, typically
// because the provider was down at the time.
type EmbeddingBackfillJob struct {
	docs      *repo.DocumentRepo
	documents *service.DocumentService
}

func NewEmbeddingBackfillJob(docs *repo.DocumentRepo, documents *service.DocumentService) *EmbeddingBackfillJob {
	return &EmbeddingBackfillJob{docs: docs, documents: documents}
}

func (j *EmbeddingBackfillJob) Name() string {
	return "embedding_backfill"
}

func (j *EmbeddingBackfillJob) Run(ctx context.Context) error {
	stale, err := j.docs.ListStaleEmbeddings(ctx, backfillBatchSize)
	if err != nil {
		return err
	}
	logger := logutil.GetLogger(ctx)
	for _, doc := range stale {
		if err := j.documents.CreateEmbeddings(ctx, doc.UserID, doc.ID); err != nil {
			logger.Warn("backfill embeddings failed",
				zap.String("document_id", doc.ID), zap.Error(err))
			continue
		}
		logger.Info("backfilled embeddings", zap.String("document_id", doc.ID))
	}
	return nil
}
