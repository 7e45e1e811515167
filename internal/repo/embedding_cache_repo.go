package repo

import (
	"context"
	"database/sql"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/chitdoc/docqa/internal/model"
	appErr "github.com/chitdoc/docqa/internal/pkg/errors"
)

// EmbeddingCacheRepo persists remote embedding results keyed by model
// and content hash, using the pgvector column type for storage.
type EmbeddingCacheRepo struct {
	db *sql.DB
}

func NewEmbeddingCacheRepo(db *sql.DB) *EmbeddingCacheRepo {
	return &EmbeddingCacheRepo{db: db}
}

func (r *EmbeddingCacheRepo) Get(ctx context.Context, modelName, contentHash string) (*model.EmbeddingCache, error) {
	const sqlStr = `
		SELECT model_name, content_hash, embedding, ctime
		FROM embedding_cache
		WHERE model_name = $1 AND content_hash = $2
	`
	row := r.db.QueryRowContext(ctx, sqlStr, modelName, contentHash)
	var entry model.EmbeddingCache
	var vec pgvector.Vector
	if err := row.Scan(&entry.ModelName, &entry.ContentHash, &vec, &entry.Ctime); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	entry.Embedding = vec.Slice()
	return &entry, nil
}

func (r *EmbeddingCacheRepo) Put(ctx context.Context, entry *model.EmbeddingCache) error {
	const sqlStr = `
		INSERT INTO embedding_cache (model_name, content_hash, embedding, ctime)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (model_name, content_hash) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, sqlStr,
		entry.ModelName, entry.ContentHash, pgvector.NewVector(entry.Embedding), entry.Ctime)
	return err
}

// DeleteBefore removes cache entries older than the given unix time.
func (r *EmbeddingCacheRepo) DeleteBefore(ctx context.Context, cutoff int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM embedding_cache WHERE ctime < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
