package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chitdoc/docqa/internal/model"
)

type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// Replace swaps a document's chunk set in one transaction. A
// transaction-scoped advisory lock keyed on the document id keeps
// concurrent replaces for the same document from interleaving, so
// readers always observe either the old set or the new one.
func (r *ChunkRepo) Replace(ctx context.Context, docID string, chunks []model.DocumentChunk) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, docID); err != nil {
		return fmt.Errorf("acquire document lock: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, docID); err != nil {
		return err
	}
	const insertStr = `INSERT INTO document_chunks (document_id, chunk_index, text, embedding, ctime) VALUES ($1, $2, $3, $4, $5)`
	for _, chunk := range chunks {
		if _, err := tx.ExecContext(ctx, insertStr,
			docID, chunk.ChunkIndex, chunk.Text, chunk.Embedding, chunk.Ctime); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *ChunkRepo) ListByDocument(ctx context.Context, docID string) ([]model.DocumentChunk, error) {
	const sqlStr = `
		SELECT document_id, chunk_index, text, embedding, ctime
		FROM document_chunks
		WHERE document_id = $1
		ORDER BY chunk_index ASC
	`
	rows, err := r.db.QueryContext(ctx, sqlStr, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var chunks []model.DocumentChunk
	for rows.Next() {
		var chunk model.DocumentChunk
		if err := rows.Scan(&chunk.DocumentID, &chunk.ChunkIndex, &chunk.Text, &chunk.Embedding, &chunk.Ctime); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func (r *ChunkRepo) CountByDocument(ctx context.Context, docID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document_chunks WHERE document_id = $1`, docID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
