package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/chitdoc/docqa/internal/model"
	"github.com/chitdoc/docqa/internal/pkg/dbutil"
	appErr "github.com/chitdoc/docqa/internal/pkg/errors"
)

var documentFields = []string{"id", "user_id", "file_name", "file_key", "mime_type", "size_bytes", "status", "raw_text", "ctime", "mtime"}

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	data := map[string]interface{}{
		"id":         doc.ID,
		"user_id":    doc.UserID,
		"file_name":  doc.FileName,
		"file_key":   doc.FileKey,
		"mime_type":  doc.MimeType,
		"size_bytes": doc.SizeBytes,
		"status":     doc.Status,
		"raw_text":   doc.RawText,
		"ctime":      doc.Ctime,
		"mtime":      doc.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("documents", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// GetByID resolves a document scoped to its owner. An existing
// document owned by someone else is reported as not found.
func (r *DocumentRepo) GetByID(ctx context.Context, userID, docID string) (*model.Document, error) {
	where := map[string]interface{}{
		"id":      docID,
		"user_id": userID,
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	doc, err := scanDocument(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (r *DocumentRepo) ListByUser(ctx context.Context, userID string) ([]model.Document, error) {
	where := map[string]interface{}{
		"user_id":  userID,
		"_orderby": "ctime desc",
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// SearchByText performs a case-insensitive substring search across a
// user's extracted document texts.
func (r *DocumentRepo) SearchByText(ctx context.Context, userID, query string) ([]model.Document, error) {
	const sqlStr = `
		SELECT id, user_id, file_name, file_key, mime_type, size_bytes, status, raw_text, ctime, mtime
		FROM documents
		WHERE user_id = $1 AND raw_text ILIKE '%' || $2 || '%'
		ORDER BY ctime DESC
	`
	rows, err := r.db.QueryContext(ctx, sqlStr, userID, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepo) UpdateText(ctx context.Context, userID, docID, rawText, status string, mtime int64) error {
	where := map[string]interface{}{
		"id":      docID,
		"user_id": userID,
	}
	update := map[string]interface{}{
		"raw_text": rawText,
		"status":   status,
		"mtime":    mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("documents", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

// ListStaleEmbeddings returns extracted documents whose text changed
// after their chunks were generated (or that have no chunks at all).
func (r *DocumentRepo) ListStaleEmbeddings(ctx context.Context, limit int) ([]model.Document, error) {
	const sqlStr = `
		SELECT d.id, d.user_id, d.file_name, d.file_key, d.mime_type, d.size_bytes, d.status, d.raw_text, d.ctime, d.mtime
		FROM documents d
		LEFT JOIN (
			SELECT document_id, MAX(ctime) AS chunk_ctime
			FROM document_chunks
			GROUP BY document_id
		) c ON d.id = c.document_id
		WHERE d.status = $1 AND (c.document_id IS NULL OR d.mtime > c.chunk_ctime)
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, sqlStr, model.DocumentStatusTextExtracted, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var doc model.Document
	if err := row.Scan(
		&doc.ID, &doc.UserID, &doc.FileName, &doc.FileKey, &doc.MimeType,
		&doc.SizeBytes, &doc.Status, &doc.RawText, &doc.Ctime, &doc.Mtime,
	); err != nil {
		return nil, err
	}
	return &doc, nil
}
