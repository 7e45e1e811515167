package repo

import (
	"context"
	"database/sql"

	"github.com/chitdoc/docqa/internal/model"
	appErr "github.com/chitdoc/docqa/internal/pkg/errors"
)

type SummaryRepo struct {
	db *sql.DB
}

func NewSummaryRepo(db *sql.DB) *SummaryRepo {
	return &SummaryRepo{db: db}
}

func (r *SummaryRepo) Upsert(ctx context.Context, summary *model.DocumentSummary) error {
	const sqlStr = `
		INSERT INTO document_summaries (document_id, user_id, summary, ctime, mtime)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (document_id) DO UPDATE
		SET summary = EXCLUDED.summary, mtime = EXCLUDED.mtime
	`
	_, err := r.db.ExecContext(ctx, sqlStr,
		summary.DocumentID, summary.UserID, summary.Summary, summary.Ctime, summary.Mtime)
	return err
}

func (r *SummaryRepo) Get(ctx context.Context, userID, docID string) (*model.DocumentSummary, error) {
	const sqlStr = `
		SELECT document_id, user_id, summary, ctime, mtime
		FROM document_summaries
		WHERE document_id = $1 AND user_id = $2
	`
	row := r.db.QueryRowContext(ctx, sqlStr, docID, userID)
	var summary model.DocumentSummary
	if err := row.Scan(&summary.DocumentID, &summary.UserID, &summary.Summary, &summary.Ctime, &summary.Mtime); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &summary, nil
}
