package service

import (
	"bytes"
	"context"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/chitdoc/docqa/internal/ai"
	"github.com/chitdoc/docqa/internal/model"
	appErr "github.com/chitdoc/docqa/internal/pkg/errors"
	"github.com/chitdoc/docqa/internal/pkg/timeutil"
	"github.com/chitdoc/docqa/internal/repo"
)

type SummaryService struct {
	docs      *repo.DocumentRepo
	summaries *repo.SummaryRepo
	manager   *ai.Manager
	markdown  goldmark.Markdown
}

func NewSummaryService(docs *repo.DocumentRepo, summaries *repo.SummaryRepo, manager *ai.Manager) *SummaryService {
	return &SummaryService{
		docs:      docs,
		summaries: summaries,
		manager:   manager,
		markdown:  goldmark.New(),
	}
}

// Summarize generates and persists a summary for the document. The
// generative provider may be down; the stored summary is then the
// deterministic extractive fallback, so the operation still succeeds.
func (s *SummaryService) Summarize(ctx context.Context, userID, docID string) (*model.DocumentSummary, error) {
	doc, err := s.docs.GetByID(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.RawText) == "" {
		return nil, appErr.ErrPrecondition
	}
	text := s.manager.Summarize(ctx, doc.RawText)
	now := timeutil.NowUnix()
	summary := &model.DocumentSummary{
		DocumentID: docID,
		UserID:     userID,
		Summary:    text,
		Ctime:      now,
		Mtime:      now,
	}
	if err := s.summaries.Upsert(ctx, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *SummaryService) Get(ctx context.Context, userID, docID string) (*model.DocumentSummary, error) {
	return s.summaries.Get(ctx, userID, docID)
}

// RenderHTML converts a markdown summary to HTML for clients that want
// a rendered view.
func (s *SummaryService) RenderHTML(summary string) (string, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(summary), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
