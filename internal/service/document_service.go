package service

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/chitdoc/docqa/internal/ai"
	"github.com/chitdoc/docqa/internal/extract"
	"github.com/chitdoc/docqa/internal/filestore"
	"github.com/chitdoc/docqa/internal/model"
	appErr "github.com/chitdoc/docqa/internal/pkg/errors"
	"github.com/chitdoc/docqa/internal/pkg/timeutil"
	"github.com/chitdoc/docqa/internal/repo"
	"github.com/chitdoc/docqa/internal/vectorutil"
)

const maxUploadSize = 20 << 20

var allowedMimeTypes = map[string]string{
	"application/pdf": ".pdf",
	"text/plain":      ".txt",
	"text/markdown":   ".md",
}

type DocumentService struct {
	docs      *repo.DocumentRepo
	chunks    *repo.ChunkRepo
	store     filestore.Store
	manager   *ai.Manager
	chunkSize int
}

func NewDocumentService(docs *repo.DocumentRepo, chunks *repo.ChunkRepo, store filestore.Store, manager *ai.Manager, chunkSize int) *DocumentService {
	return &DocumentService{docs: docs, chunks: chunks, store: store, manager: manager, chunkSize: chunkSize}
}

func (s *DocumentService) Upload(ctx context.Context, userID, fileName, mimeType string, r filestore.ReadSeekCloser, size int64) (*model.Document, error) {
	if size <= 0 || size > maxUploadSize {
		return nil, appErr.ErrInvalid
	}
	mt := normalizeMimeType(mimeType)
	ext, ok := allowedMimeTypes[mt]
	if !ok {
		// fall back to the file extension when the client sent a
		// generic content type
		switch strings.ToLower(filepath.Ext(fileName)) {
		case ".pdf":
			mt, ext = "application/pdf", ".pdf"
		case ".txt":
			mt, ext = "text/plain", ".txt"
		case ".md":
			mt, ext = "text/markdown", ".md"
		default:
			return nil, appErr.ErrInvalid
		}
	}
	now := timeutil.NowUnix()
	doc := &model.Document{
		ID:        newID(),
		UserID:    userID,
		FileName:  strings.TrimSpace(fileName),
		FileKey:   newID() + ext,
		MimeType:  mt,
		SizeBytes: size,
		Status:    model.DocumentStatusUploaded,
		Ctime:     now,
		Mtime:     now,
	}
	if doc.FileName == "" {
		doc.FileName = doc.FileKey
	}
	if err := s.store.Save(ctx, doc.FileKey, r, size); err != nil {
		return nil, err
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) List(ctx context.Context, userID string) ([]model.Document, error) {
	return s.docs.ListByUser(ctx, userID)
}

func (s *DocumentService) Get(ctx context.Context, userID, docID string) (*model.Document, error) {
	return s.docs.GetByID(ctx, userID, docID)
}

type SearchResult struct {
	Document model.Document `json:"document"`
	Snippet  string         `json:"snippet"`
}

// Search runs a case-insensitive substring match over the user's
// extracted texts and anchors a display snippet around the query.
func (s *DocumentService) Search(ctx context.Context, userID, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, appErr.ErrInvalid
	}
	docs, err := s.docs.SearchByText(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	results := make([]SearchResult, 0, len(docs))
	for _, doc := range docs {
		results = append(results, SearchResult{
			Document: doc,
			Snippet:  lexicalSnippet(doc.RawText, query),
		})
	}
	return results, nil
}

// Extract pulls the stored file back out of the file store, converts it
// to plain text and persists it on the document. Chunk embeddings are
// refreshed best effort afterwards; a provider outage does not fail the
// extraction.
func (s *DocumentService) Extract(ctx context.Context, userID, docID string) (*model.Document, error) {
	doc, err := s.docs.GetByID(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	file, err := s.store.Open(ctx, doc.FileKey)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	extractor, err := extract.ForMimeType(doc.MimeType)
	if err != nil {
		return nil, appErr.ErrInvalid
	}
	text, err := extractor.Extract(data)
	if err != nil {
		return nil, err
	}
	doc.RawText = text
	doc.Status = model.DocumentStatusTextExtracted
	doc.Mtime = timeutil.NowUnix()
	if err := s.docs.UpdateText(ctx, userID, docID, doc.RawText, doc.Status, doc.Mtime); err != nil {
		return nil, err
	}
	if err := s.CreateEmbeddings(ctx, userID, docID); err != nil {
		logutil.GetLogger(ctx).Warn("refresh chunk embeddings after extraction failed",
			zap.String("document_id", docID), zap.Error(err))
	}
	return doc, nil
}

// CreateEmbeddings rebuilds the document's chunk set: the extracted
// text is split into chunks, each chunk is embedded, and the previous
// set is replaced atomically.
func (s *DocumentService) CreateEmbeddings(ctx context.Context, userID, docID string) (err error) {
	doc, err := s.docs.GetByID(ctx, userID, docID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(doc.RawText) == "" {
		return appErr.ErrPrecondition
	}
	parts, err := ai.SplitChunks(doc.RawText, s.chunkSize)
	if err != nil {
		return err
	}
	now := timeutil.NowUnix()
	chunks := make([]model.DocumentChunk, 0, len(parts))
	for i, part := range parts {
		vec := s.manager.Embed(ctx, part)
		chunks = append(chunks, model.DocumentChunk{
			DocumentID: docID,
			ChunkIndex: i,
			Text:       part,
			Embedding:  vectorutil.Serialize(vec),
			Ctime:      now,
		})
	}
	return s.chunks.Replace(ctx, docID, chunks)
}

func (s *DocumentService) ListChunks(ctx context.Context, userID, docID string) ([]model.DocumentChunk, error) {
	if _, err := s.docs.GetByID(ctx, userID, docID); err != nil {
		return nil, err
	}
	return s.chunks.ListByDocument(ctx, docID)
}

func (s *DocumentService) ChunkCount(ctx context.Context, userID, docID string) (int64, error) {
	if _, err := s.docs.GetByID(ctx, userID, docID); err != nil {
		return 0, err
	}
	return s.chunks.CountByDocument(ctx, docID)
}

func normalizeMimeType(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.IndexByte(mt, ';'); idx >= 0 {
		mt = strings.TrimSpace(mt[:idx])
	}
	return mt
}
