package service

import (
	"context"
	"sort"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/chitdoc/docqa/internal/ai"
	"github.com/chitdoc/docqa/internal/model"
	appErr "github.com/chitdoc/docqa/internal/pkg/errors"
	"github.com/chitdoc/docqa/internal/vectorutil"
)

const DefaultTopK = 5

type documentSource interface {
	GetByID(ctx context.Context, userID, docID string) (*model.Document, error)
}

type chunkSource interface {
	ListByDocument(ctx context.Context, docID string) ([]model.DocumentChunk, error)
}

type QAResult struct {
	Answer        string   `json:"answer"`
	Snippet       string   `json:"snippet,omitempty"`
	DocumentNames []string `json:"document_names,omitempty"`
}

// QAService answers questions about a user's documents by retrieving
// the most similar chunks and handing them to the generative provider.
type QAService struct {
	docs    documentSource
	chunks  chunkSource
	manager *ai.Manager
	topK    int
}

func NewQAService(docs documentSource, chunks chunkSource, manager *ai.Manager, topK int) *QAService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &QAService{docs: docs, chunks: chunks, manager: manager, topK: topK}
}

// AnswerQuestion runs the retrieval pipeline for a single document.
// When the document has no chunk embeddings yet, the whole extracted
// text is used as context and the snippet falls back to a lexical
// match around the first question term.
func (s *QAService) AnswerQuestion(ctx context.Context, userID, docID, question string) (*QAResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, appErr.ErrInvalid
	}
	doc, err := s.docs.GetByID(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.RawText) == "" {
		return nil, appErr.ErrPrecondition
	}
	chunks, err := s.chunks.ListByDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		answer := s.manager.AnswerQuestion(ctx, doc.RawText, question)
		return &QAResult{
			Answer:  answer,
			Snippet: lexicalSnippet(doc.RawText, question),
		}, nil
	}

	scored, err := s.rankChunks(ctx, chunks, question)
	if err != nil {
		return nil, err
	}
	top := scored
	if len(top) > s.topK {
		top = top[:s.topK]
	}
	var sb strings.Builder
	for i, sc := range top {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(sc.Chunk.Text)
	}
	answer := s.manager.AnswerQuestion(ctx, sb.String(), question)
	return &QAResult{
		Answer:  answer,
		Snippet: chunkSnippet(top[0].Chunk.Text),
	}, nil
}

// AnswerQuestionMulti answers across several documents using their full
// texts. Every referenced document must exist, belong to the user and
// have extracted text. The cited snippet is anchored in the first
// document's text.
func (s *QAService) AnswerQuestionMulti(ctx context.Context, userID string, docIDs []string, question string) (*QAResult, error) {
	question = strings.TrimSpace(question)
	if question == "" || len(docIDs) == 0 {
		return nil, appErr.ErrInvalid
	}
	var texts []string
	var names []string
	for _, docID := range docIDs {
		doc, err := s.docs.GetByID(ctx, userID, docID)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(doc.RawText) == "" {
			return nil, appErr.ErrPrecondition
		}
		texts = append(texts, doc.RawText)
		names = append(names, doc.FileName)
	}
	answer := s.manager.AnswerQuestionMulti(ctx, texts, question)
	return &QAResult{
		Answer:        answer,
		Snippet:       lexicalSnippet(texts[0], question),
		DocumentNames: names,
	}, nil
}

// rankChunks embeds the question once and orders chunks by cosine
// similarity, highest first. Equal scores keep ascending chunk order.
// A stored vector of the wrong length means the chunk data is corrupt;
// that fails the request instead of quietly skewing the ranking.
func (s *QAService) rankChunks(ctx context.Context, chunks []model.DocumentChunk, question string) ([]model.ScoredChunk, error) {
	queryVec := s.manager.Embed(ctx, question)
	scored := make([]model.ScoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		vec := vectorutil.Parse(chunk.Embedding)
		score, err := vectorutil.CosineSimilarity(queryVec, vec)
		if err != nil {
			logutil.GetLogger(ctx).Error("chunk similarity failed",
				zap.String("document_id", chunk.DocumentID),
				zap.Int("chunk_index", chunk.ChunkIndex),
				zap.Error(err))
			return nil, err
		}
		scored = append(scored, model.ScoredChunk{Chunk: chunk, Score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored, nil
}
