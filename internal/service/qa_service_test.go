package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/chitdoc/docqa/internal/ai"
	"github.com/chitdoc/docqa/internal/model"
	appErr "github.com/chitdoc/docqa/internal/pkg/errors"
	"github.com/chitdoc/docqa/internal/vectorutil"
)

type stubDocSource struct {
	docs map[string]*model.Document
}

func (s *stubDocSource) GetByID(ctx context.Context, userID, docID string) (*model.Document, error) {
	doc, ok := s.docs[docID]
	if !ok || doc.UserID != userID {
		return nil, appErr.ErrNotFound
	}
	return doc, nil
}

type stubChunkSource struct {
	chunks map[string][]model.DocumentChunk
}

func (s *stubChunkSource) ListByDocument(ctx context.Context, docID string) ([]model.DocumentChunk, error) {
	return s.chunks[docID], nil
}

type echoGenerator struct {
	reply string
	err   error
	// last prompt seen, for asserting which context was sent
	prompt string
}

func (g *echoGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompt = prompt
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

// axisEmbedder maps known texts to fixed orthogonal-ish vectors so
// similarity ordering in tests is fully controlled.
type axisEmbedder struct {
	vectors map[string][]float64
}

func (e *axisEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if vec, ok := e.vectors[text]; ok {
		return vec, nil
	}
	return []float64{0, 0, 1}, nil
}

func (e *axisEmbedder) ModelName() string {
	return "axis"
}

func newQATestService(gen *echoGenerator, emb ai.IEmbedder, docs *stubDocSource, chunks *stubChunkSource) *QAService {
	manager := ai.NewManager(gen, emb, ai.ManagerConfig{EmbedDimension: 3})
	return NewQAService(docs, chunks, manager, 2)
}

func embedText(vec []float64) string {
	return vectorutil.Serialize(vec)
}

func TestAnswerQuestionRanksChunks(t *testing.T) {
	ctx := context.Background()
	docs := &stubDocSource{docs: map[string]*model.Document{
		"d1": {ID: "d1", UserID: "u1", RawText: "full text"},
	}}
	chunks := &stubChunkSource{chunks: map[string][]model.DocumentChunk{
		"d1": {
			{DocumentID: "d1", ChunkIndex: 0, Text: "about cats", Embedding: embedText([]float64{1, 0, 0})},
			{DocumentID: "d1", ChunkIndex: 1, Text: "about dogs", Embedding: embedText([]float64{0, 1, 0})},
			{DocumentID: "d1", ChunkIndex: 2, Text: "about fish", Embedding: embedText([]float64{0.2, 0.9, 0})},
		},
	}}
	gen := &echoGenerator{reply: "dogs are loyal"}
	emb := &axisEmbedder{vectors: map[string][]float64{
		"what about dogs?": {0, 1, 0},
	}}
	svc := newQATestService(gen, emb, docs, chunks)

	result, err := svc.AnswerQuestion(ctx, "u1", "d1", "what about dogs?")
	require.NoError(t, err)
	require.Equal(t, "dogs are loyal", result.Answer)
	// best chunk is the exact-match vector, runner-up the near match
	require.Equal(t, "about dogs", result.Snippet)
	require.Contains(t, gen.prompt, "about dogs")
	require.Contains(t, gen.prompt, "about fish")
	require.NotContains(t, gen.prompt, "about cats")
}

func TestAnswerQuestionTieKeepsChunkOrder(t *testing.T) {
	ctx := context.Background()
	docs := &stubDocSource{docs: map[string]*model.Document{
		"d1": {ID: "d1", UserID: "u1", RawText: "full text"},
	}}
	same := embedText([]float64{1, 0, 0})
	chunks := &stubChunkSource{chunks: map[string][]model.DocumentChunk{
		"d1": {
			{DocumentID: "d1", ChunkIndex: 0, Text: "first", Embedding: same},
			{DocumentID: "d1", ChunkIndex: 1, Text: "second", Embedding: same},
			{DocumentID: "d1", ChunkIndex: 2, Text: "third", Embedding: same},
		},
	}}
	gen := &echoGenerator{reply: "ok"}
	emb := &axisEmbedder{vectors: map[string][]float64{"q": {1, 0, 0}}}
	svc := newQATestService(gen, emb, docs, chunks)

	result, err := svc.AnswerQuestion(ctx, "u1", "d1", "q")
	require.NoError(t, err)
	require.Equal(t, "first", result.Snippet)
}

func TestAnswerQuestionNoChunksFallsBackToRawText(t *testing.T) {
	ctx := context.Background()
	docs := &stubDocSource{docs: map[string]*model.Document{
		"d1": {ID: "d1", UserID: "u1", RawText: "The warranty covers manufacturing defects for two years."},
	}}
	chunks := &stubChunkSource{chunks: map[string][]model.DocumentChunk{}}
	gen := &echoGenerator{reply: "two years"}
	emb := &axisEmbedder{}
	svc := newQATestService(gen, emb, docs, chunks)

	result, err := svc.AnswerQuestion(ctx, "u1", "d1", "how long is the warranty?")
	require.NoError(t, err)
	require.Equal(t, "two years", result.Answer)
	require.Contains(t, result.Snippet, "warranty")
	require.Contains(t, gen.prompt, "manufacturing defects")
}

func TestAnswerQuestionDegradesWhenProviderDown(t *testing.T) {
	ctx := context.Background()
	docs := &stubDocSource{docs: map[string]*model.Document{
		"d1": {ID: "d1", UserID: "u1", RawText: "some text"},
	}}
	chunks := &stubChunkSource{chunks: map[string][]model.DocumentChunk{
		"d1": {{DocumentID: "d1", ChunkIndex: 0, Text: "some text", Embedding: embedText([]float64{1, 0, 0})}},
	}}
	gen := &echoGenerator{err: fmt.Errorf("status 429: %w", ai.ErrUnavailable)}
	emb := &axisEmbedder{}
	svc := newQATestService(gen, emb, docs, chunks)

	result, err := svc.AnswerQuestion(ctx, "u1", "d1", "anything?")
	require.NoError(t, err)
	require.Equal(t, ai.UnavailableAnswer, result.Answer)
}

func TestAnswerQuestionPreconditions(t *testing.T) {
	ctx := context.Background()
	docs := &stubDocSource{docs: map[string]*model.Document{
		"noText": {ID: "noText", UserID: "u1", RawText: "   "},
		"owned":  {ID: "owned", UserID: "u2", RawText: "text"},
	}}
	chunks := &stubChunkSource{chunks: map[string][]model.DocumentChunk{}}
	svc := newQATestService(&echoGenerator{reply: "x"}, &axisEmbedder{}, docs, chunks)

	_, err := svc.AnswerQuestion(ctx, "u1", "noText", "   ")
	require.ErrorIs(t, err, appErr.ErrInvalid)

	_, err = svc.AnswerQuestion(ctx, "u1", "missing", "q")
	require.ErrorIs(t, err, appErr.ErrNotFound)

	_, err = svc.AnswerQuestion(ctx, "u1", "owned", "q")
	require.ErrorIs(t, err, appErr.ErrNotFound)

	_, err = svc.AnswerQuestion(ctx, "u1", "noText", "q")
	require.ErrorIs(t, err, appErr.ErrPrecondition)
}

func TestAnswerQuestionMulti(t *testing.T) {
	ctx := context.Background()
	docs := &stubDocSource{docs: map[string]*model.Document{
		"a": {ID: "a", UserID: "u1", FileName: "alpha.pdf", RawText: "alpha text about storage"},
		"b": {ID: "b", UserID: "u1", FileName: "beta.pdf", RawText: "beta text"},
		"c": {ID: "c", UserID: "u1", FileName: "gamma.pdf", RawText: ""},
	}}
	chunks := &stubChunkSource{chunks: map[string][]model.DocumentChunk{}}
	gen := &echoGenerator{reply: "combined"}
	svc := newQATestService(gen, &axisEmbedder{}, docs, chunks)

	result, err := svc.AnswerQuestionMulti(ctx, "u1", []string{"a", "b"}, "where is storage kept?")
	require.NoError(t, err)
	require.Equal(t, "combined", result.Answer)
	require.Contains(t, gen.prompt, "Document 1:")
	require.Contains(t, gen.prompt, "alpha text")
	require.Contains(t, gen.prompt, "Document 2:")
	require.Contains(t, gen.prompt, "beta text")
	require.Equal(t, []string{"alpha.pdf", "beta.pdf"}, result.DocumentNames)
	// the cited snippet comes from the first document's text
	require.Equal(t, "alpha text about storage", result.Snippet)

	_, err = svc.AnswerQuestionMulti(ctx, "u1", []string{"a", "missing"}, "q")
	require.ErrorIs(t, err, appErr.ErrNotFound)

	_, err = svc.AnswerQuestionMulti(ctx, "u1", []string{"c"}, "q")
	require.ErrorIs(t, err, appErr.ErrPrecondition)

	// one unextracted document fails the whole request, extracted
	// siblings notwithstanding
	_, err = svc.AnswerQuestionMulti(ctx, "u1", []string{"a", "c"}, "q")
	require.ErrorIs(t, err, appErr.ErrPrecondition)

	_, err = svc.AnswerQuestionMulti(ctx, "u1", nil, "q")
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestLexicalSnippetWindow(t *testing.T) {
	padding := strings.Repeat("x", 200)
	text := padding + " warranty details here " + padding
	snippet := lexicalSnippet(text, "what about warranty")
	require.Contains(t, snippet, "warranty details")
	require.True(t, strings.HasPrefix(snippet, "…"))
	require.True(t, strings.HasSuffix(snippet, "…"))
	require.Equal(t, 2*snippetWindowSize+2*len("…"), len(snippet))
}

func TestLexicalSnippetNormalizesWhitespace(t *testing.T) {
	text := "alpha\n\n\nbravo\t\tcharlie delta"
	snippet := lexicalSnippet(text, "bravo")
	require.Equal(t, "alpha bravo charlie delta", snippet)
}

func TestLexicalSnippetKeepsTokenPunctuation(t *testing.T) {
	text := strings.Repeat("z ", 100) + "mammals live in groups"
	// "mammals?" does not occur in the text, so the window anchors at
	// the head instead of the word "mammals"
	snippet := lexicalSnippet(text, "mammals?")
	require.NotContains(t, snippet, "mammals")
	require.True(t, strings.HasSuffix(snippet, "…"))

	snippet = lexicalSnippet(text, "mammals")
	require.Contains(t, snippet, "mammals live")
}

func TestLexicalSnippetNoMatchFallsBackToHead(t *testing.T) {
	text := strings.Repeat("lorem ipsum ", 50)
	snippet := lexicalSnippet(text, "zz qq")
	require.True(t, strings.HasPrefix(snippet, "lorem ipsum"))
	require.Equal(t, snippetWindowSize+len("…"), len(snippet))
	require.True(t, strings.HasSuffix(snippet, "…"))
}

func TestChunkSnippetTruncation(t *testing.T) {
	short := "short chunk"
	require.Equal(t, short, chunkSnippet(short))

	long := strings.Repeat("a", 400)
	snippet := chunkSnippet(long)
	require.Equal(t, snippetMaxLen+len("…"), len(snippet))
	require.True(t, strings.HasSuffix(snippet, "…"))
}

func TestChunkSnippetMultibyte(t *testing.T) {
	long := "a" + strings.Repeat("好", 150)
	snippet := chunkSnippet(long)
	require.True(t, utf8.ValidString(snippet))
	require.True(t, strings.HasSuffix(snippet, "…"))
	require.LessOrEqual(t, len(snippet), snippetMaxLen+len("…"))
}
