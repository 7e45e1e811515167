package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const (
	// DefaultEmbedDimension matches jina-embeddings-v2-base-en.
	DefaultEmbedDimension = 768

	// DefaultEmbedInputCap bounds text sent to the embedding provider.
	DefaultEmbedInputCap = 8000

	// DefaultContextCap bounds the document context passed to the
	// generative provider for Q&A.
	DefaultContextCap = 6000

	// DefaultSummaryCap bounds text passed for summarization.
	DefaultSummaryCap = 4000

	// UnavailableAnswer is returned verbatim when the generative
	// provider cannot be reached for a question.
	UnavailableAnswer = "AI temporarily unavailable. Unable to answer the question."

	// NoAnswer is returned when the provider replied but with nothing
	// usable.
	NoAnswer = "AI did not return an answer."

	// FallbackSummaryMarker prefixes extractive summaries produced
	// without the generative provider.
	FallbackSummaryMarker = "Fallback summary (AI unavailable):"
)

type ManagerConfig struct {
	TimeoutSeconds int
	EmbedDimension int
	EmbedInputCap  int
	ContextCap     int
	SummaryCap     int
}

func (c ManagerConfig) withDefaults() ManagerConfig {
	if c.EmbedDimension <= 0 {
		c.EmbedDimension = DefaultEmbedDimension
	}
	if c.EmbedInputCap <= 0 {
		c.EmbedInputCap = DefaultEmbedInputCap
	}
	if c.ContextCap <= 0 {
		c.ContextCap = DefaultContextCap
	}
	if c.SummaryCap <= 0 {
		c.SummaryCap = DefaultSummaryCap
	}
	return c
}

// Manager is the single entry point the services use to talk to the
// remote providers. Embedding is total: any provider failure falls
// back to the deterministic pseudo-embedding. Generation degrades to
// fixed extractive fallbacks instead of surfacing provider errors.
type Manager struct {
	generator IGenerator
	embedder  IEmbedder
	fallback  IEmbedder
	cfg       ManagerConfig
}

func NewManager(generator IGenerator, embedder IEmbedder, cfg ManagerConfig) *Manager {
	cfg = cfg.withDefaults()
	return &Manager{
		generator: generator,
		embedder:  embedder,
		fallback:  NewFallbackEmbedder(cfg.EmbedDimension),
		cfg:       cfg,
	}
}

func (m *Manager) Dimension() int {
	return m.cfg.EmbedDimension
}

func (m *Manager) EmbeddingModelName() string {
	if m.embedder == nil {
		return ""
	}
	return m.embedder.ModelName()
}

// Embed converts text to a fixed-dimension vector. Blank input yields
// the zero vector; provider failure yields the deterministic fallback.
// It never returns an error.
func (m *Manager) Embed(ctx context.Context, text string) []float64 {
	if strings.TrimSpace(text) == "" {
		return make([]float64, m.cfg.EmbedDimension)
	}
	truncated := truncate(text, m.cfg.EmbedInputCap)
	if m.embedder != nil {
		vec, err := m.embedWithTimeout(ctx, truncated)
		if err == nil && len(vec) > 0 {
			return vec
		}
		if err != nil {
			logutil.GetLogger(ctx).Warn("remote embedding failed, using deterministic fallback", zap.Error(err))
		}
	}
	vec, _ := m.fallback.Embed(ctx, truncated)
	return vec
}

func (m *Manager) embedWithTimeout(ctx context.Context, text string) ([]float64, error) {
	if m.cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}
	return m.embedder.Embed(ctx, text)
}

// AnswerQuestion asks the generative provider to answer strictly from
// the supplied document context. Provider failure never propagates:
// the caller always gets a displayable answer string.
func (m *Manager) AnswerQuestion(ctx context.Context, docContext, question string) string {
	truncated := truncate(docContext, m.cfg.ContextCap)
	prompt := fmt.Sprintf(`You are given a document and a question.
* Answer exclusively with facts stated in the document.
* Quote or reference the specific detail that supports the answer.
* If the document does not contain the information, reply exactly with: "The document does not mention this."

Document:
%s

Question: %s
Provide a concise answer plus a short supporting quote.`, truncated, question)

	answer, err := m.generateText(ctx, prompt)
	if err != nil {
		logutil.GetLogger(ctx).Warn("qa generation degraded", zap.Error(err))
		return UnavailableAnswer
	}
	if answer == "" {
		return NoAnswer
	}
	return answer
}

// AnswerQuestionMulti answers a question across several documents by
// concatenating their full texts. Cross-document chunk fusion is out
// of scope; this is deliberately the crude mode.
func (m *Manager) AnswerQuestionMulti(ctx context.Context, texts []string, question string) string {
	var sb strings.Builder
	for i, text := range texts {
		fmt.Fprintf(&sb, "Document %d:\n%s\n\n", i+1, truncate(text, m.cfg.ContextCap/max(len(texts), 1)))
	}
	return m.AnswerQuestion(ctx, sb.String(), question)
}

// Summarize produces a bullet summary of the text, degrading to an
// extractive paragraph listing when the provider is unavailable.
func (m *Manager) Summarize(ctx context.Context, text string) string {
	truncated := truncate(text, m.cfg.SummaryCap)
	prompt := "Summarize the following document in 10 concise bullet points:\n\n" + truncated
	summary, err := m.generateText(ctx, prompt)
	if err != nil || summary == "" {
		if err != nil {
			logutil.GetLogger(ctx).Warn("summary generation degraded", zap.Error(err))
		}
		return ExtractiveSummary(truncated)
	}
	return summary
}

func (m *Manager) generateText(ctx context.Context, prompt string) (string, error) {
	if m.generator == nil {
		return "", ErrUnavailable
	}
	if m.cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}
	resp, err := m.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp), nil
}

// ExtractiveSummary builds a deterministic bullet summary from the
// text's own paragraphs: up to ten non-empty lines, each capped at 180
// characters.
func ExtractiveSummary(text string) string {
	var sb strings.Builder
	sb.WriteString(FallbackSummaryMarker)
	sb.WriteByte('\n')
	count := 0
	for _, paragraph := range strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' }) {
		trimmed := strings.TrimSpace(paragraph)
		if trimmed == "" {
			continue
		}
		if len(trimmed) > 180 {
			trimmed = truncate(trimmed, 180) + "…"
		}
		sb.WriteString("- ")
		sb.WriteString(trimmed)
		sb.WriteByte('\n')
		count++
		if count == 10 {
			break
		}
	}
	if count == 0 {
		sb.WriteString("- ")
		sb.WriteString(truncate(text, 180))
	}
	return sb.String()
}

// truncate cuts text to at most limit bytes, backing the cut off to a
// rune boundary so the result stays valid UTF-8.
func truncate(text string, limit int) string {
	if limit > 0 && len(text) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		return text[:cut]
	}
	return text
}
