package ai

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	reply string
	err   error
}

func (s *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	return s.reply, s.err
}

type stubEmbedder struct {
	vec []float64
	err error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	return s.vec, s.err
}

func (s *stubEmbedder) ModelName() string { return "stub" }

func TestManagerEmbed_BlankYieldsZeroVector(t *testing.T) {
	m := NewManager(nil, &stubEmbedder{vec: []float64{1, 2}}, ManagerConfig{EmbedDimension: 8})
	vec := m.Embed(context.Background(), "  \n ")
	require.Len(t, vec, 8)
	for _, v := range vec {
		require.Equal(t, 0.0, v)
	}
}

func TestManagerEmbed_ProviderFailureFallsBack(t *testing.T) {
	m := NewManager(nil, &stubEmbedder{err: ErrUnavailable}, ManagerConfig{EmbedDimension: 16})
	a := m.Embed(context.Background(), "some document text")
	b := m.Embed(context.Background(), "some document text")
	require.Len(t, a, 16)
	require.Equal(t, a, b)
}

func TestManagerEmbed_UsesProviderWhenHealthy(t *testing.T) {
	want := []float64{0.1, 0.2, 0.3}
	m := NewManager(nil, &stubEmbedder{vec: want}, ManagerConfig{EmbedDimension: 3})
	require.Equal(t, want, m.Embed(context.Background(), "hello"))
}

func TestManagerAnswerQuestion_DegradesOnProviderError(t *testing.T) {
	m := NewManager(&stubGenerator{err: ErrUnavailable}, nil, ManagerConfig{})
	got := m.AnswerQuestion(context.Background(), "context text", "what is this?")
	require.Equal(t, UnavailableAnswer, got)
}

func TestManagerAnswerQuestion_EmptyReply(t *testing.T) {
	m := NewManager(&stubGenerator{reply: "  "}, nil, ManagerConfig{})
	got := m.AnswerQuestion(context.Background(), "context text", "what is this?")
	require.Equal(t, NoAnswer, got)
}

func TestManagerSummarize_FallbackBulletsFromParagraphs(t *testing.T) {
	m := NewManager(&stubGenerator{err: ErrUnavailable}, nil, ManagerConfig{})
	text := "First paragraph about cats.\nSecond paragraph about dogs.\n\nThird paragraph."
	got := m.Summarize(context.Background(), text)
	require.True(t, strings.HasPrefix(got, FallbackSummaryMarker))
	require.Contains(t, got, "- First paragraph about cats.")
	require.Contains(t, got, "- Second paragraph about dogs.")
}

func TestExtractiveSummary_CapsAtTenBullets(t *testing.T) {
	lines := make([]string, 15)
	for i := range lines {
		lines[i] = "paragraph content"
	}
	got := ExtractiveSummary(strings.Join(lines, "\n"))
	require.Equal(t, 10, strings.Count(got, "- "))
}

func TestTruncate_RuneBoundary(t *testing.T) {
	text := strings.Repeat("界", 10)
	got := truncate(text, 10)
	require.True(t, utf8.ValidString(got))
	require.Equal(t, strings.Repeat("界", 3), got)

	require.Equal(t, "plain", truncate("plain", 10))
}

func TestExtractiveSummary_MultibyteLineCap(t *testing.T) {
	line := strings.Repeat("漢", 100)
	got := ExtractiveSummary(line)
	require.True(t, utf8.ValidString(got))
	require.Contains(t, got, FallbackSummaryMarker)
}
