package ai

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestSplitChunks_SentenceBoundaries(t *testing.T) {
	text := "Cats are mammals. Dogs are mammals too. Fish are not mammals."
	chunks, err := SplitChunks(text, 30)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)
	require.LessOrEqual(t, len(chunks), 3)
	for _, chunk := range chunks {
		require.NotEmpty(t, chunk)
		require.LessOrEqual(t, len(chunk), 35)
	}
	require.Equal(t, "Cats are mammals.", chunks[0])
}

func TestSplitChunks_PartitionReconstructsInput(t *testing.T) {
	texts := []string{
		"Cats are mammals. Dogs are mammals too. Fish are not mammals.",
		"one two three four five six seven eight nine ten eleven twelve",
		"No terminators here just a very long run of words that keeps going and going without stopping at all",
		"  leading and\ttrailing   whitespace\nwith newlines  ",
	}
	// sizes stay above the longest word so every cut lands on a space
	// or terminator and the space-rejoin below is exact
	for _, text := range texts {
		for _, size := range []int{25, 80, 1000} {
			chunks, err := SplitChunks(text, size)
			require.NoError(t, err)
			rejoined := strings.Join(chunks, " ")
			require.Equal(t, NormalizeText(text), rejoined, "size=%d", size)
		}
	}
	chunks, err := SplitChunks(texts[1], 10)
	require.NoError(t, err)
	require.Equal(t, NormalizeText(texts[1]), strings.Join(chunks, " "))
}

func TestSplitChunks_ShortTextSingleChunk(t *testing.T) {
	chunks, err := SplitChunks("tiny", 100)
	require.NoError(t, err)
	require.Equal(t, []string{"tiny"}, chunks)
}

func TestSplitChunks_EmptyInput(t *testing.T) {
	chunks, err := SplitChunks("", 100)
	require.NoError(t, err)
	require.Empty(t, chunks)

	chunks, err = SplitChunks("   \n\t  ", 100)
	require.NoError(t, err)
	require.Empty(t, chunks)
}

func TestSplitChunks_InvalidSize(t *testing.T) {
	_, err := SplitChunks("some text", 0)
	require.Error(t, err)
	_, err = SplitChunks("some text", -5)
	require.Error(t, err)
}

func TestSplitChunks_HardCutWithoutBoundaries(t *testing.T) {
	text := strings.Repeat("x", 100)
	chunks, err := SplitChunks(text, 30)
	require.NoError(t, err)
	require.Len(t, chunks, 4)
	total := 0
	for _, chunk := range chunks {
		total += len(chunk)
	}
	require.Equal(t, 100, total)
}

func TestSplitChunks_HardCutKeepsRuneBoundaries(t *testing.T) {
	text := strings.Repeat("好", 200)
	chunks, err := SplitChunks(text, 100)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		require.True(t, utf8.ValidString(chunk))
	}
	require.Equal(t, text, strings.Join(chunks, ""))
}
