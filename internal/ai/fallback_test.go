package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFallbackEmbedder_Deterministic(t *testing.T) {
	e := NewFallbackEmbedder(768)
	a, err := e.Embed(context.Background(), "the quick brown fox")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "the quick brown fox")
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestFallbackEmbedder_DistinctTextsDiffer(t *testing.T) {
	e := NewFallbackEmbedder(768)
	a, _ := e.Embed(context.Background(), "cats are mammals")
	b, _ := e.Embed(context.Background(), "submarines are vehicles")
	require.NotEqual(t, a, b)
}

func TestFallbackEmbedder_DimensionAndBounds(t *testing.T) {
	e := NewFallbackEmbedder(64)
	vec, err := e.Embed(context.Background(), "bounded output please")
	require.NoError(t, err)
	require.Len(t, vec, 64)
	for _, v := range vec {
		require.GreaterOrEqual(t, v, -1.0)
		require.LessOrEqual(t, v, 1.0)
	}
}

func TestFallbackEmbedder_BlankInputIsZeroVector(t *testing.T) {
	e := NewFallbackEmbedder(32)
	vec, err := e.Embed(context.Background(), "   ")
	require.NoError(t, err)
	require.Len(t, vec, 32)
	for _, v := range vec {
		require.Equal(t, 0.0, v)
	}
}
