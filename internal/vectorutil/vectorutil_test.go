package vectorutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/chitdoc/docqa/internal/pkg/errors"
)

func TestCosineSimilarity_Identical(t *testing.T) {
	v := []float64{0.3, -1.2, 4.5, 0.01}
	got, err := CosineSimilarity(v, v)
	require.NoError(t, err)
	require.InDelta(t, 1.0, got, 1e-12)
}

func TestCosineSimilarity_Bounds(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
	}{
		{"opposite", []float64{1, 2, 3}, []float64{-1, -2, -3}},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}},
		{"random", []float64{0.5, -0.7, 0.2}, []float64{-0.1, 0.9, 0.4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			require.NoError(t, err)
			require.GreaterOrEqual(t, got, -1.0-1e-12)
			require.LessOrEqual(t, got, 1.0+1e-12)
		})
	}
}

func TestCosineSimilarity_DimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3})
	require.Error(t, err)
	require.True(t, appErr.IsDimensionMismatch(err))
}

func TestCosineSimilarity_ZeroAndEmpty(t *testing.T) {
	got, err := CosineSimilarity([]float64{0, 0, 0}, []float64{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 0.0, got)

	got, err = CosineSimilarity(nil, []float64{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 0.0, got)
}

func TestSerializeParse_RoundTrip(t *testing.T) {
	vecs := [][]float64{
		{0.1, 0.2, 0.3},
		{-1, 0, 1},
		{1e-9, 123456.789, -0.000001},
		{},
	}
	for _, vec := range vecs {
		parsed := Parse(Serialize(vec))
		require.Len(t, parsed, len(vec))
		for i := range vec {
			require.InDelta(t, vec[i], parsed[i], math.Abs(vec[i])*1e-12+1e-15)
		}
	}
}

func TestParse_TolerantOfMalformedEntries(t *testing.T) {
	got := Parse("[0.1, bad, 0.3]")
	require.Equal(t, []float64{0.1, 0.3}, got)
}

func TestParse_EmptyInputs(t *testing.T) {
	require.Empty(t, Parse(""))
	require.Empty(t, Parse("[]"))
	require.Empty(t, Parse("   "))
}
