package vectorutil

import (
	"math"
	"strconv"
	"strings"

	appErr "github.com/chitdoc/docqa/internal/pkg/errors"
)

// CosineSimilarity returns the normalized dot product of a and b.
// Empty or zero-magnitude vectors yield 0. Mismatched lengths are a
// data-integrity bug and return a DimensionMismatchError.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, nil
	}
	if len(a) != len(b) {
		return 0, &appErr.DimensionMismatchError{Want: len(a), Got: len(b)}
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Serialize renders a vector as a bracketed comma-separated list of
// decimals, e.g. "[0.1,-0.2,0.3]". Output round-trips through Parse
// for any finite-valued vector.
func Serialize(vec []float64) string {
	if len(vec) == 0 {
		return "[]"
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	sb.WriteByte(']')
	return sb.String()
}

// Parse reads the textual vector form back into a slice. Parsing is
// tolerant: malformed entries are skipped so one corrupt value does
// not invalidate the whole vector. Empty input yields an empty vector.
func Parse(text string) []float64 {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "[")
	cleaned = strings.TrimSuffix(cleaned, "]")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return nil
	}
	parts := strings.Split(cleaned, ",")
	vec := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			continue
		}
		vec = append(vec, v)
	}
	return vec
}
