package ai

import (
	"context"
	"hash/fnv"
	"strings"
)

// fallbackEmbedder produces a deterministic pseudo-embedding from the
// text's hash plus simple lexical statistics. It carries no semantic
// meaning; it exists so the pipeline stays functional and reproducible
// when no real embedding provider is reachable.
type fallbackEmbedder struct {
	dimension int
}

func NewFallbackEmbedder(dimension int) IEmbedder {
	if dimension <= 0 {
		dimension = DefaultEmbedDimension
	}
	return &fallbackEmbedder{dimension: dimension}
}

func (f *fallbackEmbedder) ModelName() string {
	return "deterministic-fallback"
}

func (f *fallbackEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, f.dimension)
	if strings.TrimSpace(text) == "" {
		return vec, nil
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	seed := int64(h.Sum32())

	lower := strings.ToLower(text)
	wordCount := len(strings.Fields(text))

	for i := 0; i < f.dimension; i++ {
		hv := (seed + int64(i)*31) % 1000
		value := float64(hv)/1000.0*2.0 - 1.0

		if i < 10 {
			// Character-frequency features for 'a'..'j'.
			c := rune('a' + i)
			value += float64(strings.Count(lower, string(c))) / float64(len(text)) * 0.1
		} else if i < 20 {
			value += float64(wordCount) / 100.0
		}

		if value > 1.0 {
			value = 1.0
		} else if value < -1.0 {
			value = -1.0
		}
		vec[i] = value
	}
	return vec, nil
}
