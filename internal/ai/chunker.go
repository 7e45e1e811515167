package ai

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	appErr "github.com/chitdoc/docqa/internal/pkg/errors"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeText collapses all whitespace runs to single spaces and
// trims the result.
func NormalizeText(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// SplitChunks partitions text into segments of at most roughly
// targetSize characters, preferring to cut just after a sentence
// terminator, then at a space, then hard. The emitted chunks are a
// left-to-right partition of the normalized text: no overlap, no
// reordering, nothing skipped except whitespace lost to trimming.
func SplitChunks(text string, targetSize int) ([]string, error) {
	if targetSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", appErr.ErrInvalid, targetSize)
	}
	normalized := NormalizeText(text)
	if normalized == "" {
		return nil, nil
	}

	var chunks []string
	start := 0
	for start < len(normalized) {
		end := start + targetSize
		if end > len(normalized) {
			end = len(normalized)
		}

		if end < len(normalized) {
			// The boundary searches may inspect the character at
			// position end itself, so a snapped chunk can run one
			// character over targetSize.
			window := normalized[:end+1]
			sentenceEnd := strings.LastIndexAny(window, ".?!\n")
			if sentenceEnd > start+targetSize/2 {
				end = sentenceEnd + 1
			} else if lastSpace := strings.LastIndex(window, " "); lastSpace > start {
				end = lastSpace
			} else {
				// Hard cut: back off to a rune boundary so no chunk
				// carries a torn multibyte character.
				for end > start && !utf8.RuneStart(normalized[end]) {
					end--
				}
				if end == start {
					_, size := utf8.DecodeRuneInString(normalized[start:])
					end = start + size
				}
			}
		}

		chunk := strings.TrimSpace(normalized[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		start = end
	}
	return chunks, nil
}
