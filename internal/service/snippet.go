package service

import (
	"strings"
	"unicode/utf8"

	"github.com/chitdoc/docqa/internal/ai"
)

const (
	snippetMaxLen     = 300
	snippetWindowSize = 120
)

// chunkSnippet shortens the best matching chunk for display. The cut
// backs off to a rune boundary so the snippet stays valid UTF-8.
func chunkSnippet(text string) string {
	if len(text) <= snippetMaxLen {
		return text
	}
	return text[:runeFloor(text, snippetMaxLen)] + "…"
}

// lexicalSnippet normalizes whitespace, then locates the first question
// token of three or more characters inside the lowercased text and
// returns a window of 120 characters on each side of the match
// position, with ellipsis markers where the window cuts the text. When
// no token matches, the window anchors at the start. Tokens are taken
// exactly as typed, punctuation included; "mammals?" only matches text
// containing "mammals?".
func lexicalSnippet(text, question string) string {
	normalized := ai.NormalizeText(text)
	lowerText := strings.ToLower(normalized)
	anchor := 0
	for _, token := range strings.Fields(question) {
		token = strings.ToLower(token)
		if len(token) < 3 {
			continue
		}
		if idx := strings.Index(lowerText, token); idx >= 0 {
			anchor = idx
			break
		}
	}
	start := anchor - snippetWindowSize
	if start < 0 {
		start = 0
	}
	end := anchor + snippetWindowSize
	if end > len(normalized) {
		end = len(normalized)
	}
	start = runeCeil(normalized, start)
	end = runeFloor(normalized, end)
	var sb strings.Builder
	if start > 0 {
		sb.WriteString("…")
	}
	sb.WriteString(normalized[start:end])
	if end < len(normalized) {
		sb.WriteString("…")
	}
	return sb.String()
}

// runeFloor moves i back to the nearest rune start at or before it.
func runeFloor(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// runeCeil moves i forward to the nearest rune start at or after it.
func runeCeil(s string, i int) int {
	if i <= 0 {
		return 0
	}
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}
