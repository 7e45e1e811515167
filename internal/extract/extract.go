// Package extract turns uploaded document files into plain text.
package extract

import (
	"fmt"
	"strings"
)

type Extractor interface {
	// Extract returns the plain text content of the file bytes.
	Extract(data []byte) (string, error)
}

// ForMimeType selects an extractor by the document's stored mime type,
// falling back to plain text for unknown types.
func ForMimeType(mimeType string) (Extractor, error) {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.IndexByte(mt, ';'); idx >= 0 {
		mt = strings.TrimSpace(mt[:idx])
	}
	switch mt {
	case "application/pdf":
		return &pdfExtractor{}, nil
	case "text/plain", "text/markdown", "":
		return &plainExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported mime type for extraction: %s", mimeType)
	}
}
