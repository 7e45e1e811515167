package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderHTML(t *testing.T) {
	svc := NewSummaryService(nil, nil, nil)
	html, err := svc.RenderHTML("- first point\n- second point\n")
	require.NoError(t, err)
	require.Contains(t, html, "<ul>")
	require.Contains(t, html, "<li>first point</li>")
	require.Contains(t, html, "<li>second point</li>")
}
