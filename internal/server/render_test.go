package server

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDashboard(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	var buf strings.Builder

	err = renderer.RenderDashboard(&buf, DashboardPageData{
		Title:          "CommunityPulse",
		MinScore:       60,
		RefreshSeconds: 60,
		TopN:           20,
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "CommunityPulse")
	assert.Contains(t, html, "Top 20 Trending Posts")
	assert.Contains(t, html, "/api/dashboard")
}

func TestRenderError(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	var buf strings.Builder

	err = renderer.RenderError(&buf, ErrorPageData{
		Title:   "Load failed",
		Message: "csv missing required columns: trending_score",
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "trending_score")
}
