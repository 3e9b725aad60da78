package present

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communitypulse/pulse-dashboard/internal/pipeline"
)

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		maxLen int
		want   string
	}{
		{name: "short stays intact", title: "hello", maxLen: 80, want: "hello"},
		{name: "exact length untouched", title: strings.Repeat("a", 80), maxLen: 80, want: strings.Repeat("a", 80)},
		{name: "long gets ellipsis", title: strings.Repeat("a", 81), maxLen: 80, want: strings.Repeat("a", 80) + "…"},
		{name: "multibyte counts runes", title: strings.Repeat("é", 81), maxLen: 80, want: strings.Repeat("é", 80) + "…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateTitle(tt.title, tt.maxLen))
		})
	}
}

func TestBuild(t *testing.T) {
	longTitle := strings.Repeat("x", 100)

	result := pipeline.Result{
		Top: []pipeline.ProjectedRow{
			{Title: longTitle, Community: "aww", TrendingScore: 91.5, Upvotes: 10, Comments: 2},
			{Title: "short", Community: "news", TrendingScore: 70, Upvotes: 5, Comments: 1},
		},
		Counts: []pipeline.CommunityCount{
			{Community: "aww", Count: 3},
			{Community: "news", Count: 1},
		},
		Summary: pipeline.Summary{FilteredPosts: 4, MeanTrendingScore: 80.75, SelectedCommunities: 2},
	}

	view := Build(result, 80)

	// Table rows pass through verbatim.
	assert.Equal(t, result.Top, view.Rows)

	require.Len(t, view.Bars, 2)
	assert.Equal(t, strings.Repeat("x", 80)+"…", view.Bars[0].Label)
	assert.InDelta(t, 91.5, view.Bars[0].Score, 1e-9)
	// The tooltip keeps the untruncated row.
	assert.Equal(t, longTitle, view.Bars[0].Tooltip.Title)
	assert.Equal(t, "short", view.Bars[1].Label)

	require.Len(t, view.Pie, 2)
	assert.Equal(t, PieSlice{Label: "aww", Value: 3}, view.Pie[0])
	assert.Equal(t, PieSlice{Label: "news", Value: 1}, view.Pie[1])

	assert.Equal(t, result.Summary, view.Summary)
}

func TestBuildEmptyResult(t *testing.T) {
	view := Build(pipeline.Result{}, 0)

	assert.Empty(t, view.Rows)
	assert.Empty(t, view.Bars)
	assert.Empty(t, view.Pie)
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", FormatCount(0))
	assert.Equal(t, "999", FormatCount(999))
	assert.Equal(t, "1,234", FormatCount(1234))
	assert.Equal(t, "1,234,567", FormatCount(1234567))
}
