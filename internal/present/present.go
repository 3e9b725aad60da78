// Package present reshapes pipeline output into the series the
// rendering surface consumes: table rows, a bar-chart series, and a
// pie-chart series. It only reshapes and truncates; it never changes
// filter, ranking, or aggregation results.
package present

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/communitypulse/pulse-dashboard/internal/pipeline"
)

// DefaultTitleMaxLen is the display cutoff for bar-chart labels.
// A truncated label gets an ellipsis appended. Display convention
// only; the full title always travels in the tooltip.
const DefaultTitleMaxLen = 80

const ellipsis = "…"

// BarPoint is one bar of the trending-score chart. Label is the
// truncated title; Tooltip carries the full projected row.
type BarPoint struct {
	Label   string                `json:"label"`
	Score   float64               `json:"score"`
	Tooltip pipeline.ProjectedRow `json:"tooltip"`
}

// PieSlice is one slice of the community distribution chart.
type PieSlice struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// View is the complete renderer-ready output of one run.
type View struct {
	Rows    []pipeline.ProjectedRow `json:"rows"`
	Bars    []BarPoint              `json:"bars"`
	Pie     []PieSlice              `json:"pie"`
	Summary pipeline.Summary        `json:"summary"`
}

// Build maps a pipeline result into renderer-ready series.
// titleMaxLen <= 0 falls back to DefaultTitleMaxLen.
func Build(result pipeline.Result, titleMaxLen int) View {
	if titleMaxLen <= 0 {
		titleMaxLen = DefaultTitleMaxLen
	}

	bars := make([]BarPoint, len(result.Top))
	for i, row := range result.Top {
		bars[i] = BarPoint{
			Label:   TruncateTitle(row.Title, titleMaxLen),
			Score:   row.TrendingScore,
			Tooltip: row,
		}
	}

	pie := make([]PieSlice, len(result.Counts))
	for i, c := range result.Counts {
		pie[i] = PieSlice{Label: c.Community, Value: c.Count}
	}

	return View{
		Rows:    result.Top,
		Bars:    bars,
		Pie:     pie,
		Summary: result.Summary,
	}
}

// TruncateTitle cuts a title to maxLen runes and appends an ellipsis
// when anything was cut. Rune-based so multibyte titles are not split
// mid-character.
func TruncateTitle(title string, maxLen int) string {
	runes := []rune(title)
	if len(runes) <= maxLen {
		return title
	}

	return string(runes[:maxLen]) + ellipsis
}

var countPrinter = message.NewPrinter(language.English)

// FormatCount renders an integer with thousands separators for display
// labels ("Rows: 1,234").
func FormatCount(n int) string {
	return countPrinter.Sprintf("%d", n)
}
