// Package chartpng renders the bar-chart series to a PNG for export.
// The interactive dashboard draws its own charts client-side; this is
// the static counterpart served at /api/chart.png.
package chartpng

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/communitypulse/pulse-dashboard/internal/present"
)

// ErrNoData is returned when there is nothing to draw. Callers render
// an explicit no-data state instead of an image.
var ErrNoData = errors.New("no bars to render")

const (
	chartWidth  = 10 * vg.Inch
	chartHeight = 5 * vg.Inch

	// Axis labels get a tighter cutoff than the on-page chart; long
	// nominal labels overlap at PNG scale.
	axisLabelMaxLen = 28
)

var (
	barWidth = vg.Points(12)
	barColor = color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}
)

// Bars renders the trending-score bar series as a PNG.
func Bars(points []present.BarPoint, title string) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Trending score"
	p.X.Tick.Label.Rotation = 0.9
	p.X.Tick.Label.XAlign = -1
	p.X.Tick.Label.YAlign = -0.4

	values := make(plotter.Values, len(points))
	labels := make([]string, len(points))

	for i, pt := range points {
		values[i] = pt.Score
		labels[i] = present.TruncateTitle(pt.Tooltip.Title, axisLabelMaxLen)
	}

	bars, err := plotter.NewBarChart(values, barWidth)
	if err != nil {
		return nil, fmt.Errorf("build bar chart: %w", err)
	}

	bars.Color = barColor
	bars.LineStyle.Width = 0

	p.Add(bars)
	p.NominalX(labels...)

	writer, err := p.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}

	var buf bytes.Buffer
	if _, err := writer.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode chart png: %w", err)
	}

	return buf.Bytes(), nil
}
