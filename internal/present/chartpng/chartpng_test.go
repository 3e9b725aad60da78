package chartpng

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communitypulse/pulse-dashboard/internal/pipeline"
	"github.com/communitypulse/pulse-dashboard/internal/present"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestBars(t *testing.T) {
	points := []present.BarPoint{
		{Label: "first", Score: 91.5, Tooltip: pipeline.ProjectedRow{Title: "first"}},
		{Label: "second", Score: 65, Tooltip: pipeline.ProjectedRow{Title: "second"}},
	}

	png, err := Bars(points, "Trending Score")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic), "output is not a PNG")
}

func TestBarsNoData(t *testing.T) {
	_, err := Bars(nil, "Trending Score")
	assert.ErrorIs(t, err, ErrNoData)
}
