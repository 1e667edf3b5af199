package imaging

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectAndEraseHorizontalLine(t *testing.T) {
	g := mkGray(120, 60, 255)
	for x := 10; x < 110; x++ {
		g.SetGray(x, 30, color.Gray{Y: 0})
	}

	p := HoughParams{Rho: 1, ThetaDegrees: 1, Threshold: 80, MinLineLength: 50, MaxLineGap: 10}
	segs := DetectLineSegments(g, p)
	require.NotEmpty(t, segs)

	var horizontal bool
	for _, s := range segs {
		a := s.Angle()
		if a <= 10 || a >= 170 {
			horizontal = true
			EraseSegment(g, s, 3)
		}
	}
	require.True(t, horizontal, "expected a near-horizontal segment")

	for x := 15; x < 105; x++ {
		assert.Equal(t, uint8(255), g.GrayAt(x, 30).Y, "line pixel at x=%d should be erased", x)
	}
}

func TestDetectLineSegmentsIgnoresShortRuns(t *testing.T) {
	g := mkGray(100, 100, 255)
	for x := 40; x < 55; x++ { // 15px — below min length
		g.SetGray(x, 50, color.Gray{Y: 0})
	}
	p := HoughParams{Rho: 1, ThetaDegrees: 1, Threshold: 10, MinLineLength: 50, MaxLineGap: 5}
	for _, s := range DetectLineSegments(g, p) {
		assert.GreaterOrEqual(t, s.Length(), 50.0)
	}
}

func TestDetectLineSegmentsVertical(t *testing.T) {
	g := mkGray(60, 120, 255)
	for y := 5; y < 115; y++ {
		g.SetGray(20, y, color.Gray{Y: 0})
	}
	p := HoughParams{Rho: 1, ThetaDegrees: 1, Threshold: 80, MinLineLength: 50, MaxLineGap: 10}
	segs := DetectLineSegments(g, p)
	require.NotEmpty(t, segs)

	var vertical bool
	for _, s := range segs {
		if d := s.Angle() - 90; d >= -10 && d <= 10 {
			vertical = true
		}
	}
	assert.True(t, vertical, "expected a near-vertical segment")
}
