package imaging

import (
	"image"
	"math"
)

// Segment is a detected line segment in pixel coordinates.
type Segment struct {
	X1, Y1, X2, Y2 int
}

// Angle returns the absolute segment angle in degrees, in [0, 180).
func (s Segment) Angle() float64 {
	a := math.Abs(math.Atan2(float64(s.Y2-s.Y1), float64(s.X2-s.X1)) * 180 / math.Pi)
	return a
}

// Length returns the euclidean segment length.
func (s Segment) Length() float64 {
	dx := float64(s.X2 - s.X1)
	dy := float64(s.Y2 - s.Y1)
	return math.Hypot(dx, dy)
}

// HoughParams tunes probabilistic line detection.
type HoughParams struct {
	Rho           float64 // accumulator distance resolution in pixels
	ThetaDegrees  float64 // accumulator angle resolution in degrees
	Threshold     int     // minimum accumulator votes
	MinLineLength int
	MaxLineGap    int
}

// DetectLineSegments finds straight ink segments in g using a Hough-transform
// vote over dark pixels followed by a gap-tolerant walk along each candidate
// line.
func DetectLineSegments(g *image.Gray, p HoughParams) []Segment {
	if p.Rho <= 0 {
		p.Rho = 1
	}
	if p.ThetaDegrees <= 0 {
		p.ThetaDegrees = 1
	}
	if p.Threshold <= 0 {
		p.Threshold = 100
	}
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	nTheta := int(math.Ceil(180 / p.ThetaDegrees))
	maxRho := math.Hypot(float64(w), float64(h))
	nRho := int(2*maxRho/p.Rho) + 1
	sin := make([]float64, nTheta)
	cos := make([]float64, nTheta)
	for t := 0; t < nTheta; t++ {
		rad := float64(t) * p.ThetaDegrees * math.Pi / 180
		sin[t] = math.Sin(rad)
		cos[t] = math.Cos(rad)
	}

	acc := make([]int, nTheta*nRho)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if g.GrayAt(b.Min.X+x, b.Min.Y+y).Y >= Ink {
				continue
			}
			for t := 0; t < nTheta; t++ {
				rho := float64(x)*cos[t] + float64(y)*sin[t]
				ri := int((rho+maxRho)/p.Rho + 0.5)
				if ri >= 0 && ri < nRho {
					acc[t*nRho+ri]++
				}
			}
		}
	}

	var segs []Segment
	for t := 0; t < nTheta; t++ {
		for ri := 0; ri < nRho; ri++ {
			if acc[t*nRho+ri] < p.Threshold {
				continue
			}
			rho := float64(ri)*p.Rho - maxRho
			segs = append(segs, walkLine(g, rho, sin[t], cos[t], p)...)
		}
	}
	return segs
}

// walkLine traces a (rho, theta) line across the image, joining ink runs
// separated by at most MaxLineGap and keeping runs of at least MinLineLength.
func walkLine(g *image.Gray, rho, sinT, cosT float64, p HoughParams) []Segment {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()

	type pt struct{ x, y int }
	var pts []pt
	if math.Abs(sinT) > math.Sqrt2/2 {
		for x := 0; x < w; x++ {
			y := int((rho-float64(x)*cosT)/sinT + 0.5)
			if y >= 0 && y < h {
				pts = append(pts, pt{x, y})
			}
		}
	} else {
		for y := 0; y < h; y++ {
			x := int((rho-float64(y)*sinT)/cosT + 0.5)
			if x >= 0 && x < w {
				pts = append(pts, pt{x, y})
			}
		}
	}

	var segs []Segment
	runStart, runEnd := -1, -1
	flush := func() {
		if runStart < 0 {
			return
		}
		s := Segment{pts[runStart].x, pts[runStart].y, pts[runEnd].x, pts[runEnd].y}
		if s.Length() >= float64(p.MinLineLength) {
			segs = append(segs, s)
		}
		runStart, runEnd = -1, -1
	}
	for i, q := range pts {
		ink := g.GrayAt(b.Min.X+q.x, b.Min.Y+q.y).Y < Ink
		if ink {
			if runStart < 0 {
				runStart = i
			}
			runEnd = i
		} else if runStart >= 0 && i-runEnd > p.MaxLineGap {
			flush()
		}
	}
	flush()
	return segs
}

// EraseSegment paints a segment over with the background color at the given
// thickness.
func EraseSegment(g *image.Gray, s Segment, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	r := thickness / 2
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	paint := func(x, y int) {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				px, py := x+dx, y+dy
				if px >= 0 && py >= 0 && px < w && py < h {
					g.Pix[g.PixOffset(b.Min.X+px, b.Min.Y+py)] = Background
				}
			}
		}
	}
	// Bresenham walk.
	x, y := s.X1, s.Y1
	dx := abs(s.X2 - s.X1)
	dy := -abs(s.Y2 - s.Y1)
	sx, sy := 1, 1
	if s.X1 > s.X2 {
		sx = -1
	}
	if s.Y1 > s.Y2 {
		sy = -1
	}
	e := dx + dy
	for {
		paint(x, y)
		if x == s.X2 && y == s.Y2 {
			break
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
