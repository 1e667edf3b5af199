package imaging

import (
	"image"
	"image/color"
	"math"
)

// FastNLMeans denoises g by averaging pixels with similar template
// neighborhoods inside a search window. h controls filter strength;
// templateSize and searchSize are the (odd) window apertures.
func FastNLMeans(g *image.Gray, h float64, templateSize, searchSize int) *image.Gray {
	if h <= 0 {
		h = 10
	}
	if templateSize <= 1 || templateSize%2 == 0 {
		templateSize = 7
	}
	if searchSize <= 1 || searchSize%2 == 0 {
		searchSize = 21
	}
	tr := templateSize / 2
	sr := searchSize / 2
	b := g.Bounds()
	w, ht := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, ht))
	norm := float64(templateSize * templateSize)
	h2 := h * h

	for y := 0; y < ht; y++ {
		for x := 0; x < w; x++ {
			var wsum, acc float64
			for sy := -sr; sy <= sr; sy++ {
				for sx := -sr; sx <= sr; sx++ {
					cx, cy := x+sx, y+sy
					if cx < 0 || cy < 0 || cx >= w || cy >= ht {
						continue
					}
					var d2 float64
					for ty := -tr; ty <= tr; ty++ {
						for tx := -tr; tx <= tr; tx++ {
							d := float64(grayClamped(g, x+tx, y+ty)) - float64(grayClamped(g, cx+tx, cy+ty))
							d2 += d * d
						}
					}
					wgt := math.Exp(-(d2 / norm) / h2)
					wsum += wgt
					acc += wgt * float64(g.GrayAt(b.Min.X+cx, b.Min.Y+cy).Y)
				}
			}
			if wsum > 0 {
				out.SetGray(x, y, color.Gray{Y: clampU8(acc / wsum)})
			} else {
				out.SetGray(x, y, g.GrayAt(b.Min.X+x, b.Min.Y+y))
			}
		}
	}
	return out
}

// Bilateral applies an edge-preserving blur: weights fall off with both
// spatial distance (sigmaSpace) and intensity difference (sigmaColor).
// d is the pixel neighborhood diameter.
func Bilateral(g *image.Gray, d int, sigmaColor, sigmaSpace float64) *image.Gray {
	if d <= 0 {
		d = 9
	}
	if sigmaColor <= 0 {
		sigmaColor = 75
	}
	if sigmaSpace <= 0 {
		sigmaSpace = 75
	}
	r := d / 2
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	space := make([]float64, d*d)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			space[(dy+r)*d+(dx+r)] = math.Exp(-float64(dx*dx+dy*dy) / (2 * sigmaSpace * sigmaSpace))
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := float64(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			var wsum, acc float64
			for dy := -r; dy <= r; dy++ {
				for dx := -r; dx <= r; dx++ {
					v := float64(grayClamped(g, x+dx, y+dy))
					dc := v - center
					wgt := space[(dy+r)*d+(dx+r)] * math.Exp(-dc*dc/(2*sigmaColor*sigmaColor))
					wsum += wgt
					acc += wgt * v
				}
			}
			out.SetGray(x, y, color.Gray{Y: clampU8(acc / wsum)})
		}
	}
	return out
}
