// Package imaging provides the pixel-level operations used by the
// preprocessing pipeline. All transforms take and return *image.Gray and
// never mutate their input.
package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

const (
	// Ink is the threshold below which a pixel counts as foreground.
	Ink = 128
	// Background is the fill value for exposed canvas and erased lines.
	Background = 255
)

// ToGray converts any image to 8-bit grayscale.
func ToGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return g
	}
	b := src.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), src, b.Min, draw.Src)
	return g
}

// Clone returns a deep copy of g.
func Clone(g *image.Gray) *image.Gray {
	out := image.NewGray(g.Bounds())
	copy(out.Pix, g.Pix)
	return out
}

// Equal reports whether two grayscale images have identical bounds and pixels.
func Equal(a, b *image.Gray) bool {
	if !a.Bounds().Eq(b.Bounds()) {
		return false
	}
	w, h := a.Bounds().Dx(), a.Bounds().Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if a.GrayAt(a.Bounds().Min.X+x, a.Bounds().Min.Y+y) != b.GrayAt(b.Bounds().Min.X+x, b.Bounds().Min.Y+y) {
				return false
			}
		}
	}
	return true
}

// RotateCW rotates g clockwise by deg, which must be 0, 90, 180 or 270.
// Right-angle rotations swap dimensions, so the canvas expands naturally.
func RotateCW(g *image.Gray, deg int) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	switch ((deg % 360) + 360) % 360 {
	case 0:
		return Clone(g)
	case 90:
		out := image.NewGray(image.Rect(0, 0, h, w))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.SetGray(h-1-y, x, g.GrayAt(b.Min.X+x, b.Min.Y+y))
			}
		}
		return out
	case 180:
		out := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.SetGray(w-1-x, h-1-y, g.GrayAt(b.Min.X+x, b.Min.Y+y))
			}
		}
		return out
	case 270:
		out := image.NewGray(image.Rect(0, 0, h, w))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.SetGray(y, w-1-x, g.GrayAt(b.Min.X+x, b.Min.Y+y))
			}
		}
		return out
	}
	return Clone(g)
}

// CropTop removes px rows from the top of g. Images shorter than px are
// returned unchanged.
func CropTop(g *image.Gray, px int) *image.Gray {
	b := g.Bounds()
	if px <= 0 || b.Dy() <= px {
		return Clone(g)
	}
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()-px))
	for y := 0; y < out.Bounds().Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.SetGray(x, y, g.GrayAt(b.Min.X+x, b.Min.Y+y+px))
		}
	}
	return out
}

// Contrast scales pixel distance from the image mean by factor. factor 1.0 is
// the identity; 2.0 doubles contrast.
func Contrast(g *image.Gray, factor float64) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return Clone(g)
	}
	var sum float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum += float64(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
		}
	}
	mean := sum / float64(w*h)
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := mean + factor*(float64(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y)-mean)
			out.SetGray(x, y, color.Gray{Y: clampU8(v)})
		}
	}
	return out
}

// sharpenKernel matches the classic 3x3 sharpening filter (divisor 16).
var sharpenKernel = [9]float64{-2, -2, -2, -2, 32, -2, -2, -2, -2}

// Sharpen applies a 3x3 sharpening convolution with edge clamping.
func Sharpen(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			k := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					acc += sharpenKernel[k] * float64(grayClamped(g, x+dx, y+dy))
					k++
				}
			}
			out.SetGray(x, y, color.Gray{Y: clampU8(acc / 16)})
		}
	}
	return out
}

// MedianBlur replaces each pixel with the median of its k×k neighborhood.
// k must be odd; even or non-positive values fall back to 3.
func MedianBlur(g *image.Gray, k int) *image.Gray {
	if k <= 1 || k%2 == 0 {
		k = 3
	}
	r := k / 2
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	var hist [256]int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for i := range hist {
				hist[i] = 0
			}
			n := 0
			for dy := -r; dy <= r; dy++ {
				for dx := -r; dx <= r; dx++ {
					hist[grayClamped(g, x+dx, y+dy)]++
					n++
				}
			}
			mid := n / 2
			acc := 0
			for v := 0; v < 256; v++ {
				acc += hist[v]
				if acc > mid {
					out.SetGray(x, y, color.Gray{Y: uint8(v)})
					break
				}
			}
		}
	}
	return out
}

// AdaptiveThreshold binarizes g against a Gaussian-weighted local mean:
// out = 255 where src > mean(block) - c, else 0.
func AdaptiveThreshold(g *image.Gray, blockSize int, c float64) *image.Gray {
	if blockSize <= 1 || blockSize%2 == 0 {
		blockSize = 15
	}
	blurred := gaussianBlur(g, blockSize)
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src := float64(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			if src > blurred[y*w+x]-c {
				out.SetGray(x, y, color.Gray{Y: 255})
			} // else stays zero
		}
	}
	return out
}

// gaussianBlur computes a separable Gaussian-weighted mean with the sigma
// convention used by common vision libraries for a given aperture.
func gaussianBlur(g *image.Gray, ksize int) []float64 {
	sigma := 0.3*(float64(ksize-1)*0.5-1) + 0.8
	r := ksize / 2
	kernel := make([]float64, ksize)
	var ksum float64
	for i := range kernel {
		d := float64(i - r)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		ksum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= ksum
	}

	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	tmp := make([]float64, w*h)
	outF := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for i := -r; i <= r; i++ {
				acc += kernel[i+r] * float64(grayClamped(g, x+i, y))
			}
			tmp[y*w+x] = acc
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for i := -r; i <= r; i++ {
				yy := y + i
				if yy < 0 {
					yy = 0
				} else if yy >= h {
					yy = h - 1
				}
				acc += kernel[i+r] * tmp[yy*w+x]
			}
			outF[y*w+x] = acc
		}
	}
	return outF
}

func grayClamped(g *image.Gray, x, y int) uint8 {
	b := g.Bounds()
	if x < 0 {
		x = 0
	} else if x >= b.Dx() {
		x = b.Dx() - 1
	}
	if y < 0 {
		y = 0
	} else if y >= b.Dy() {
		y = b.Dy() - 1
	}
	return g.GrayAt(b.Min.X+x, b.Min.Y+y).Y
}

func clampU8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
