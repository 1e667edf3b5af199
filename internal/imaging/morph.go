package imaging

import (
	"image"
	"image/color"
)

// KernelShape selects the structuring element layout for morphology.
type KernelShape string

const (
	KernelRect    KernelShape = "rect"
	KernelCross   KernelShape = "cross"
	KernelEllipse KernelShape = "ellipse"
)

// Kernel is a boolean structuring element.
type Kernel struct {
	W, H int
	Mask []bool
}

// StructuringElement builds a kernel of the given shape and size. Unknown
// shapes fall back to rect.
func StructuringElement(shape KernelShape, w, h int) Kernel {
	if w <= 0 {
		w = 3
	}
	if h <= 0 {
		h = 3
	}
	k := Kernel{W: w, H: h, Mask: make([]bool, w*h)}
	cx, cy := float64(w-1)/2, float64(h-1)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			switch shape {
			case KernelCross:
				k.Mask[y*w+x] = x == int(cx) || y == int(cy)
			case KernelEllipse:
				// Inscribed ellipse; degenerate axes behave like a line.
				rx, ry := cx, cy
				if rx == 0 {
					rx = 0.5
				}
				if ry == 0 {
					ry = 0.5
				}
				dx := (float64(x) - cx) / rx
				dy := (float64(y) - cy) / ry
				k.Mask[y*w+x] = dx*dx+dy*dy <= 1.0
			default:
				k.Mask[y*w+x] = true
			}
		}
	}
	return k
}

// Erode takes the neighborhood minimum under the kernel, shrinking bright
// regions. iterations < 1 is treated as 1.
func Erode(g *image.Gray, k Kernel, iterations int) *image.Gray {
	return morphIter(g, k, iterations, true)
}

// Dilate takes the neighborhood maximum under the kernel, growing bright
// regions.
func Dilate(g *image.Gray, k Kernel, iterations int) *image.Gray {
	return morphIter(g, k, iterations, false)
}

// Open erodes then dilates, removing small bright specks.
func Open(g *image.Gray, k Kernel, iterations int) *image.Gray {
	if iterations < 1 {
		iterations = 1
	}
	out := g
	for i := 0; i < iterations; i++ {
		out = Dilate(Erode(out, k, 1), k, 1)
	}
	return out
}

// Close dilates then erodes, filling small dark holes.
func Close(g *image.Gray, k Kernel, iterations int) *image.Gray {
	if iterations < 1 {
		iterations = 1
	}
	out := g
	for i := 0; i < iterations; i++ {
		out = Erode(Dilate(out, k, 1), k, 1)
	}
	return out
}

func morphIter(g *image.Gray, k Kernel, iterations int, min bool) *image.Gray {
	if iterations < 1 {
		iterations = 1
	}
	cur := g
	for i := 0; i < iterations; i++ {
		cur = morphOnce(cur, k, min)
	}
	if cur == g {
		return Clone(g)
	}
	return cur
}

func morphOnce(g *image.Gray, k Kernel, min bool) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	ax, ay := k.W/2, k.H/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var best int
			if min {
				best = 255
			}
			for ky := 0; ky < k.H; ky++ {
				for kx := 0; kx < k.W; kx++ {
					if !k.Mask[ky*k.W+kx] {
						continue
					}
					v := int(grayClamped(g, x+kx-ax, y+ky-ay))
					if min {
						if v < best {
							best = v
						}
					} else if v > best {
						best = v
					}
				}
			}
			out.SetGray(x, y, color.Gray{Y: uint8(best)})
		}
	}
	return out
}
