package stdimg

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Hysteresis thresholds on Sobel magnitude.
const (
	edgeLow  = 50
	edgeHigh = 150
)

// sobel returns the gradient magnitude of a grey plane, borders clamped.
func sobel(g []uint8, w, h int) []float64 {
	mag := make([]float64, w*h)
	px := func(x, y int) float64 {
		return float64(g[clampInt(y, 0, h-1)*w+clampInt(x, 0, w-1)])
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := px(x+1, y-1) + 2*px(x+1, y) + px(x+1, y+1) -
				px(x-1, y-1) - 2*px(x-1, y) - px(x-1, y+1)
			gy := px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1) -
				px(x-1, y-1) - 2*px(x, y-1) - px(x+1, y-1)
			mag[y*w+x] = math.Hypot(gx, gy)
		}
	}
	return mag
}

// EdgeMask returns a w*h mask of edge pixels: a light blur, Sobel magnitude
// and hysteresis thresholding. Weak edges survive only when 8-connected to a
// strong one.
func EdgeMask(src *image.NRGBA, low, high float64) (mask []bool, w, h int) {
	b := src.Bounds()
	w, h = b.Dx(), b.Dy()
	mag := sobel(grayPlane(imaging.Blur(src, 1.0)), w, h)

	state := make([]uint8, w*h) // 0 none, 1 weak, 2 strong
	stack := make([]int, 0, 1024)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := mag[y*w+x]
			switch {
			case v >= high:
				state[y*w+x] = 2
				stack = append(stack, y*w+x)
			case v >= low:
				state[y*w+x] = 1
			}
		}
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		px, py := p%w, p/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := px+dx, py+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				if q := ny*w + nx; state[q] == 1 {
					state[q] = 2
					stack = append(stack, q)
				}
			}
		}
	}
	mask = make([]bool, w*h)
	for i, s := range state {
		mask[i] = s == 2
	}
	return mask, w, h
}

// components labels 8-connected runs of true pixels and calls fn with the
// pixel indices of each.
func components(mask []bool, w, h int, fn func(idx []int)) {
	seen := make([]bool, len(mask))
	var comp, stack []int
	for start := range mask {
		if !mask[start] || seen[start] {
			continue
		}
		comp = comp[:0]
		stack = append(stack[:0], start)
		seen[start] = true
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, p)
			px, py := p%w, p/w
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := px+dx, py+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					if q := ny*w + nx; mask[q] && !seen[q] {
						seen[q] = true
						stack = append(stack, q)
					}
				}
			}
		}
		fn(comp)
	}
}
