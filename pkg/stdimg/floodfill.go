package stdimg

import (
	"image"
	"image/color"
)

// FloodFill paints the 4-connected region around seed with fillColor.
//
// The range floats: a pixel joins when each of its channels lies within
// [n-lo, n+up] of the already-accepted neighbour n it was reached from, so
// smooth gradients are followed. Comparison always uses the original pixel
// values.
func FloodFill(src *image.NRGBA, seed image.Point, fillColor color.NRGBA, lo, up [3]uint8) (*image.NRGBA, error) {
	if src == nil {
		return nil, unavailable("no canvas")
	}
	b := src.Bounds()
	if !seed.In(b) {
		return nil, unavailable("seed %v outside canvas %v", seed, b)
	}
	w, h := b.Dx(), b.Dy()

	// bitset, 1 bit per pixel
	mask := make([]byte, (w*h+7)/8)
	getMask := func(i int) bool { return mask[i>>3]&(1<<(uint(i)&7)) != 0 }
	setMask := func(i int) { mask[i>>3] |= 1 << (uint(i) & 7) }
	idxOf := func(px, py int) int { return py*w + px }

	within := func(from, to int) bool {
		fi := src.PixOffset(from%w+b.Min.X, from/w+b.Min.Y)
		ti := src.PixOffset(to%w+b.Min.X, to/w+b.Min.Y)
		for ch := 0; ch < 3; ch++ {
			n := int(src.Pix[fi+ch])
			v := int(src.Pix[ti+ch])
			if v < n-int(lo[ch]) || v > n+int(up[ch]) {
				return false
			}
		}
		return true
	}

	start := idxOf(seed.X-b.Min.X, seed.Y-b.Min.Y)
	queue := make([]int, 0, 1024)
	queue = append(queue, start)
	setMask(start)
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		px, py := i%w, i/w
		try := func(nx, ny int) {
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				return
			}
			j := idxOf(nx, ny)
			if getMask(j) || !within(i, j) {
				return
			}
			setMask(j)
			queue = append(queue, j)
		}
		try(px-1, py)
		try(px+1, py)
		try(px, py-1)
		try(px, py+1)
	}

	out := CloneNRGBA(src)
	fillColor.A = 255
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			if !getMask(idxOf(px, py)) {
				continue
			}
			o := out.PixOffset(px+b.Min.X, py+b.Min.Y)
			out.Pix[o+0] = fillColor.R
			out.Pix[o+1] = fillColor.G
			out.Pix[o+2] = fillColor.B
			out.Pix[o+3] = fillColor.A
		}
	}
	return out, nil
}
