package stdimg

import (
	"image"
)

const (
	DefaultThresholdBlock  = 11
	DefaultThresholdOffset = 10.0
)

// AdaptiveThreshold compares each pixel's luma with the mean of its block x
// block neighbourhood. Pixels brighter than mean - offset become white,
// the rest black. Windows are cut at the image border.
func AdaptiveThreshold(src *image.NRGBA, block int, offset float64) (*image.NRGBA, error) {
	if src == nil {
		return nil, unavailable("no canvas")
	}
	if block < 3 || block%2 == 0 {
		return nil, unavailable("block size must be odd and >= 3, got %d", block)
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	lum := grayPlane(src)

	// integral image for fast local means
	integ := make([]float64, (w+1)*(h+1))
	for y := 1; y <= h; y++ {
		sum := 0.0
		for x := 1; x <= w; x++ {
			sum += float64(lum[(y-1)*w+(x-1)])
			integ[y*(w+1)+x] = integ[(y-1)*(w+1)+x] + sum
		}
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	half := block / 2
	for y := 0; y < h; y++ {
		y0 := clampInt(y-half, 0, h-1)
		y1 := clampInt(y+half, 0, h-1) + 1
		for x := 0; x < w; x++ {
			x0 := clampInt(x-half, 0, w-1)
			x1 := clampInt(x+half, 0, w-1) + 1
			area := float64((x1 - x0) * (y1 - y0))
			s := integ[y1*(w+1)+x1] - integ[y0*(w+1)+x1] - integ[y1*(w+1)+x0] + integ[y0*(w+1)+x0]
			var v uint8
			if float64(lum[y*w+x]) > s/area-offset {
				v = 255
			}
			o := out.PixOffset(x, y)
			out.Pix[o+0] = v
			out.Pix[o+1] = v
			out.Pix[o+2] = v
			out.Pix[o+3] = 255
		}
	}
	return out, nil
}
