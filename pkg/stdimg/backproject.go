package stdimg

import (
	"image"
)

const (
	hueBins = 180
	satBins = 256
)

// 5x5 elliptical structuring element.
var ellipse5 = [5][5]int{
	{0, 0, 1, 0, 0},
	{1, 1, 1, 1, 1},
	{1, 1, 1, 1, 1},
	{1, 1, 1, 1, 1},
	{0, 0, 1, 0, 0},
}

// hueSat converts to 8-bit hue (0..179) and saturation (0..255).
func hueSat(r, g, b uint8) (int, int) {
	mx := max(r, g, b)
	mn := min(r, g, b)
	if mx == 0 {
		return 0, 0
	}
	d := float64(mx) - float64(mn)
	s := int(d*255/float64(mx) + 0.5)
	if d == 0 {
		return 0, s
	}
	var h float64
	switch mx {
	case r:
		h = 60 * (float64(g) - float64(b)) / d
	case g:
		h = 120 + 60*(float64(b)-float64(r))/d
	default:
		h = 240 + 60*(float64(r)-float64(g))/d
	}
	if h < 0 {
		h += 360
	}
	hi := int(h/2 + 0.5)
	if hi >= hueBins {
		hi -= hueBins
	}
	return hi, s
}

// BackProject keeps the pixels whose hue/saturation are common in the region
// relative to the whole image and blacks out everything else.
func BackProject(src *image.NRGBA, x, y, w, h int) (*image.NRGBA, error) {
	if src == nil {
		return nil, unavailable("no canvas")
	}
	bounds := src.Bounds()
	roi, err := roiRect(bounds, x, y, w, h)
	if err != nil {
		return nil, err
	}
	iw, ih := bounds.Dx(), bounds.Dy()
	hs := make([]int32, iw*ih)
	imgHist := make([]float64, hueBins*satBins)
	roiHist := make([]float64, hueBins*satBins)
	for py := 0; py < ih; py++ {
		for px := 0; px < iw; px++ {
			i := src.PixOffset(px+bounds.Min.X, py+bounds.Min.Y)
			hh, ss := hueSat(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
			bin := int32(hh*satBins + ss)
			hs[py*iw+px] = bin
			imgHist[bin]++
			if image.Pt(px+bounds.Min.X, py+bounds.Min.Y).In(roi) {
				roiHist[bin]++
			}
		}
	}

	// ratio clipped to 1, then min-max normalised to 0..255
	bp := make([]float64, iw*ih)
	lo, hi := 1.0, 0.0
	for p, bin := range hs {
		v := roiHist[bin] / (imgHist[bin] + 1)
		if v > 1 {
			v = 1
		}
		bp[p] = v
		lo = min(lo, v)
		hi = max(hi, v)
	}
	norm := make([]uint8, iw*ih)
	if hi > lo {
		for p, v := range bp {
			norm[p] = uint8((v - lo) / (hi - lo) * 255)
		}
	}

	out := image.NewNRGBA(image.Rect(0, 0, iw, ih))
	for py := 0; py < ih; py++ {
		for px := 0; px < iw; px++ {
			sum := 0
			for ky := -2; ky <= 2; ky++ {
				yy := clampInt(py+ky, 0, ih-1)
				for kx := -2; kx <= 2; kx++ {
					if ellipse5[ky+2][kx+2] == 0 {
						continue
					}
					sum += int(norm[yy*iw+clampInt(px+kx, 0, iw-1)])
				}
			}
			o := out.PixOffset(px, py)
			out.Pix[o+3] = 255
			// smoothed response saturates at 255; mask is response > 1
			if min(sum, 255) > 1 {
				i := src.PixOffset(px+bounds.Min.X, py+bounds.Min.Y)
				out.Pix[o+0] = src.Pix[i+0]
				out.Pix[o+1] = src.Pix[i+1]
				out.Pix[o+2] = src.Pix[i+2]
			}
		}
	}
	return out, nil
}
