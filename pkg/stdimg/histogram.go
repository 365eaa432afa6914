package stdimg

import (
	"image"

	"gonum.org/v1/gonum/stat"
)

// ComputeHistogram computes per-channel histograms with `bins` bins (e.g., 256).
// Returns three slices for R, G, B counts.
func ComputeHistogram(src *image.NRGBA, bins int) ([]int, []int, []int) {
	if src == nil {
		return nil, nil, nil
	}
	if bins <= 0 || bins > 256 {
		bins = 256
	}
	hs := [3][]int{make([]int, bins), make([]int, bins), make([]int, bins)}
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := src.PixOffset(x, y)
			for ch := 0; ch < 3; ch++ {
				hs[ch][int(src.Pix[i+ch])*bins/256]++
			}
		}
	}
	return hs[0], hs[1], hs[2]
}

// equalizeLUT maps a 256-bin histogram through its normalised CDF. The
// darkest occupied level maps to 0.
func equalizeLUT(hist []int) [256]uint8 {
	var lut [256]uint8
	total := 0
	cdfMin := -1
	for _, v := range hist {
		total += v
	}
	cdf := 0
	for i, v := range hist {
		cdf += v
		if cdfMin < 0 && v > 0 {
			cdfMin = cdf
		}
		if total == cdfMin || cdfMin < 0 {
			lut[i] = uint8(i)
			continue
		}
		lut[i] = clampFloatToUint8(float64(cdf-cdfMin) / float64(total-cdfMin) * 255.0)
	}
	return lut
}

// Equalize performs histogram equalization per channel and returns a new image.
func Equalize(src *image.NRGBA) *image.NRGBA {
	if src == nil {
		return nil
	}
	rHist, gHist, bHist := ComputeHistogram(src, 256)
	luts := [3][256]uint8{equalizeLUT(rHist), equalizeLUT(gHist), equalizeLUT(bHist)}

	out := CloneNRGBA(src)
	for i := 0; i < len(out.Pix); i += 4 {
		for ch := 0; ch < 3; ch++ {
			out.Pix[i+ch] = luts[ch][out.Pix[i+ch]]
		}
	}
	return out
}

// splitChannels returns the R, G and B planes of src.
func splitChannels(src *image.NRGBA) (w, h int, planes [3][]uint8) {
	b := src.Bounds()
	w, h = b.Dx(), b.Dy()
	for ch := range planes {
		planes[ch] = make([]uint8, w*h)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := src.PixOffset(x+b.Min.X, y+b.Min.Y)
			for ch := 0; ch < 3; ch++ {
				planes[ch][y*w+x] = src.Pix[i+ch]
			}
		}
	}
	return
}

func mergeChannels(w, h int, planes [3][]uint8) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for p := 0; p < w*h; p++ {
		o := p * 4
		out.Pix[o+0] = planes[0][p]
		out.Pix[o+1] = planes[1][p]
		out.Pix[o+2] = planes[2][p]
		out.Pix[o+3] = 255
	}
	return out
}

// LumaStats reports the mean and standard deviation of luma in [0,255].
func LumaStats(src *image.NRGBA) (mean, stddev float64) {
	if src == nil {
		return 0, 0
	}
	g := grayPlane(src)
	if len(g) < 2 {
		return 0, 0
	}
	xs := make([]float64, len(g))
	for i, v := range g {
		xs[i] = float64(v)
	}
	return stat.MeanStdDev(xs, nil)
}
