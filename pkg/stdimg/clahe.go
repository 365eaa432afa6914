package stdimg

import (
	"image"
	"math"
)

const (
	claheClipLimit = 3.0
	claheTiles     = 8
)

// CLAHE applies contrast limited adaptive histogram equalization to one
// 8-bit plane. Tile LUTs are blended bilinearly between tile centres.
func CLAHE(plane []uint8, w, h int, clipLimit float64, tilesX, tilesY int) []uint8 {
	out := make([]uint8, len(plane))
	if w == 0 || h == 0 {
		return out
	}
	tilesX = clampInt(tilesX, 1, w)
	tilesY = clampInt(tilesY, 1, h)
	tw := float64(w) / float64(tilesX)
	th := float64(h) / float64(tilesY)

	luts := make([][256]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		y0, y1 := int(float64(ty)*th), int(float64(ty+1)*th)
		for tx := 0; tx < tilesX; tx++ {
			x0, x1 := int(float64(tx)*tw), int(float64(tx+1)*tw)
			var hist [256]int
			for y := y0; y < y1; y++ {
				row := plane[y*w : y*w+w]
				for x := x0; x < x1; x++ {
					hist[row[x]]++
				}
			}
			luts[ty*tilesX+tx] = clipLUT(hist, (x1-x0)*(y1-y0), clipLimit)
		}
	}

	for y := 0; y < h; y++ {
		fy := (float64(y)+0.5)/th - 0.5
		ty0 := int(math.Floor(fy))
		wy := fy - float64(ty0)
		ty1 := clampInt(ty0+1, 0, tilesY-1)
		ty0 = clampInt(ty0, 0, tilesY-1)
		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)/tw - 0.5
			tx0 := int(math.Floor(fx))
			wx := fx - float64(tx0)
			tx1 := clampInt(tx0+1, 0, tilesX-1)
			tx0 = clampInt(tx0, 0, tilesX-1)

			v := plane[y*w+x]
			a := float64(luts[ty0*tilesX+tx0][v])
			b := float64(luts[ty0*tilesX+tx1][v])
			c := float64(luts[ty1*tilesX+tx0][v])
			d := float64(luts[ty1*tilesX+tx1][v])
			top := a*(1-wx) + b*wx
			bot := c*(1-wx) + d*wx
			out[y*w+x] = clampFloatToUint8(top*(1-wy) + bot*wy)
		}
	}
	return out
}

// clipLUT clips hist at clipLimit times the mean bin height, spreads the
// excess evenly and returns the equalizing LUT.
func clipLUT(hist [256]int, area int, clipLimit float64) [256]uint8 {
	var lut [256]uint8
	if area <= 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}
	if clipLimit > 0 {
		limit := max(1, int(clipLimit*float64(area)/256))
		excess := 0
		for i := range hist {
			if hist[i] > limit {
				excess += hist[i] - limit
				hist[i] = limit
			}
		}
		each := excess / 256
		rem := excess - each*256
		for i := range hist {
			hist[i] += each
		}
		if rem > 0 {
			step := max(1, 256/rem)
			for i := 0; i < 256 && rem > 0; i += step {
				hist[i]++
				rem--
			}
		}
	}
	scale := 255.0 / float64(area)
	sum := 0
	for i := range hist {
		sum += hist[i]
		lut[i] = clampFloatToUint8(float64(sum) * scale)
	}
	return lut
}

// AutoCorrect equalizes each channel, then applies CLAHE (clip 3, 8x8 tiles)
// per channel.
func AutoCorrect(src *image.NRGBA) (*image.NRGBA, error) {
	if src == nil {
		return nil, unavailable("no canvas")
	}
	w, h, planes := splitChannels(Equalize(src))
	if w == 0 || h == 0 {
		return nil, unavailable("empty canvas")
	}
	for ch := range planes {
		planes[ch] = CLAHE(planes[ch], w, h, claheClipLimit, claheTiles, claheTiles)
	}
	return mergeChannels(w, h, planes), nil
}
