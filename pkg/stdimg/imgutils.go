package stdimg

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

var white = color.NRGBA{255, 255, 255, 255}

// ToNRGBA converts any image.Image to an opaque *image.NRGBA anchored at the
// origin. Transparent areas are flattened onto white. The result never
// aliases src.
func ToNRGBA(src image.Image) *image.NRGBA {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	out := NewFilled(b.Dx(), b.Dy(), white)
	draw.Draw(out, out.Bounds(), src, b.Min, draw.Over)
	return out
}

// CloneNRGBA returns a copy of the provided image.NRGBA
func CloneNRGBA(src *image.NRGBA) *image.NRGBA {
	if src == nil {
		return nil
	}
	out := image.NewNRGBA(src.Rect)
	copy(out.Pix, src.Pix)
	return out
}

// NewFilled returns a w x h canvas painted with c.
func NewFilled(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	if len(img.Pix) == 0 {
		return img
	}
	img.Pix[0], img.Pix[1], img.Pix[2], img.Pix[3] = c.R, c.G, c.B, c.A
	// doubling copy
	for n := 4; n < len(img.Pix); n *= 2 {
		copy(img.Pix[n:], img.Pix[:n])
	}
	return img
}

// rgbaView exposes the pixels of an opaque NRGBA as RGBA without copying.
// With alpha fixed at 255 both layouts are identical.
func rgbaView(img *image.NRGBA) *image.RGBA {
	return &image.RGBA{Pix: img.Pix, Stride: img.Stride, Rect: img.Rect}
}

// opaque forces alpha to 255 in place.
func opaque(img *image.NRGBA) *image.NRGBA {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

func fromRGBA(src *image.RGBA) *image.NRGBA {
	b := src.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), src, b.Min, draw.Src)
	return opaque(out)
}

// clampInt clamps v to [lo,hi]
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloatToUint8(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// samplePixelClamped returns the color.NRGBA at integer coords clamped to image.
func samplePixelClamped(img *image.NRGBA, x, y int) color.NRGBA {
	b := img.Bounds()
	x = clampInt(x, b.Min.X, b.Max.X-1)
	y = clampInt(y, b.Min.Y, b.Max.Y-1)
	i := img.PixOffset(x, y)
	return color.NRGBA{img.Pix[i+0], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]}
}

// sampleBilinear samples src at floating coordinates (x,y). Coordinates
// outside the image return fill.
func sampleBilinear(src *image.NRGBA, x, y float64, fill color.NRGBA) color.NRGBA {
	b := src.Bounds()
	if x < float64(b.Min.X)-0.5 || y < float64(b.Min.Y)-0.5 ||
		x > float64(b.Max.X)-0.5 || y > float64(b.Max.Y)-0.5 {
		return fill
	}
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	c00 := samplePixelClamped(src, x0, y0)
	c10 := samplePixelClamped(src, x0+1, y0)
	c01 := samplePixelClamped(src, x0, y0+1)
	c11 := samplePixelClamped(src, x0+1, y0+1)

	lerp := func(a, b, c, d uint8) uint8 {
		top := float64(a)*(1-fx) + float64(b)*fx
		bot := float64(c)*(1-fx) + float64(d)*fx
		return clampFloatToUint8(top*(1-fy) + bot*fy)
	}
	return color.NRGBA{
		R: lerp(c00.R, c10.R, c01.R, c11.R),
		G: lerp(c00.G, c10.G, c01.G, c11.G),
		B: lerp(c00.B, c10.B, c01.B, c11.B),
		A: 255,
	}
}

// luma is the BT.601 weighting used for every grey conversion here.
func luma(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// grayPlane returns the luma of src as one byte per pixel, row-major.
func grayPlane(src *image.NRGBA) []uint8 {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := src.PixOffset(x+b.Min.X, y+b.Min.Y)
			out[y*w+x] = clampFloatToUint8(luma(src.Pix[i], src.Pix[i+1], src.Pix[i+2]))
		}
	}
	return out
}

// roiRect validates a user supplied region against bounds.
func roiRect(b image.Rectangle, x, y, w, h int) (image.Rectangle, error) {
	r := image.Rect(x, y, x+w, y+h).Intersect(b)
	if w <= 0 || h <= 0 || r.Empty() {
		return image.Rectangle{}, unavailable("empty region %dx%d at %d,%d", w, h, x, y)
	}
	return r, nil
}
