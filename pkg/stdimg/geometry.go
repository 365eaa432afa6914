package stdimg

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/Fepozopo/tpaint/pkg/tool"
)

// Lens parameters: radius of the warped disc in normalised units and the
// exponent applied to the radius inside it.
const (
	lensScale    = 1.0
	lensExponent = 2.0
)

// ZoomAt rescales src by factor and crops a window the size of src whose
// top-left corner keeps the scaled click point centred where possible.
// Areas not covered after zooming out are white.
func ZoomAt(src *image.NRGBA, center image.Point, factor float64) (*image.NRGBA, error) {
	if src == nil {
		return nil, unavailable("no canvas")
	}
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return nil, unavailable("zoom factor %v", factor)
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	nw, nh := int(float64(w)*factor), int(float64(h)*factor)
	if nw < 1 || nh < 1 {
		return nil, unavailable("zoom to %dx%d", nw, nh)
	}
	scaled := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, b, draw.Src, nil)

	cx := int(float64(center.X-b.Min.X) * factor)
	cy := int(float64(center.Y-b.Min.Y) * factor)
	sx := max(0, cx-w/2)
	sy := max(0, cy-h/2)
	ex := min(nw, sx+w)
	ey := min(nh, sy+h)

	out := NewFilled(w, h, white)
	if ex > sx && ey > sy {
		draw.Draw(out, image.Rect(0, 0, ex-sx, ey-sy), scaled, image.Pt(sx, sy), draw.Src)
	}
	return opaque(out), nil
}

// Rotate turns src counter-clockwise by degrees about its centre, keeping the
// original size. Uncovered corners are white.
func Rotate(src *image.NRGBA, degrees float64) (*image.NRGBA, error) {
	if src == nil {
		return nil, unavailable("no canvas")
	}
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return nil, unavailable("rotate by %v", degrees)
	}
	b := src.Bounds()
	rot := imaging.Rotate(src, degrees, white)
	return opaque(imaging.CropCenter(rot, b.Dx(), b.Dy())), nil
}

// LensDistort remaps src through a radial power curve centred at center.
// Convex magnifies the middle of the disc, concave shrinks it.
func LensDistort(src *image.NRGBA, center image.Point, kind tool.LensKind) (*image.NRGBA, error) {
	if src == nil {
		return nil, unavailable("no canvas")
	}
	b := src.Bounds()
	if !center.In(b) {
		return nil, unavailable("lens center %v outside canvas", center)
	}
	w, h := b.Dx(), b.Dy()
	if w < 2 || h < 2 {
		return nil, unavailable("canvas too small for lens")
	}
	exp := lensExponent
	if kind == tool.Concave {
		exp = 1 / lensExponent
	}
	hw := float64(w-1) / 2
	hh := float64(h-1) / 2
	cx := float64(center.X - b.Min.X)
	cy := float64(center.Y - b.Min.Y)

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			nx := (float64(x) - cx) / hw
			ny := (float64(y) - cy) / hh
			r := math.Hypot(nx, ny)
			sx, sy := float64(x), float64(y)
			if r > 0 && r < lensScale {
				k := math.Pow(r, exp) / r
				sx = cx + nx*k*hw
				sy = cy + ny*k*hh
			}
			c := sampleBilinear(src, sx+float64(b.Min.X), sy+float64(b.Min.Y), white)
			o := out.PixOffset(x, y)
			out.Pix[o+0] = c.R
			out.Pix[o+1] = c.G
			out.Pix[o+2] = c.B
			out.Pix[o+3] = 255
		}
	}
	return out, nil
}
