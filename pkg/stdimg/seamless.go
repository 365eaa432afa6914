package stdimg

import (
	"image"
	"math"
)

const (
	cloneMaxIter   = 600
	cloneTolerance = 0.05
	cloneOmega     = 1.9
)

// SeamlessClone pastes src onto dst centred at center, solving the Poisson
// equation so the gradients of src are kept while the seam takes dst's
// colours. The outermost ring of the pasted area is left as dst.
func SeamlessClone(dst, src *image.NRGBA, center image.Point) (*image.NRGBA, error) {
	if dst == nil || src == nil {
		return nil, unavailable("no canvas")
	}
	db := dst.Bounds()
	sb := src.Bounds()
	off := center.Sub(image.Pt(sb.Dx()/2, sb.Dy()/2))
	placed := image.Rect(0, 0, sb.Dx(), sb.Dy()).Add(off)
	region := placed.Intersect(db)
	inner := region.Inset(1)
	if region.Dx() < 3 || region.Dy() < 3 || inner.Empty() {
		return nil, unavailable("clone region %v does not overlap canvas %v", placed, db)
	}

	rw, rh := region.Dx(), region.Dy()
	// guidance (g) and boundary/target (f) per channel over region
	g := make([]float64, rw*rh)
	f := make([]float64, rw*rh)
	out := CloneNRGBA(dst)
	at := func(x, y int) int { return (y-region.Min.Y)*rw + (x - region.Min.X) }

	for ch := 0; ch < 3; ch++ {
		var gEdge, fEdge float64
		edge := 0
		for y := region.Min.Y; y < region.Max.Y; y++ {
			for x := region.Min.X; x < region.Max.X; x++ {
				si := src.PixOffset(x-off.X+sb.Min.X, y-off.Y+sb.Min.Y)
				di := dst.PixOffset(x, y)
				k := at(x, y)
				g[k] = float64(src.Pix[si+ch])
				f[k] = float64(dst.Pix[di+ch])
				if !image.Pt(x, y).In(inner) {
					gEdge += g[k]
					fEdge += f[k]
					edge++
				}
			}
		}
		// start from src shifted to the boundary mean; converges much faster
		shift := (fEdge - gEdge) / float64(edge)
		for y := inner.Min.Y; y < inner.Max.Y; y++ {
			for x := inner.Min.X; x < inner.Max.X; x++ {
				k := at(x, y)
				f[k] = g[k] + shift
			}
		}

		for iter := 0; iter < cloneMaxIter; iter++ {
			maxDelta := 0.0
			for y := inner.Min.Y; y < inner.Max.Y; y++ {
				for x := inner.Min.X; x < inner.Max.X; x++ {
					k := at(x, y)
					l, r, u, d := k-1, k+1, k-rw, k+rw
					lap := 4*g[k] - g[l] - g[r] - g[u] - g[d]
					next := (f[l] + f[r] + f[u] + f[d] + lap) / 4
					delta := cloneOmega * (next - f[k])
					f[k] += delta
					maxDelta = math.Max(maxDelta, math.Abs(delta))
				}
			}
			if maxDelta < cloneTolerance {
				break
			}
		}

		for y := inner.Min.Y; y < inner.Max.Y; y++ {
			for x := inner.Min.X; x < inner.Max.X; x++ {
				out.Pix[out.PixOffset(x, y)+ch] = clampFloatToUint8(f[at(x, y)])
			}
		}
	}
	return opaque(out), nil
}
