package stdimg

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/mat"
)

// Size of the rectified document before it is scaled back to the canvas.
const (
	warpWidth  = 800
	warpHeight = 600
	// A candidate outline must enclose at least this share of the canvas.
	minQuadShare = 0.01
)

// Quad is a quadrilateral with corners in TL, TR, BR, BL order.
type Quad [4]image.Point

func (q Quad) area() float64 {
	s := 0
	for i := 0; i < 4; i++ {
		a, b := q[i], q[(i+1)%4]
		s += a.X*b.Y - b.X*a.Y
	}
	return math.Abs(float64(s)) / 2
}

// convex reports whether the corners turn the same way at every vertex.
func (q Quad) convex() bool {
	sign := 0
	for i := 0; i < 4; i++ {
		a, b, c := q[i], q[(i+1)%4], q[(i+2)%4]
		cross := (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
		if cross == 0 {
			return false
		}
		s := 1
		if cross < 0 {
			s = -1
		}
		if sign != 0 && s != sign {
			return false
		}
		sign = s
	}
	return true
}

// extremeQuad picks the corner-most pixels of a point set.
func extremeQuad(idx []int, w int) Quad {
	var q Quad
	minSum, maxSum := math.MaxInt, math.MinInt
	minDiff, maxDiff := math.MaxInt, math.MinInt
	for _, p := range idx {
		x, y := p%w, p/w
		if s := x + y; s < minSum {
			minSum, q[0] = s, image.Pt(x, y)
		}
		if s := x + y; s > maxSum {
			maxSum, q[2] = s, image.Pt(x, y)
		}
		if d := x - y; d > maxDiff {
			maxDiff, q[1] = d, image.Pt(x, y)
		}
		if d := x - y; d < minDiff {
			minDiff, q[3] = d, image.Pt(x, y)
		}
	}
	return q
}

// FindQuad returns the largest convex quadrilateral outline among the edge
// components of src.
func FindQuad(src *image.NRGBA) (Quad, bool) {
	mask, w, h := EdgeMask(src, edgeLow, edgeHigh)
	minArea := minQuadShare * float64(w*h)
	var best Quad
	bestArea := 0.0
	components(mask, w, h, func(idx []int) {
		if len(idx) < 4 {
			return
		}
		q := extremeQuad(idx, w)
		if a := q.area(); a >= minArea && a > bestArea && q.convex() {
			best, bestArea = q, a
		}
	})
	return best, bestArea > 0
}

// Homography solves for the 3x3 projective transform taking from[i] to
// to[i], returned row-major with h[8] == 1.
func Homography(from, to [4][2]float64) ([9]float64, error) {
	a := mat.NewDense(8, 8, nil)
	rhs := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		u, v := from[i][0], from[i][1]
		x, y := to[i][0], to[i][1]
		a.SetRow(2*i, []float64{u, v, 1, 0, 0, 0, -u * x, -v * x})
		a.SetRow(2*i+1, []float64{0, 0, 0, u, v, 1, -u * y, -v * y})
		rhs.SetVec(2*i, x)
		rhs.SetVec(2*i+1, y)
	}
	var sol mat.VecDense
	if err := sol.SolveVec(a, rhs); err != nil {
		return [9]float64{}, fmt.Errorf("solve homography: %w", err)
	}
	var hm [9]float64
	for i := 0; i < 8; i++ {
		hm[i] = sol.AtVec(i)
	}
	hm[8] = 1
	return hm, nil
}

// WarpQuad rectifies the quad region of src into a w x h image.
func WarpQuad(src *image.NRGBA, q Quad, w, h int) (*image.NRGBA, error) {
	dstCorners := [4][2]float64{{0, 0}, {float64(w - 1), 0}, {float64(w - 1), float64(h - 1)}, {0, float64(h - 1)}}
	var srcCorners [4][2]float64
	b := src.Bounds()
	for i, p := range q {
		srcCorners[i] = [2]float64{float64(p.X + b.Min.X), float64(p.Y + b.Min.Y)}
	}
	// inverse mapping: output pixel -> source position
	hm, err := Homography(dstCorners, srcCorners)
	if err != nil {
		return nil, err
	}
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			fx, fy := float64(x), float64(y)
			den := hm[6]*fx + hm[7]*fy + hm[8]
			c := white
			if den != 0 {
				sx := (hm[0]*fx + hm[1]*fy + hm[2]) / den
				sy := (hm[3]*fx + hm[4]*fy + hm[5]) / den
				c = sampleBilinear(src, sx, sy, white)
			}
			o := out.PixOffset(x, y)
			out.Pix[o+0], out.Pix[o+1], out.Pix[o+2], out.Pix[o+3] = c.R, c.G, c.B, 255
		}
	}
	return out, nil
}

// PerspectiveCorrect finds the dominant quadrilateral outline, rectifies it to
// 800x600 and scales the result back to the size of src.
func PerspectiveCorrect(src *image.NRGBA) (*image.NRGBA, error) {
	if src == nil {
		return nil, unavailable("no canvas")
	}
	q, ok := FindQuad(src)
	if !ok {
		return nil, unavailable("no quadrilateral outline found")
	}
	warped, err := WarpQuad(src, q, warpWidth, warpHeight)
	if err != nil {
		return nil, wrapUnavailable("perspective", err)
	}
	b := src.Bounds()
	return opaque(imaging.Resize(warped, b.Dx(), b.Dy(), imaging.CatmullRom)), nil
}
