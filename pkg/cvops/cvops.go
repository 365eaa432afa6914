//go:build gocv

package cvops

import (
	"fmt"
	"image"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"github.com/Fepozopo/tpaint/pkg/stdimg"
)

// Backend is the name reported by stdimg.Backend for overridden commands.
const Backend = "opencv"

const (
	warpWidth  = 800
	warpHeight = 600
	blurKernel = 15
)

var white = color.RGBA{255, 255, 255, 255}

func init() {
	for name, fn := range map[string]stdimg.CommandFunc{
		"perspective":       perspective,
		"autoCorrect":       autoCorrect,
		"adaptiveThreshold": adaptiveThreshold,
		"blur":              blur,
		"rotate":            rotate,
		"composite":         composite,
		"invert":            invert,
		"grayscale":         grayscale,
	} {
		if err := stdimg.Register(name, Backend, fn); err != nil {
			log.Warn().Err(err).Msg("opencv backend")
		}
	}
	log.Debug().Str("version", gocv.Version()).Msg("opencv backend registered")
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), stdimg.ErrOperationUnavailable)
}

// toMat converts src to a BGR matrix. The caller closes it.
func toMat(src *image.NRGBA) (gocv.Mat, error) {
	m, err := gocv.ImageToMatRGB(src)
	if err != nil {
		return m, unavailable("opencv: %v", err)
	}
	return m, nil
}

func fromMat(m gocv.Mat) (*image.NRGBA, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, unavailable("opencv: %v", err)
	}
	return stdimg.ToNRGBA(img), nil
}

// withMat runs fn on a BGR copy of src and converts the result back.
func withMat(src *image.NRGBA, fn func(in gocv.Mat, out *gocv.Mat) error) (*image.NRGBA, error) {
	if src == nil {
		return nil, unavailable("no canvas")
	}
	in, err := toMat(src)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	out := gocv.NewMat()
	defer out.Close()
	if err := fn(in, &out); err != nil {
		return nil, err
	}
	return fromMat(out)
}

func ints(args []string, names ...string) ([]int, error) {
	v := make([]int, len(names))
	for i, n := range names {
		if i >= len(args) {
			return nil, unavailable("missing %s", n)
		}
		x, err := strconv.Atoi(strings.TrimSpace(args[i]))
		if err != nil {
			return nil, unavailable("invalid %s %q", n, args[i])
		}
		v[i] = x
	}
	return v, nil
}

func region(b image.Rectangle, v []int) (image.Rectangle, error) {
	r := image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]).Intersect(b)
	if v[2] <= 0 || v[3] <= 0 || r.Empty() {
		return image.Rectangle{}, unavailable("empty region %dx%d at %d,%d", v[2], v[3], v[0], v[1])
	}
	return r, nil
}

func invert(src *image.NRGBA, _ []string) (*image.NRGBA, error) {
	return withMat(src, func(in gocv.Mat, out *gocv.Mat) error {
		gocv.BitwiseNot(in, out)
		return nil
	})
}

func grayscale(src *image.NRGBA, _ []string) (*image.NRGBA, error) {
	return withMat(src, func(in gocv.Mat, out *gocv.Mat) error {
		gray := gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(in, &gray, gocv.ColorBGRToGray)
		gocv.CvtColor(gray, out, gocv.ColorGrayToBGR)
		return nil
	})
}

func blur(src *image.NRGBA, args []string) (*image.NRGBA, error) {
	v, err := ints(args, "x", "y", "w", "h")
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, unavailable("no canvas")
	}
	r, err := region(src.Bounds(), v)
	if err != nil {
		return nil, err
	}
	return withMat(src, func(in gocv.Mat, out *gocv.Mat) error {
		in.CopyTo(out)
		roi := out.Region(r)
		defer roi.Close()
		blurred := gocv.NewMat()
		defer blurred.Close()
		gocv.Blur(roi, &blurred, image.Pt(blurKernel, blurKernel))
		blurred.CopyTo(&roi)
		return nil
	})
}

func rotate(src *image.NRGBA, args []string) (*image.NRGBA, error) {
	if len(args) < 1 {
		return nil, unavailable("missing degrees")
	}
	deg, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
	if err != nil {
		return nil, unavailable("invalid degrees %q", args[0])
	}
	return withMat(src, func(in gocv.Mat, out *gocv.Mat) error {
		size := image.Pt(in.Cols(), in.Rows())
		m := gocv.GetRotationMatrix2D(image.Pt(size.X/2, size.Y/2), deg, 1.0)
		defer m.Close()
		gocv.WarpAffineWithParams(in, out, m, size, gocv.InterpolationLinear, gocv.BorderConstant, white)
		return nil
	})
}

func adaptiveThreshold(src *image.NRGBA, args []string) (*image.NRGBA, error) {
	block, offset := stdimg.DefaultThresholdBlock, stdimg.DefaultThresholdOffset
	var err error
	if len(args) > 0 {
		if block, err = strconv.Atoi(strings.TrimSpace(args[0])); err != nil {
			return nil, unavailable("invalid block %q", args[0])
		}
	}
	if len(args) > 1 {
		if offset, err = strconv.ParseFloat(strings.TrimSpace(args[1]), 64); err != nil {
			return nil, unavailable("invalid c %q", args[1])
		}
	}
	if block < 3 || block%2 == 0 {
		return nil, unavailable("block size must be odd and >= 3, got %d", block)
	}
	return withMat(src, func(in gocv.Mat, out *gocv.Mat) error {
		gray := gocv.NewMat()
		defer gray.Close()
		bw := gocv.NewMat()
		defer bw.Close()
		gocv.CvtColor(in, &gray, gocv.ColorBGRToGray)
		gocv.AdaptiveThreshold(gray, &bw, 255, gocv.AdaptiveThresholdMean, gocv.ThresholdBinary, block, float32(offset))
		gocv.CvtColor(bw, out, gocv.ColorGrayToBGR)
		return nil
	})
}

// autoCorrect equalizes each channel and follows with CLAHE, clip 3 on an
// 8x8 grid.
func autoCorrect(src *image.NRGBA, _ []string) (*image.NRGBA, error) {
	return withMat(src, func(in gocv.Mat, out *gocv.Mat) error {
		clahe := gocv.NewCLAHEWithParams(3.0, image.Pt(8, 8))
		defer clahe.Close()
		channels := gocv.Split(in)
		defer func() {
			for _, c := range channels {
				c.Close()
			}
		}()
		for i, c := range channels {
			eq := gocv.NewMat()
			gocv.EqualizeHist(c, &eq)
			res := gocv.NewMat()
			clahe.Apply(eq, &res)
			eq.Close()
			channels[i].Close()
			channels[i] = res
		}
		gocv.Merge(channels, out)
		return nil
	})
}

// orderCorners sorts four points into TL, TR, BR, BL using the sums and
// differences of their coordinates.
func orderCorners(pts []image.Point) []image.Point {
	out := make([]image.Point, 4)
	bySum := append([]image.Point(nil), pts...)
	sort.Slice(bySum, func(i, j int) bool { return bySum[i].X+bySum[i].Y < bySum[j].X+bySum[j].Y })
	out[0], out[2] = bySum[0], bySum[3]
	byDiff := append([]image.Point(nil), pts...)
	sort.Slice(byDiff, func(i, j int) bool { return byDiff[i].Y-byDiff[i].X < byDiff[j].Y-byDiff[j].X })
	out[1], out[3] = byDiff[0], byDiff[3]
	return out
}

func largestQuad(edges gocv.Mat) ([]image.Point, bool) {
	contours := gocv.FindContours(edges, gocv.RetrievalList, gocv.ChainApproxSimple)
	defer contours.Close()

	var best []image.Point
	bestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		peri := gocv.ArcLength(c, true)
		approx := gocv.ApproxPolyDP(c, 0.02*peri, true)
		if approx.Size() == 4 {
			if area := gocv.ContourArea(approx); area > bestArea {
				bestArea = area
				best = approx.ToPoints()
			}
		}
		approx.Close()
	}
	return best, best != nil
}

func perspective(src *image.NRGBA, _ []string) (*image.NRGBA, error) {
	return withMat(src, func(in gocv.Mat, out *gocv.Mat) error {
		gray := gocv.NewMat()
		defer gray.Close()
		edges := gocv.NewMat()
		defer edges.Close()
		gocv.CvtColor(in, &gray, gocv.ColorBGRToGray)
		gocv.GaussianBlur(gray, &gray, image.Pt(5, 5), 0, 0, gocv.BorderDefault)
		gocv.Canny(gray, &edges, 75, 200)

		quad, ok := largestQuad(edges)
		if !ok {
			return unavailable("no quadrilateral outline found")
		}
		from := gocv.NewPointVectorFromPoints(orderCorners(quad))
		defer from.Close()
		to := gocv.NewPointVectorFromPoints([]image.Point{
			{0, 0}, {warpWidth - 1, 0}, {warpWidth - 1, warpHeight - 1}, {0, warpHeight - 1},
		})
		defer to.Close()
		m := gocv.GetPerspectiveTransform(from, to)
		defer m.Close()

		warped := gocv.NewMat()
		defer warped.Close()
		gocv.WarpPerspective(in, &warped, m, image.Pt(warpWidth, warpHeight))
		gocv.Resize(warped, out, image.Pt(in.Cols(), in.Rows()), 0, 0, gocv.InterpolationLinear)
		return nil
	})
}

// composite clones the image at args[0] into the canvas, centred on the
// region. OpenCV needs the pasted image to lie inside the canvas; anything
// that would cross the edge goes through the Go implementation instead.
func composite(src *image.NRGBA, args []string) (*image.NRGBA, error) {
	if len(args) < 5 {
		return nil, unavailable("composite requires a path and a region")
	}
	v, err := ints(args[1:], "x", "y", "w", "h")
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, unavailable("no canvas")
	}
	r, err := region(src.Bounds(), v)
	if err != nil {
		return nil, err
	}
	center := image.Pt(v[0]+v[2]/2, v[1]+v[3]/2)
	if !center.In(r) {
		center = image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
	}

	fg := gocv.IMRead(args[0], gocv.IMReadColor)
	defer fg.Close()
	if fg.Empty() {
		return nil, unavailable("composite: cannot read %s", args[0])
	}
	placed := image.Rect(0, 0, fg.Cols(), fg.Rows()).Add(center.Sub(image.Pt(fg.Cols()/2, fg.Rows()/2)))
	if !placed.In(src.Bounds().Inset(1)) {
		img, err := fromMat(fg)
		if err != nil {
			return nil, err
		}
		log.Debug().Stringer("placed", placed).Msg("composite falls back to poisson solver")
		return stdimg.SeamlessClone(src, img, center)
	}

	return withMat(src, func(in gocv.Mat, out *gocv.Mat) error {
		mask := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), fg.Rows(), fg.Cols(), gocv.MatTypeCV8UC3)
		defer mask.Close()
		gocv.SeamlessClone(fg, in, mask, center, out, gocv.NormalClone)
		return nil
	})
}
