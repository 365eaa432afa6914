package stdimg

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// Sepia tones src with the classic sepia matrix, blended with the original by
// amount in [0,1].
func Sepia(src *image.NRGBA, amount float64) (*image.NRGBA, error) {
	if src == nil {
		return nil, unavailable("no canvas")
	}
	if amount < 0 || amount > 1 || math.IsNaN(amount) {
		return nil, unavailable("sepia amount must be in [0,1], got %v", amount)
	}
	out := imaging.AdjustFunc(src, func(c color.NRGBA) color.NRGBA {
		r, g, b := float64(c.R), float64(c.G), float64(c.B)
		sr := math.Min(0.393*r+0.769*g+0.189*b, 255)
		sg := math.Min(0.349*r+0.686*g+0.168*b, 255)
		sb := math.Min(0.272*r+0.534*g+0.131*b, 255)
		return color.NRGBA{
			R: clampFloatToUint8(r + (sr-r)*amount),
			G: clampFloatToUint8(g + (sg-g)*amount),
			B: clampFloatToUint8(b + (sb-b)*amount),
			A: 255,
		}
	})
	return out, nil
}

// Posterize reduces each channel to levels evenly spaced values.
func Posterize(src *image.NRGBA, levels int) (*image.NRGBA, error) {
	if src == nil {
		return nil, unavailable("no canvas")
	}
	if levels < 2 || levels > 256 {
		return nil, unavailable("posterize levels must be in [2,256], got %d", levels)
	}
	var lut [256]uint8
	step := 255 / float64(levels-1)
	for i := range lut {
		lut[i] = clampFloatToUint8(math.Round(float64(i)/step) * step)
	}
	return opaque(imaging.AdjustFunc(src, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{lut[c.R], lut[c.G], lut[c.B], 255}
	})), nil
}

// Median replaces each pixel with the per-channel median of its radius
// neighbourhood.
func Median(src *image.NRGBA, radius float64) (*image.NRGBA, error) {
	if src == nil {
		return nil, unavailable("no canvas")
	}
	if radius <= 0 || radius > 20 {
		return nil, unavailable("median radius must be in (0,20], got %v", radius)
	}
	return opaque(fromRGBA(effect.Median(src, radius))), nil
}

// Sharpen applies an unsharp mask with a Gaussian of the given sigma.
func Sharpen(src *image.NRGBA, sigma float64) (*image.NRGBA, error) {
	if src == nil {
		return nil, unavailable("no canvas")
	}
	if sigma <= 0 || math.IsNaN(sigma) {
		return nil, unavailable("sharpen sigma must be positive, got %v", sigma)
	}
	return opaque(imaging.Sharpen(src, sigma)), nil
}

// Gamma corrects src; values above 1 brighten.
func Gamma(src *image.NRGBA, gamma float64) (*image.NRGBA, error) {
	if src == nil {
		return nil, unavailable("no canvas")
	}
	if gamma <= 0 || math.IsNaN(gamma) || math.IsInf(gamma, 0) {
		return nil, unavailable("gamma must be positive, got %v", gamma)
	}
	return opaque(imaging.AdjustGamma(src, gamma)), nil
}

func runSepia(src *image.NRGBA, args []string) (*image.NRGBA, error) {
	amount := 1.0
	if len(args) > 0 {
		pct, err := argFloat(args, 0, "percent")
		if err != nil {
			return nil, err
		}
		amount = pct / 100
	}
	return Sepia(src, amount)
}

func runPosterize(src *image.NRGBA, args []string) (*image.NRGBA, error) {
	levels := 4
	if len(args) > 0 {
		var err error
		if levels, err = argInt(args, 0, "levels"); err != nil {
			return nil, err
		}
	}
	return Posterize(src, levels)
}

func runMedian(src *image.NRGBA, args []string) (*image.NRGBA, error) {
	radius := 1.0
	if len(args) > 0 {
		var err error
		if radius, err = argFloat(args, 0, "radius"); err != nil {
			return nil, err
		}
	}
	return Median(src, radius)
}

func runSharpen(src *image.NRGBA, args []string) (*image.NRGBA, error) {
	sigma := 1.0
	if len(args) > 0 {
		var err error
		if sigma, err = argFloat(args, 0, "sigma"); err != nil {
			return nil, err
		}
	}
	return Sharpen(src, sigma)
}

func runGamma(src *image.NRGBA, args []string) (*image.NRGBA, error) {
	g, err := argFloat(args, 0, "gamma")
	if err != nil {
		return nil, err
	}
	return Gamma(src, g)
}
