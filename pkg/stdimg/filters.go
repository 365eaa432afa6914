package stdimg

import (
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"

	"github.com/Fepozopo/tpaint/pkg/codec"
)

// boxRadius gives a 15x15 box kernel.
const boxRadius = 7

// loadImage decodes images referenced by command arguments.
var loadImage = codec.Decode

// BlurRegion box-blurs the pixels inside the region and leaves the rest alone.
func BlurRegion(src *image.NRGBA, x, y, w, h int) (*image.NRGBA, error) {
	if src == nil {
		return nil, unavailable("no canvas")
	}
	r, err := roiRect(src.Bounds(), x, y, w, h)
	if err != nil {
		return nil, err
	}
	roi := imaging.Crop(src, r)
	blurred := blur.Box(roi, boxRadius)
	out := CloneNRGBA(src)
	draw.Draw(out, r, blurred, blurred.Bounds().Min, draw.Src)
	return opaque(out), nil
}

// Invert negates every colour channel.
func Invert(src *image.NRGBA) (*image.NRGBA, error) {
	if src == nil {
		return nil, unavailable("no canvas")
	}
	return opaque(imaging.Invert(src)), nil
}

// Grayscale replaces each pixel with its luma on all three channels.
func Grayscale(src *image.NRGBA) (*image.NRGBA, error) {
	if src == nil {
		return nil, unavailable("no canvas")
	}
	return opaque(imaging.Grayscale(src)), nil
}
