//go:build imagick

package codec

import (
	"image"
	"image/png"
	"os"

	"gopkg.in/gographics/imagick.v3/imagick"
)

func init() {
	imagick.Initialize()
	fallbacks = append(fallbacks, decodeImagick)
}

// decodeImagick lets ImageMagick read formats the Go decoders do not know
// (HEIC, PSD, RAW ...) by converting them to a temporary PNG.
func decodeImagick(b []byte) (image.Image, error) {
	mw := imagick.NewMagickWand()
	defer mw.Destroy()
	if err := mw.ReadImageBlob(b); err != nil {
		return nil, err
	}
	if err := mw.SetImageFormat("PNG"); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp("", "tpaint-*.png")
	if err != nil {
		return nil, err
	}
	name := tmp.Name()
	tmp.Close()
	defer os.Remove(name)
	if err := mw.WriteImage(name); err != nil {
		return nil, err
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}
