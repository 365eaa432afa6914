// Package codec reads and writes canvas images on disk.
//
// Decoding honours the EXIF orientation of JPEG files. The encoder is chosen
// from the file extension: png, jpg/jpeg, gif, bmp, tif/tiff and pdf. Unknown
// extensions are written as PNG.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// JPEGQuality is used for .jpg and .jpeg output.
const JPEGQuality = 92

// ErrUnsupported is returned when no decoder recognises the data.
var ErrUnsupported = errors.New("unsupported image format")

// fallback decoders tried in order when the registered image formats fail
var fallbacks []func([]byte) (image.Image, error)

// Decode reads the image at path and applies its EXIF orientation.
func Decode(path string) (image.Image, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, format, err := DecodeBytes(b)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	log.Debug().Str("path", path).Str("format", format).Msg("decoded image")
	return img, nil
}

// DecodeBytes decodes in-memory image data and reports the format name.
func DecodeBytes(b []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		for _, fb := range fallbacks {
			if fimg, ferr := fb(b); ferr == nil {
				return fimg, "fallback", nil
			}
		}
		if errors.Is(err, image.ErrFormat) {
			return nil, "", ErrUnsupported
		}
		return nil, "", err
	}
	if format == "jpeg" {
		if o, oerr := orientation(b); oerr == nil {
			img = AutoOrient(img, o)
		}
	}
	return img, format, nil
}

// AutoOrient transforms img so that EXIF orientation o displays upright.
func AutoOrient(img image.Image, o int) image.Image {
	switch o {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}

// Load decodes path and fits it to a w x h opaque canvas. Transparent areas
// are flattened onto white.
func Load(path string, w, h int) (*image.NRGBA, error) {
	img, err := Decode(path)
	if err != nil {
		return nil, err
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", w, h)
	}
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		img = imaging.Resize(img, w, h, imaging.CatmullRom)
	}
	return flatten(img), nil
}

func flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	return out
}

// Save writes img to path, choosing the encoder from the extension.
func Save(path string, img image.Image) (err error) {
	if img == nil {
		return errors.New("nil image")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err = Encode(f, img, Format(path)); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	log.Info().Str("path", path).Msg("saved image")
	return nil
}

// Format maps a file name to the encoder name used by Encode.
func Format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	case ".pdf":
		return "pdf"
	default:
		return "png"
	}
}

// Encode writes img to w in the named format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case "gif":
		return gif.Encode(w, img, nil)
	case "bmp":
		return bmp.Encode(w, img)
	case "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case "pdf":
		return encodePDF(w, img)
	default:
		return png.Encode(w, img)
	}
}

// Info returns a short description of a canvas.
func Info(img image.Image) string {
	if img == nil {
		return "no image"
	}
	b := img.Bounds()
	return fmt.Sprintf("Width: %d, Height: %d", b.Dx(), b.Dy())
}
