// Package stdimg implements the canvas operations and filter commands in
// pure Go.
//
// Engine satisfies tool.Operations for interactive tools. The filter
// commands (blur, perspective, autoCorrect, ...) live in a registry so a
// second backend can replace individual entries; see Register.
package stdimg

import (
	"image"
	"image/color"

	"github.com/Fepozopo/tpaint/pkg/tool"
)

// Engine is the default tool.Operations implementation. The zero value is
// ready to use.
type Engine struct{}

var _ tool.Operations = Engine{}

func (Engine) DrawLine(src *image.NRGBA, from, to image.Point, c color.NRGBA, width int) (*image.NRGBA, error) {
	return DrawLine(src, from, to, c, width)
}

func (Engine) FloodFill(src *image.NRGBA, seed image.Point, c color.NRGBA, lo, up [3]uint8) (*image.NRGBA, error) {
	return FloodFill(src, seed, c, lo, up)
}

func (Engine) ZoomAt(src *image.NRGBA, center image.Point, factor float64) (*image.NRGBA, error) {
	return ZoomAt(src, center, factor)
}

// Rotate goes through the registry so an OpenCV build rotates the same way
// the rotate command does.
func (Engine) Rotate(src *image.NRGBA, degrees float64) (*image.NRGBA, error) {
	if fn, ok := lookupOverride("rotate"); ok {
		return fn(src, []string{formatFloat(degrees)})
	}
	return Rotate(src, degrees)
}

func (Engine) StampShape(src *image.NRGBA, kind tool.ShapeKind, box image.Rectangle, c color.NRGBA) (*image.NRGBA, error) {
	return StampShape(src, kind, box, c)
}

func (Engine) StampText(src *image.NRGBA, at image.Point, style tool.TextStyle) (*image.NRGBA, error) {
	return StampText(src, at, style)
}

func (Engine) LensDistort(src *image.NRGBA, center image.Point, kind tool.LensKind) (*image.NRGBA, error) {
	return LensDistort(src, center, kind)
}
