package stdimg

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/Fepozopo/tpaint/pkg/tool"
)

// DrawLine strokes a round-capped segment of the given width onto a copy of
// src.
func DrawLine(src *image.NRGBA, from, to image.Point, c color.NRGBA, width int) (*image.NRGBA, error) {
	if src == nil {
		return nil, unavailable("no canvas")
	}
	if width <= 0 {
		return nil, unavailable("line width %d", width)
	}
	out := CloneNRGBA(src)
	dc := gg.NewContextForRGBA(rgbaView(out))
	dc.SetColor(opaqueColor(c))
	dc.SetLineWidth(float64(width))
	dc.SetLineCapRound()
	dc.DrawLine(float64(from.X)+0.5, float64(from.Y)+0.5, float64(to.X)+0.5, float64(to.Y)+0.5)
	dc.Stroke()
	return out, nil
}

// StampShape fills kind inside box with c. The circle is inscribed in the
// shorter side of box; the triangle has its apex centred on the top edge.
func StampShape(src *image.NRGBA, kind tool.ShapeKind, box image.Rectangle, c color.NRGBA) (*image.NRGBA, error) {
	if src == nil {
		return nil, unavailable("no canvas")
	}
	box = box.Canon()
	if box.Dx() == 0 || box.Dy() == 0 {
		return nil, unavailable("zero-size %s", kind)
	}
	out := CloneNRGBA(src)
	dc := gg.NewContextForRGBA(rgbaView(out))
	dc.SetColor(opaqueColor(c))
	x1, y1 := float64(box.Min.X), float64(box.Min.Y)
	x2, y2 := float64(box.Max.X), float64(box.Max.Y)
	switch kind {
	case tool.Rectangle:
		dc.DrawRectangle(x1, y1, x2-x1, y2-y1)
		dc.Fill()
	case tool.Circle:
		r := math.Floor(math.Min(x2-x1, y2-y1) / 2)
		dc.DrawCircle(math.Floor((x1+x2)/2), math.Floor((y1+y2)/2), r)
		dc.Fill()
	case tool.Triangle:
		dc.MoveTo(math.Floor((x1+x2)/2), y1)
		dc.LineTo(x1, y2)
		dc.LineTo(x2, y2)
		dc.ClosePath()
		dc.SetLineWidth(3)
		dc.FillPreserve()
		dc.Stroke()
	default:
		return nil, unavailable("unknown shape %v", kind)
	}
	return out, nil
}

func opaqueColor(c color.NRGBA) color.NRGBA {
	c.A = 255
	return c
}
