package gui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog/log"

	"github.com/Fepozopo/tpaint/pkg/editor"
	"github.com/Fepozopo/tpaint/pkg/tool"
)

// CanvasWidget shows the editor canvas and turns mouse input into controller
// events in canvas pixel coordinates.
type CanvasWidget struct {
	widget.BaseWidget

	ed      *editor.Editor
	img     *canvas.Image
	pressed bool
	last    image.Point

	// OnError receives operation failures; OnChange runs after every event.
	OnError  func(error)
	OnChange func()
}

var _ fyne.Widget = (*CanvasWidget)(nil)
var _ fyne.Draggable = (*CanvasWidget)(nil)
var _ desktop.Mouseable = (*CanvasWidget)(nil)

// NewCanvasWidget binds a widget to ed and registers it as its display.
func NewCanvasWidget(ed *editor.Editor) *CanvasWidget {
	c := &CanvasWidget{ed: ed}
	c.img = canvas.NewImageFromImage(ed.Canvas())
	c.img.FillMode = canvas.ImageFillContain
	c.img.ScaleMode = canvas.ImageScalePixels
	c.ExtendBaseWidget(c)
	ed.SetDisplay(c)
	return c
}

// Show implements editor.Display.
func (c *CanvasWidget) Show(img *image.NRGBA) {
	c.img.Image = img
	c.img.Refresh()
}

func (c *CanvasWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.img)
}

func (c *CanvasWidget) MinSize() fyne.Size {
	return fyne.NewSize(300, 240)
}

// toCanvas maps a widget position onto the image drawn with contain fill.
// Points in the letterbox are reported as outside.
func toCanvas(pos fyne.Position, size fyne.Size, w, h int) (image.Point, bool) {
	if w <= 0 || h <= 0 || size.Width <= 0 || size.Height <= 0 {
		return image.Point{}, false
	}
	scale := min(size.Width/float32(w), size.Height/float32(h))
	offX := (size.Width - float32(w)*scale) / 2
	offY := (size.Height - float32(h)*scale) / 2
	x := int((pos.X - offX) / scale)
	y := int((pos.Y - offY) / scale)
	p := image.Pt(x, y)
	return p, p.In(image.Rect(0, 0, w, h))
}

func (c *CanvasWidget) point(pos fyne.Position) (image.Point, bool) {
	b := c.ed.Canvas().Bounds()
	return toCanvas(pos, c.Size(), b.Dx(), b.Dy())
}

func (c *CanvasWidget) report(err error) {
	if err != nil {
		log.Debug().Err(err).Msg("canvas event")
		if c.OnError != nil {
			c.OnError(err)
		}
	}
	if c.OnChange != nil {
		c.OnChange()
	}
}

func (c *CanvasWidget) MouseDown(e *desktop.MouseEvent) {
	p, ok := c.point(e.Position)
	if !ok {
		return
	}
	b := tool.Primary
	switch e.Button {
	case desktop.MouseButtonSecondary:
		b = tool.Secondary
	case desktop.MouseButtonTertiary:
		b = tool.Tertiary
	}
	c.pressed = b == tool.Primary
	c.last = p
	c.report(c.ed.Controller().OnPress(p, b))
}

func (c *CanvasWidget) Dragged(e *fyne.DragEvent) {
	if !c.pressed {
		return
	}
	// moves outside the image still extend the stroke toward the edge
	p, _ := c.point(e.Position)
	if p == c.last {
		return
	}
	c.last = p
	c.report(c.ed.Controller().OnMove(p))
}

func (c *CanvasWidget) DragEnd() {}

func (c *CanvasWidget) MouseUp(e *desktop.MouseEvent) {
	if !c.pressed || e.Button != desktop.MouseButtonPrimary {
		return
	}
	c.pressed = false
	p, ok := c.point(e.Position)
	if !ok {
		p = c.last
	}
	c.report(c.ed.Controller().OnRelease(p))
}
