// Package tool interprets pointer events according to the active tool mode.
//
// The Controller owns only transient, mode-local state (the stroke in
// progress, a pending shape anchor, the mode to return to after a text
// stamp). Pixels live in the Document; pixel work is done by Operations.
// Every event either leaves the Document untouched or ends in a single
// Replace or Commit call.
package tool

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/rs/zerolog/log"
)

const (
	// ZoomIn and ZoomOut are the factors for primary and secondary presses.
	ZoomIn  = 1.2
	ZoomOut = 0.8
	// RotateStep is the angle of one rotate request, in degrees.
	RotateStep = 45.0

	DefaultText     = "Hello"
	DefaultBrush    = 5
	DefaultFontSize = 20
	MinBrush        = 1
	MaxBrush        = 50
	MinFontSize     = 5
	MaxFontSize     = 100
)

// Fill tolerances per channel, below and above the neighbouring pixel.
var (
	FillLoDiff = [3]uint8{3, 3, 3}
	FillUpDiff = [3]uint8{5, 5, 5}
)

var eraserColor = color.NRGBA{255, 255, 255, 255}

// Settings are user preferences. They are not part of history and changing
// them never resets transient state.
type Settings struct {
	Color     color.NRGBA
	BrushSize int
	Text      string
	FontSize  float64
	FontPath  string
	Shape     ShapeKind
}

// DefaultSettings returns black brush of size 5, text "Hello" at 20pt.
func DefaultSettings() Settings {
	return Settings{
		Color:     color.NRGBA{0, 0, 0, 255},
		BrushSize: DefaultBrush,
		Text:      DefaultText,
		FontSize:  DefaultFontSize,
		Shape:     Rectangle,
	}
}

type stroke struct {
	last   image.Point
	active bool
	// base is the canvas at press time; drawn is set once a segment has
	// replaced it.
	base  *image.NRGBA
	drawn bool
}

// Controller is not safe for concurrent use; front ends call it from their
// event goroutine.
type Controller struct {
	ops Operations
	doc Document

	mode     Mode
	prevMode Mode
	settings Settings

	stroke    stroke
	anchor    image.Point
	hasAnchor bool
}

// New returns a controller in Brush mode.
func New(ops Operations, doc Document, s Settings) *Controller {
	c := &Controller{ops: ops, doc: doc, mode: Brush, prevMode: Brush}
	c.SetSettings(s)
	return c
}

func (c *Controller) Mode() Mode { return c.mode }

// SetMode switches tools and clears all transient state. History is never
// touched; a stroke in progress is taken back off the canvas.
func (c *Controller) SetMode(m Mode) {
	if m == Text && c.mode != Text {
		c.prevMode = c.mode
	}
	c.mode = m
	c.resetTransient()
	log.Debug().Str("mode", m.String()).Msg("tool mode")
}

func (c *Controller) resetTransient() {
	if c.stroke.active && c.stroke.drawn {
		c.doc.Replace(c.stroke.base)
	}
	c.stroke = stroke{}
	c.hasAnchor = false
	c.anchor = image.Point{}
}

// Stroking reports whether a brush or eraser stroke is in progress.
func (c *Controller) Stroking() bool { return c.stroke.active }

// Anchor returns the pending shape corner, if any.
func (c *Controller) Anchor() (image.Point, bool) { return c.anchor, c.hasAnchor }

func (c *Controller) Settings() Settings { return c.settings }

// SetSettings replaces all settings, clamping sizes into range.
func (c *Controller) SetSettings(s Settings) {
	s.BrushSize = clampInt(s.BrushSize, MinBrush, MaxBrush)
	if s.FontSize == 0 {
		s.FontSize = DefaultFontSize
	}
	s.FontSize = clampFloat(s.FontSize, MinFontSize, MaxFontSize)
	s.Color.A = 255
	c.settings = s
}

func (c *Controller) SetColor(col color.NRGBA) {
	col.A = 255
	c.settings.Color = col
}

func (c *Controller) SetBrushSize(n int) {
	c.settings.BrushSize = clampInt(n, MinBrush, MaxBrush)
}

func (c *Controller) SetText(s string)      { c.settings.Text = s }
func (c *Controller) SetFontPath(p string)  { c.settings.FontPath = p }
func (c *Controller) SetShape(k ShapeKind)  { c.settings.Shape = k }
func (c *Controller) SetFontSize(v float64) { c.settings.FontSize = clampFloat(v, MinFontSize, MaxFontSize) }

// OnPress handles a button press at p in canvas coordinates.
func (c *Controller) OnPress(p image.Point, b Button) error {
	switch c.mode {
	case Brush, Eraser:
		if b != Primary {
			return nil
		}
		c.stroke = stroke{last: p, active: true, base: c.doc.Canvas()}
		return nil
	case Fill:
		if b != Primary {
			return nil
		}
		return c.apply("fill", func(src *image.NRGBA) (*image.NRGBA, error) {
			return c.ops.FloodFill(src, p, c.settings.Color, FillLoDiff, FillUpDiff)
		})
	case Zoom:
		var factor float64
		switch b {
		case Primary:
			factor = ZoomIn
		case Secondary:
			factor = ZoomOut
		default:
			return nil
		}
		return c.apply("zoom", func(src *image.NRGBA) (*image.NRGBA, error) {
			return c.ops.ZoomAt(src, p, factor)
		})
	case Text:
		// One stamp per activation; the mode is left even if stamping fails.
		back := c.prevMode
		if back == Text {
			back = Brush
		}
		style := c.textStyle()
		c.SetMode(back)
		return c.apply("text", func(src *image.NRGBA) (*image.NRGBA, error) {
			return c.ops.StampText(src, p, style)
		})
	case Lens:
		var kind LensKind
		switch b {
		case Primary:
			kind = Convex
		case Secondary:
			kind = Concave
		default:
			return nil
		}
		return c.apply("lens "+kind.String(), func(src *image.NRGBA) (*image.NRGBA, error) {
			return c.ops.LensDistort(src, p, kind)
		})
	case Shape:
		if b != Primary {
			return nil
		}
		if !c.hasAnchor {
			c.anchor, c.hasAnchor = p, true
			return nil
		}
		box := image.Rectangle{Min: c.anchor, Max: p}.Canon()
		kind := c.settings.Shape
		c.hasAnchor = false
		return c.apply(kind.String(), func(src *image.NRGBA) (*image.NRGBA, error) {
			return c.ops.StampShape(src, kind, box, c.settings.Color)
		})
	case Rotate:
		return nil
	}
	return nil
}

// OnMove extends the active stroke to p. Without a stroke it does nothing.
func (c *Controller) OnMove(p image.Point) error {
	if !c.stroke.active || (c.mode != Brush && c.mode != Eraser) {
		return nil
	}
	col := c.settings.Color
	if c.mode == Eraser {
		col = eraserColor
	}
	out, err := c.ops.DrawLine(c.doc.Canvas(), c.stroke.last, p, col, c.settings.BrushSize)
	if err != nil {
		return fmt.Errorf("%s stroke: %w", c.mode, asUnavailable(err))
	}
	c.doc.Replace(out)
	c.stroke.last = p
	c.stroke.drawn = true
	return nil
}

// OnRelease ends a stroke with exactly one commit, even when no segment was
// drawn.
func (c *Controller) OnRelease(p image.Point) error {
	if !c.stroke.active || (c.mode != Brush && c.mode != Eraser) {
		return nil
	}
	c.stroke = stroke{}
	c.doc.Commit(c.doc.Canvas(), c.mode.String())
	return nil
}

// Rotate turns the canvas by one step about its centre. It is only
// available in Rotate mode.
func (c *Controller) Rotate(clockwise bool) error {
	if c.mode != Rotate {
		return fmt.Errorf("rotate: %w", ErrWrongMode)
	}
	deg := RotateStep
	label := "rotate ccw"
	if clockwise {
		deg = -RotateStep
		label = "rotate cw"
	}
	return c.apply(label, func(src *image.NRGBA) (*image.NRGBA, error) {
		return c.ops.Rotate(src, deg)
	})
}

func (c *Controller) textStyle() TextStyle {
	t := c.settings.Text
	if t == "" {
		t = DefaultText
	}
	return TextStyle{
		Text:     t,
		FontPath: c.settings.FontPath,
		Size:     c.settings.FontSize,
		Color:    c.settings.Color,
	}
}

func (c *Controller) apply(label string, op func(*image.NRGBA) (*image.NRGBA, error)) error {
	out, err := op(c.doc.Canvas())
	if err != nil {
		log.Debug().Err(err).Str("op", label).Msg("operation failed")
		return fmt.Errorf("%s: %w", label, asUnavailable(err))
	}
	if out == nil {
		return fmt.Errorf("%s: %w", label, ErrOperationUnavailable)
	}
	c.doc.Commit(out, label)
	return nil
}

type unavailableError struct{ err error }

func (e unavailableError) Error() string { return e.err.Error() }
func (e unavailableError) Unwrap() []error {
	return []error{ErrOperationUnavailable, e.err}
}

func asUnavailable(err error) error {
	if errors.Is(err, ErrOperationUnavailable) {
		return err
	}
	return unavailableError{err}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
